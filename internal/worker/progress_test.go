package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewProgress_CountsValues(t *testing.T) {
	tasks := append(Tasks("clouds", []int{8, 8}, 0, 3), Tasks("mask", []int{4, 4, 3}, 0, 2)...)
	p := NewProgress("mixed", tasks, false)

	if p.tasks != 5 {
		t.Errorf("Expected 5 tasks, got %d", p.tasks)
	}
	if want := 3*64 + 2*48; p.values != want {
		t.Errorf("Expected %d values, got %d", want, p.values)
	}
}

func TestProgress_Observe(t *testing.T) {
	tasks := Tasks("clouds", []int{4, 4}, 0, 4)
	p := NewProgress("clouds", tasks, false)

	p.Observe(Result{Task: tasks[0]})
	p.Observe(Result{Task: tasks[1], Err: errors.New("bad shape")})
	p.Observe(Result{Task: tasks[2], Err: context.Canceled})
	p.Observe(Result{Task: tasks[3], Err: context.DeadlineExceeded})

	if p.done != 4 {
		t.Errorf("Expected 4 observed, got %d", p.done)
	}
	if p.drawn != 16 {
		t.Errorf("Expected 16 drawn values, got %d", p.drawn)
	}
	if p.failed != 1 {
		t.Errorf("Expected 1 failed, got %d", p.failed)
	}
	if p.cancelled != 2 {
		t.Errorf("Expected 2 cancelled, got %d", p.cancelled)
	}
}

func TestProgress_LiveLine(t *testing.T) {
	var buf bytes.Buffer

	tasks := Tasks("clouds", []int{10, 10}, 0, 4)
	p := NewProgress("clouds", tasks, true)
	p.out = &buf
	p.start = time.Now().Add(-2 * time.Second)

	p.Observe(Result{Task: tasks[0]})
	p.Observe(Result{Task: tasks[1], Err: errors.New("boom")})

	output := buf.String()
	if !strings.HasPrefix(output, "\rclouds [") {
		t.Errorf("Expected line to start with the label, got: %q", output)
	}
	for _, want := range []string{"2/4 samples", "100/400 values", "1 failed", "ETA", "█"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got: %q", want, output)
		}
	}
	if strings.Contains(output, "cancelled") {
		t.Errorf("Unexpected cancelled count in output: %q", output)
	}

	buf.Reset()
	p.Done()
	if buf.String() != "\n" {
		t.Errorf("Expected Done to end the line, got %q", buf.String())
	}
}

func TestProgress_NotLive(t *testing.T) {
	var buf bytes.Buffer

	tasks := Tasks("clouds", []int{2}, 0, 2)
	p := NewProgress("clouds", tasks, false)
	p.out = &buf

	p.Observe(Result{Task: tasks[0]})
	p.Done()

	if buf.Len() != 0 {
		t.Errorf("Expected no output when not live, got: %q", buf.String())
	}
}

func TestProgress_NoTasks(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgress("empty", nil, true)
	p.out = &buf

	p.mu.Lock()
	line := p.lineLocked()
	p.mu.Unlock()

	if !strings.Contains(line, "0/0 samples") || strings.Contains(line, "█") {
		t.Errorf("Unexpected line for no tasks: %q", line)
	}
	if !strings.Contains(p.Summary(), "drew 0/0 samples (0 values)") {
		t.Errorf("Unexpected summary for no tasks: %q", p.Summary())
	}
}

func TestProgress_Summary(t *testing.T) {
	tasks := Tasks("clouds", []int{5, 5}, 0, 10)
	p := NewProgress("clouds", tasks, false)
	p.start = time.Now().Add(-10 * time.Second)

	for i, task := range tasks {
		var err error
		switch i {
		case 3, 7:
			err = errors.New("domain error")
		case 9:
			err = context.Canceled
		}
		p.Observe(Result{Task: task, Err: err})
	}

	summary := p.Summary()
	for _, want := range []string{"clouds: drew 7/10 samples (175 values) in 10s", "values/sec", "(2 failed, 1 cancelled)"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Expected %q in summary, got: %s", want, summary)
		}
	}
}

func TestProgress_WithPool(t *testing.T) {
	tasks := Tasks("noise", []int{3, 3}, 0, 6)
	p := NewProgress("noise", tasks, false)

	pool := New(Config{
		Workers: 3,
		Sampler: SamplerFunc(func(_ context.Context, task Task) (string, error) {
			if task.Index == 2 {
				return "", errors.New("simulated failure")
			}
			return task.String(), nil
		}),
		OnProgress: p.Callback(),
	})
	pool.Run(context.Background(), tasks)

	if p.done != 6 || p.failed != 1 || p.drawn != 45 {
		t.Errorf("Unexpected counts: done=%d failed=%d drawn=%d", p.done, p.failed, p.drawn)
	}
}

func TestRoundDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{in: 1234567 * time.Microsecond, want: time.Second},
		{in: 90*time.Second + 400*time.Millisecond, want: 90 * time.Second},
		{in: 1234 * time.Microsecond, want: time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			if got := roundDuration(tt.in); got != tt.want {
				t.Errorf("roundDuration(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
