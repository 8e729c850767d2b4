package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
)

const barWidth = 24

// Progress counts finished sampling tasks and the array elements they drew,
// and optionally redraws a one-line status on a terminal.
type Progress struct {
	label string
	out   io.Writer
	live  bool
	start time.Time

	mu        sync.Mutex
	tasks     int
	values    int // elements requested by all tasks
	done      int
	drawn     int // elements of successful tasks
	failed    int
	cancelled int
}

// NewProgress prepares a tracker for tasks. label names the run in the
// status line, e.g. the parameter being previewed. With live set the line
// is redrawn on stderr after each result.
func NewProgress(label string, tasks []Task, live bool) *Progress {
	p := &Progress{
		label: label,
		out:   os.Stderr,
		live:  live,
		start: time.Now(),
		tasks: len(tasks),
	}
	for _, t := range tasks {
		p.values += elements(t.Shape)
	}
	return p
}

func elements(shape []int) int {
	n, err := ndarray.ShapeSize(shape)
	if err != nil {
		return 0
	}
	return n
}

// Observe records one result. Context errors count as cancelled, not failed.
func (p *Progress) Observe(r Result) {
	p.mu.Lock()
	p.done++
	switch {
	case r.Err == nil:
		p.drawn += elements(r.Task.Shape)
	case errors.Is(r.Err, context.Canceled), errors.Is(r.Err, context.DeadlineExceeded):
		p.cancelled++
	default:
		p.failed++
	}
	line := p.lineLocked()
	p.mu.Unlock()

	if p.live {
		fmt.Fprint(p.out, "\r"+line)
	}
}

// Callback returns a ProgressFunc suitable for use with Pool.Config.
func (p *Progress) Callback() ProgressFunc {
	return p.Observe
}

// Done ends the live status line.
func (p *Progress) Done() {
	if p.live {
		fmt.Fprintln(p.out)
	}
}

func (p *Progress) lineLocked() string {
	var sb strings.Builder
	fill := 0
	if p.tasks > 0 {
		fill = p.done * barWidth / p.tasks
	}
	fmt.Fprintf(&sb, "%s [%s%s] %d/%d samples, %d/%d values",
		p.label, strings.Repeat("█", fill), strings.Repeat("░", barWidth-fill),
		p.done, p.tasks, p.drawn, p.values)
	if p.failed > 0 {
		fmt.Fprintf(&sb, ", %d failed", p.failed)
	}
	if p.cancelled > 0 {
		fmt.Fprintf(&sb, ", %d cancelled", p.cancelled)
	}

	elapsed := time.Since(p.start)
	if p.done > 0 && p.done < p.tasks {
		eta := time.Duration(float64(elapsed) / float64(p.done) * float64(p.tasks-p.done))
		fmt.Fprintf(&sb, " ETA %s", roundDuration(eta))
	}
	return sb.String()
}

// Summary describes the finished run in one line.
func (p *Progress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.start)
	ok := p.done - p.failed - p.cancelled
	msg := fmt.Sprintf("%s: drew %d/%d samples (%d values) in %s",
		p.label, ok, p.tasks, p.drawn, roundDuration(elapsed))
	if secs := elapsed.Seconds(); secs > 0 && p.drawn > 0 {
		msg += fmt.Sprintf(", %.0f values/sec", float64(p.drawn)/secs)
	}
	if p.failed > 0 || p.cancelled > 0 {
		msg += fmt.Sprintf(" (%d failed, %d cancelled)", p.failed, p.cancelled)
	}
	return msg
}

func roundDuration(d time.Duration) time.Duration {
	if d < time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(time.Second)
}
