// Package worker runs independent sampling jobs in parallel.
package worker

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/randsrc"
)

// Sampler handles a single sampling task, e.g. rendering a preview or
// recording an array. The returned output names what was produced.
type Sampler interface {
	Sample(ctx context.Context, task Task) (output string, err error)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(ctx context.Context, task Task) (string, error)

func (f SamplerFunc) Sample(ctx context.Context, task Task) (string, error) {
	return f(ctx, task)
}

// Task represents a single sampling task.
type Task struct {
	Index int
	Name  string
	Shape []int
	Seed  int64
}

// Tasks returns n tasks for the named parameter, seeded with
// randsrc.Derive(baseSeed, i).
func Tasks(name string, shape []int, baseSeed int64, n int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{
			Index: i,
			Name:  name,
			Shape: append([]int(nil), shape...),
			Seed:  randsrc.Derive(baseSeed, i),
		}
	}
	return tasks
}

func (t Task) String() string {
	return t.Name + " " + ndarray.FormatShape(t.Shape) + " seed=" + strconv.FormatInt(t.Seed, 10)
}

// Result represents the outcome of a sampling task.
type Result struct {
	Task    Task
	Output  string
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called with each result as it arrives. Calls are
// serialised.
type ProgressFunc func(r Result)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Sampler    Sampler
	OnProgress ProgressFunc
}

// Pool manages parallel sampling.
type Pool struct {
	workers    int
	sampler    Sampler
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		sampler:    cfg.Sampler,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all tasks and returns their results ordered by task index.
// Tasks are processed in parallel by the configured number of workers.
// The function blocks until all tasks complete or the context is cancelled.
// Every task yields exactly one result; tasks not started before
// cancellation carry the context error.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(taskCh)
		for i, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				for _, rest := range tasks[i:] {
					resultCh <- Result{Task: rest, Err: ctx.Err()}
				}
				return
			}
		}
	}()

	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		for result := range resultCh {
			results = append(results, result)
			if p.onProgress != nil {
				p.onProgress(result)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	sort.Slice(results, func(i, j int) bool { return results[i].Task.Index < results[j].Task.Index })
	return results
}

// worker processes tasks from the task channel and sends results to the result channel.
func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			results <- Result{
				Task: task,
				Err:  ctx.Err(),
			}
			continue
		default:
		}

		start := time.Now()
		output, err := p.sampler.Sample(ctx, task)
		elapsed := time.Since(start)

		results <- Result{
			Task:    task,
			Output:  output,
			Err:     err,
			Elapsed: elapsed,
		}
	}
}
