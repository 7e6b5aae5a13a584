package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrStopJob can be returned by a job tick to end the job.
var ErrStopJob = errors.New("stop job")

// ============================================================
// Job Registry
// ============================================================

// Tick is one iteration of a polling job.
type Tick func(ctx context.Context) error

type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry tracks polling jobs by id. The owner creates it, starts and stops
// jobs explicitly and calls StopAll when done.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*job
	// OnError is called for tick errors other than ErrStopJob; the job keeps running.
	OnError func(id string, err error)
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*job)}
}

// Start runs tick immediately and then every interval until stopped. It
// returns the new job id.
func (r *Registry) Start(interval time.Duration, tick Tick) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	r.jobs[id] = j
	r.mu.Unlock()

	go r.run(ctx, id, j, interval, tick)
	return id
}

func (r *Registry) run(ctx context.Context, id string, j *job, interval time.Duration, tick Tick) {
	defer close(j.done)
	defer r.remove(id, j)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := tick(ctx); err != nil {
			if errors.Is(err, ErrStopJob) {
				return
			}
			if ctx.Err() != nil {
				return
			}
			if r.OnError != nil {
				r.OnError(id, err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Registry) remove(id string, j *job) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.jobs[id]; ok && cur == j {
		delete(r.jobs, id)
	}
}

// Stop cancels the job and waits for it to exit. It reports false for
// unknown or already finished jobs.
func (r *Registry) Stop(id string) bool {
	r.mu.Lock()
	j, ok := r.jobs[id]
	r.mu.Unlock()
	if !ok {
		return false
	}

	j.cancel()
	<-j.done
	return true
}

// IsActive reports whether the job is still running.
func (r *Registry) IsActive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.jobs[id]
	return ok
}

// StopAll stops every running job.
func (r *Registry) StopAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.jobs))
	for id := range r.jobs {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Stop(id)
	}
}
