package cron

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Job is a unit of scheduled work run by the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type entry struct {
	job     Job
	every   time.Duration
	lastRun time.Time
}

// Registry tracks jobs and how often each should run. A zero cadence means
// every tick.
type Registry struct {
	mu      sync.Mutex
	entries []*entry
}

// NewRegistry builds a registry of jobs that run on every tick.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		_ = registry.Register(job, 0)
	}
	return registry
}

// Register adds a job. Names must be unique.
func (r *Registry) Register(job Job, every time.Duration) error {
	if job == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.job.Name() == job.Name() {
			return fmt.Errorf("cron job %q already registered", job.Name())
		}
	}
	r.entries = append(r.entries, &entry{job: job, every: every})
	return nil
}

// Jobs returns the registered jobs in registration order.
func (r *Registry) Jobs() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := make([]Job, 0, len(r.entries))
	for _, e := range r.entries {
		jobs = append(jobs, e.job)
	}
	return jobs
}

// Due returns the jobs whose cadence has elapsed at now and marks them run.
func (r *Registry) Due(now time.Time) []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []Job
	for _, e := range r.entries {
		if e.every > 0 && !e.lastRun.IsZero() && now.Sub(e.lastRun) < e.every {
			continue
		}
		e.lastRun = now
		due = append(due, e.job)
	}
	return due
}
