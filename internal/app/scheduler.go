package app

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrJobNotFound = errors.New("job not found")

// JobStatus is the last run of a scheduled job
type JobStatus struct {
	Name        string    `json:"name"`
	Spec        string    `json:"spec"`
	Running     bool      `json:"running"`
	LastRunAt   time.Time `json:"lastRunAt"`
	LastResult  string    `json:"lastResult"`
	LastMessage string    `json:"lastMessage"`
}

type jobEntry struct {
	status JobStatus
	fn     func() error
}

// jobRegistry serializes runs of each job, whether started by cron or by
// hand, and keeps their outcome
type jobRegistry struct {
	mu   sync.Mutex
	jobs map[string]*jobEntry
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: map[string]*jobEntry{}}
}

func (r *jobRegistry) add(name, spec string, fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[name] = &jobEntry{status: JobStatus{Name: name, Spec: spec}, fn: fn}
}

func (r *jobRegistry) run(name string) (err error) {
	r.mu.Lock()
	job, ok := r.jobs[name]
	if !ok {
		r.mu.Unlock()
		return ErrJobNotFound
	}
	if job.status.Running {
		r.mu.Unlock()
		zap.L().Debug("job still running, skipped", zap.String("job", name))
		return nil
	}
	job.status.Running = true
	r.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job %s panic: %v", name, rec)
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		job.status.Running = false
		job.status.LastRunAt = time.Now()
		if err != nil {
			job.status.LastResult = "failed"
			job.status.LastMessage = err.Error()
			zap.L().Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		job.status.LastResult = "success"
		job.status.LastMessage = ""
	}()
	return job.fn()
}

func (r *jobRegistry) list() []JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]JobStatus, 0, len(r.jobs))
	for _, job := range r.jobs {
		result = append(result, job.status)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Jobs lists the scheduled jobs with their last run
func (a *Application) Jobs() []JobStatus {
	return a.jobs.list()
}

// RunJobNow triggers a scheduled job immediately by name
func (a *Application) RunJobNow(name string) error {
	return a.jobs.run(name)
}
