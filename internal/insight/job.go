package insight

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/talkincode/toughpos/internal/domain"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Status is what the presentation layer shows in place of the insight
type Status struct {
	State      State     `json:"state"`
	Text       string    `json:"text,omitempty"`
	Sales      int       `json:"sales"`
	StartedAt  time.Time `json:"startedAt,omitempty"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// Job runs at most one analysis at a time in the background. Failures end
// in StateError with the error message as inline text.
type Job struct {
	mu       sync.Mutex
	analyzer Analyzer
	status   Status
	cancel   context.CancelFunc
	seq      int
	wg       sync.WaitGroup
}

func NewJob(analyzer Analyzer) *Job {
	return &Job{analyzer: analyzer, status: Status{State: StateIdle}}
}

// Start analyzes sales, newest first, replacing any analysis in flight
func (j *Job) Start(sales []domain.Sale) Status {
	digests := Summarize(sales)
	prompt := Prompt(digests)

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		j.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	j.seq++
	seq := j.seq
	j.status = Status{State: StateRunning, Sales: len(digests), StartedAt: time.Now()}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		text, err := j.analyzer.Analyze(ctx, prompt)
		j.finish(seq, text, err)
	}()
	return j.status
}

func (j *Job) finish(seq int, text string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if seq != j.seq {
		return
	}
	j.cancel = nil
	j.status.FinishedAt = time.Now()
	if err != nil {
		zap.L().Warn("sales insight failed", zap.Error(err))
		j.status.State = StateError
		j.status.Text = "Could not generate the analysis: " + err.Error()
		return
	}
	j.status.State = StateReady
	j.status.Text = text
}

// Cancel stops the analysis in flight and returns to idle
func (j *Job) Cancel() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
	j.seq++
	j.status = Status{State: StateIdle}
	return j.status
}

func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Wait blocks until no analysis goroutine is left
func (j *Job) Wait() {
	j.wg.Wait()
}
