// Package trace records the ordered audit log of pipeline steps produced
// alongside an answer, for observability and debugging.
package trace

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// StepStatus is the outcome of a single recorded step.
type StepStatus string

const (
	StepSuccess StepStatus = "success"
	StepWarning StepStatus = "warning"
	StepError   StepStatus = "error"
	StepSkip    StepStatus = "skip"
)

// Step is one timestamped entry in a run's execution trace.
type Step struct {
	// Seq is 1-based and gapless within one run.
	Seq          int            `json:"seq"`
	Timestamp    time.Time      `json:"timestamp"`
	Stage        string         `json:"stage"`
	Collaborator string         `json:"service"`
	Purpose      string         `json:"purpose"`
	Status       StepStatus     `json:"status"`
	Data         map[string]any `json:"data"`
}

// Summary is the finalized trace of one run. It is never mutated after being
// returned to the caller.
type Summary struct {
	RunID      string  `json:"trace_id"`
	Question   string  `json:"question"`
	TotalSteps int     `json:"total_steps"`
	TotalTime  string  `json:"total_time"`
	Steps      []Step  `json:"steps"`
	Elapsed    float64 `json:"elapsed_seconds"`
}

// Run accumulates steps for one pipeline execution. Recording never raises;
// it is a side-effect-only component.
type Run struct {
	id        string
	question  string
	startTime time.Time

	mu    sync.Mutex
	steps []Step
}

// NewRun starts a trace for one question.
func NewRun(question string) *Run {
	return &Run{
		id:        shortuuid.New()[:8],
		question:  question,
		startTime: time.Now(),
	}
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Record appends one step, assigning the next sequence number and the current
// timestamp.
func (r *Run) Record(stage, collaborator, purpose string, status StepStatus, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	r.mu.Lock()
	step := Step{
		Seq:          len(r.steps) + 1,
		Timestamp:    time.Now(),
		Stage:        stage,
		Collaborator: collaborator,
		Purpose:      purpose,
		Status:       status,
		Data:         data,
	}
	r.steps = append(r.steps, step)
	r.mu.Unlock()

	slog.Debug("trace step recorded",
		"run_id", r.id,
		"seq", step.Seq,
		"stage", stage,
		"collaborator", collaborator,
		"status", status,
	)
}

// Summarize computes the elapsed time and returns the ordered step list.
// Steps are copied so the summary stays stable after return.
func (r *Run) Summarize() *Summary {
	elapsed := time.Since(r.startTime).Seconds()

	r.mu.Lock()
	steps := make([]Step, len(r.steps))
	copy(steps, r.steps)
	r.mu.Unlock()

	return &Summary{
		RunID:      r.id,
		Question:   r.question,
		TotalSteps: len(steps),
		TotalTime:  fmt.Sprintf("%.3fs", elapsed),
		Elapsed:    elapsed,
		Steps:      steps,
	}
}
