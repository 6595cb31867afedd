// Package qa defines the core request and response types of the
// question-answering pipeline.
package qa

import (
	"time"

	"github.com/andyjacy/aicommonplatform/qa/intent"
	"github.com/andyjacy/aicommonplatform/qa/trace"
)

// Status reports how a pipeline run ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCached    Status = "cached"
	StatusFailed    Status = "failed"
)

// Question is the immutable input of one pipeline run.
type Question struct {
	Text      string
	UserID    string
	SessionID string
	// Extra carries caller-supplied free-form context (department, role,
	// permissions, and anything else the caller wants passed through).
	Extra map[string]any
}

// Context is the request-scoped aggregate built once per run. It is mutable
// during construction only; the pipeline treats it as read-only afterwards.
type Context struct {
	UserProfile map[string]any
	Intent      intent.Intent
	Department  string
	Role        string
	Permissions []string
	Extra       map[string]any
}

// Answer is the synthesized result of one run, without the trace.
type Answer struct {
	Text       string
	Sources    []string
	Confidence float64
	// ExecutionTime is the wall-clock pipeline duration in seconds.
	ExecutionTime float64
}

// Response is the full pipeline output returned to the caller.
type Response struct {
	ID            string         `json:"id"`
	Question      string         `json:"question"`
	Answer        string         `json:"answer"`
	Sources       []string       `json:"sources"`
	Confidence    float64        `json:"confidence"`
	ExecutionTime float64        `json:"execution_time"`
	Intent        intent.Intent  `json:"intent"`
	Status        Status         `json:"status"`
	Timestamp     time.Time      `json:"timestamp"`
	Trace         *trace.Summary `json:"trace,omitempty"`
	Error         string         `json:"error,omitempty"`
}
