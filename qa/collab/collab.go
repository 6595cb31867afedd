// Package collab contains the client adapters for the pipeline's external
// collaborators: knowledge retrieval, the business agent, and the answer
// generator. Each adapter wraps one outbound call with its own timeout and
// normalizes every failure into a degraded EvidenceBundle instead of
// propagating it.
package collab

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/andyjacy/aicommonplatform/qa"
	"github.com/andyjacy/aicommonplatform/qa/intent"
)

// BundleStatus tags how a collaborator call ended.
type BundleStatus string

const (
	StatusSuccess   BundleStatus = "success"
	StatusNoResults BundleStatus = "no_results"
	StatusTimeout   BundleStatus = "timeout"
	StatusError     BundleStatus = "error"
)

// EvidenceBundle is the normalized result of one collaborator call, decoupled
// from that collaborator's native response shape. Confidence is always 0
// unless Status is StatusSuccess.
type EvidenceBundle struct {
	Sources    []string
	Content    string
	Confidence float64
	Status     BundleStatus
	// Err carries the normalized failure detail for tracing; empty on success.
	Err string
}

// Degraded builds an empty zero-confidence bundle for a failed or empty call.
func Degraded(status BundleStatus, detail string) EvidenceBundle {
	return EvidenceBundle{
		Sources: []string{},
		Status:  status,
		Err:     detail,
	}
}

// Retriever searches the knowledge base for evidence supporting a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, it intent.Intent) EvidenceBundle
}

// Agent queries business systems for real-time evidence.
type Agent interface {
	Query(ctx context.Context, question string, it intent.Intent, reqCtx *qa.Context) EvidenceBundle
}

// statusForError maps a transport failure to a bundle status. Timeouts are
// distinguished from service and connection errors; both of the latter
// collapse into StatusError on the bundle.
func statusForError(err error) BundleStatus {
	if err == nil {
		return StatusSuccess
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return StatusTimeout
	}
	return StatusError
}
