package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andyjacy/aicommonplatform/qa"
	"github.com/andyjacy/aicommonplatform/qa/intent"
)

// AgentConfidence holds the per-domain confidence constants attached to agent
// evidence. These are contract placeholders carried over from the upstream
// business systems, not computed scores; keep them configurable rather than
// inferring a scoring scheme.
type AgentConfidence struct {
	Sales float64 // default: 0.95
	HR    float64 // default: 0.90
}

// DefaultAgentConfidence returns the standard confidence constants.
func DefaultAgentConfidence() AgentConfidence {
	return AgentConfidence{Sales: 0.95, HR: 0.90}
}

// StaticAgent is the built-in business agent used when no external agent
// service is configured. It answers sales and hr questions from fixed
// business-system summaries and reports no results for everything else.
type StaticAgent struct {
	confidence AgentConfidence
}

// NewStaticAgent creates the built-in agent.
func NewStaticAgent(confidence AgentConfidence) *StaticAgent {
	if confidence.Sales <= 0 {
		confidence.Sales = 0.95
	}
	if confidence.HR <= 0 {
		confidence.HR = 0.90
	}
	return &StaticAgent{confidence: confidence}
}

// Query looks up canned business data keyed by intent.
func (a *StaticAgent) Query(_ context.Context, _ string, it intent.Intent, _ *qa.Context) EvidenceBundle {
	switch it {
	case intent.IntentSales:
		return EvidenceBundle{
			Sources:    []string{"erp_system"},
			Content:    "Q1销售数据: 5000万元，同比增长15%",
			Confidence: a.confidence.Sales,
			Status:     StatusSuccess,
		}
	case intent.IntentHR:
		return EvidenceBundle{
			Sources:    []string{"hr_system"},
			Content:    "当前员工总数: 500人，本月入职: 10人",
			Confidence: a.confidence.HR,
			Status:     StatusSuccess,
		}
	default:
		return Degraded(StatusNoResults, "")
	}
}

type agentRequest struct {
	Intent      string   `json:"intent"`
	Question    string   `json:"question"`
	Department  string   `json:"department,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type agentResponse struct {
	Content    string   `json:"content"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// AgentClient is the business agent adapter for an external agent service.
// It wraps one network call with the shared collaborator timeout.
type AgentClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// AgentConfig configures the external agent adapter.
type AgentConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewAgentClient creates an external agent adapter.
func NewAgentClient(cfg AgentConfig) *AgentClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AgentClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// Query posts the intent and context fields to the agent service and
// normalizes its answer into an EvidenceBundle. Failures degrade, never
// propagate.
func (c *AgentClient) Query(ctx context.Context, question string, it intent.Intent, reqCtx *qa.Context) EvidenceBundle {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := agentRequest{
		Intent:   string(it),
		Question: question,
	}
	if reqCtx != nil {
		req.Department = reqCtx.Department
		req.Role = reqCtx.Role
		req.Permissions = reqCtx.Permissions
	}

	resp, err := c.query(ctx, req)
	if err != nil {
		status := statusForError(err)
		slog.Error("agent: query failed", "status", status, "error", err)
		return Degraded(status, err.Error())
	}

	if resp.Content == "" {
		return Degraded(StatusNoResults, "")
	}

	sources := resp.Sources
	if sources == nil {
		sources = []string{}
	}

	slog.Info("agent: query succeeded", "intent", it, "sources", sources)

	return EvidenceBundle{
		Sources:    sources,
		Content:    resp.Content,
		Confidence: clamp01(resp.Confidence),
		Status:     StatusSuccess,
	}
}

func (c *AgentClient) query(ctx context.Context, req agentRequest) (*agentResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal agent request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/agent/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build agent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent service returned %d", httpResp.StatusCode)
	}

	var resp agentResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode agent response: %w", err)
	}
	return &resp, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
