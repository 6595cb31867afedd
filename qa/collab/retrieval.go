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

	"github.com/andyjacy/aicommonplatform/qa/intent"
)

// retrievalTopK is the number of documents requested from the knowledge base.
const retrievalTopK = 3

// retrievalMaxDocs caps how many returned documents are merged into the
// evidence content.
const retrievalMaxDocs = 2

// intentCategories maps a question intent to the knowledge-base search
// category. Intents without an entry search uncategorized.
var intentCategories = map[intent.Intent]string{
	intent.IntentSales:     "sales",
	intent.IntentHR:        "hr",
	intent.IntentTechnical: "technical",
	intent.IntentFinancial: "finance",
	intent.IntentCustomer:  "case_study",
}

type searchRequest struct {
	Query    string `json:"query"`
	TopK     int    `json:"top_k"`
	Category string `json:"category,omitempty"`
}

type searchDocument struct {
	Content  string `json:"content"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

type searchResponse struct {
	Documents []searchDocument `json:"documents"`
	Total     int              `json:"total"`
}

// RetrievalClient is the knowledge retrieval adapter. It issues one top-k
// search per call and returns at most the first retrievalMaxDocs documents'
// concatenated text as evidence.
type RetrievalClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	confidence float64
}

// RetrievalConfig configures the retrieval adapter.
type RetrievalConfig struct {
	BaseURL    string
	Timeout    time.Duration
	Confidence float64 // bundle confidence on success
}

// NewRetrievalClient creates a retrieval adapter.
func NewRetrievalClient(cfg RetrievalConfig) *RetrievalClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	confidence := cfg.Confidence
	if confidence <= 0 {
		confidence = 0.85
	}
	return &RetrievalClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		confidence: confidence,
	}
}

// Retrieve searches the knowledge base. Every failure mode degrades to an
// empty bundle with an explicit status; Retrieve never returns an error.
func (c *RetrievalClient) Retrieve(ctx context.Context, question string, it intent.Intent) EvidenceBundle {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.search(ctx, searchRequest{
		Query:    question,
		TopK:     retrievalTopK,
		Category: intentCategories[it],
	})
	if err != nil {
		status := statusForError(err)
		slog.Error("retrieval: search failed", "status", status, "error", err)
		return Degraded(status, err.Error())
	}

	if len(resp.Documents) == 0 {
		slog.Info("retrieval: no matching documents", "intent", it)
		return Degraded(StatusNoResults, "")
	}

	docs := resp.Documents
	if len(docs) > retrievalMaxDocs {
		docs = docs[:retrievalMaxDocs]
	}
	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, doc.Content)
	}
	sources := make([]string, 0, len(resp.Documents))
	for _, doc := range resp.Documents {
		sources = append(sources, doc.Source)
	}

	slog.Info("retrieval: search succeeded", "documents", len(resp.Documents), "intent", it)

	return EvidenceBundle{
		Sources:    sources,
		Content:    strings.Join(contents, "\n"),
		Confidence: c.confidence,
		Status:     StatusSuccess,
	}
}

func (c *RetrievalClient) search(ctx context.Context, req searchRequest) (*searchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/rag/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retrieval service returned %d", httpResp.StatusCode)
	}

	var resp searchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &resp, nil
}
