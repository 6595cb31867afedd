// Package pipeline drives the question-answering flow end to end: classify,
// build context, gather evidence from collaborators, synthesize the answer,
// and finalize a response with trace and confidence.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/andyjacy/aicommonplatform/qa"
	"github.com/andyjacy/aicommonplatform/qa/cache"
	"github.com/andyjacy/aicommonplatform/qa/collab"
	"github.com/andyjacy/aicommonplatform/qa/intent"
	"github.com/andyjacy/aicommonplatform/qa/metrics"
	"github.com/andyjacy/aicommonplatform/qa/synthesis"
	"github.com/andyjacy/aicommonplatform/qa/trace"
)

// Stage names the pipeline states. Transitions are unconditional; retries, if
// any, belong to the adapters' own network layer.
type Stage string

const (
	StageIdle            Stage = "idle"
	StageClassifying     Stage = "classifying"
	StageContextBuilding Stage = "context_building"
	StageRetrieving      Stage = "retrieving"
	StageAgentQuerying   Stage = "agent_querying"
	StageSynthesizing    Stage = "synthesizing"
	StageFinalized       Stage = "finalized"
	StageFailed          Stage = "failed"
)

// Collaborator names used in trace steps.
const (
	collabRetrieval = "knowledge_retrieval"
	collabAgent     = "business_agent"
	collabGenerator = "answer_generator"
	collabPipeline  = "qa_pipeline"
)

// Config wires the orchestrator's dependencies. Everything is injected; the
// orchestrator holds no hidden global state.
type Config struct {
	Classifier  intent.Classifier
	Retriever   collab.Retriever
	Agent       collab.Agent
	Synthesizer *synthesis.Synthesizer
	Generator   collab.Generator
	Cache       *cache.AnswerCache
	Metrics     *metrics.Collector // optional
}

// Orchestrator executes one pipeline run per Ask call. Each run is
// independent; the answer cache is the only shared state.
type Orchestrator struct {
	classifier  intent.Classifier
	retriever   collab.Retriever
	agent       collab.Agent
	synthesizer *synthesis.Synthesizer
	generator   collab.Generator
	cache       *cache.AnswerCache
	metrics     *metrics.Collector
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		classifier:  cfg.Classifier,
		retriever:   cfg.Retriever,
		agent:       cfg.Agent,
		synthesizer: cfg.Synthesizer,
		generator:   cfg.Generator,
		cache:       cfg.Cache,
		metrics:     cfg.Metrics,
	}
}

// Ask runs the full pipeline for one question. It always returns a complete
// response shape; collaborator failures lower confidence and trim sources but
// never abort the run. A panic anywhere in the pipeline is converted into a
// structured failure response carrying the partial execution time and the
// trace accumulated so far.
func (o *Orchestrator) Ask(ctx context.Context, question qa.Question) (resp *qa.Response) {
	id := uuid.NewString()
	run := trace.NewRun(question.Text)
	startTime := time.Now()
	stage := StageIdle

	defer func() {
		if r := recover(); r != nil {
			slog.Error("pipeline: unrecoverable error",
				"id", id,
				"stage", stage,
				"panic", r,
			)
			run.Record(string(StageFailed), collabPipeline, "捕获异常并记录错误", trace.StepError, map[string]any{
				"stage": string(stage),
				"error": fmt.Sprint(r),
			})
			resp = &qa.Response{
				ID:            id,
				Question:      question.Text,
				Answer:        "",
				Sources:       []string{},
				Confidence:    0,
				ExecutionTime: time.Since(startTime).Seconds(),
				Status:        qa.StatusFailed,
				Timestamp:     time.Now().UTC(),
				Trace:         run.Summarize(),
				Error:         fmt.Sprint(r),
			}
			o.observe("", string(qa.StatusFailed), resp.ExecutionTime)
		}
	}()

	slog.Info("pipeline: question received",
		"id", id,
		"run_id", run.ID(),
		"user_id", question.UserID,
		"question", question.Text,
	)

	// Cache lookup happens before any stage runs. A hit short-circuits the
	// whole pipeline and records a single trace step.
	if cached, ok := o.cache.Get(question.Text); ok {
		o.metricsCache(true)
		run.Record("cache", collabPipeline, "命中问答缓存，复用已计算的答案", trace.StepSuccess, map[string]any{
			"confidence": cached.Confidence,
			"sources":    cached.Sources,
		})
		slog.Info("pipeline: cache hit", "id", id, "run_id", run.ID())
		executionTime := time.Since(startTime).Seconds()
		o.observe("", string(qa.StatusCached), executionTime)
		return &qa.Response{
			ID:            id,
			Question:      question.Text,
			Answer:        cached.Text,
			Sources:       cached.Sources,
			Confidence:    cached.Confidence,
			ExecutionTime: executionTime,
			Status:        qa.StatusCached,
			Timestamp:     time.Now().UTC(),
			Trace:         run.Summarize(),
		}
	}
	o.metricsCache(false)

	// Classification never fails; unmatched questions become general.
	stage = StageClassifying
	it := o.classifier.Classify(question.Text)
	run.Record(string(StageClassifying), collabPipeline, "进行问题分类和关键词匹配", trace.StepSuccess, map[string]any{
		"intent":       string(it),
		"raw_question": question.Text,
	})

	// Context construction is pure and never fails.
	stage = StageContextBuilding
	reqCtx := qa.BuildContext(question.Text, question.UserID, it, question.Extra)
	run.Record(string(StageContextBuilding), collabPipeline, "构建请求上下文（用户、部门、权限）", trace.StepSuccess, map[string]any{
		"user_id":     question.UserID,
		"department":  reqCtx.Department,
		"role":        reqCtx.Role,
		"permissions": len(reqCtx.Permissions),
	})

	// Retrieval and agent branches are independent: run them concurrently,
	// each with its own timeout and degradation. Trace steps are recorded
	// after the join, in a fixed order, so sequence numbers stay gapless and
	// deterministic.
	stage = StageRetrieving
	var retrievalEv, agentEv collab.EvidenceBundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		retrievalEv = o.retriever.Retrieve(gctx, question.Text, it)
		return nil
	})
	g.Go(func() error {
		agentEv = o.agent.Query(gctx, question.Text, it, reqCtx)
		return nil
	})
	_ = g.Wait() // branches degrade internally and never return errors

	run.Record(string(StageRetrieving), collabRetrieval, "在知识库中检索相关文档", stepStatusFor(retrievalEv.Status), map[string]any{
		"status":     string(retrievalEv.Status),
		"sources":    retrievalEv.Sources,
		"confidence": retrievalEv.Confidence,
		"error":      retrievalEv.Err,
	})
	stage = StageAgentQuerying
	run.Record(string(StageAgentQuerying), collabAgent, "从企业业务系统查询实时数据", stepStatusFor(agentEv.Status), map[string]any{
		"status":     string(agentEv.Status),
		"sources":    agentEv.Sources,
		"confidence": agentEv.Confidence,
		"error":      agentEv.Err,
	})
	o.metricsCollaborator(collabRetrieval, retrievalEv.Status)
	o.metricsCollaborator(collabAgent, agentEv.Status)

	// Synthesis absorbs generator failures into the templated fallback.
	stage = StageSynthesizing
	info := o.generator.Info()
	run.Record(string(StageSynthesizing), collabGenerator, "选择生成模型并获取其配置", generatorInfoStatus(info.Configured), map[string]any{
		"provider":   info.Provider,
		"model":      info.Model,
		"configured": info.Configured,
	})

	result := o.synthesizer.Synthesize(ctx, question.Text, retrievalEv, agentEv)
	generationStatus := trace.StepSuccess
	generationData := map[string]any{
		"generated":     result.Generated,
		"answer_length": len(result.Answer),
	}
	if !result.Generated {
		generationStatus = trace.StepWarning
		generationData["error"] = result.GeneratorErr.Error()
		o.metricsCollaborator(collabGenerator, collab.StatusError)
	}
	run.Record(string(StageSynthesizing), collabGenerator, "合并证据并生成最终答案", generationStatus, generationData)

	// Merge semantics: agent sources before retrieval sources; confidence is
	// the max of the two bundles, clamped to [0,1].
	answer := qa.Answer{
		Text:       result.Answer,
		Sources:    append(append([]string{}, agentEv.Sources...), retrievalEv.Sources...),
		Confidence: clampConfidence(max(retrievalEv.Confidence, agentEv.Confidence)),
	}
	answer.ExecutionTime = time.Since(startTime).Seconds()

	o.cache.Set(question.Text, answer)

	stage = StageFinalized
	return o.finalize(id, question, it, answer, qa.StatusCompleted, run, startTime)
}

// finalize assembles the caller-facing response and closes the trace.
func (o *Orchestrator) finalize(id string, question qa.Question, it intent.Intent, answer qa.Answer, status qa.Status, run *trace.Run, startTime time.Time) *qa.Response {
	executionTime := time.Since(startTime).Seconds()
	run.Record(string(StageFinalized), collabPipeline, "返回最终回答、数据来源和调用链", trace.StepSuccess, map[string]any{
		"sources":        answer.Sources,
		"confidence":     answer.Confidence,
		"execution_time": executionTime,
	})

	slog.Info("pipeline: question completed",
		"id", id,
		"run_id", run.ID(),
		"intent", string(it),
		"status", string(status),
		"confidence", answer.Confidence,
		"execution_seconds", executionTime,
	)
	o.observe(string(it), string(status), executionTime)

	return &qa.Response{
		ID:            id,
		Question:      question.Text,
		Answer:        answer.Text,
		Sources:       answer.Sources,
		Confidence:    answer.Confidence,
		ExecutionTime: executionTime,
		Intent:        it,
		Status:        status,
		Timestamp:     time.Now().UTC(),
		Trace:         run.Summarize(),
	}
}

func (o *Orchestrator) observe(intentName, status string, duration float64) {
	if o.metrics != nil {
		o.metrics.ObserveQuestion(intentName, status, duration)
	}
}

func (o *Orchestrator) metricsCache(hit bool) {
	if o.metrics != nil {
		o.metrics.ObserveCache(hit)
	}
}

func (o *Orchestrator) metricsCollaborator(name string, status collab.BundleStatus) {
	if o.metrics != nil && status != collab.StatusSuccess {
		o.metrics.ObserveCollaboratorFailure(name, string(status))
	}
}

// stepStatusFor maps a bundle status to the trace step status: empty results
// are a warning, failures are errors.
func stepStatusFor(status collab.BundleStatus) trace.StepStatus {
	switch status {
	case collab.StatusSuccess:
		return trace.StepSuccess
	case collab.StatusNoResults:
		return trace.StepWarning
	default:
		return trace.StepError
	}
}

func generatorInfoStatus(configured bool) trace.StepStatus {
	if configured {
		return trace.StepSuccess
	}
	return trace.StepWarning
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
