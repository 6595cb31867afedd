// Package synthesis merges collaborator evidence into a generation request
// and produces the final answer text, with a deterministic fallback when the
// generator is unavailable.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/andyjacy/aicommonplatform/qa/collab"
)

const (
	evidenceInstruction = `你是一个企业AI助手。
请基于以下信息回答用户的问题：

%s

数据来源: %s

请提供清晰、准确的答案。`

	generalInstruction = `你是一个企业AI助手。
用户提出了一个问题，但知识库中没有找到相关信息。
请根据你的知识基础提供一个有帮助的答案。
如果需要，可以建议用户联系相关部门以获得更准确的信息。`

	generalDisclosure = "📝 基于通用知识库的回答（知识库中未找到相关信息）：\n\n"

	apologyAnswer = "抱歉，我无法找到相关信息。请尝试用其他关键词提问，或联系管理员。"
)

// Result is the synthesis outcome.
type Result struct {
	Answer string
	// Generated is false when the templated fallback was used because the
	// generator failed.
	Generated bool
	// GeneratorErr holds the generator failure when Generated is false.
	GeneratorErr error
}

// Synthesizer merges retrieval and agent evidence, invokes the answer
// generator, and falls back to a templated answer on generator failure.
type Synthesizer struct {
	generator collab.Generator
}

// NewSynthesizer creates a synthesizer backed by the given generator.
func NewSynthesizer(generator collab.Generator) *Synthesizer {
	return &Synthesizer{generator: generator}
}

// Synthesize produces the final answer text. It never returns an error: every
// generator failure is absorbed into the fallback path.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, retrieval, agent collab.EvidenceBundle) Result {
	hasAgent := agent.Content != ""
	hasRetrieval := retrieval.Content != ""

	instruction := generalInstruction
	if hasAgent || hasRetrieval {
		var parts []string
		if hasAgent {
			parts = append(parts, "企业数据: "+agent.Content)
		}
		if hasRetrieval {
			parts = append(parts, "知识库内容: "+retrieval.Content)
		}
		sources := append(append([]string{}, agent.Sources...), retrieval.Sources...)
		instruction = fmt.Sprintf(evidenceInstruction, strings.Join(parts, "\n"), strings.Join(sources, ", "))
	}

	answer, err := s.generator.Generate(ctx, instruction, question)
	if err != nil {
		slog.Error("synthesis: generator failed, using templated fallback", "error", err)
		return Result{
			Answer:       s.fallback(retrieval, agent),
			Generated:    false,
			GeneratorErr: err,
		}
	}

	// Disclose when the answer came from general knowledge rather than
	// retrieved facts.
	if !hasAgent && !hasRetrieval {
		answer = generalDisclosure + answer
	}

	return Result{Answer: answer, Generated: true}
}

// fallback assembles a deterministic answer directly from whatever evidence
// is available, or the fixed apology when there is none.
func (s *Synthesizer) fallback(retrieval, agent collab.EvidenceBundle) string {
	if agent.Content == "" && retrieval.Content == "" {
		return apologyAnswer
	}

	var b strings.Builder
	b.WriteString("根据我们掌握的信息：\n")
	if agent.Content != "" {
		b.WriteString("\n企业数据反馈: " + agent.Content)
	}
	if retrieval.Content != "" {
		b.WriteString("\n知识库信息: " + retrieval.Content)
	}
	sources := append(append([]string{}, agent.Sources...), retrieval.Sources...)
	b.WriteString("\n\n📊 数据来源: " + strings.Join(sources, ", "))
	return b.String()
}
