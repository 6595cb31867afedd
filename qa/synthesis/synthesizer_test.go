package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andyjacy/aicommonplatform/qa/collab"
	"github.com/andyjacy/aicommonplatform/qa/llm"
)

// fakeGenerator implements collab.Generator with scripted behavior.
type fakeGenerator struct {
	reply       string
	err         error
	instruction string
	question    string
}

func (f *fakeGenerator) Generate(_ context.Context, systemInstruction, question string) (string, error) {
	f.instruction = systemInstruction
	f.question = question
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) Info() llm.Info {
	return llm.Info{Provider: "fake", Model: "fake-model", Configured: true}
}

func successBundle(content string, sources ...string) collab.EvidenceBundle {
	return collab.EvidenceBundle{
		Sources:    sources,
		Content:    content,
		Confidence: 0.85,
		Status:     collab.StatusSuccess,
	}
}

// TestSynthesize_WithEvidence tests the generation request built from both
// evidence bundles.
func TestSynthesize_WithEvidence(t *testing.T) {
	gen := &fakeGenerator{reply: "Q1销售额为5000万元，同比增长15%。"}
	s := NewSynthesizer(gen)

	retrieval := successBundle("历史销售趋势文档", "sales_report.pdf")
	agent := successBundle("Q1销售数据: 5000万元，同比增长15%", "erp_system")

	result := s.Synthesize(context.Background(), "今年Q1的销售额是多少?", retrieval, agent)

	assert.True(t, result.Generated)
	assert.NoError(t, result.GeneratorErr)
	assert.Equal(t, "Q1销售额为5000万元，同比增长15%。", result.Answer)
	assert.NotContains(t, result.Answer, "基于通用知识库", "evidence-backed answers carry no disclosure")

	assert.Equal(t, "今年Q1的销售额是多少?", gen.question)
	assert.Contains(t, gen.instruction, "企业数据: Q1销售数据: 5000万元，同比增长15%")
	assert.Contains(t, gen.instruction, "知识库内容: 历史销售趋势文档")
	assert.Contains(t, gen.instruction, "数据来源: erp_system, sales_report.pdf", "agent sources come first")

	// Agent evidence precedes retrieval evidence in the instruction body.
	agentIdx := strings.Index(gen.instruction, "企业数据:")
	retrievalIdx := strings.Index(gen.instruction, "知识库内容:")
	assert.Less(t, agentIdx, retrievalIdx)
}

// TestSynthesize_NoEvidence tests the general-knowledge path with disclosure.
func TestSynthesize_NoEvidence(t *testing.T) {
	gen := &fakeGenerator{reply: "火星殖民目前仍处于研究阶段。"}
	s := NewSynthesizer(gen)

	empty := collab.Degraded(collab.StatusNoResults, "")
	result := s.Synthesize(context.Background(), "火星殖民计划", empty, empty)

	assert.True(t, result.Generated)
	assert.True(t, strings.HasPrefix(result.Answer, generalDisclosure), "general-knowledge answers are prefixed with the disclosure")
	assert.Contains(t, result.Answer, "火星殖民目前仍处于研究阶段。")
	assert.Equal(t, generalInstruction, gen.instruction)
}

// TestSynthesize_GeneratorFailureWithEvidence tests the templated fallback
// assembled from available evidence.
func TestSynthesize_GeneratorFailureWithEvidence(t *testing.T) {
	genErr := errors.New("llm unavailable")
	s := NewSynthesizer(&fakeGenerator{err: genErr})

	retrieval := successBundle("Q1销售额5000万元", "sales_report.pdf")
	agent := successBundle("Q1销售数据: 5000万元，同比增长15%", "erp_system")

	result := s.Synthesize(context.Background(), "今年Q1的销售额是多少?", retrieval, agent)

	assert.False(t, result.Generated)
	assert.ErrorIs(t, result.GeneratorErr, genErr)
	assert.Contains(t, result.Answer, "根据我们掌握的信息")
	assert.Contains(t, result.Answer, "企业数据反馈: Q1销售数据: 5000万元，同比增长15%")
	assert.Contains(t, result.Answer, "知识库信息: Q1销售额5000万元")
	assert.Contains(t, result.Answer, "数据来源: erp_system, sales_report.pdf")
}

// TestSynthesize_GeneratorFailureOnlyRetrieval tests the fallback when only
// retrieval evidence exists.
func TestSynthesize_GeneratorFailureOnlyRetrieval(t *testing.T) {
	s := NewSynthesizer(&fakeGenerator{err: errors.New("llm unavailable")})

	retrieval := successBundle("Q1销售额5000万元", "sales_report.pdf")
	agent := collab.Degraded(collab.StatusTimeout, "deadline exceeded")

	result := s.Synthesize(context.Background(), "今年Q1的销售额是多少?", retrieval, agent)

	assert.False(t, result.Generated)
	assert.Contains(t, result.Answer, "知识库信息: Q1销售额5000万元")
	assert.NotContains(t, result.Answer, "企业数据反馈")
	assert.Contains(t, result.Answer, "数据来源: sales_report.pdf")
}

// TestSynthesize_TotalFailure tests the fixed apology when the generator fails
// and no evidence is available.
func TestSynthesize_TotalFailure(t *testing.T) {
	s := NewSynthesizer(&fakeGenerator{err: errors.New("llm unavailable")})

	empty := collab.Degraded(collab.StatusError, "connection refused")
	result := s.Synthesize(context.Background(), "q", empty, empty)

	require.False(t, result.Generated)
	assert.Equal(t, apologyAnswer, result.Answer)
}
