package scorer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindseek/leadscout/internal/model"
	"github.com/kindseek/leadscout/pkg/anthropic"
)

// fakeClient returns a canned reply or error.
type fakeClient struct {
	reply string
	err   error
	calls int
}

func (f *fakeClient) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.reply}},
	}, nil
}

func newClaudeScorer(client anthropic.Client) *ClaudeScorer {
	return NewClaudeScorer(client, ClaudeConfig{Model: "claude-haiku-4-5-20251001"}, NewRuleScorer(DefaultRuleset()))
}

func testLead() model.RawLead {
	return model.RawLead{
		Name:        "Sunshine Daycare",
		FullAddress: "123 Main St",
		Region:      "Ontario",
		Country:     model.CountryCA,
		Stage:       model.StageNewLicense,
	}
}

func TestClaudeScorer_ValidReplyOverrides(t *testing.T) {
	client := &fakeClient{reply: `{"score": 92, "reasoning": "large new facility in a prime market"}`}
	s := newClaudeScorer(client)

	eval, err := s.Evaluate(context.Background(), testLead())
	require.NoError(t, err)
	assert.Equal(t, 92, eval.Score)
	assert.Equal(t, model.PriorityCritical, eval.Priority)
	assert.Equal(t, MethodClaude, eval.Method)
	assert.False(t, eval.Degraded)
	assert.Equal(t, "large new facility in a prime market", eval.Rationale)
}

func TestClaudeScorer_FencedReply(t *testing.T) {
	client := &fakeClient{reply: "```json\n{\"score\": 71, \"reasoning\": \"ok\"}\n```"}
	s := newClaudeScorer(client)

	eval, err := s.Evaluate(context.Background(), testLead())
	require.NoError(t, err)
	assert.Equal(t, 71, eval.Score)
	assert.Equal(t, model.PriorityMedium, eval.Priority)
}

func TestClaudeScorer_APIErrorFallsBack(t *testing.T) {
	client := &fakeClient{err: errors.New("overloaded")}
	s := newClaudeScorer(client)

	eval, err := s.Evaluate(context.Background(), testLead())
	require.NoError(t, err)
	assert.True(t, eval.Degraded)
	assert.Equal(t, MethodRules, eval.Method)
	// 15 unknown capacity + 40 location + 30 new license = 85.
	assert.Equal(t, 85, eval.Score)
	assert.Equal(t, model.PriorityHigh, eval.Priority)
}

func TestClaudeScorer_MalformedReplyFallsBack(t *testing.T) {
	client := &fakeClient{reply: "I'd rate this lead about an 80 out of 100."}
	s := newClaudeScorer(client)

	eval, err := s.Evaluate(context.Background(), testLead())
	require.NoError(t, err)
	assert.True(t, eval.Degraded)
	assert.Equal(t, MethodRules, eval.Method)
}

func TestClaudeScorer_MissingScoreFallsBack(t *testing.T) {
	client := &fakeClient{reply: `{"reasoning": "no score field"}`}
	s := newClaudeScorer(client)

	eval, err := s.Evaluate(context.Background(), testLead())
	require.NoError(t, err)
	assert.True(t, eval.Degraded)
}

func TestClaudeScorer_OutOfRangeScoreFallsBack(t *testing.T) {
	client := &fakeClient{reply: `{"score": 140, "reasoning": "enthusiastic"}`}
	s := newClaudeScorer(client)

	eval, err := s.Evaluate(context.Background(), testLead())
	require.NoError(t, err)
	assert.True(t, eval.Degraded)
}

func TestParseReply_ZeroIsValid(t *testing.T) {
	reply, err := parseReply(`{"score": 0, "reasoning": "not a lead"}`)
	require.NoError(t, err)
	assert.Equal(t, 0, *reply.Score)
}
