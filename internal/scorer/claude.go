package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kindseek/leadscout/internal/model"
	"github.com/kindseek/leadscout/pkg/anthropic"
)

// ClaudeConfig configures the AI-assisted scoring path.
type ClaudeConfig struct {
	Model     string        `mapstructure:"model"`
	MaxTokens int64         `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ClaudeScorer asks a Claude model for an independent score and overrides
// the rule-based score only when the reply is a valid integer in [0, 100].
// Any failure, timeout or malformed reply falls back to the rules and flags
// the lead as degraded — the AI path never fails a batch.
type ClaudeScorer struct {
	client   anthropic.Client
	cfg      ClaudeConfig
	fallback *RuleScorer
}

// NewClaudeScorer creates a ClaudeScorer over the given client and fallback.
func NewClaudeScorer(client anthropic.Client, cfg ClaudeConfig, fallback *RuleScorer) *ClaudeScorer {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &ClaudeScorer{client: client, cfg: cfg, fallback: fallback}
}

// claudeReply is the JSON shape the prompt asks for.
type claudeReply struct {
	Score     *int   `json:"score"`
	Reasoning string `json:"reasoning"`
}

// Evaluate scores one lead via Claude, falling back to the rules on any
// problem. The returned error is always nil; degradation is data.
func (s *ClaudeScorer) Evaluate(ctx context.Context, lead model.RawLead) (Evaluation, error) {
	eval, err := s.classify(ctx, lead)
	if err != nil {
		zap.L().Warn("scorer: claude degraded, using rule score",
			zap.String("lead", lead.Name),
			zap.Error(err),
		)
		eval, _ = s.fallback.Evaluate(ctx, lead)
		eval.Degraded = true
	}
	return eval, nil
}

func (s *ClaudeScorer) classify(ctx context.Context, lead model.RawLead) (Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		System:    scoringSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: s.buildPrompt(lead)},
		},
	})
	if err != nil {
		return Evaluation{}, err
	}

	reply, err := parseReply(resp.Text())
	if err != nil {
		return Evaluation{}, err
	}

	score := *reply.Score
	return Evaluation{
		Score:     score,
		Priority:  TierFor(score, s.fallback.rs.Tiers),
		Method:    MethodClaude,
		Rationale: reply.Reasoning,
	}, nil
}

// parseReply extracts and validates the JSON reply. Markdown fences are
// tolerated; a missing or out-of-range score is a degradation.
func parseReply(text string) (*claudeReply, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var reply claudeReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, fmt.Errorf("scorer: malformed claude reply: %w", err)
	}
	if reply.Score == nil {
		return nil, fmt.Errorf("scorer: claude reply missing score")
	}
	if *reply.Score < 0 || *reply.Score > 100 {
		return nil, fmt.Errorf("scorer: claude score %d outside [0, 100]", *reply.Score)
	}
	return &reply, nil
}

const scoringSystemPrompt = `You evaluate childcare-facility business leads. ` +
	`Score each lead 0-100 for commercial value: capacity (larger is better, max 30), ` +
	`location desirability (max 40), licensing stage (new licenses highest, renewals lowest, max 30), ` +
	`plus small bonuses for contactability. ` +
	`Reply with JSON only: {"score": <integer 0-100>, "reasoning": "<one sentence>"}`

func (s *ClaudeScorer) buildPrompt(lead model.RawLead) string {
	capacity := "unknown"
	if lead.Capacity != nil {
		capacity = fmt.Sprintf("%d children", *lead.Capacity)
	}
	return fmt.Sprintf(
		"Name: %s\nAddress: %s\nCity: %s\nRegion: %s (%s)\nCapacity: %s\nStage: %s\nSource: %s",
		lead.Name, lead.FullAddress, lead.City, lead.Region, lead.Country, capacity, lead.Stage, lead.SourceName,
	)
}
