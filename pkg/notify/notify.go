// Package notify delivers run summaries and instant lead alerts through
// chat webhooks.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kindseek/leadscout/internal/model"
)

// Notifier is one outbound chat channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, title, markdown string) error
}

// ManagerOptions tunes the notification manager.
type ManagerOptions struct {
	InstantAlerts     bool
	MaxInstantPerHour int
}

// Manager fans notifications out to every configured channel. Instant alerts
// for critical leads are rate limited so a first full import cannot flood
// the chat.
type Manager struct {
	notifiers []Notifier
	limiter   *rate.Limiter
	opts      ManagerOptions
}

// NewManager creates a Manager over the given channels.
func NewManager(notifiers []Notifier, opts ManagerOptions) *Manager {
	if opts.MaxInstantPerHour <= 0 {
		opts.MaxInstantPerHour = 20
	}
	return &Manager{
		notifiers: notifiers,
		limiter:   rate.NewLimiter(rate.Every(time.Hour/time.Duration(opts.MaxInstantPerHour)), opts.MaxInstantPerHour),
		opts:      opts,
	}
}

func (m *Manager) Name() string { return "notify" }

// Deliver implements the pipeline sink: one summary message per run, plus an
// instant alert per newly discovered critical lead.
func (m *Manager) Deliver(ctx context.Context, leads []model.ProcessedLead, summary *model.BatchSummary) error {
	if len(m.notifiers) == 0 {
		return nil
	}

	if m.opts.InstantAlerts {
		for i := range leads {
			if leads[i].Decision != model.DecisionNew || leads[i].Priority != model.PriorityCritical {
				continue
			}
			if !m.limiter.Allow() {
				zap.L().Warn("notify: instant alert budget exhausted, skipping remaining alerts")
				break
			}
			m.broadcast(ctx, "New critical lead", renderLead(leads[i]))
		}
	}

	m.broadcast(ctx, "Lead scan complete", renderSummary(summary))
	return nil
}

// broadcast sends one message to every channel, logging failures.
func (m *Manager) broadcast(ctx context.Context, title, markdown string) {
	for _, n := range m.notifiers {
		if err := n.Send(ctx, title, markdown); err != nil {
			zap.L().Error("notify: send failed",
				zap.String("channel", n.Name()),
				zap.Error(err),
			)
		}
	}
}

func renderSummary(s *model.BatchSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Lead scan complete\n\n")
	fmt.Fprintf(&b, "- New: **%d**\n", s.New)
	fmt.Fprintf(&b, "- Updated: **%d**\n", s.Updated)
	fmt.Fprintf(&b, "- Duplicates skipped: %d\n", s.Duplicates)
	fmt.Fprintf(&b, "- Rejected: %d\n", s.Rejected)
	if s.Degraded > 0 {
		fmt.Fprintf(&b, "- AI scoring degraded: %d\n", s.Degraded)
	}
	fmt.Fprintf(&b, "\n**By priority**\n")
	for _, p := range []model.Priority{model.PriorityCritical, model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		fmt.Fprintf(&b, "- %s: %d\n", p.Label(), s.ByPriority[p])
	}
	if len(s.Sources) > 0 {
		fmt.Fprintf(&b, "\n**Sources**\n")
		for _, src := range s.Sources {
			if src.Error != "" {
				fmt.Fprintf(&b, "- %s: failed (%s)\n", src.Name, src.Error)
				continue
			}
			fmt.Fprintf(&b, "- %s: %d fetched\n", src.Name, src.Fetched)
		}
	}
	return b.String()
}

func renderLead(lead model.ProcessedLead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", lead.Name)
	fmt.Fprintf(&b, "- Score: **%d** (%s)\n", lead.Score, lead.Priority.Label())
	fmt.Fprintf(&b, "- Address: %s\n", lead.FullAddress)
	if lead.Capacity != nil {
		fmt.Fprintf(&b, "- Capacity: %d\n", *lead.Capacity)
	}
	if lead.ContactPhone != "" {
		fmt.Fprintf(&b, "- Phone: %s\n", lead.ContactPhone)
	}
	if lead.ContactEmail != "" {
		fmt.Fprintf(&b, "- Email: %s\n", lead.ContactEmail)
	}
	fmt.Fprintf(&b, "- Source: %s\n", lead.SourceName)
	return b.String()
}
