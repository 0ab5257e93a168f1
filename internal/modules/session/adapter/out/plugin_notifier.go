package out

import (
	"context"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	plugindto "focuspulse/internal/modules/plugin/dto"
	pluginin "focuspulse/internal/modules/plugin/port/in"
	"focuspulse/internal/modules/session/domain"
	sessionout "focuspulse/internal/modules/session/port/out"
)

// PluginNotifier forwards archived sessions to notify-capable plugins.
type PluginNotifier struct {
	plugins pluginin.Usecase
	logger  hclog.Logger
}

func NewPluginNotifier(plugins pluginin.Usecase, logger hclog.Logger) sessionout.CompletionNotifier {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PluginNotifier{plugins: plugins, logger: logger}
}

func (n *PluginNotifier) NotifyCompleted(ctx context.Context, session domain.Session) error {
	out, err := n.plugins.NotifyCompleted(ctx, plugindto.NotifyInput{
		SessionID:    session.ID,
		TaskName:     session.TaskName,
		Outcome:      string(session.Outcome),
		Score:        session.Score,
		StartedAt:    session.StartedAt,
		EndedAt:      session.EndedAt,
		Duration:     session.Duration(),
		Distractions: session.Stats.Distractions,
		IdleTime:     session.Stats.IdleTime,
	})
	if err != nil {
		return fmt.Errorf("notify plugins: %w", err)
	}
	failed := 0
	for _, d := range out.Deliveries {
		if d.Error != "" {
			failed++
			n.logger.Warn("plugin notify failed", "plugin", d.PluginName, "session_id", session.ID, "error", d.Error)
			continue
		}
		n.logger.Debug("plugin notified", "plugin", d.PluginName, "session_id", session.ID, "message", d.Message)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d plugin notifications failed", failed, len(out.Deliveries))
	}
	return nil
}
