// Package account implements the group, message, and contact operations the
// panel drives through the gateway. Every operation acquires its own bridge
// session and releases it before returning; best-effort sub-steps report
// their failures as explicit warnings instead of disappearing into logs.
package account

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/PouryDev/support-telegram-account/internal/telegram"
)

// Service executes account operations against the bridge.
type Service struct {
	sessions    *telegram.SessionProvider
	botUsername string
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewService creates the operation service. botUsername is the system's own
// bot account, added and promoted on every created group.
func NewService(sessions *telegram.SessionProvider, botUsername string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions:    sessions,
		botUsername: botUsername,
		logger:      logger,
		tracer:      otel.Tracer("account"),
	}
}

// BotUsername returns the configured bot account reference.
func (s *Service) BotUsername() string {
	return s.botUsername
}

// Group is the group shape returned to the panel.
type Group struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	InviteLink  string `json:"invite_link,omitempty"`
}

// GroupResult is the outcome of a group creation: the created chat plus any
// non-fatal sub-step failures (pre-history toggle, topic creation).
type GroupResult struct {
	Chat     telegram.Chat
	Warnings []string
}
