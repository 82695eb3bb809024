// Package alert posts failure notices to the monitoring group. Delivery is
// best-effort: a sink failure is logged and swallowed, never propagated to
// the operation that raised the alert.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const header = "#NOC_Telegram_Account"

// Notifier delivers alerts to the monitoring bot's group.
type Notifier struct {
	token    string
	groupID  int64
	mentions []string
	baseURL  string
	http     *http.Client
	logger   *slog.Logger
}

// NewNotifier creates a notifier. baseURL defaults to the public Bot API.
// An empty token disables delivery entirely.
func NewNotifier(token string, groupID int64, mentions []string, baseURL string, logger *slog.Logger) *Notifier {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		token:    token,
		groupID:  groupID,
		mentions: mentions,
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// sendMessageRequest is the Bot API sendMessage body.
type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send posts an alert with the standard NOC header and the configured mention
// list appended.
func (n *Notifier) Send(ctx context.Context, message string) {
	if n.token == "" {
		return
	}

	text := fmt.Sprintf("<b><i>%s</i></b>\n\n%s", header, message)
	if len(n.mentions) > 0 {
		text += fmt.Sprintf("\n\n<b><i>%s</i></b>", strings.Join(n.mentions, " "))
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    n.groupID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		n.logger.Error("alert marshal failed", "error", err)
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("alert request failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		n.logger.Error("alert delivery failed", "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		n.logger.Error("alert delivery rejected", "status", resp.StatusCode)
	}
}
