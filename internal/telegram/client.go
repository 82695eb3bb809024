// Package telegram implements the HTTP client for the MTProto account bridge.
// The bridge exposes account-level Telegram operations as JSON-over-HTTP
// methods wrapped in the familiar {ok, result, description} envelope.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	maxRetries       = 3
	initialBackoff   = time.Second
	maxResponseBytes = 10 << 20 // bound reads from bridge responses
)

// Client is a thin HTTP wrapper around the account bridge.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a bridge client. httpClient may be nil, in which case a
// default client with a 60s timeout is used; the session provider passes a
// client carrying the SOCKS transport when the proxy is enabled.
func NewClient(token, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		http:    httpClient,
	}
}

// do sends a JSON POST request to the given bridge method and decodes the
// response. FLOOD_WAIT responses (429 with retry_after) are retried with
// exponential backoff, max 3 attempts. The access token travels in a header,
// never in the URL, so errors cannot leak it.
func do[T any](ctx context.Context, c *Client, method string, payload any) (*T, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, method)

	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("telegram: marshal %s request: %w", method, err)
		}
	}

	backoff := initialBackoff

	for attempt := range maxRetries {
		var body io.Reader
		if data != nil {
			body = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
		if err != nil {
			return nil, fmt.Errorf("telegram: create %s request: %w", method, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("telegram: read %s response: %w", method, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries-1 {
			var apiResp APIResponse[json.RawMessage]
			if err := json.Unmarshal(respBody, &apiResp); err == nil && apiResp.Parameters != nil && apiResp.Parameters.RetryAfter > 0 {
				backoff = time.Duration(apiResp.Parameters.RetryAfter) * time.Second
			}

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
			continue
		}

		var apiResp APIResponse[T]
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return nil, fmt.Errorf("telegram: decode %s response: %w", method, err)
		}

		if !apiResp.OK {
			apiErr := &APIError{
				Code:        apiResp.ErrorCode,
				Description: apiResp.Description,
			}
			if apiResp.Parameters != nil {
				apiErr.RetryAfter = apiResp.Parameters.RetryAfter
			}
			return nil, apiErr
		}

		return &apiResp.Result, nil
	}

	// Unreachable under normal flow, but satisfy the compiler.
	return nil, fmt.Errorf("telegram: %s: max retries exceeded", method)
}

// CreateSupergroupRequest is the request body for the createSupergroup method.
type CreateSupergroupRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ChatsRequest addresses a batch of chats by id.
type ChatsRequest struct {
	ChatIDs []int64 `json:"chat_ids"`
}

// SetChatPermissionsRequest is the request body for the setChatPermissions method.
type SetChatPermissionsRequest struct {
	ChatID      int64           `json:"chat_id"`
	Permissions ChatPermissions `json:"permissions"`
}

// TogglePreHistoryHiddenRequest is the request body for the togglePreHistoryHidden method.
type TogglePreHistoryHiddenRequest struct {
	ChatID  int64 `json:"chat_id"`
	Enabled bool  `json:"enabled"`
}

// CreateForumTopicRequest is the request body for the createForumTopic method.
type CreateForumTopicRequest struct {
	ChatID int64  `json:"chat_id"`
	Title  string `json:"title"`
}

// AddChatMembersRequest is the request body for the addChatMembers method.
// User ids are numeric ids or "@handle" references, already normalized.
type AddChatMembersRequest struct {
	ChatID  int64    `json:"chat_id"`
	UserIDs []string `json:"user_ids"`
}

// MemberRequest addresses a single numeric member of a chat.
type MemberRequest struct {
	ChatID int64 `json:"chat_id"`
	UserID int64 `json:"user_id"`
}

// PromoteChatMemberRequest is the request body for the promoteChatMember method.
type PromoteChatMemberRequest struct {
	ChatID     int64          `json:"chat_id"`
	UserID     string         `json:"user_id"`
	Privileges ChatPrivileges `json:"privileges"`
}

// RestrictChatMemberRequest is the request body for the restrictChatMember method.
type RestrictChatMemberRequest struct {
	ChatID      int64           `json:"chat_id"`
	UserID      int64           `json:"user_id"`
	Permissions ChatPermissions `json:"permissions"`
}

// ChatRequest addresses a single chat by id.
type ChatRequest struct {
	ChatID int64 `json:"chat_id"`
}

// AdminInviteLinksRequest is the request body for the getChatAdminInviteLinks method.
type AdminInviteLinksRequest struct {
	ChatID  int64 `json:"chat_id"`
	AdminID int64 `json:"admin_id"`
}

// RevokeInviteLinkRequest is the request body for the revokeChatInviteLink method.
type RevokeInviteLinkRequest struct {
	ChatID     int64  `json:"chat_id"`
	InviteLink string `json:"invite_link"`
}

// SendMessageRequest is the request body for the sendMessage method.
// ChatID is a numeric chat id or an "@handle" string.
type SendMessageRequest struct {
	ChatID    any    `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// PinChatMessageRequest is the request body for the pinChatMessage method.
type PinChatMessageRequest struct {
	ChatID              int64 `json:"chat_id"`
	MessageID           int64 `json:"message_id"`
	DisableNotification bool  `json:"disable_notification,omitempty"`
}

// EditMessageTextRequest is the request body for the editMessageText method.
type EditMessageTextRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
}

// DeleteMessagesRequest is the request body for the deleteMessages method.
type DeleteMessagesRequest struct {
	ChatID     int64   `json:"chat_id"`
	MessageIDs []int64 `json:"message_ids"`
}

// Start connects the account session on the bridge.
func (c *Client) Start(ctx context.Context) error {
	_, err := do[bool](ctx, c, "start", nil)
	return err
}

// Stop disconnects the account session on the bridge.
func (c *Client) Stop(ctx context.Context) error {
	_, err := do[bool](ctx, c, "stop", nil)
	return err
}

// GetMe returns the account's own user information.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	return do[User](ctx, c, "getMe", nil)
}

// CreateSupergroup creates a supergroup with the given title and description.
func (c *Client) CreateSupergroup(ctx context.Context, req CreateSupergroupRequest) (*Chat, error) {
	return do[Chat](ctx, c, "createSupergroup", req)
}

// ArchiveChats moves the given chats to the archive folder.
func (c *Client) ArchiveChats(ctx context.Context, chatIDs ...int64) error {
	_, err := do[bool](ctx, c, "archiveChats", ChatsRequest{ChatIDs: chatIDs})
	return err
}

// UnarchiveChats moves the given chats back out of the archive folder.
func (c *Client) UnarchiveChats(ctx context.Context, chatIDs ...int64) error {
	_, err := do[bool](ctx, c, "unarchiveChats", ChatsRequest{ChatIDs: chatIDs})
	return err
}

// SetChatPermissions applies a default permission bundle to a chat.
func (c *Client) SetChatPermissions(ctx context.Context, req SetChatPermissionsRequest) error {
	_, err := do[bool](ctx, c, "setChatPermissions", req)
	return err
}

// TogglePreHistoryHidden hides or reveals pre-join history for a supergroup.
func (c *Client) TogglePreHistoryHidden(ctx context.Context, chatID int64, enabled bool) error {
	_, err := do[bool](ctx, c, "togglePreHistoryHidden", TogglePreHistoryHiddenRequest{ChatID: chatID, Enabled: enabled})
	return err
}

// CreateForumTopic creates a forum topic in a supergroup.
func (c *Client) CreateForumTopic(ctx context.Context, chatID int64, title string) error {
	_, err := do[bool](ctx, c, "createForumTopic", CreateForumTopicRequest{ChatID: chatID, Title: title})
	return err
}

// AddChatMembers adds the given users to a chat in one bulk call.
func (c *Client) AddChatMembers(ctx context.Context, req AddChatMembersRequest) error {
	_, err := do[bool](ctx, c, "addChatMembers", req)
	return err
}

// BanChatMember bans a member from a chat.
func (c *Client) BanChatMember(ctx context.Context, chatID, userID int64) error {
	_, err := do[bool](ctx, c, "banChatMember", MemberRequest{ChatID: chatID, UserID: userID})
	return err
}

// UnbanChatMember lifts a ban from a chat member.
func (c *Client) UnbanChatMember(ctx context.Context, chatID, userID int64) error {
	_, err := do[bool](ctx, c, "unbanChatMember", MemberRequest{ChatID: chatID, UserID: userID})
	return err
}

// PromoteChatMember grants the given privilege bundle to a member.
func (c *Client) PromoteChatMember(ctx context.Context, req PromoteChatMemberRequest) error {
	_, err := do[bool](ctx, c, "promoteChatMember", req)
	return err
}

// RestrictChatMember replaces a member's permission bundle.
func (c *Client) RestrictChatMember(ctx context.Context, req RestrictChatMemberRequest) error {
	_, err := do[bool](ctx, c, "restrictChatMember", req)
	return err
}

// GetChatMembers enumerates the members of a chat.
func (c *Client) GetChatMembers(ctx context.Context, chatID int64) ([]ChatMember, error) {
	result, err := do[[]ChatMember](ctx, c, "getChatMembers", ChatRequest{ChatID: chatID})
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// GetDialogs enumerates the account's dialog list.
func (c *Client) GetDialogs(ctx context.Context) ([]Dialog, error) {
	result, err := do[[]Dialog](ctx, c, "getDialogs", nil)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// GetContacts enumerates the account's contacts.
func (c *Client) GetContacts(ctx context.Context) ([]Contact, error) {
	result, err := do[[]Contact](ctx, c, "getContacts", nil)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// CreateChatInviteLink creates a fresh invite link for a chat.
func (c *Client) CreateChatInviteLink(ctx context.Context, chatID int64) (*ChatInviteLink, error) {
	return do[ChatInviteLink](ctx, c, "createChatInviteLink", ChatRequest{ChatID: chatID})
}

// GetChatAdminInviteLinks enumerates invite links created by the given admin.
func (c *Client) GetChatAdminInviteLinks(ctx context.Context, chatID, adminID int64) ([]ChatInviteLink, error) {
	result, err := do[[]ChatInviteLink](ctx, c, "getChatAdminInviteLinks", AdminInviteLinksRequest{ChatID: chatID, AdminID: adminID})
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// RevokeChatInviteLink revokes a previously created invite link.
func (c *Client) RevokeChatInviteLink(ctx context.Context, chatID int64, inviteLink string) error {
	_, err := do[ChatInviteLink](ctx, c, "revokeChatInviteLink", RevokeInviteLinkRequest{ChatID: chatID, InviteLink: inviteLink})
	return err
}

// SendMessage sends a text message to the specified chat.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	return do[Message](ctx, c, "sendMessage", req)
}

// PinChatMessage pins a message in a chat.
func (c *Client) PinChatMessage(ctx context.Context, req PinChatMessageRequest) error {
	_, err := do[bool](ctx, c, "pinChatMessage", req)
	return err
}

// EditMessageText edits the text of a previously sent message.
func (c *Client) EditMessageText(ctx context.Context, req EditMessageTextRequest) error {
	_, err := do[Message](ctx, c, "editMessageText", req)
	return err
}

// DeleteMessages deletes messages from a chat.
func (c *Client) DeleteMessages(ctx context.Context, chatID int64, messageIDs ...int64) error {
	_, err := do[bool](ctx, c, "deleteMessages", DeleteMessagesRequest{ChatID: chatID, MessageIDs: messageIDs})
	return err
}
