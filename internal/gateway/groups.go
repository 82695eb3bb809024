package gateway

import (
	"fmt"
	"net/http"

	"github.com/PouryDev/support-telegram-account/internal/account"
)

const (
	msgFillAllFields   = "please fill all fields"
	msgCreateFailed    = "something went wrong please contact PO or try again later"
	msgOperationFailed = "something went wrong please try again later or contact PO"
)

// handleCreateGroup creates a supergroup, decorates it with an invite link,
// and adds + promotes the system bot account. The invite-link and bot steps
// are independent best-effort round trips; their failure leaves the group
// created.
func (g *Gateway) handleCreateGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeBody(r)
		if err != nil {
			writeEnvelope(w, Envelope{Status: http.StatusBadRequest, Message: "invalid request body"})
			return
		}

		if ok, missing := Required(data, "title", "description"); !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: msgFillAllFields, Data: missing})
			return
		}

		title, _ := asString(data["title"])
		description, _ := asString(data["description"])
		welcomeText, _ := asString(data["welcome_text"])
		pin := asBool(data["pin"])

		ctx := r.Context()
		result, err := g.svc.CreateGroup(ctx, title, description, welcomeText, pin)
		if err != nil {
			g.logger.Error("create group failed", "title", title, "error", err)
			g.sendAlert(ctx, fmt.Sprintf("%v\n<b>Title: </b>%s", err, title))
			writeEnvelope(w, Envelope{Status: http.StatusInternalServerError, Message: msgCreateFailed})
			return
		}
		for _, warning := range result.Warnings {
			g.logger.Warn("create group sub-step failed", "chat_id", result.Chat.ID, "warning", warning)
		}

		group := account.Group{
			ID:          result.Chat.ID,
			Title:       result.Chat.Title,
			Description: result.Chat.Description,
			InviteLink:  g.svc.InviteLink(ctx, result.Chat.ID),
		}

		// The bot account joins and gets promoted so the panel's bot can
		// manage the group afterwards. Neither step rolls back creation.
		bot := g.svc.BotUsername()
		if err := g.svc.AddMembers(ctx, group.ID, []string{bot}); err != nil {
			g.logger.Error("add bot account failed", "chat_id", group.ID, "error", err)
		}
		if err := g.svc.Promote(ctx, group.ID, bot); err != nil {
			g.logger.Error("promote bot account failed", "chat_id", group.ID, "error", err)
		}

		writeEnvelope(w, Envelope{
			Status:  http.StatusOK,
			Message: "group created successfully",
			Data:    group,
		})
	}
}

// handleArchiveGroup archives a group and revokes its invite links.
func (g *Gateway) handleArchiveGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeBody(r)
		if err != nil {
			writeEnvelope(w, Envelope{Status: http.StatusBadRequest, Message: "invalid request body"})
			return
		}

		if ok, missing := Required(data, "id"); !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: msgFillAllFields, Data: missing})
			return
		}
		chatID, ok := asInt64(data["id"])
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "id must be numeric"})
			return
		}

		ctx := r.Context()
		if err := g.svc.Archive(ctx, chatID); err != nil {
			g.logger.Error("archive group failed", "chat_id", chatID, "error", err)
			g.sendAlert(ctx, fmt.Sprintf("%v\n<b>Group id: </b>%d", err, chatID))
			writeEnvelope(w, Envelope{Status: http.StatusInternalServerError, Message: msgOperationFailed})
			return
		}

		warnings, err := g.svc.RevokeInviteLinks(ctx, chatID)
		if err != nil {
			g.logger.Error("revoke invite links failed", "chat_id", chatID, "error", err)
		}
		for _, warning := range warnings {
			g.logger.Warn("invite link not revoked", "chat_id", chatID, "warning", warning)
		}

		writeEnvelope(w, Envelope{
			Status:  http.StatusOK,
			Message: "group archived successfully",
			Data:    map[string]any{"chat_id": data["id"]},
		})
	}
}

// handleUnarchiveGroup restores an archived group and echoes the payload back
// with a fresh invite link.
func (g *Gateway) handleUnarchiveGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeBody(r)
		if err != nil {
			writeEnvelope(w, Envelope{Status: http.StatusBadRequest, Message: "invalid request body"})
			return
		}

		if ok, missing := Required(data, "chat_id"); !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: msgFillAllFields, Data: missing})
			return
		}
		chatID, ok := asInt64(data["chat_id"])
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "chat_id must be numeric"})
			return
		}

		ctx := r.Context()
		warnings, err := g.svc.Unarchive(ctx, chatID)
		if err != nil {
			g.logger.Error("unarchive group failed", "chat_id", chatID, "error", err)
			g.sendAlert(ctx, fmt.Sprintf("%v\nGroup id: %d", err, chatID))
			writeEnvelope(w, Envelope{Status: http.StatusInternalServerError, Message: msgOperationFailed})
			return
		}
		for _, warning := range warnings {
			g.logger.Warn("unarchive sub-step failed", "chat_id", chatID, "warning", warning)
		}

		data["invite_link"] = g.svc.InviteLink(ctx, chatID)

		writeEnvelope(w, Envelope{
			Status:  http.StatusOK,
			Message: "chat unarchived successfully",
			Data:    data,
		})
	}
}

// handleAddMembers adds members in bulk and promotes the listed admins.
// Per-admin promotion failures are logged and never abort the loop.
func (g *Gateway) handleAddMembers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeBody(r)
		if err != nil {
			writeEnvelope(w, Envelope{Status: http.StatusBadRequest, Message: "invalid request body"})
			return
		}

		if ok, missing := Required(data, "chat_id", "user_ids", "admins"); !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: msgFillAllFields, Data: missing})
			return
		}

		rawUserIDs, ok := data["user_ids"].([]any)
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "user_ids must be array"})
			return
		}
		rawAdmins, ok := data["admins"].([]any)
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "admins must be array"})
			return
		}
		chatID, ok := asInt64(data["chat_id"])
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "chat_id must be numeric"})
			return
		}

		userIDs := make([]string, 0, len(rawUserIDs))
		for _, raw := range rawUserIDs {
			id, ok := asString(raw)
			if !ok {
				writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "user_ids must be array"})
				return
			}
			userIDs = append(userIDs, id)
		}

		g.logger.Info("adding members", "chat_id", chatID, "user_ids", userIDs)

		ctx := r.Context()
		if err := g.svc.AddMembers(ctx, chatID, userIDs); err != nil {
			g.logger.Error("add members failed", "chat_id", chatID, "error", err)
			g.sendAlert(ctx, fmt.Sprintf("%v\n<b>Group id: </b>%d", err, chatID))
			writeEnvelope(w, Envelope{Status: http.StatusInternalServerError, Message: msgOperationFailed})
			return
		}

		for _, raw := range rawAdmins {
			admin, ok := asString(raw)
			if !ok {
				continue
			}
			if err := g.svc.Promote(ctx, chatID, admin); err != nil {
				g.logger.Error("promote admin failed", "chat_id", chatID, "admin", admin, "error", err)
			}
		}

		writeEnvelope(w, Envelope{
			Status:  http.StatusOK,
			Message: "members added to group successfully",
			Data:    data,
		})
	}
}

// handleBanMember bans a single member from a group.
func (g *Gateway) handleBanMember() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeBody(r)
		if err != nil {
			writeEnvelope(w, Envelope{Status: http.StatusBadRequest, Message: "invalid request body"})
			return
		}

		g.logger.Info("ban member request", "payload", data)

		if ok, missing := Required(data, "chat_id", "user_id"); !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: msgFillAllFields, Data: missing})
			return
		}
		chatID, ok := asInt64(data["chat_id"])
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "chat_id must be numeric"})
			return
		}
		userID, ok := asInt64(data["user_id"])
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "user_id must be numeric"})
			return
		}

		ctx := r.Context()
		if err := g.svc.Ban(ctx, chatID, userID); err != nil {
			g.logger.Error("ban member failed", "chat_id", chatID, "user_id", userID, "error", err)
			g.sendAlert(ctx, fmt.Sprintf("%v\n<b>Group id: </b>%d", err, chatID))
			writeEnvelope(w, Envelope{Status: http.StatusInternalServerError, Message: msgOperationFailed})
			return
		}

		writeEnvelope(w, Envelope{
			Status:  http.StatusOK,
			Message: "member banned from group successfully",
			Data:    data,
		})
	}
}

// handleUnbanMember lifts a ban from a group member.
func (g *Gateway) handleUnbanMember() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeBody(r)
		if err != nil {
			writeEnvelope(w, Envelope{Status: http.StatusBadRequest, Message: "invalid request body"})
			return
		}

		if ok, missing := Required(data, "chat_id", "user_id"); !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: msgFillAllFields, Data: missing})
			return
		}
		chatID, ok := asInt64(data["chat_id"])
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "chat_id must be numeric"})
			return
		}
		userID, ok := asInt64(data["user_id"])
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "user_id must be numeric"})
			return
		}

		ctx := r.Context()
		if err := g.svc.Unban(ctx, chatID, userID); err != nil {
			g.logger.Error("unban member failed", "chat_id", chatID, "user_id", userID, "error", err)
			g.sendAlert(ctx, fmt.Sprintf("%v\n<b>Group id: </b>%d\n<b>User id: </b>%d", err, chatID, userID))
			writeEnvelope(w, Envelope{Status: http.StatusInternalServerError, Message: "something went wrong please try again later"})
			return
		}

		writeEnvelope(w, Envelope{
			Status:  http.StatusOK,
			Message: "user unbanned successfully",
		})
	}
}

// handleSyncGroups returns all groups and supergroups of the account.
func (g *Gateway) handleSyncGroups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := g.svc.Groups(r.Context())
		if err != nil {
			g.logger.Error("sync groups failed", "error", err)
			g.sendAlert(r.Context(), fmt.Sprintf("Failed to sync groups\n%v", err))
			writeEnvelope(w, Envelope{Status: http.StatusInternalServerError, Message: msgOperationFailed})
			return
		}

		writeEnvelope(w, Envelope{Status: http.StatusOK, Data: groups})
	}
}
