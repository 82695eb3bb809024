package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleSendMessage delivers a message to the first requested chat. The route
// accepts a single id or a list, but only the first entry is ever contacted;
// a failed send lands that id in skipped_groups and the response is still a
// 200 envelope. The panel has always consumed it this way.
func (g *Gateway) handleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeBody(r)
		if err != nil {
			writeEnvelope(w, Envelope{Status: http.StatusBadRequest, Message: "invalid request body"})
			return
		}

		if ok, missing := Required(data, "chat_ids", "message"); !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: msgFillAllFields, Data: missing})
			return
		}

		chatIDs, ok := data["chat_ids"].([]any)
		if !ok {
			chatIDs = []any{data["chat_ids"]}
		}
		if len(chatIDs) == 0 {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: msgFillAllFields, Data: []string{"chat_ids"}})
			return
		}

		text, _ := asString(data["message"])
		pin := asBool(data["pin"])

		target := chatIDs[0]
		chatRef := target
		if n, ok := target.(json.Number); ok {
			if id, err := n.Int64(); err == nil {
				chatRef = id
			}
		}

		skipped := []any{}
		messages := []map[string]any{}

		msg, err := g.svc.Send(r.Context(), chatRef, text, pin)
		if err != nil {
			g.logger.Error("send message failed", "chat_id", target, "error", err)
			skipped = append(skipped, target)
		} else {
			messages = append(messages, map[string]any{
				"message_id": msg.MessageID,
				"chat_id":    msg.Chat.ID,
			})
		}

		writeEnvelope(w, Envelope{
			Status:  http.StatusOK,
			Message: "message sent successfully",
			Data: map[string]any{
				"skipped_groups": skipped,
				"message":        messages,
			},
		})
	}
}

// handleEditMessage replaces the text of an existing message.
func (g *Gateway) handleEditMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeBody(r)
		if err != nil {
			writeEnvelope(w, Envelope{Status: http.StatusBadRequest, Message: "invalid request body"})
			return
		}

		if ok, missing := Required(data, "chat_id", "message_id", "message"); !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: msgFillAllFields, Data: missing})
			return
		}
		chatID, ok := asInt64(data["chat_id"])
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "chat_id must be numeric"})
			return
		}
		messageID, ok := asInt64(data["message_id"])
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "message_id must be numeric"})
			return
		}
		text, _ := asString(data["message"])

		ctx := r.Context()
		if err := g.svc.Edit(ctx, chatID, messageID, text); err != nil {
			g.logger.Error("edit message failed", "chat_id", chatID, "message_id", messageID, "error", err)
			g.sendAlert(ctx, fmt.Sprintf("%v\n<b>Group id: </b>%d", err, chatID))
			writeEnvelope(w, Envelope{Status: http.StatusInternalServerError, Message: "something went wrong please try again later"})
			return
		}

		writeEnvelope(w, Envelope{Status: http.StatusOK, Message: "message edited successfully"})
	}
}

// handleDeleteMessage removes a message from a chat.
func (g *Gateway) handleDeleteMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeBody(r)
		if err != nil {
			writeEnvelope(w, Envelope{Status: http.StatusBadRequest, Message: "invalid request body"})
			return
		}

		if ok, missing := Required(data, "chat_id", "message_id"); !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: msgFillAllFields, Data: missing})
			return
		}
		chatID, ok := asInt64(data["chat_id"])
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "chat_id must be numeric"})
			return
		}
		messageID, ok := asInt64(data["message_id"])
		if !ok {
			writeEnvelope(w, Envelope{Status: http.StatusUnprocessableEntity, Message: "message_id must be numeric"})
			return
		}

		ctx := r.Context()
		if err := g.svc.Delete(ctx, chatID, messageID); err != nil {
			g.logger.Error("delete message failed", "chat_id", chatID, "message_id", messageID, "error", err)
			g.sendAlert(ctx, fmt.Sprintf("%v\n<b>Group id: </b>%d", err, chatID))
			writeEnvelope(w, Envelope{Status: http.StatusInternalServerError, Message: "something went wrong please try again later"})
			return
		}

		writeEnvelope(w, Envelope{Status: http.StatusOK, Message: "message deleted successfully"})
	}
}
