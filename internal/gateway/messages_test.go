package gateway

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/PouryDev/support-telegram-account/internal/telegram"
)

func TestSendMessageContactsOnlyFirstChat(t *testing.T) {
	env := newTestEnv(t)
	env.handle("sendMessage", func(w http.ResponseWriter, body json.RawMessage) {
		var req telegram.SendMessageRequest
		_ = json.Unmarshal(body, &req)
		writeBridgeResult(w, telegram.Message{MessageID: 9, Chat: telegram.Chat{ID: 111}})
	})

	rec := env.do(http.MethodPost, "/message/send",
		`{"chat_ids":[111,222,333],"message":"hello","pin":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	if got := env.bridgeCalls("sendMessage"); got != 1 {
		t.Errorf("sendMessage calls = %d, want 1 (first chat only)", got)
	}
	var req telegram.SendMessageRequest
	env.bridgeRequest("sendMessage", 0, &req)
	if n, ok := req.ChatID.(float64); !ok || int64(n) != 111 {
		t.Errorf("ChatID = %v, want 111", req.ChatID)
	}

	_, data := decodeEnvelope(t, rec)
	var payload struct {
		SkippedGroups []any `json:"skipped_groups"`
		Message       []struct {
			MessageID int64 `json:"message_id"`
			ChatID    int64 `json:"chat_id"`
		} `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(payload.SkippedGroups) != 0 {
		t.Errorf("skipped_groups = %v, want empty", payload.SkippedGroups)
	}
	if len(payload.Message) != 1 || payload.Message[0].MessageID != 9 {
		t.Errorf("message = %+v", payload.Message)
	}
}

func TestSendMessageFailureStillReturns200(t *testing.T) {
	env := newTestEnv(t)
	env.handle("sendMessage", func(w http.ResponseWriter, _ json.RawMessage) {
		writeBridgeError(w, 400, "PEER_ID_INVALID")
	})

	rec := env.do(http.MethodPost, "/message/send", `{"chat_ids":[111],"message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	envelope, data := decodeEnvelope(t, rec)
	if envelope.Message != "message sent successfully" {
		t.Errorf("message = %q", envelope.Message)
	}
	var payload struct {
		SkippedGroups []json.Number `json:"skipped_groups"`
		Message       []any         `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(payload.SkippedGroups) != 1 || payload.SkippedGroups[0].String() != "111" {
		t.Errorf("skipped_groups = %v, want [111]", payload.SkippedGroups)
	}
	if len(payload.Message) != 0 {
		t.Errorf("message list = %v, want empty", payload.Message)
	}
}

func TestSendMessageAcceptsScalarChatID(t *testing.T) {
	env := newTestEnv(t)
	env.handle("sendMessage", func(w http.ResponseWriter, _ json.RawMessage) {
		writeBridgeResult(w, telegram.Message{MessageID: 1, Chat: telegram.Chat{ID: 111}})
	})

	rec := env.do(http.MethodPost, "/message/send", `{"chat_ids":111,"message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if env.bridgeCalls("sendMessage") != 1 {
		t.Errorf("sendMessage calls = %d, want 1", env.bridgeCalls("sendMessage"))
	}
}

func TestSendMessageRejectsEmptyChatList(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/message/send", `{"chat_ids":[],"message":"hello"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if env.bridgeCalls("start") != 0 {
		t.Error("bridge contacted on a validation failure")
	}
}

func TestEditMessage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/message/edit",
		`{"chat_id":111,"message_id":9,"message":"updated"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	envelope, _ := decodeEnvelope(t, rec)
	if envelope.Message != "message edited successfully" {
		t.Errorf("message = %q", envelope.Message)
	}

	var req telegram.EditMessageTextRequest
	env.bridgeRequest("editMessageText", 0, &req)
	if req.ChatID != 111 || req.MessageID != 9 || req.Text != "updated" {
		t.Errorf("edit request = %+v", req)
	}
}

func TestEditMessageFailureAlerts(t *testing.T) {
	env := newTestEnv(t)
	env.handle("editMessageText", func(w http.ResponseWriter, _ json.RawMessage) {
		writeBridgeError(w, 400, "MESSAGE_ID_INVALID")
	})

	rec := env.do(http.MethodPost, "/message/edit",
		`{"chat_id":111,"message_id":9,"message":"updated"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	envelope, _ := decodeEnvelope(t, rec)
	if envelope.Message != "something went wrong please try again later" {
		t.Errorf("message = %q", envelope.Message)
	}
	if alerts := env.sentAlerts(); len(alerts) != 1 || !strings.Contains(alerts[0], "<b>Group id: </b>111") {
		t.Errorf("alerts = %v", alerts)
	}
}

func TestDeleteMessage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/message/delete", `{"chat_id":111,"message_id":9}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	envelope, _ := decodeEnvelope(t, rec)
	if envelope.Message != "message deleted successfully" {
		t.Errorf("message = %q", envelope.Message)
	}
	if env.bridgeCalls("deleteMessages") != 1 {
		t.Errorf("deleteMessages calls = %d, want 1", env.bridgeCalls("deleteMessages"))
	}
}
