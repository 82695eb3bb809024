package alert

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestSend(t *testing.T) {
	var (
		mu   sync.Mutex
		path string
		body struct {
			ChatID    int64  `json:"chat_id"`
			Text      string `json:"text"`
			ParseMode string `json:"parse_mode"`
		}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		path = r.URL.Path
		_ = json.Unmarshal(raw, &body)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	n := NewNotifier("MONTOKEN", -100999, []string{"@alice", "@bob"}, srv.URL, nil)
	n.Send(context.Background(), "archive chat: CHANNEL_PRIVATE\n<b>Group id: </b>1")

	mu.Lock()
	defer mu.Unlock()
	if path != "/botMONTOKEN/sendMessage" {
		t.Errorf("path = %q, want /botMONTOKEN/sendMessage", path)
	}
	if body.ChatID != -100999 {
		t.Errorf("ChatID = %d, want -100999", body.ChatID)
	}
	if body.ParseMode != "HTML" {
		t.Errorf("ParseMode = %q, want HTML", body.ParseMode)
	}
	if !strings.HasPrefix(body.Text, "<b><i>#NOC_Telegram_Account</i></b>\n\n") {
		t.Errorf("text missing NOC header: %q", body.Text)
	}
	if !strings.Contains(body.Text, "<b>Group id: </b>1") {
		t.Errorf("text missing message: %q", body.Text)
	}
	if !strings.HasSuffix(body.Text, "\n\n<b><i>@alice @bob</i></b>") {
		t.Errorf("text missing mentions suffix: %q", body.Text)
	}
}

func TestSendWithoutMentions(t *testing.T) {
	var text string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body struct {
			Text string `json:"text"`
		}
		_ = json.Unmarshal(raw, &body)
		text = body.Text
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	n := NewNotifier("MONTOKEN", -1, nil, srv.URL, nil)
	n.Send(context.Background(), "probe failed")

	if strings.Count(text, "<b><i>") != 1 {
		t.Errorf("text = %q, want header only, no mentions block", text)
	}
}

func TestSendDisabledWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("sink contacted with an empty token")
	}))
	defer srv.Close()

	n := NewNotifier("", -1, nil, srv.URL, nil)
	n.Send(context.Background(), "should not be delivered")
}

func TestSendSwallowsSinkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	// Must not panic or propagate anything.
	n := NewNotifier("MONTOKEN", -1, nil, srv.URL, nil)
	n.Send(context.Background(), "oops")
}

func TestSendSwallowsUnreachableSink(t *testing.T) {
	n := NewNotifier("MONTOKEN", -1, nil, "http://127.0.0.1:1", nil)
	n.Send(context.Background(), "oops")
}
