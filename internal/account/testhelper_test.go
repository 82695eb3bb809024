package account

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/PouryDev/support-telegram-account/internal/telegram"
)

// fakeBridge is an in-process stand-in for the account bridge. Methods not
// explicitly handled answer {ok:true, result:true}, which covers session
// start/stop and boolean operations.
type fakeBridge struct {
	t *testing.T

	mu       sync.Mutex
	requests map[string][]json.RawMessage
	handlers map[string]func(w http.ResponseWriter, body json.RawMessage)

	srv *httptest.Server
}

func newFakeBridge(t *testing.T) *fakeBridge {
	t.Helper()

	b := &fakeBridge{
		t:        t,
		requests: map[string][]json.RawMessage{},
		handlers: map[string]func(http.ResponseWriter, json.RawMessage){},
	}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.TrimPrefix(r.URL.Path, "/")
		body, _ := io.ReadAll(r.Body)

		b.mu.Lock()
		b.requests[method] = append(b.requests[method], json.RawMessage(body))
		handler := b.handlers[method]
		b.mu.Unlock()

		if handler != nil {
			handler(w, body)
			return
		}
		writeResult(w, true)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

// handle installs a response for one bridge method.
func (b *fakeBridge) handle(method string, fn func(w http.ResponseWriter, body json.RawMessage)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[method] = fn
}

// count returns how many times a method was called.
func (b *fakeBridge) count(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests[method])
}

// request decodes the i-th request body of a method into out.
func (b *fakeBridge) request(method string, i int, out any) {
	b.t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	bodies := b.requests[method]
	if i >= len(bodies) {
		b.t.Fatalf("%s: request %d not recorded (have %d)", method, i, len(bodies))
	}
	if err := json.Unmarshal(bodies[i], out); err != nil {
		b.t.Fatalf("%s: decode request %d: %v", method, i, err)
	}
}

// service builds an operation service talking to the fake bridge.
func (b *fakeBridge) service() *Service {
	provider := telegram.NewSessionProvider("TOKEN", b.srv.URL, telegram.ProxyConfig{}, nil)
	return NewService(provider, "@support_bot", nil)
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func writeAPIError(w http.ResponseWriter, code int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":          false,
		"error_code":  code,
		"description": description,
	})
}
