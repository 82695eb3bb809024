package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/PouryDev/support-telegram-account/internal/account"
	"github.com/PouryDev/support-telegram-account/internal/alert"
	"github.com/PouryDev/support-telegram-account/internal/telegram"
)

const testAPIKey = "panel-secret"

// testEnv is a gateway wired to a fake bridge and a fake monitoring bot.
type testEnv struct {
	t      *testing.T
	router http.Handler

	mu       sync.Mutex
	requests map[string][]json.RawMessage
	handlers map[string]func(w http.ResponseWriter, body json.RawMessage)
	alerts   []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		t:        t,
		requests: map[string][]json.RawMessage{},
		handlers: map[string]func(http.ResponseWriter, json.RawMessage){},
	}

	bridge := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.TrimPrefix(r.URL.Path, "/")
		body, _ := io.ReadAll(r.Body)

		env.mu.Lock()
		env.requests[method] = append(env.requests[method], json.RawMessage(body))
		handler := env.handlers[method]
		env.mu.Unlock()

		if handler != nil {
			handler(w, body)
			return
		}
		writeBridgeResult(w, true)
	}))
	t.Cleanup(bridge.Close)

	monitoring := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Text string `json:"text"`
		}
		_ = json.Unmarshal(body, &req)

		env.mu.Lock()
		env.alerts = append(env.alerts, req.Text)
		env.mu.Unlock()

		writeBridgeResult(w, true)
	}))
	t.Cleanup(monitoring.Close)

	sessions := telegram.NewSessionProvider("TOKEN", bridge.URL, telegram.ProxyConfig{}, nil)
	svc := account.NewService(sessions, "@support_bot", nil)
	alerts := alert.NewNotifier("MONTOKEN", -100999, []string{"@oncall"}, monitoring.URL, nil)

	gw := New(Config{APIKey: testAPIKey}, svc, alerts, nil)
	env.router = gw.buildRouter()
	return env
}

// handle installs a response for one bridge method.
func (e *testEnv) handle(method string, fn func(w http.ResponseWriter, body json.RawMessage)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[method] = fn
}

// bridgeCalls returns how many times a bridge method was called.
func (e *testEnv) bridgeCalls(method string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests[method])
}

// bridgeRequest decodes the i-th bridge request of a method into out.
func (e *testEnv) bridgeRequest(method string, i int, out any) {
	e.t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()

	bodies := e.requests[method]
	if i >= len(bodies) {
		e.t.Fatalf("%s: request %d not recorded (have %d)", method, i, len(bodies))
	}
	if err := json.Unmarshal(bodies[i], out); err != nil {
		e.t.Fatalf("%s: decode request %d: %v", method, i, err)
	}
}

// sentAlerts returns the alert texts delivered so far.
func (e *testEnv) sentAlerts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.alerts...)
}

// do performs an authenticated request against the gateway router.
func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", testAPIKey)

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope parses the recorded response into an envelope with raw data.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (Envelope, json.RawMessage) {
	t.Helper()

	var raw struct {
		Status  int             `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, rec.Body.String())
	}
	return Envelope{Status: raw.Status, Message: raw.Message}, raw.Data
}

func writeBridgeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func writeBridgeError(w http.ResponseWriter, code int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":          false,
		"error_code":  code,
		"description": description,
	})
}
