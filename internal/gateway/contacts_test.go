package gateway

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/PouryDev/support-telegram-account/internal/telegram"
)

func TestSyncContacts(t *testing.T) {
	env := newTestEnv(t)
	env.handle("getContacts", func(w http.ResponseWriter, _ json.RawMessage) {
		writeBridgeResult(w, []telegram.Contact{
			{ID: 1, FirstName: "Alice", Username: "alice"},
			{ID: 2, FirstName: "Bob"},
		})
	})

	rec := env.do(http.MethodGet, "/contacts/sync", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	_, data := decodeEnvelope(t, rec)
	var contacts []telegram.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		t.Fatalf("decode contacts: %v", err)
	}
	if len(contacts) != 2 || contacts[0].Username != "alice" {
		t.Errorf("contacts = %+v", contacts)
	}
}

func TestSyncContactsFailureAlerts(t *testing.T) {
	env := newTestEnv(t)
	env.handle("getContacts", func(w http.ResponseWriter, _ json.RawMessage) {
		writeBridgeError(w, 500, "INTERNAL")
	})

	rec := env.do(http.MethodGet, "/contacts/sync", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if alerts := env.sentAlerts(); len(alerts) != 1 || !strings.Contains(alerts[0], "Failed to sync contacts") {
		t.Errorf("alerts = %v", alerts)
	}
}
