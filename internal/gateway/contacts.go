package gateway

import (
	"fmt"
	"net/http"
)

// handleSyncContacts returns the account's contact list for the panel.
func (g *Gateway) handleSyncContacts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contacts, err := g.svc.Contacts(r.Context())
		if err != nil {
			g.logger.Error("sync contacts failed", "error", err)
			g.sendAlert(r.Context(), fmt.Sprintf("Failed to sync contacts\n%v", err))
			writeEnvelope(w, Envelope{Status: http.StatusInternalServerError, Message: "something went wrong please try again later"})
			return
		}

		writeEnvelope(w, Envelope{Status: http.StatusOK, Data: contacts})
	}
}
