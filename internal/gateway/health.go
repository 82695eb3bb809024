package gateway

import "net/http"

// handleHealth reports process liveness. The account connection itself is
// exercised per-operation, so there is nothing deeper to probe here; the
// heartbeat reporter covers account reachability.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, Envelope{Status: http.StatusOK, Message: "ok"})
	}
}
