package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(g.logMiddleware)
	r.Use(g.traceMiddleware)
	r.Use(g.metrics.middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, Envelope{Status: http.StatusNotFound, Message: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, Envelope{Status: http.StatusMethodNotAllowed, Message: "method not allowed"})
	})

	// Public, no auth required.
	r.Get("/health", g.handleHealth())
	r.Method(http.MethodGet, "/metrics", g.metrics.Handler())

	// Panel routes, shared-secret auth on everything.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(g.config.APIKey))

		r.Post("/group/create", g.handleCreateGroup())
		r.Post("/group/delete", g.handleArchiveGroup())
		r.Post("/group/unarchive", g.handleUnarchiveGroup())
		r.Post("/group/members/add", g.handleAddMembers())
		r.Post("/group/members/ban", g.handleBanMember())
		r.Post("/group/members/unban", g.handleUnbanMember())
		r.Get("/groups", g.handleSyncGroups())

		r.Post("/message/send", g.handleSendMessage())
		r.Post("/message/edit", g.handleEditMessage())
		r.Post("/message/delete", g.handleDeleteMessage())

		r.Get("/contacts/sync", g.handleSyncContacts())
	})

	return r
}
