package control

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/directive/pkg/auth"
	"github.com/JaimeStill/directive/pkg/handlers"
	"github.com/JaimeStill/directive/pkg/routes"
)

// Handler provides HTTP endpoints for session control hand-off.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "control"),
	}
}

// Routes returns the route group definition for control endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/control",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{session}", Handler: h.Get, OpenAPI: Spec.Get},
			{Method: "PUT", Pattern: "/{session}", Handler: h.Set, OpenAPI: Spec.Set},
			{Method: "DELETE", Pattern: "/{session}", Handler: h.Reset, OpenAPI: Spec.Reset},
		},
	}
}

// Get returns the current owner of a session.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.Require(w, r, h.logger)
	if !ok {
		return
	}

	state, err := h.sys.Get(r.Context(), user, r.PathValue("session"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, state)
}

// Set hands control of a session to the requested owner.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.Require(w, r, h.logger)
	if !ok {
		return
	}

	var cmd SetCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	state, err := h.sys.Set(r.Context(), user, r.PathValue("session"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, state)
}

// Reset returns control of a session to the agent.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.Require(w, r, h.logger)
	if !ok {
		return
	}

	state, err := h.sys.Reset(r.Context(), user, r.PathValue("session"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, state)
}
