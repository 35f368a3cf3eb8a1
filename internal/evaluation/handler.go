package evaluation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/directive/pkg/auth"
	"github.com/JaimeStill/directive/pkg/handlers"
	"github.com/JaimeStill/directive/pkg/routes"
)

// Handler provides the HTTP endpoint for instruction evaluation.
type Handler struct {
	sys         System
	logger      *slog.Logger
	maxBodySize int64
}

// EvaluateRequest is the body of an evaluation call.
type EvaluateRequest struct {
	ConversationContext *Context `json:"conversation_context"`
}

// NewHandler creates a Handler with the given system, logger, and body size limit.
func NewHandler(sys System, logger *slog.Logger, maxBodySize int64) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "evaluation"),
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for evaluation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/instructions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/evaluate", Handler: h.Evaluate, OpenAPI: Spec.Evaluate},
		},
	}
}

// Evaluate returns the instructions that apply to the posted conversation
// context along with any conflicts between them.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.Require(w, r, h.logger)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if req.ConversationContext == nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingContext)
		return
	}

	result, err := h.sys.Evaluate(r.Context(), user, *req.ConversationContext)
	if errors.Is(err, ErrLoadFailed) {
		h.logger.Error("evaluation failed", "user", user, "error", err)
		handlers.RespondJSON(w, http.StatusInternalServerError, map[string]string{"error": ErrLoadFailed.Error()})
		return
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondSuccess(w, http.StatusOK, result)
}
