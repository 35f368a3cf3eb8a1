package evaluation_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/directive/internal/evaluation"
	"github.com/JaimeStill/directive/pkg/auth"
)

type mockSystem struct {
	evaluateFn func(ctx context.Context, user string, cctx evaluation.Context) (*evaluation.Result, error)
}

func (m *mockSystem) Handler(maxBodySize int64) *evaluation.Handler {
	return evaluation.NewHandler(m, discard(), maxBodySize)
}

func (m *mockSystem) Evaluate(ctx context.Context, user string, cctx evaluation.Context) (*evaluation.Result, error) {
	return m.evaluateFn(ctx, user, cctx)
}

func setupMux(h *evaluation.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func post(body string, user bool) *http.Request {
	req := httptest.NewRequest("POST", "/instructions/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user {
		req = req.WithContext(auth.WithUser(req.Context(), "user-1"))
	}
	return req
}

func TestHandlerEvaluate(t *testing.T) {
	t.Run("returns success envelope", func(t *testing.T) {
		var captured evaluation.Context
		var capturedUser string
		sys := &mockSystem{
			evaluateFn: func(_ context.Context, user string, cctx evaluation.Context) (*evaluation.Result, error) {
				captured = cctx
				capturedUser = user
				return &evaluation.Result{
					ActiveInstructions: []evaluation.Active{},
					Conflicts:          []evaluation.Conflict{},
					TotalEvaluated:     3,
				}, nil
			},
		}
		mux := setupMux(sys.Handler(1 << 20))

		body := `{"conversation_context":{"message_content":"reset my password","involves_sensitive_data":true,"confidence":0.8}}`
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, post(body, true))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
		}
		if capturedUser != "user-1" {
			t.Errorf("user = %q, want user-1", capturedUser)
		}
		if captured.MessageContent != "reset my password" || !captured.InvolvesSensitiveData || captured.Confidence != 0.8 {
			t.Errorf("context = %+v", captured)
		}

		var envelope struct {
			Success bool              `json:"success"`
			Data    evaluation.Result `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !envelope.Success {
			t.Error("success = false, want true")
		}
		if envelope.Data.TotalEvaluated != 3 {
			t.Errorf("total_evaluated = %d, want 3", envelope.Data.TotalEvaluated)
		}
	})

	t.Run("missing context", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(sys.Handler(1 << 20))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, post(`{}`, true))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), evaluation.ErrMissingContext.Error()) {
			t.Errorf("body = %s, want missing context error", rec.Body)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(sys.Handler(1 << 20))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, post(`{"conversation_context":`, true))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("body too large", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(sys.Handler(16))

		body := `{"conversation_context":{"message_content":"` + strings.Repeat("a", 64) + `"}}`
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, post(body, true))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(sys.Handler(1 << 20))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, post(`{"conversation_context":{}}`, false))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("load failure", func(t *testing.T) {
		sys := &mockSystem{
			evaluateFn: func(context.Context, string, evaluation.Context) (*evaluation.Result, error) {
				return nil, errors.Join(evaluation.ErrLoadFailed, errors.New("db down"))
			},
		}
		mux := setupMux(sys.Handler(1 << 20))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, post(`{"conversation_context":{}}`, true))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["error"] != evaluation.ErrLoadFailed.Error() {
			t.Errorf("error = %q, want %q without the store cause", body["error"], evaluation.ErrLoadFailed)
		}
	})
}

func TestHandlerRoutes(t *testing.T) {
	h := (&mockSystem{}).Handler(1 << 20)
	group := h.Routes()

	if group.Prefix != "/instructions" {
		t.Errorf("prefix = %q, want /instructions", group.Prefix)
	}
	if len(group.Routes) != 1 || group.Routes[0].Method != "POST" || group.Routes[0].Pattern != "/evaluate" {
		t.Errorf("routes = %+v, want POST /evaluate", group.Routes)
	}
}
