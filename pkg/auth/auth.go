// Package auth resolves the calling user for API requests.
// Tokens are verified as OIDC ID tokens against a remote key set; the
// token subject becomes the user id that scopes every domain query.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/directive/pkg/handlers"
)

var (
	ErrMissingToken    = errors.New("missing bearer token")
	ErrInvalidToken    = errors.New("invalid bearer token")
	ErrUnauthenticated = errors.New("unauthenticated")
)

type contextKey struct{}

// WithUser returns a copy of ctx carrying the user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserFromContext returns the user id stored by the middleware.
func UserFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// Require returns the request's user id, responding 401 and returning
// false when none is present.
func Require(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthenticated)
		return "", false
	}
	return userID, true
}

// Verifier turns a raw bearer token into a user id.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (string, error)
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier creates an OIDC verifier from the config. Keys are fetched
// lazily from JWKSURL on first verification.
func NewVerifier(cfg *Config) Verifier {
	keySet := oidc.NewRemoteKeySet(context.Background(), cfg.JWKSURL)
	return &oidcVerifier{
		verifier: oidc.NewVerifier(cfg.IssuerURL, keySet, &oidc.Config{
			ClientID:             cfg.ClientID,
			SupportedSigningAlgs: cfg.Algorithms,
		}),
	}
}

func (v *oidcVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if token.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return token.Subject, nil
}

// Middleware rejects requests without a resolvable user with 401 and
// stores the user id in the request context otherwise.
// A nil verifier falls back to reading the user id from header.
func Middleware(verifier Verifier, header string, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("system", "auth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolve(r, verifier, header)
			if err != nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}

// New builds the middleware described by cfg.
func New(cfg *Config, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		logger.Warn("auth disabled, trusting user header", "header", cfg.UserHeader)
		return Middleware(nil, cfg.UserHeader, logger)
	}
	return Middleware(NewVerifier(cfg), cfg.UserHeader, logger)
}

func resolve(r *http.Request, verifier Verifier, header string) (string, error) {
	if verifier == nil {
		if id := strings.TrimSpace(r.Header.Get(header)); id != "" {
			return id, nil
		}
		return "", ErrUnauthenticated
	}

	raw, ok := bearerToken(r)
	if !ok {
		return "", ErrMissingToken
	}
	return verifier.Verify(r.Context(), raw)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
