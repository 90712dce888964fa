package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/iho/tripledger/internal/adapter/http/dto"
	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/infrastructure/auth"
	"github.com/iho/tripledger/internal/usecase"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// UserContextKey is the context key for the authenticated user
	UserContextKey ContextKey = "user"

	// UserIDHeader carries the caller's id when dev identities are allowed.
	UserIDHeader = "X-User-ID"
	// UserNameHeader optionally carries the dev identity's display name.
	UserNameHeader = "X-User-Name"

	maxSyncedUsers = 10000
)

var authFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tripledger_auth_failures_total",
		Help: "Total number of rejected authentication attempts",
	},
	[]string{"reason"},
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// ProfileSyncer mirrors an authenticated identity into the users table.
type ProfileSyncer interface {
	SyncProfile(ctx context.Context, input usecase.SyncProfileInput) (*domain.User, error)
}

// Authenticator resolves the caller of every API request. Bearer tokens are
// always accepted when a verifier is set; the X-User-ID header is accepted
// only when dev identities are enabled.
type Authenticator struct {
	verifier    TokenVerifier
	syncer      ProfileSyncer
	devIdentity bool

	mu     sync.Mutex
	synced map[string]domain.User
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(verifier TokenVerifier, syncer ProfileSyncer, devIdentity bool) *Authenticator {
	return &Authenticator{
		verifier:    verifier,
		syncer:      syncer,
		devIdentity: devIdentity,
		synced:      make(map[string]domain.User),
	}
}

// Middleware rejects requests without a valid identity and stores the
// caller in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, reason := a.identify(r)
		if reason != "" {
			authFailuresTotal.WithLabelValues(reason).Inc()
			writeError(w, http.StatusUnauthorized, "unauthorized", reason)
			return
		}

		user, err := a.sync(r.Context(), identity)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidEmail) {
				writeError(w, http.StatusBadRequest, "invalid profile", err.Error())
				return
			}
			log.Error().Err(err).Str("user_id", identity.ID).Msg("failed to sync user profile")
			writeError(w, http.StatusInternalServerError, "failed to sync user profile", "")
			return
		}

		setLoggedUser(r.Context(), user.ID)
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identify returns the caller or the reason it could not be resolved.
func (a *Authenticator) identify(r *http.Request) (domain.User, string) {
	if header := r.Header.Get("Authorization"); header != "" {
		if a.verifier == nil {
			return domain.User{}, "token authentication disabled"
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return domain.User{}, "invalid authorization header format"
		}

		claims, err := a.verifier.Verify(parts[1])
		if errors.Is(err, domain.ErrExpiredToken) {
			return domain.User{}, "token expired"
		}
		if err != nil {
			return domain.User{}, "invalid token"
		}

		user := claims.User()
		user.ID = dto.NormalizeUserID(user.ID)
		return user, ""
	}

	if a.devIdentity {
		if id := dto.NormalizeUserID(r.Header.Get(UserIDHeader)); id != "" {
			return domain.User{ID: id, Name: strings.TrimSpace(r.Header.Get(UserNameHeader))}, ""
		}
	}

	return domain.User{}, "missing credentials"
}

// sync upserts the profile the first time an identity is seen, and again
// whenever it carries different profile fields.
func (a *Authenticator) sync(ctx context.Context, identity domain.User) (*domain.User, error) {
	a.mu.Lock()
	known, ok := a.synced[identity.ID]
	a.mu.Unlock()

	if ok && sameProfile(known, identity) {
		return &known, nil
	}
	if a.syncer == nil {
		return &identity, nil
	}

	user, err := a.syncer.SyncProfile(ctx, usecase.SyncProfileInput{
		UserID:   identity.ID,
		Name:     identity.Name,
		Username: identity.Username,
		Email:    identity.Email,
	})
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if len(a.synced) >= maxSyncedUsers {
		a.synced = make(map[string]domain.User)
	}
	// Keyed by the raw identity so a later request with the same claims hits.
	a.synced[identity.ID] = domain.User{
		ID:        user.ID,
		Name:      identity.Name,
		Username:  identity.Username,
		Email:     identity.Email,
		CreatedAt: user.CreatedAt,
	}
	a.mu.Unlock()

	return user, nil
}

func sameProfile(a, b domain.User) bool {
	return a.Name == b.Name && a.Username == b.Username && a.Email == b.Email
}

// GetUserFromContext extracts the authenticated user from context
func GetUserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*domain.User)
	return user, ok && user != nil
}

// WithUser returns a context carrying user, as the auth middleware does.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{Error: message, Message: details})
}
