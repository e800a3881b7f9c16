package http

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type contextKey string

const PlayerIDKey contextKey = "player_id"

// PlayerID returns the authenticated player of the request, if any.
func PlayerID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(PlayerIDKey).(uuid.UUID)
	return id, ok
}

func playerRef(ctx context.Context) *uuid.UUID {
	if id, ok := PlayerID(ctx); ok {
		return &id
	}
	return nil
}

type AuthMiddleware struct {
	authService ports.AuthService
}

func NewAuthMiddleware(authService ports.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAuth rejects requests without a valid access_token cookie.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID, ok := m.authenticate(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), PlayerIDKey, playerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the player when the cookie is valid and lets anonymous
// requests through otherwise.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if playerID, ok := m.authenticate(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), PlayerIDKey, playerID))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) authenticate(r *http.Request) (uuid.UUID, bool) {
	if m == nil || m.authService == nil {
		return uuid.Nil, false
	}
	cookie, err := r.Cookie("access_token")
	if err != nil || cookie.Value == "" {
		return uuid.Nil, false
	}
	playerID, err := m.authService.ParseAccessToken(cookie.Value)
	if err != nil {
		return uuid.Nil, false
	}
	return playerID, true
}

// CORS allows credentialed requests from the configured origins. "*" allows any.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAny := slices.Contains(origins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAny || slices.Contains(origins, origin)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", strings.Join([]string{"Content-Type", blockchainIDsHeader, actionVersionHeader}, ", "))
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
