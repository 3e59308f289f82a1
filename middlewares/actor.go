package middlewares

import (
	"context"
	"net/http"
	"strings"

	"explore-api/models"
	"explore-api/utils"
)

type contextKey string

const actorKey contextKey = "actor"

// ActorFromToken attaches the authenticated actor to the request context
// when a valid PASETO token is present, either as a Bearer header or in
// the access_token cookie. Requests without a usable token continue
// anonymously; handlers and RequireAuth decide whether that is acceptable.
func ActorFromToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := utils.ValidatePASETO(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		actor := &models.Actor{ID: claims.UserID, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}

// RequireAuth rejects requests that carry no authenticated actor.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetActor(r) == nil {
			RespondJSON(w, map[string]string{"message": "Not authenticated"}, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates the administrative surface: 401 without an actor,
// 403 for actors without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := GetActor(r)
		if actor == nil {
			RespondJSON(w, map[string]string{"message": "Not authenticated"}, http.StatusUnauthorized)
			return
		}
		if actor.Role != models.RoleAdmin {
			RespondJSON(w, map[string]string{"message": "Not authorized"}, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetActor returns the actor attached to the request, or nil for
// unauthenticated requests.
func GetActor(r *http.Request) *models.Actor {
	actor, _ := r.Context().Value(actorKey).(*models.Actor)
	return actor
}

// ContextWithActor returns a context carrying the actor.
func ContextWithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie("access_token")
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}
