package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"activityhub/internal/httputil"
	"activityhub/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ActorKey is the context key for the authenticated model.Actor
	ActorKey contextKey = "actor"
)

// AuthMiddleware creates a middleware that validates JWT tokens.
// Checks the Authorization header first, then the access_token query parameter,
// which EventSource clients use because they cannot set headers.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				// Expected format: "Bearer <token>"
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenString = parts[1]
				}
			}

			if tokenString == "" {
				tokenString = r.URL.Query().Get("access_token")
			}

			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing authentication token")
				return
			}

			actor, err := parseActor(tokenString, jwtSecret)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Access token has expired")
					return
				}
				httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid authentication token")
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var errInvalidClaims = errors.New("invalid token claims")

func parseActor(tokenString, jwtSecret string) (model.Actor, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return model.Actor{}, err
	}
	if !token.Valid {
		return model.Actor{}, errInvalidClaims
	}

	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return model.Actor{}, errInvalidClaims
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return model.Actor{}, errInvalidClaims
	}

	return model.Actor{UserID: userID, Username: username}, nil
}

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(model.Actor)
	return actor, ok
}

// HostChecker answers whether a user hosts an activity.
type HostChecker interface {
	IsHost(ctx context.Context, userID, activityID uuid.UUID) bool
}

// RequireHost lets the request through only when the actor hosts the activity
// named by the {id} route parameter. Runs after AuthMiddleware.
func RequireHost(policy HostChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				httputil.WriteForbidden(w, "Only the host can do this")
				return
			}

			activityID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.WriteBadRequest(w, "Invalid activity ID")
				return
			}

			if !policy.IsHost(r.Context(), actor.UserID, activityID) {
				httputil.WriteForbidden(w, "Only the host can do this")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
