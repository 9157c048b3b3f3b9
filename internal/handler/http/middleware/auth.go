package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-presence-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// AuthRequired rejects requests without a verified access token and stores the caller's
// Actor in the request context. It must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.Unauthorized(w, jwt.ErrInvalidToken.Error())
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != jwt.TokenTypeAccess || !ok {
			response.Unauthorized(w, jwt.ErrInvalidToken.Error())
			return
		}

		actor, ok := actorFromClaims(claims)
		if !ok {
			response.Unauthorized(w, jwt.ErrInvalidToken.Error())
			return
		}

		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext returns the caller stored by AuthRequired
func ActorFromContext(ctx context.Context) (user.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(user.Actor)
	return actor, ok
}

// WithActor stores actor in ctx the way AuthRequired does
func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFromClaims(claims map[string]interface{}) (user.Actor, bool) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Actor{}, false
	}

	role, _ := claims["role"].(string)
	actor := user.Actor{UserID: userID, Role: user.Role(role)}

	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		actor.EmployeeID = &employeeID
	}

	return actor, true
}
