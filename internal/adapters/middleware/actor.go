package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
)

type ActorResolver interface {
	ResolveActor(ctx context.Context, id domain.Identity) (domain.Actor, error)
}

// RequireActor loads the caller's profile role and, when roles are given,
// admits only callers holding one of them. Must run after Authenticate.
func RequireActor(resolver ActorResolver, logger *zap.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			actor, err := resolver.ResolveActor(r.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusForbidden, "no profile for this account; start a session first")
				return
			}
			if err != nil {
				logger.Error("resolve actor", zap.String("user_id", id.ID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, actor.Role) {
				logger.Warn("role mismatch",
					zap.String("user_id", actor.ID),
					zap.String("role", string(actor.Role)),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}
