package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
)

const (
	msgMissingToken = "Please authenticate using valid token"
	msgInvalidToken = "Please authenticate using a valid token"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p services.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFromContext(ctx context.Context) (services.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(services.Principal)
	return p, ok && !p.IsZero()
}

// requireAuth admits only requests carrying a verifiable auth-token header.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		token := req.Header.Get(common.AccessTokenHeaderName)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, authFailure{Errors: msgMissingToken})
			return
		}

		p, err := r.identity.VerifyToken(token)
		if err != nil {
			if !errors.Is(err, common.ErrInvalidToken) && !errors.Is(err, common.ErrTokenExpired) {
				logging.FromContext(req.Context(), r.logger).Warn(req.Context(), "token verification failed", "error", err)
			}
			writeJSON(w, http.StatusUnauthorized, authFailure{Errors: msgInvalidToken})
			return
		}

		ctx := withPrincipal(req.Context(), p)
		ctx = logging.WithContext(ctx, logging.FromContext(ctx, r.logger).With("user_id", p.UserID()))
		next(w, req.WithContext(ctx))
	}
}
