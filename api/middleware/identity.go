package middleware

import (
	"net/http"

	"github.com/wekezahq/coopledger-backend/api/responses"
	"github.com/wekezahq/coopledger-backend/pkg/config"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
)

// Identity decodes the actor from the configured identity header and
// attaches it to the request context. The gateway in front of this
// service verifies the token signature; here we only attribute the call.
func Identity(cfg config.IdentityConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	header := cfg.HeaderName
	if header == "" {
		header = "Authorization"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := identity.FromBearer(r.Header.Get(header))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "missing or invalid identity"))
				return
			}
			if cfg.RequiredScope != "" && actor.Role != cfg.RequiredScope {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}

			ctx := identity.WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithActor(ctx, actor.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
