package controllers

import (
	"net/http"

	"github.com/wekezahq/coopledger-backend/api/responses"
	"github.com/wekezahq/coopledger-backend/internal/stats"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
)

// StatsDashboard returns the cached cooperative summary, recomputing it
// when the cache is empty.
func StatsDashboard(svc stats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Latest(r.Context())
		if err == nil && summary != nil {
			responses.WriteSuccess(w, summary)
			return
		}

		summary, err = svc.Recompute(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// StatsRecompute forces a fresh summary, bypassing the cache.
func StatsRecompute(svc stats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.ActorFromContext(r.Context()); !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}
		summary, err := svc.Recompute(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
