package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wekezahq/coopledger-backend/api/responses"
	"github.com/wekezahq/coopledger-backend/api/validators"
	"github.com/wekezahq/coopledger-backend/internal/archive"
	"github.com/wekezahq/coopledger-backend/internal/audit"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
)

// AuditTrail lists the audit records for one resource, oldest first.
func AuditTrail(repo audit.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resourceType := chi.URLParam(r, "resourceType")
		resourceID := chi.URLParam(r, "resourceId")
		if resourceType == "" || resourceID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "resource type and id are required"))
			return
		}

		entries, err := repo.ListByResource(r.Context(), resourceType, resourceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing audit trail"))
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// ArchiveHistory returns the archived snapshots for a deleted record.
func ArchiveHistory(svc archive.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		originalID, err := validators.PathUUID(chi.URLParam(r, "originalId"), "originalId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		records, err := svc.History(r.Context(), originalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading archive history"))
			return
		}
		responses.WriteSuccess(w, records)
	}
}
