package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wekezahq/coopledger-backend/api/responses"
	"github.com/wekezahq/coopledger-backend/api/validators"
	"github.com/wekezahq/coopledger-backend/internal/funds"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
	"github.com/wekezahq/coopledger-backend/pkg/pagination"
)

type createFundRequest struct {
	Name string `json:"name" validate:"required,min=1"`
	Type string `json:"type,omitempty"`
}

func FundCreate(svc funds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}

		var payload createFundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fund, err := svc.Create(r.Context(), funds.CreateInput{
			Actor: actor,
			Name:  payload.Name,
			Type:  enums.FundType(payload.Type),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fund)
	}
}

func FundGet(svc funds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "fundId"), "fundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fund, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fund)
	}
}

func FundList(svc funds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), funds.ListInput{
			Status: enums.FundStatus(r.URL.Query().Get("status")),
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func FundArchive(svc funds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}
		id, err := validators.PathUUID(chi.URLParam(r, "fundId"), "fundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fund, err := svc.Archive(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fund)
	}
}

func FundDelete(svc funds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}
		id, err := validators.PathUUID(chi.URLParam(r, "fundId"), "fundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
