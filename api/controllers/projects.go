package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/wekezahq/coopledger-backend/api/responses"
	"github.com/wekezahq/coopledger-backend/api/validators"
	"github.com/wekezahq/coopledger-backend/internal/projects"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
	"github.com/wekezahq/coopledger-backend/pkg/pagination"
)

type createProjectRequest struct {
	Title             string   `json:"title" validate:"required,min=1"`
	Category          string   `json:"category,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	InitialInvestment string   `json:"initial_investment,omitempty"`
	Budget            string   `json:"budget,omitempty"`
	ExpectedReturn    string   `json:"expected_return,omitempty"`
	TotalShares       int64    `json:"total_shares,omitempty" validate:"omitempty,min=0"`
}

func ProjectCreate(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}

		var payload createProjectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := projects.CreateInput{
			Actor:       actor,
			Title:       payload.Title,
			Category:    payload.Category,
			Tags:        payload.Tags,
			TotalShares: payload.TotalShares,
		}
		var err error
		if input.InitialInvestment, err = optionalAmount(payload.InitialInvestment); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Budget, err = optionalAmount(payload.Budget); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.ExpectedReturn, err = optionalAmount(payload.ExpectedReturn); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, project)
	}
}

func ProjectGet(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "projectId"), "projectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func ProjectList(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), projects.ListInput{
			Status: enums.ProjectStatus(r.URL.Query().Get("status")),
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

type updateProjectRequest struct {
	Status *string `json:"status,omitempty"`
	Health *string `json:"health,omitempty"`
}

func ProjectUpdate(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}
		id, err := validators.PathUUID(chi.URLParam(r, "projectId"), "projectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProjectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := projects.UpdateInput{Actor: actor, ID: id}
		if payload.Status != nil {
			status := enums.ProjectStatus(*payload.Status)
			input.Status = &status
		}
		if payload.Health != nil {
			health := enums.ProjectHealth(*payload.Health)
			input.Health = &health
		}

		project, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

type assignSharesRequest struct {
	MemberID string `json:"member_id" validate:"required,uuid"`
	Shares   int64  `json:"shares" validate:"min=0"`
}

func ProjectAssignShares(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
			return
		}
		projectID, err := validators.PathUUID(chi.URLParam(r, "projectId"), "projectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignSharesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, err := validators.PathUUID(payload.MemberID, "member_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		links, err := svc.AssignShares(r.Context(), projects.AssignSharesInput{
			Actor:     actor,
			ProjectID: projectID,
			MemberID:  memberID,
			Shares:    payload.Shares,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, links)
	}
}

func optionalAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return parseAmount(raw)
}
