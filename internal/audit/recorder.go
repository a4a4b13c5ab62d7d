package audit

import (
	"context"
	"fmt"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/db/types"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
)

// Entry is one action worth recording: who did what to which resource,
// with structured before/after detail.
type Entry struct {
	Actor        identity.Actor
	Action       enums.AuditAction
	ResourceType string
	ResourceID   string
	Detail       types.Document
	Outcome      enums.AuditOutcome
}

// Recorder appends immutable audit records. It never mutates business data.
type Recorder interface {
	Record(ctx context.Context, entry Entry) (*models.AuditLog, error)
}

type recorder struct {
	repo Repository
}

// NewRecorder wires an audit recorder with the provided repository.
func NewRecorder(repo Repository) (Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &recorder{repo: repo}, nil
}

func (r *recorder) Record(ctx context.Context, entry Entry) (*models.AuditLog, error) {
	if !entry.Actor.Valid() {
		return nil, fmt.Errorf("audit actor is required")
	}
	if !entry.Action.IsValid() {
		return nil, fmt.Errorf("invalid audit action %q", entry.Action)
	}
	if entry.ResourceType == "" {
		return nil, fmt.Errorf("audit resource type is required")
	}
	outcome := entry.Outcome
	if outcome == "" {
		outcome = enums.AuditOutcomeSuccess
	}

	record := &models.AuditLog{
		ActorID:      entry.Actor.ID,
		ActorName:    entry.Actor.Name,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Detail:       entry.Detail,
		Outcome:      outcome,
	}
	if err := r.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}
