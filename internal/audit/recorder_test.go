package audit

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/db/types"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
)

type stubAuditRepo struct {
	created []models.AuditLog
}

func (r *stubAuditRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.created = append(r.created, *entry)
	return nil
}

func (r *stubAuditRepo) ListByResource(ctx context.Context, resourceType, resourceID string) ([]models.AuditLog, error) {
	return nil, nil
}

func (r *stubAuditRepo) ListByActor(ctx context.Context, actorID string, limit int) ([]models.AuditLog, error) {
	return nil, nil
}

func TestRecordFillsActorAndDefaultsOutcome(t *testing.T) {
	t.Parallel()

	repo := &stubAuditRepo{}
	recorder, err := NewRecorder(repo)
	if err != nil {
		t.Fatalf("building recorder: %v", err)
	}

	record, err := recorder.Record(context.Background(), Entry{
		Actor:        identity.Actor{ID: "usr-1", Name: "Treasurer"},
		Action:       enums.AuditActionDepositCreated,
		ResourceType: "transaction",
		ResourceID:   "txn-1",
		Detail:       types.Document{"amount": "100.00"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ActorID != "usr-1" || record.ActorName != "Treasurer" {
		t.Fatalf("actor not stamped: %+v", record)
	}
	if record.Outcome != enums.AuditOutcomeSuccess {
		t.Fatalf("outcome should default to success, got %s", record.Outcome)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(repo.created))
	}
}

func TestRecordRejectsIncompleteEntries(t *testing.T) {
	t.Parallel()

	recorder, err := NewRecorder(&stubAuditRepo{})
	if err != nil {
		t.Fatalf("building recorder: %v", err)
	}
	actor := identity.Actor{ID: "usr-1"}

	cases := map[string]Entry{
		"missing actor":         {Action: enums.AuditActionDepositCreated, ResourceType: "transaction"},
		"invalid action":        {Actor: actor, Action: "made_tea", ResourceType: "transaction"},
		"missing resource type": {Actor: actor, Action: enums.AuditActionDepositCreated},
	}
	for name, entry := range cases {
		if _, err := recorder.Record(context.Background(), entry); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
