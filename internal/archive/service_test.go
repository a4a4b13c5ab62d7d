package archive

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
)

type stubArchiveRepo struct {
	created []models.DeletedRecord
}

func (r *stubArchiveRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubArchiveRepo) Create(ctx context.Context, record *models.DeletedRecord) error {
	r.created = append(r.created, *record)
	return nil
}

func (r *stubArchiveRepo) FindByOriginalID(ctx context.Context, originalID uuid.UUID) ([]models.DeletedRecord, error) {
	var out []models.DeletedRecord
	for _, record := range r.created {
		if record.OriginalID == originalID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *stubArchiveRepo) List(ctx context.Context, collection string, limit int) ([]models.DeletedRecord, error) {
	return r.created, nil
}

func TestArchiveStoresFullSnapshot(t *testing.T) {
	t.Parallel()

	repo := &stubArchiveRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	originalID := uuid.New()
	record, err := svc.Archive(context.Background(), nil, Input{
		OriginalID: originalID,
		Collection: "transactions",
		Snapshot:   map[string]string{"amount": "150.00", "type": "deposit"},
		Actor:      identity.Actor{ID: "usr-1", Name: "Treasurer"},
		Reason:     "duplicate entry",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var snapshot map[string]string
	if err := json.Unmarshal(record.Snapshot, &snapshot); err != nil {
		t.Fatalf("snapshot must be valid json: %v", err)
	}
	if snapshot["amount"] != "150.00" {
		t.Fatalf("snapshot content lost: %v", snapshot)
	}
	if record.DeletedBy != "usr-1" || record.Reason != "duplicate entry" {
		t.Fatalf("provenance not stamped: %+v", record)
	}

	history, err := svc.History(context.Background(), originalID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(history))
	}
}

func TestArchiveValidatesInput(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubArchiveRepo{})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	actor := identity.Actor{ID: "usr-1"}
	valid := Input{
		OriginalID: uuid.New(),
		Collection: "transactions",
		Snapshot:   map[string]string{},
		Actor:      actor,
	}

	cases := map[string]func(Input) Input{
		"missing original id": func(in Input) Input { in.OriginalID = uuid.Nil; return in },
		"missing collection":  func(in Input) Input { in.Collection = ""; return in },
		"missing actor":       func(in Input) Input { in.Actor = identity.Actor{}; return in },
		"missing snapshot":    func(in Input) Input { in.Snapshot = nil; return in },
	}
	for name, mutate := range cases {
		if _, err := svc.Archive(context.Background(), nil, mutate(valid)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
