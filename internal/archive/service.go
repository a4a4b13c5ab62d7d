package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
)

// Input describes one snapshot to archive before its source row is removed.
type Input struct {
	OriginalID uuid.UUID
	Collection string
	Snapshot   any
	Actor      identity.Actor
	Reason     string
}

// Service stores full snapshots of deleted records. Archive runs inside
// the caller's transaction so a failed snapshot aborts the deletion.
type Service interface {
	Archive(ctx context.Context, tx *gorm.DB, input Input) (*models.DeletedRecord, error)
	History(ctx context.Context, originalID uuid.UUID) ([]models.DeletedRecord, error)
}

type service struct {
	repo Repository
}

// NewService wires an archive service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("archive repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Archive(ctx context.Context, tx *gorm.DB, input Input) (*models.DeletedRecord, error) {
	if input.OriginalID == uuid.Nil {
		return nil, fmt.Errorf("original id is required")
	}
	if input.Collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	if !input.Actor.Valid() {
		return nil, fmt.Errorf("actor is required")
	}
	if input.Snapshot == nil {
		return nil, fmt.Errorf("snapshot is required")
	}

	raw, err := json.Marshal(input.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	record := &models.DeletedRecord{
		OriginalID: input.OriginalID,
		Collection: input.Collection,
		Snapshot:   raw,
		Reason:     input.Reason,
		DeletedBy:  input.Actor.ID,
	}

	repo := s.repo.WithTx(tx)
	if err := repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) History(ctx context.Context, originalID uuid.UUID) ([]models.DeletedRecord, error) {
	if originalID == uuid.Nil {
		return nil, fmt.Errorf("original id is required")
	}
	return s.repo.FindByOriginalID(ctx, originalID)
}
