package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DeletedRecord snapshots a transaction at the moment of deletion so the
// reversal stays recoverable for audit and forensics.
type DeletedRecord struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OriginalID uuid.UUID       `gorm:"column:original_id;type:uuid;not null;index"`
	Collection string          `gorm:"column:collection;not null"`
	Snapshot   json.RawMessage `gorm:"column:snapshot;type:jsonb;not null"`
	Reason     string          `gorm:"column:reason;not null"`
	DeletedBy  string          `gorm:"column:deleted_by;not null"`
	DeletedAt  time.Time       `gorm:"column:deleted_at;autoCreateTime"`
}
