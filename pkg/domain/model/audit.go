package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// AuditID is a UUID-based identifier for AuditEntry
type AuditID string

// NewAuditID generates a time-ordered UUID v7 AuditID
func NewAuditID() AuditID {
	return AuditID(uuid.Must(uuid.NewV7()).String())
}

// SystemActor is recorded when a mutation was not triggered by a user
const SystemActor = "system"

// AuditEntry records a successful mutation for the audit trail
type AuditEntry struct {
	ID         AuditID
	Actor      string // email address or SystemActor
	Action     types.AuditAction
	EntityType string // "risk", "control", "questionnaire", "workflow", "document"
	EntityID   string
	Details    map[string]any
	CreatedAt  time.Time
}
