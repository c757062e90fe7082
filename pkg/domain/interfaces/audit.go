package interfaces

import (
	"context"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
)

// AuditRepository defines the interface for the audit trail.
// Entries are immutable once written.
type AuditRepository interface {
	// Put stores an audit entry
	Put(ctx context.Context, entry *model.AuditEntry) error

	// List retrieves audit entries, newest first, with optional filtering
	List(ctx context.Context, opts ...ListAuditOption) ([]*model.AuditEntry, error)
}
