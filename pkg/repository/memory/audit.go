package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
)

type auditRepository struct {
	mu      sync.RWMutex
	entries []*model.AuditEntry
}

func newAuditRepository() *auditRepository {
	return &auditRepository{
		entries: make([]*model.AuditEntry, 0),
	}
}

// copyAuditEntry creates a deep copy of an audit entry
func copyAuditEntry(e *model.AuditEntry) *model.AuditEntry {
	copied := *e
	if e.Details != nil {
		copied.Details = make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			copied.Details[k] = v
		}
	}
	return &copied
}

func (r *auditRepository) Put(ctx context.Context, entry *model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := copyAuditEntry(entry)
	if added.ID == "" {
		added.ID = model.NewAuditID()
	}
	if added.CreatedAt.IsZero() {
		added.CreatedAt = time.Now().UTC()
	}

	r.entries = append(r.entries, added)
	return nil
}

func (r *auditRepository) List(ctx context.Context, opts ...interfaces.ListAuditOption) ([]*model.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := interfaces.BuildListAuditConfig(opts...)

	matched := make([]*model.AuditEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if entityType := cfg.EntityType(); entityType != nil && e.EntityType != *entityType {
			continue
		}
		if entityID := cfg.EntityID(); entityID != nil && e.EntityID != *entityID {
			continue
		}
		if actor := cfg.Actor(); actor != nil && e.Actor != *actor {
			continue
		}
		if since := cfg.Since(); since != nil && e.CreatedAt.Before(*since) {
			continue
		}
		if until := cfg.Until(); until != nil && !e.CreatedAt.Before(*until) {
			continue
		}
		matched = append(matched, copyAuditEntry(e))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	offset := cfg.Offset()
	if offset >= len(matched) {
		return []*model.AuditEntry{}, nil
	}

	end := offset + cfg.Limit()
	if end > len(matched) {
		end = len(matched)
	}

	return matched[offset:end], nil
}
