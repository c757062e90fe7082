package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/auth"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/utils/async"
)

// AuditUseCase exposes the audit trail
type AuditUseCase struct {
	repo interfaces.Repository
}

func NewAuditUseCase(repo interfaces.Repository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// AuditFilter narrows an audit trail query
type AuditFilter struct {
	EntityType string
	EntityID   string
	Actor      string
	Since      *time.Time
	Until      *time.Time
	Limit      int
	Offset     int
}

// ListEntries returns audit entries matching the filter, newest first
func (uc *AuditUseCase) ListEntries(ctx context.Context, filter AuditFilter) ([]*model.AuditEntry, error) {
	var opts []interfaces.ListAuditOption
	if filter.EntityType != "" {
		opts = append(opts, interfaces.WithAuditEntity(filter.EntityType, filter.EntityID))
	}
	if filter.Actor != "" {
		opts = append(opts, interfaces.WithAuditActor(filter.Actor))
	}
	if filter.Since != nil {
		opts = append(opts, interfaces.WithAuditSince(*filter.Since))
	}
	if filter.Until != nil {
		opts = append(opts, interfaces.WithAuditUntil(*filter.Until))
	}
	if filter.Limit > 0 || filter.Offset > 0 {
		opts = append(opts, interfaces.WithAuditPage(filter.Limit, filter.Offset))
	}

	entries, err := uc.repo.Audit().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit entries")
	}

	return entries, nil
}

// recordAudit writes an audit entry in the background after a successful
// mutation. The actor is captured from the context before dispatching
// because the handler runs on a detached context. Audit failures never
// fail the mutation that triggered them.
func recordAudit(ctx context.Context, repo interfaces.Repository, action types.AuditAction, entityType, entityID string, details map[string]any) {
	entry := &model.AuditEntry{
		Actor:      auth.ActorFromContext(ctx),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := repo.Audit().Put(ctx, entry); err != nil {
			return goerr.Wrap(err, "failed to write audit entry",
				goerr.V("action", action),
				goerr.V("entity_type", entityType),
				goerr.V("entity_id", entityID))
		}
		return nil
	})
}
