package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

type auditDocument struct {
	ID         string         `firestore:"id"`
	Actor      string         `firestore:"actor"`
	Action     string         `firestore:"action"`
	EntityType string         `firestore:"entity_type"`
	EntityID   string         `firestore:"entity_id"`
	Details    map[string]any `firestore:"details"`
	CreatedAt  time.Time      `firestore:"created_at"`
}

func toAuditDocument(e *model.AuditEntry) *auditDocument {
	return &auditDocument{
		ID:         string(e.ID),
		Actor:      e.Actor,
		Action:     e.Action.String(),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}

func (d *auditDocument) toModel() *model.AuditEntry {
	return &model.AuditEntry{
		ID:         model.AuditID(d.ID),
		Actor:      d.Actor,
		Action:     types.AuditAction(d.Action),
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		Details:    d.Details,
		CreatedAt:  d.CreatedAt,
	}
}

type auditRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAuditRepository(client *firestore.Client) *auditRepository {
	return &auditRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *auditRepository) auditCollection() string {
	return prefixed(r.collectionPrefix, "audit_entries")
}

func (r *auditRepository) Put(ctx context.Context, entry *model.AuditEntry) error {
	added := toAuditDocument(entry)
	if added.ID == "" {
		added.ID = string(model.NewAuditID())
	}
	if added.CreatedAt.IsZero() {
		added.CreatedAt = time.Now().UTC()
	}

	docRef := r.client.Collection(r.auditCollection()).Doc(added.ID)
	if _, err := docRef.Set(ctx, added); err != nil {
		return goerr.Wrap(err, "failed to put audit entry")
	}

	return nil
}

func (r *auditRepository) List(ctx context.Context, opts ...interfaces.ListAuditOption) ([]*model.AuditEntry, error) {
	cfg := interfaces.BuildListAuditConfig(opts...)

	query := r.client.Collection(r.auditCollection()).Query
	if entityType := cfg.EntityType(); entityType != nil {
		query = query.Where("entity_type", "==", *entityType)
	}
	if entityID := cfg.EntityID(); entityID != nil {
		query = query.Where("entity_id", "==", *entityID)
	}
	if actor := cfg.Actor(); actor != nil {
		query = query.Where("actor", "==", *actor)
	}
	if since := cfg.Since(); since != nil {
		query = query.Where("created_at", ">=", *since)
	}
	if until := cfg.Until(); until != nil {
		query = query.Where("created_at", "<", *until)
	}

	query = query.
		OrderBy("created_at", firestore.Desc).
		Offset(cfg.Offset()).
		Limit(cfg.Limit())

	iter := query.Documents(ctx)
	defer iter.Stop()

	entries := make([]*model.AuditEntry, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate audit entries")
		}

		var auditDoc auditDocument
		if err := doc.DataTo(&auditDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal audit entry")
		}

		entries = append(entries, auditDoc.toModel())
	}

	return entries, nil
}
