package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type controlDocument struct {
	ID            int64     `firestore:"id"`
	Name          string    `firestore:"name"`
	Description   string    `firestore:"description"`
	Type          string    `firestore:"type"`
	Status        string    `firestore:"status"`
	Effectiveness string    `firestore:"effectiveness"`
	OwnerEmail    string    `firestore:"owner_email"`
	Reference     string    `firestore:"reference"`
	CreatedAt     time.Time `firestore:"created_at"`
	UpdatedAt     time.Time `firestore:"updated_at"`
}

func toControlDocument(c *model.Control) *controlDocument {
	return &controlDocument{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		Type:          c.Type.String(),
		Status:        c.Status.String(),
		Effectiveness: c.Effectiveness.String(),
		OwnerEmail:    c.OwnerEmail,
		Reference:     c.Reference,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (d *controlDocument) toModel() *model.Control {
	return &model.Control{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Type:          types.ControlType(d.Type),
		Status:        types.ControlStatus(d.Status),
		Effectiveness: types.Effectiveness(d.Effectiveness),
		OwnerEmail:    d.OwnerEmail,
		Reference:     d.Reference,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type controlRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newControlRepository(client *firestore.Client) *controlRepository {
	return &controlRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *controlRepository) controlsCollection() string {
	return prefixed(r.collectionPrefix, "controls")
}

func (r *controlRepository) countersCollection() string {
	return prefixed(r.collectionPrefix, "counters")
}

func (r *controlRepository) Create(ctx context.Context, control *model.Control) (*model.Control, error) {
	id, err := getNextID(ctx, r.client, r.countersCollection(), "control_counter")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := toControlDocument(control)
	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now

	docRef := r.client.Collection(r.controlsCollection()).Doc(fmt.Sprintf("%d", id))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create control")
	}

	return doc.toModel(), nil
}

func (r *controlRepository) Get(ctx context.Context, id int64) (*model.Control, error) {
	docRef := r.client.Collection(r.controlsCollection()).Doc(fmt.Sprintf("%d", id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "control not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get control", goerr.V("id", id))
	}

	var controlDoc controlDocument
	if err := doc.DataTo(&controlDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal control", goerr.V("id", id))
	}

	return controlDoc.toModel(), nil
}

func (r *controlRepository) List(ctx context.Context, opts ...interfaces.ListControlOption) ([]*model.Control, error) {
	cfg := interfaces.BuildListControlConfig(opts...)

	query := r.client.Collection(r.controlsCollection()).Query
	if t := cfg.ControlType(); t != nil {
		query = query.Where("type", "==", t.String())
	}
	if s := cfg.Status(); s != nil {
		query = query.Where("status", "==", s.String())
	}
	if eff := cfg.Effectiveness(); eff != nil {
		query = query.Where("effectiveness", "==", eff.String())
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	controls := make([]*model.Control, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate controls")
		}

		var controlDoc controlDocument
		if err := doc.DataTo(&controlDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal control")
		}

		controls = append(controls, controlDoc.toModel())
	}

	return controls, nil
}

func (r *controlRepository) Update(ctx context.Context, control *model.Control) (*model.Control, error) {
	docRef := r.client.Collection(r.controlsCollection()).Doc(fmt.Sprintf("%d", control.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "control not found", goerr.V("id", control.ID))
		}
		return nil, goerr.Wrap(err, "failed to get control", goerr.V("id", control.ID))
	}

	var existing controlDocument
	if err := doc.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal control", goerr.V("id", control.ID))
	}

	updated := toControlDocument(control)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update control", goerr.V("id", control.ID))
	}

	return updated.toModel(), nil
}

func (r *controlRepository) Delete(ctx context.Context, id int64) error {
	docRef := r.client.Collection(r.controlsCollection()).Doc(fmt.Sprintf("%d", id))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "control not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get control", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete control", goerr.V("id", id))
	}

	return nil
}
