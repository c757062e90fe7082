package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type controlRepository struct {
	mu       sync.RWMutex
	controls map[int64]*model.Control
	nextID   int64
}

func newControlRepository() *controlRepository {
	return &controlRepository{
		controls: make(map[int64]*model.Control),
		nextID:   1,
	}
}

// copyControl creates a deep copy of a control
func copyControl(c *model.Control) *model.Control {
	return &model.Control{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		Type:          c.Type,
		Status:        c.Status,
		Effectiveness: c.Effectiveness,
		OwnerEmail:    c.OwnerEmail,
		Reference:     c.Reference,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (r *controlRepository) Create(ctx context.Context, control *model.Control) (*model.Control, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyControl(control)
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.controls[created.ID] = created
	return copyControl(created), nil
}

func (r *controlRepository) Get(ctx context.Context, id int64) (*model.Control, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	control, exists := r.controls[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "control not found", goerr.V("id", id))
	}

	return copyControl(control), nil
}

func (r *controlRepository) List(ctx context.Context, opts ...interfaces.ListControlOption) ([]*model.Control, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := interfaces.BuildListControlConfig(opts...)

	controls := make([]*model.Control, 0, len(r.controls))
	for _, control := range r.controls {
		if t := cfg.ControlType(); t != nil && control.Type != *t {
			continue
		}
		if status := cfg.Status(); status != nil && control.Status.Normalize() != *status {
			continue
		}
		if eff := cfg.Effectiveness(); eff != nil && control.Effectiveness.Normalize() != *eff {
			continue
		}
		controls = append(controls, copyControl(control))
	}

	return controls, nil
}

func (r *controlRepository) Update(ctx context.Context, control *model.Control) (*model.Control, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.controls[control.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "control not found", goerr.V("id", control.ID))
	}

	updated := copyControl(control)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.controls[updated.ID] = updated
	return copyControl(updated), nil
}

func (r *controlRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.controls[id]; !exists {
		return goerr.Wrap(ErrNotFound, "control not found", goerr.V("id", id))
	}

	delete(r.controls, id)
	return nil
}
