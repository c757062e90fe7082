package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type workflowRepository struct {
	mu        sync.RWMutex
	workflows map[int64]*model.Workflow
	nextID    int64
}

func newWorkflowRepository() *workflowRepository {
	return &workflowRepository{
		workflows: make(map[int64]*model.Workflow),
		nextID:    1,
	}
}

// copyStep creates a deep copy of a workflow step
func copyStep(s model.Step) model.Step {
	copied := model.Step{
		Name:          s.Name,
		AssigneeEmail: s.AssigneeEmail,
		Status:        s.Status,
		EscalateAfter: s.EscalateAfter,
		Comment:       s.Comment,
	}
	if s.DueAt != nil {
		dueAt := *s.DueAt
		copied.DueAt = &dueAt
	}
	if s.EscalatedAt != nil {
		escalatedAt := *s.EscalatedAt
		copied.EscalatedAt = &escalatedAt
	}
	if s.CompletedAt != nil {
		completedAt := *s.CompletedAt
		copied.CompletedAt = &completedAt
	}
	return copied
}

// copyWorkflow creates a deep copy of a workflow
func copyWorkflow(w *model.Workflow) *model.Workflow {
	copied := &model.Workflow{
		ID:         w.ID,
		Title:      w.Title,
		Kind:       w.Kind,
		TargetType: w.TargetType,
		TargetID:   w.TargetID,
		Status:     w.Status,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}

	if w.Steps != nil {
		copied.Steps = make([]model.Step, len(w.Steps))
		for i, s := range w.Steps {
			copied.Steps[i] = copyStep(s)
		}
	}

	return copied
}

func (r *workflowRepository) Create(ctx context.Context, w *model.Workflow) (*model.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyWorkflow(w)
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.workflows[created.ID] = created
	return copyWorkflow(created), nil
}

func (r *workflowRepository) Get(ctx context.Context, id int64) (*model.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, exists := r.workflows[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "workflow not found", goerr.V("id", id))
	}

	return copyWorkflow(w), nil
}

func (r *workflowRepository) List(ctx context.Context, opts ...interfaces.ListWorkflowOption) ([]*model.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := interfaces.BuildListWorkflowConfig(opts...)

	workflows := make([]*model.Workflow, 0, len(r.workflows))
	for _, w := range r.workflows {
		if status := cfg.Status(); status != nil && w.Status != *status {
			continue
		}
		workflows = append(workflows, copyWorkflow(w))
	}

	return workflows, nil
}

func (r *workflowRepository) Update(ctx context.Context, w *model.Workflow) (*model.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.workflows[w.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "workflow not found", goerr.V("id", w.ID))
	}

	updated := copyWorkflow(w)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.workflows[updated.ID] = updated
	return copyWorkflow(updated), nil
}

func (r *workflowRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workflows[id]; !exists {
		return goerr.Wrap(ErrNotFound, "workflow not found", goerr.V("id", id))
	}

	delete(r.workflows, id)
	return nil
}
