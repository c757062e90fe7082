package interfaces

import (
	"context"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
)

// WorkflowRepository defines the interface for Workflow data access
type WorkflowRepository interface {
	// Create creates a new workflow with auto-generated ID
	Create(ctx context.Context, w *model.Workflow) (*model.Workflow, error)

	// Get retrieves a workflow by ID
	Get(ctx context.Context, id int64) (*model.Workflow, error)

	// List retrieves workflows with optional filtering
	List(ctx context.Context, opts ...ListWorkflowOption) ([]*model.Workflow, error)

	// Update updates an existing workflow
	Update(ctx context.Context, w *model.Workflow) (*model.Workflow, error)

	// Delete deletes a workflow by ID
	Delete(ctx context.Context, id int64) error
}
