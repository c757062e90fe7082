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

type stepDocument struct {
	Name          string     `firestore:"name"`
	AssigneeEmail string     `firestore:"assignee_email"`
	Status        string     `firestore:"status"`
	DueAt         *time.Time `firestore:"due_at"`
	EscalateAfter int64      `firestore:"escalate_after"` // nanoseconds
	EscalatedAt   *time.Time `firestore:"escalated_at"`
	CompletedAt   *time.Time `firestore:"completed_at"`
	Comment       string     `firestore:"comment"`
}

type workflowDocument struct {
	ID         int64          `firestore:"id"`
	Title      string         `firestore:"title"`
	Kind       string         `firestore:"kind"`
	TargetType string         `firestore:"target_type"`
	TargetID   int64          `firestore:"target_id"`
	Status     string         `firestore:"status"`
	Steps      []stepDocument `firestore:"steps"`
	CreatedAt  time.Time      `firestore:"created_at"`
	UpdatedAt  time.Time      `firestore:"updated_at"`
}

func toWorkflowDocument(w *model.Workflow) *workflowDocument {
	doc := &workflowDocument{
		ID:         w.ID,
		Title:      w.Title,
		Kind:       w.Kind,
		TargetType: w.TargetType,
		TargetID:   w.TargetID,
		Status:     w.Status.String(),
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}

	for _, s := range w.Steps {
		doc.Steps = append(doc.Steps, stepDocument{
			Name:          s.Name,
			AssigneeEmail: s.AssigneeEmail,
			Status:        s.Status.String(),
			DueAt:         s.DueAt,
			EscalateAfter: int64(s.EscalateAfter),
			EscalatedAt:   s.EscalatedAt,
			CompletedAt:   s.CompletedAt,
			Comment:       s.Comment,
		})
	}

	return doc
}

func (d *workflowDocument) toModel() *model.Workflow {
	w := &model.Workflow{
		ID:         d.ID,
		Title:      d.Title,
		Kind:       d.Kind,
		TargetType: d.TargetType,
		TargetID:   d.TargetID,
		Status:     types.WorkflowStatus(d.Status),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}

	for _, sd := range d.Steps {
		w.Steps = append(w.Steps, model.Step{
			Name:          sd.Name,
			AssigneeEmail: sd.AssigneeEmail,
			Status:        types.StepStatus(sd.Status),
			DueAt:         sd.DueAt,
			EscalateAfter: time.Duration(sd.EscalateAfter),
			EscalatedAt:   sd.EscalatedAt,
			CompletedAt:   sd.CompletedAt,
			Comment:       sd.Comment,
		})
	}

	return w
}

type workflowRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newWorkflowRepository(client *firestore.Client) *workflowRepository {
	return &workflowRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *workflowRepository) workflowsCollection() string {
	return prefixed(r.collectionPrefix, "workflows")
}

func (r *workflowRepository) countersCollection() string {
	return prefixed(r.collectionPrefix, "counters")
}

func (r *workflowRepository) Create(ctx context.Context, w *model.Workflow) (*model.Workflow, error) {
	id, err := getNextID(ctx, r.client, r.countersCollection(), "workflow_counter")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := toWorkflowDocument(w)
	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now

	docRef := r.client.Collection(r.workflowsCollection()).Doc(fmt.Sprintf("%d", id))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create workflow")
	}

	return doc.toModel(), nil
}

func (r *workflowRepository) Get(ctx context.Context, id int64) (*model.Workflow, error) {
	docRef := r.client.Collection(r.workflowsCollection()).Doc(fmt.Sprintf("%d", id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "workflow not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get workflow", goerr.V("id", id))
	}

	var wDoc workflowDocument
	if err := doc.DataTo(&wDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal workflow", goerr.V("id", id))
	}

	return wDoc.toModel(), nil
}

func (r *workflowRepository) List(ctx context.Context, opts ...interfaces.ListWorkflowOption) ([]*model.Workflow, error) {
	cfg := interfaces.BuildListWorkflowConfig(opts...)

	query := r.client.Collection(r.workflowsCollection()).Query
	if s := cfg.Status(); s != nil {
		query = query.Where("status", "==", s.String())
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	workflows := make([]*model.Workflow, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate workflows")
		}

		var wDoc workflowDocument
		if err := doc.DataTo(&wDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal workflow")
		}

		workflows = append(workflows, wDoc.toModel())
	}

	return workflows, nil
}

func (r *workflowRepository) Update(ctx context.Context, w *model.Workflow) (*model.Workflow, error) {
	docRef := r.client.Collection(r.workflowsCollection()).Doc(fmt.Sprintf("%d", w.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "workflow not found", goerr.V("id", w.ID))
		}
		return nil, goerr.Wrap(err, "failed to get workflow", goerr.V("id", w.ID))
	}

	var existing workflowDocument
	if err := doc.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal workflow", goerr.V("id", w.ID))
	}

	updated := toWorkflowDocument(w)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update workflow", goerr.V("id", w.ID))
	}

	return updated.toModel(), nil
}

func (r *workflowRepository) Delete(ctx context.Context, id int64) error {
	docRef := r.client.Collection(r.workflowsCollection()).Doc(fmt.Sprintf("%d", id))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "workflow not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get workflow", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete workflow", goerr.V("id", id))
	}

	return nil
}
