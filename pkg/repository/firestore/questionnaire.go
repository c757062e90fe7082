package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type questionOptionDocument struct {
	ID    string `firestore:"id"`
	Label string `firestore:"label"`
	Risky bool   `firestore:"risky"`
}

type questionDocument struct {
	ID       string                   `firestore:"id"`
	Text     string                   `firestore:"text"`
	Type     string                   `firestore:"type"`
	Required bool                     `firestore:"required"`
	Weight   int                      `firestore:"weight"`
	Options  []questionOptionDocument `firestore:"options"`
}

type questionnaireDocument struct {
	ID          int64              `firestore:"id"`
	Title       string             `firestore:"title"`
	Description string             `firestore:"description"`
	Status      string             `firestore:"status"`
	Questions   []questionDocument `firestore:"questions"`
	CreatedAt   time.Time          `firestore:"created_at"`
	UpdatedAt   time.Time          `firestore:"updated_at"`
}

func toQuestionnaireDocument(q *model.Questionnaire) *questionnaireDocument {
	doc := &questionnaireDocument{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Status:      q.Status.String(),
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}

	for _, question := range q.Questions {
		qd := questionDocument{
			ID:       question.ID.String(),
			Text:     question.Text,
			Type:     question.Type.String(),
			Required: question.Required,
			Weight:   question.Weight,
		}
		for _, opt := range question.Options {
			qd.Options = append(qd.Options, questionOptionDocument{
				ID:    opt.ID,
				Label: opt.Label,
				Risky: opt.Risky,
			})
		}
		doc.Questions = append(doc.Questions, qd)
	}

	return doc
}

func (d *questionnaireDocument) toModel() *model.Questionnaire {
	q := &model.Questionnaire{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Status:      types.QuestionnaireStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}

	for _, qd := range d.Questions {
		question := model.Question{
			ID:       types.QuestionID(qd.ID),
			Text:     qd.Text,
			Type:     types.QuestionType(qd.Type),
			Required: qd.Required,
			Weight:   qd.Weight,
		}
		for _, od := range qd.Options {
			question.Options = append(question.Options, model.QuestionOption{
				ID:    od.ID,
				Label: od.Label,
				Risky: od.Risky,
			})
		}
		q.Questions = append(q.Questions, question)
	}

	return q
}

type questionnaireRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newQuestionnaireRepository(client *firestore.Client) *questionnaireRepository {
	return &questionnaireRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *questionnaireRepository) questionnairesCollection() string {
	return prefixed(r.collectionPrefix, "questionnaires")
}

func (r *questionnaireRepository) countersCollection() string {
	return prefixed(r.collectionPrefix, "counters")
}

func (r *questionnaireRepository) Create(ctx context.Context, q *model.Questionnaire) (*model.Questionnaire, error) {
	id, err := getNextID(ctx, r.client, r.countersCollection(), "questionnaire_counter")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := toQuestionnaireDocument(q)
	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now

	docRef := r.client.Collection(r.questionnairesCollection()).Doc(fmt.Sprintf("%d", id))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create questionnaire")
	}

	return doc.toModel(), nil
}

func (r *questionnaireRepository) Get(ctx context.Context, id int64) (*model.Questionnaire, error) {
	docRef := r.client.Collection(r.questionnairesCollection()).Doc(fmt.Sprintf("%d", id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "questionnaire not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get questionnaire", goerr.V("id", id))
	}

	var qDoc questionnaireDocument
	if err := doc.DataTo(&qDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal questionnaire", goerr.V("id", id))
	}

	return qDoc.toModel(), nil
}

func (r *questionnaireRepository) List(ctx context.Context) ([]*model.Questionnaire, error) {
	iter := r.client.Collection(r.questionnairesCollection()).Documents(ctx)
	defer iter.Stop()

	questionnaires := make([]*model.Questionnaire, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate questionnaires")
		}

		var qDoc questionnaireDocument
		if err := doc.DataTo(&qDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal questionnaire")
		}

		questionnaires = append(questionnaires, qDoc.toModel())
	}

	return questionnaires, nil
}

func (r *questionnaireRepository) Update(ctx context.Context, q *model.Questionnaire) (*model.Questionnaire, error) {
	docRef := r.client.Collection(r.questionnairesCollection()).Doc(fmt.Sprintf("%d", q.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "questionnaire not found", goerr.V("id", q.ID))
		}
		return nil, goerr.Wrap(err, "failed to get questionnaire", goerr.V("id", q.ID))
	}

	var existing questionnaireDocument
	if err := doc.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal questionnaire", goerr.V("id", q.ID))
	}

	updated := toQuestionnaireDocument(q)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update questionnaire", goerr.V("id", q.ID))
	}

	return updated.toModel(), nil
}

func (r *questionnaireRepository) Delete(ctx context.Context, id int64) error {
	docRef := r.client.Collection(r.questionnairesCollection()).Doc(fmt.Sprintf("%d", id))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "questionnaire not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get questionnaire", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete questionnaire", goerr.V("id", id))
	}

	return nil
}
