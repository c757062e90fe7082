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

type answerDocument struct {
	QuestionID string    `firestore:"question_id"`
	Value      any       `firestore:"value"`
	UpdatedAt  time.Time `firestore:"updated_at"`
}

type responseDocument struct {
	ID              int64            `firestore:"id"`
	QuestionnaireID int64            `firestore:"questionnaire_id"`
	Respondent      string           `firestore:"respondent"`
	Status          string           `firestore:"status"`
	Answers         []answerDocument `firestore:"answers"`
	Score           *int             `firestore:"score"`
	SubmittedAt     *time.Time       `firestore:"submitted_at"`
	CreatedAt       time.Time        `firestore:"created_at"`
	UpdatedAt       time.Time        `firestore:"updated_at"`
}

func toResponseDocument(resp *model.QuestionnaireResponse) *responseDocument {
	doc := &responseDocument{
		ID:              resp.ID,
		QuestionnaireID: resp.QuestionnaireID,
		Respondent:      resp.Respondent,
		Status:          resp.Status.String(),
		Score:           resp.Score,
		SubmittedAt:     resp.SubmittedAt,
		CreatedAt:       resp.CreatedAt,
		UpdatedAt:       resp.UpdatedAt,
	}

	for _, a := range resp.Answers {
		doc.Answers = append(doc.Answers, answerDocument{
			QuestionID: a.QuestionID.String(),
			Value:      a.Value,
			UpdatedAt:  a.UpdatedAt,
		})
	}

	return doc
}

func (d *responseDocument) toModel() *model.QuestionnaireResponse {
	resp := &model.QuestionnaireResponse{
		ID:              d.ID,
		QuestionnaireID: d.QuestionnaireID,
		Respondent:      d.Respondent,
		Status:          types.ResponseStatus(d.Status),
		Score:           d.Score,
		SubmittedAt:     d.SubmittedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}

	for _, ad := range d.Answers {
		resp.Answers = append(resp.Answers, model.Answer{
			QuestionID: types.QuestionID(ad.QuestionID),
			Value:      ad.Value,
			UpdatedAt:  ad.UpdatedAt,
		})
	}

	return resp
}

type responseRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newResponseRepository(client *firestore.Client) *responseRepository {
	return &responseRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *responseRepository) responsesCollection() string {
	return prefixed(r.collectionPrefix, "responses")
}

func (r *responseRepository) countersCollection() string {
	return prefixed(r.collectionPrefix, "counters")
}

func (r *responseRepository) Create(ctx context.Context, resp *model.QuestionnaireResponse) (*model.QuestionnaireResponse, error) {
	id, err := getNextID(ctx, r.client, r.countersCollection(), "response_counter")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := toResponseDocument(resp)
	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now

	docRef := r.client.Collection(r.responsesCollection()).Doc(fmt.Sprintf("%d", id))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create response")
	}

	return doc.toModel(), nil
}

func (r *responseRepository) Get(ctx context.Context, id int64) (*model.QuestionnaireResponse, error) {
	docRef := r.client.Collection(r.responsesCollection()).Doc(fmt.Sprintf("%d", id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "response not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get response", goerr.V("id", id))
	}

	var respDoc responseDocument
	if err := doc.DataTo(&respDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal response", goerr.V("id", id))
	}

	return respDoc.toModel(), nil
}

func (r *responseRepository) ListByQuestionnaire(ctx context.Context, questionnaireID int64) ([]*model.QuestionnaireResponse, error) {
	iter := r.client.Collection(r.responsesCollection()).
		Where("questionnaire_id", "==", questionnaireID).
		Documents(ctx)
	defer iter.Stop()

	var responses []*model.QuestionnaireResponse
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate responses", goerr.V("questionnaireID", questionnaireID))
		}

		var respDoc responseDocument
		if err := doc.DataTo(&respDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal response")
		}

		responses = append(responses, respDoc.toModel())
	}

	return responses, nil
}

func (r *responseRepository) Update(ctx context.Context, resp *model.QuestionnaireResponse) (*model.QuestionnaireResponse, error) {
	docRef := r.client.Collection(r.responsesCollection()).Doc(fmt.Sprintf("%d", resp.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "response not found", goerr.V("id", resp.ID))
		}
		return nil, goerr.Wrap(err, "failed to get response", goerr.V("id", resp.ID))
	}

	var existing responseDocument
	if err := doc.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal response", goerr.V("id", resp.ID))
	}

	updated := toResponseDocument(resp)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update response", goerr.V("id", resp.ID))
	}

	return updated.toModel(), nil
}

func (r *responseRepository) DeleteByQuestionnaire(ctx context.Context, questionnaireID int64) error {
	iter := r.client.Collection(r.responsesCollection()).
		Where("questionnaire_id", "==", questionnaireID).
		Documents(ctx)
	defer iter.Stop()

	bulkWriter := r.client.BulkWriter(ctx)

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate responses for deletion", goerr.V("questionnaireID", questionnaireID))
		}

		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to delete response", goerr.V("questionnaireID", questionnaireID))
		}
	}

	bulkWriter.End()

	return nil
}
