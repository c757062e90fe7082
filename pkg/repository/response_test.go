package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/repository/firestore"
	"github.com/jungkj/riscura-sub000/pkg/repository/memory"
)

func runResponseRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	seedQuestionnaire := func(t *testing.T, repo interfaces.Repository) *model.Questionnaire {
		t.Helper()
		q, err := repo.Questionnaire().Create(context.Background(), vendorQuestionnaire())
		if err != nil {
			t.Fatalf("failed to seed questionnaire: %v", err)
		}
		return q
	}

	t.Run("Create assigns ID and round-trips answers", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		q := seedQuestionnaire(t, repo)

		created, err := repo.QuestionnaireResponse().Create(ctx, &model.QuestionnaireResponse{
			QuestionnaireID: q.ID,
			Respondent:      "vendor@example.com",
			Status:          types.ResponseStatusInProgress,
			Answers: []model.Answer{
				{QuestionID: "data-encryption", Value: true},
				{QuestionID: "hosting-region", Value: "eu"},
				{QuestionID: "incident-count", Value: int64(2)},
			},
		})
		if err != nil {
			t.Fatalf("failed to create response: %v", err)
		}
		if created.ID != 1 {
			t.Errorf("expected ID=1, got %d", created.ID)
		}

		retrieved, err := repo.QuestionnaireResponse().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get response: %v", err)
		}
		if retrieved.Respondent != "vendor@example.com" {
			t.Errorf("expected respondent to round-trip, got %s", retrieved.Respondent)
		}
		if len(retrieved.Answers) != 3 {
			t.Fatalf("expected 3 answers, got %d", len(retrieved.Answers))
		}

		encrypted := retrieved.Answer("data-encryption")
		if encrypted == nil {
			t.Fatal("data-encryption answer missing")
		}
		if v, ok := encrypted.Value.(bool); !ok || !v {
			t.Errorf("expected bool true, got %T %v", encrypted.Value, encrypted.Value)
		}

		region := retrieved.Answer("hosting-region")
		if region == nil {
			t.Fatal("hosting-region answer missing")
		}
		if v, ok := region.Value.(string); !ok || v != "eu" {
			t.Errorf("expected string eu, got %T %v", region.Value, region.Value)
		}
	})

	t.Run("Get returns error for non-existent response", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.QuestionnaireResponse().Get(ctx, 9999)
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, firestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListByQuestionnaire returns only matching responses", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		q1 := seedQuestionnaire(t, repo)
		q2 := seedQuestionnaire(t, repo)

		for _, qid := range []int64{q1.ID, q1.ID, q2.ID} {
			if _, err := repo.QuestionnaireResponse().Create(ctx, &model.QuestionnaireResponse{
				QuestionnaireID: qid,
				Respondent:      "someone@example.com",
				Status:          types.ResponseStatusInProgress,
			}); err != nil {
				t.Fatalf("failed to create response: %v", err)
			}
		}

		responses, err := repo.QuestionnaireResponse().ListByQuestionnaire(ctx, q1.ID)
		if err != nil {
			t.Fatalf("failed to list responses: %v", err)
		}
		if len(responses) != 2 {
			t.Errorf("expected 2 responses for q1, got %d", len(responses))
		}
	})

	t.Run("Update records submit state and score", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		q := seedQuestionnaire(t, repo)
		created, err := repo.QuestionnaireResponse().Create(ctx, &model.QuestionnaireResponse{
			QuestionnaireID: q.ID,
			Respondent:      "vendor@example.com",
			Status:          types.ResponseStatusInProgress,
		})
		if err != nil {
			t.Fatalf("failed to create response: %v", err)
		}

		now := time.Now().UTC()
		score := 13
		created.Status = types.ResponseStatusSubmitted
		created.Score = &score
		created.SubmittedAt = &now

		updated, err := repo.QuestionnaireResponse().Update(ctx, created)
		if err != nil {
			t.Fatalf("failed to update response: %v", err)
		}

		if updated.Status != types.ResponseStatusSubmitted {
			t.Errorf("expected submitted, got %s", updated.Status)
		}
		if updated.Score == nil || *updated.Score != 13 {
			t.Errorf("expected score=13, got %v", updated.Score)
		}
		if updated.SubmittedAt == nil {
			t.Error("expected SubmittedAt to be set")
		}
	})

	t.Run("DeleteByQuestionnaire removes all responses", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		q := seedQuestionnaire(t, repo)
		for i := 0; i < 3; i++ {
			if _, err := repo.QuestionnaireResponse().Create(ctx, &model.QuestionnaireResponse{
				QuestionnaireID: q.ID,
				Respondent:      "someone@example.com",
				Status:          types.ResponseStatusInProgress,
			}); err != nil {
				t.Fatalf("failed to create response: %v", err)
			}
		}

		if err := repo.QuestionnaireResponse().DeleteByQuestionnaire(ctx, q.ID); err != nil {
			t.Fatalf("failed to delete responses: %v", err)
		}

		responses, err := repo.QuestionnaireResponse().ListByQuestionnaire(ctx, q.ID)
		if err != nil {
			t.Fatalf("failed to list responses: %v", err)
		}
		if len(responses) != 0 {
			t.Errorf("expected no responses after delete, got %d", len(responses))
		}
	})
}

func TestResponseRepository_Memory(t *testing.T) {
	runResponseRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestResponseRepository_Firestore(t *testing.T) {
	runResponseRepositoryTest(t, newFirestoreRepository)
}
