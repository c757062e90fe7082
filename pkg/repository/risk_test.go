package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/repository/firestore"
	"github.com/jungkj/riscura-sub000/pkg/repository/memory"
)

func runRiskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create creates risk with auto-increment ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		risk1 := &model.Risk{
			Title:        "Unpatched production servers",
			Description:  "OS patches lag behind vendor advisories",
			CategoryID:   "security",
			OwnerEmail:   "ops@example.com",
			Status:       types.RiskStatusIdentified,
			LikelihoodID: "likely",
			ImpactID:     "major",
		}

		created1, err := repo.Risk().Create(ctx, risk1)
		if err != nil {
			t.Fatalf("failed to create risk1: %v", err)
		}

		if created1.ID != 1 {
			t.Errorf("expected ID=1, got %d", created1.ID)
		}
		if created1.Title != risk1.Title {
			t.Errorf("expected title=%s, got %s", risk1.Title, created1.Title)
		}
		if created1.CategoryID != "security" {
			t.Errorf("expected category=security, got %s", created1.CategoryID)
		}
		if created1.Status != types.RiskStatusIdentified {
			t.Errorf("expected status=identified, got %s", created1.Status)
		}
		if created1.CreatedAt.IsZero() {
			t.Error("expected non-zero CreatedAt")
		}
		if created1.UpdatedAt.IsZero() {
			t.Error("expected non-zero UpdatedAt")
		}

		created2, err := repo.Risk().Create(ctx, &model.Risk{
			Title:      "Vendor lock-in on billing provider",
			CategoryID: "vendor",
			Status:     types.RiskStatusIdentified,
		})
		if err != nil {
			t.Fatalf("failed to create risk2: %v", err)
		}

		if created2.ID != 2 {
			t.Errorf("expected ID=2, got %d", created2.ID)
		}
	})

	t.Run("Get retrieves risk with all assessment fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		dueDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		created, err := repo.Risk().Create(ctx, &model.Risk{
			Title:              "Stale access reviews",
			Description:        "Quarterly access review is overdue",
			CategoryID:         "compliance",
			OwnerEmail:         "grc@example.com",
			Status:             types.RiskStatusMitigating,
			LikelihoodID:       "possible",
			ImpactID:           "moderate",
			ResidualLikelihood: "unlikely",
			ResidualImpact:     "minor",
			DueDate:            &dueDate,
			SlackChannelID:     "C12345ABCDE",
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		retrieved, err := repo.Risk().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get risk: %v", err)
		}

		if retrieved.ID != created.ID {
			t.Errorf("expected ID=%d, got %d", created.ID, retrieved.ID)
		}
		if retrieved.OwnerEmail != "grc@example.com" {
			t.Errorf("expected owner=grc@example.com, got %s", retrieved.OwnerEmail)
		}
		if retrieved.LikelihoodID != "possible" || retrieved.ImpactID != "moderate" {
			t.Errorf("assessment fields lost: %s/%s", retrieved.LikelihoodID, retrieved.ImpactID)
		}
		if retrieved.ResidualLikelihood != "unlikely" || retrieved.ResidualImpact != "minor" {
			t.Errorf("residual fields lost: %s/%s", retrieved.ResidualLikelihood, retrieved.ResidualImpact)
		}
		if retrieved.DueDate == nil || !retrieved.DueDate.Equal(dueDate) {
			t.Errorf("expected dueDate=%v, got %v", dueDate, retrieved.DueDate)
		}
		if retrieved.SlackChannelID != "C12345ABCDE" {
			t.Errorf("expected SlackChannelID=C12345ABCDE, got %s", retrieved.SlackChannelID)
		}
		if !retrieved.HasResidual() {
			t.Error("expected HasResidual to be true")
		}
	})

	t.Run("Get returns error for non-existent risk", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Risk().Get(ctx, 99999)
		if err == nil {
			t.Error("expected error for non-existent risk")
		}
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, firestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List filters by status, category and owner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		seed := []*model.Risk{
			{Title: "Risk A", CategoryID: "security", OwnerEmail: "a@example.com", Status: types.RiskStatusIdentified},
			{Title: "Risk B", CategoryID: "security", OwnerEmail: "b@example.com", Status: types.RiskStatusAccepted},
			{Title: "Risk C", CategoryID: "vendor", OwnerEmail: "a@example.com", Status: types.RiskStatusIdentified},
		}
		for _, r := range seed {
			if _, err := repo.Risk().Create(ctx, r); err != nil {
				t.Fatalf("failed to seed risk: %v", err)
			}
		}

		all, err := repo.Risk().List(ctx)
		if err != nil {
			t.Fatalf("failed to list risks: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 risks, got %d", len(all))
		}

		identified, err := repo.Risk().List(ctx, interfaces.WithRiskStatus(types.RiskStatusIdentified))
		if err != nil {
			t.Fatalf("failed to list by status: %v", err)
		}
		if len(identified) != 2 {
			t.Errorf("expected 2 identified risks, got %d", len(identified))
		}

		security, err := repo.Risk().List(ctx, interfaces.WithRiskCategory("security"))
		if err != nil {
			t.Fatalf("failed to list by category: %v", err)
		}
		if len(security) != 2 {
			t.Errorf("expected 2 security risks, got %d", len(security))
		}

		combined, err := repo.Risk().List(ctx,
			interfaces.WithRiskCategory("security"),
			interfaces.WithRiskOwner("a@example.com"))
		if err != nil {
			t.Fatalf("failed to list with combined filters: %v", err)
		}
		if len(combined) != 1 || combined[0].Title != "Risk A" {
			t.Errorf("expected only Risk A, got %d results", len(combined))
		}
	})

	t.Run("Update modifies risk and preserves CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, &model.Risk{
			Title:      "Original",
			CategoryID: "operations",
			Status:     types.RiskStatusIdentified,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		time.Sleep(10 * time.Millisecond)

		created.Title = "Renamed"
		created.Status = types.RiskStatusAssessed
		created.LikelihoodID = "rare"
		created.ImpactID = "severe"
		updated, err := repo.Risk().Update(ctx, created)
		if err != nil {
			t.Fatalf("failed to update risk: %v", err)
		}

		if updated.Title != "Renamed" {
			t.Errorf("expected title=Renamed, got %s", updated.Title)
		}
		if updated.Status != types.RiskStatusAssessed {
			t.Errorf("expected status=assessed, got %s", updated.Status)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("CreatedAt should not change, got %v", updated.CreatedAt)
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Errorf("UpdatedAt should advance, got %v", updated.UpdatedAt)
		}
	})

	t.Run("Update returns error for non-existent risk", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Risk().Update(ctx, &model.Risk{ID: 99999, Title: "Ghost"})
		if err == nil {
			t.Error("expected error for non-existent risk")
		}
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, firestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete removes risk", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, &model.Risk{
			Title:      "To be deleted",
			CategoryID: "operations",
			Status:     types.RiskStatusIdentified,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		if err := repo.Risk().Delete(ctx, created.ID); err != nil {
			t.Fatalf("failed to delete risk: %v", err)
		}

		_, err = repo.Risk().Get(ctx, created.ID)
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, firestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}

		if err := repo.Risk().Delete(ctx, created.ID); err == nil {
			t.Error("expected error when deleting twice")
		}
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

func TestRiskRepository_Memory(t *testing.T) {
	runRiskRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestRiskRepository_Firestore(t *testing.T) {
	runRiskRepositoryTest(t, newFirestoreRepository)
}
