package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/repository/firestore"
	"github.com/jungkj/riscura-sub000/pkg/repository/memory"
)

func runReportRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get report", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		report := &model.AnalysisReport{
			Summary: "Two critical risks concentrate in vendor management.",
			TopRisks: []model.ReportRisk{
				{RiskID: 1, Title: "Vendor data breach", Reasoning: "critical severity, no effective control"},
				{RiskID: 3, Title: "Single-region hosting", Reasoning: "high severity, mitigation overdue"},
			},
			CoverageGaps:    []string{"no detective controls for third-party access"},
			Recommendations: []string{"link an access review control to risk 1"},
			GeneratedBy:     "grc@example.com",
		}
		report.Usage.Add(900, 400)

		created, err := repo.Report().Create(ctx, report)
		if err != nil {
			t.Fatalf("failed to create report: %v", err)
		}
		if created.ID == "" {
			t.Error("expected generated report ID")
		}
		if created.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}

		retrieved, err := repo.Report().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get report: %v", err)
		}
		if retrieved.Summary != report.Summary {
			t.Errorf("expected summary to round-trip, got %s", retrieved.Summary)
		}
		if len(retrieved.TopRisks) != 2 {
			t.Fatalf("expected 2 top risks, got %d", len(retrieved.TopRisks))
		}
		if retrieved.TopRisks[0].RiskID != 1 || retrieved.TopRisks[0].Reasoning == "" {
			t.Errorf("expected top risk to round-trip, got %+v", retrieved.TopRisks[0])
		}
		if len(retrieved.CoverageGaps) != 1 || len(retrieved.Recommendations) != 1 {
			t.Errorf("expected gaps and recommendations to round-trip, got %v / %v",
				retrieved.CoverageGaps, retrieved.Recommendations)
		}
		if retrieved.GeneratedBy != "grc@example.com" {
			t.Errorf("expected generatedBy to round-trip, got %s", retrieved.GeneratedBy)
		}
		if retrieved.Usage.InputTokens != 900 || retrieved.Usage.OutputTokens != 400 {
			t.Errorf("expected usage to round-trip, got %d/%d",
				retrieved.Usage.InputTokens, retrieved.Usage.OutputTokens)
		}
	})

	t.Run("Get returns error for non-existent report", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Report().Get(ctx, model.NewReportID())
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, firestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListWithPagination returns newest first with total", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			if _, err := repo.Report().Create(ctx, &model.AnalysisReport{
				Summary:     "periodic assessment",
				GeneratedBy: "system",
			}); err != nil {
				t.Fatalf("failed to seed report: %v", err)
			}
		}

		page, total, err := repo.Report().ListWithPagination(ctx, 2, 0)
		if err != nil {
			t.Fatalf("failed to paginate: %v", err)
		}
		if total != 5 {
			t.Errorf("expected total=5, got %d", total)
		}
		if len(page) != 2 {
			t.Fatalf("expected 2 reports, got %d", len(page))
		}
		if page[0].CreatedAt.Before(page[1].CreatedAt) {
			t.Error("expected newest report first")
		}

		rest, _, err := repo.Report().ListWithPagination(ctx, 10, 4)
		if err != nil {
			t.Fatalf("failed to paginate with offset: %v", err)
		}
		if len(rest) != 1 {
			t.Errorf("expected 1 report after offset 4, got %d", len(rest))
		}
	})

	t.Run("Delete report", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Report().Create(ctx, &model.AnalysisReport{
			Summary:     "to delete",
			GeneratedBy: "system",
		})
		if err != nil {
			t.Fatalf("failed to create report: %v", err)
		}

		if err := repo.Report().Delete(ctx, created.ID); err != nil {
			t.Fatalf("failed to delete report: %v", err)
		}

		_, err = repo.Report().Get(ctx, created.ID)
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, firestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}

		if err := repo.Report().Delete(ctx, created.ID); err == nil {
			t.Error("expected error when deleting non-existent report")
		}
	})
}

func TestReportRepository_Memory(t *testing.T) {
	runReportRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestReportRepository_Firestore(t *testing.T) {
	runReportRepositoryTest(t, newFirestoreRepository)
}
