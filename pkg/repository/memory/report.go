package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type reportRepository struct {
	mu      sync.RWMutex
	reports map[model.ReportID]*model.AnalysisReport
}

func newReportRepository() *reportRepository {
	return &reportRepository{
		reports: make(map[model.ReportID]*model.AnalysisReport),
	}
}

// copyReport creates a deep copy of an analysis report
func copyReport(rep *model.AnalysisReport) *model.AnalysisReport {
	copied := *rep
	if rep.TopRisks != nil {
		copied.TopRisks = make([]model.ReportRisk, len(rep.TopRisks))
		copy(copied.TopRisks, rep.TopRisks)
	}
	if rep.CoverageGaps != nil {
		copied.CoverageGaps = make([]string, len(rep.CoverageGaps))
		copy(copied.CoverageGaps, rep.CoverageGaps)
	}
	if rep.Recommendations != nil {
		copied.Recommendations = make([]string, len(rep.Recommendations))
		copy(copied.Recommendations, rep.Recommendations)
	}
	return &copied
}

func (r *reportRepository) Create(ctx context.Context, report *model.AnalysisReport) (*model.AnalysisReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyReport(report)
	if created.ID == "" {
		created.ID = model.NewReportID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.reports[created.ID] = created
	return copyReport(created), nil
}

func (r *reportRepository) Get(ctx context.Context, id model.ReportID) (*model.AnalysisReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, exists := r.reports[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "report not found", goerr.V("id", id))
	}

	return copyReport(report), nil
}

func (r *reportRepository) ListWithPagination(ctx context.Context, limit, offset int) ([]*model.AnalysisReport, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*model.AnalysisReport, 0, len(r.reports))
	for _, report := range r.reports {
		all = append(all, copyReport(report))
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	totalCount := len(all)

	if offset >= len(all) {
		return []*model.AnalysisReport{}, totalCount, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], totalCount, nil
}

func (r *reportRepository) Delete(ctx context.Context, id model.ReportID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reports[id]; !exists {
		return goerr.Wrap(ErrNotFound, "report not found", goerr.V("id", id))
	}

	delete(r.reports, id)
	return nil
}
