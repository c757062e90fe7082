package interfaces

import (
	"context"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
)

// ReportRepository defines the interface for AnalysisReport persistence
type ReportRepository interface {
	// Create stores a new analysis report
	Create(ctx context.Context, report *model.AnalysisReport) (*model.AnalysisReport, error)

	// Get retrieves a report by ID
	Get(ctx context.Context, id model.ReportID) (*model.AnalysisReport, error)

	// ListWithPagination retrieves reports with pagination, newest first
	// Returns reports, total count, and error
	ListWithPagination(ctx context.Context, limit, offset int) ([]*model.AnalysisReport, int, error)

	// Delete deletes a report by ID
	Delete(ctx context.Context, id model.ReportID) error
}
