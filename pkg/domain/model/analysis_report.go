package model

import (
	"time"

	"github.com/google/uuid"
)

// ReportID is a UUID-based identifier for AnalysisReport
type ReportID string

// NewReportID generates a time-ordered UUID v7 ReportID
func NewReportID() ReportID {
	return ReportID(uuid.Must(uuid.NewV7()).String())
}

// ReportRisk is one highlighted risk within an analysis report
type ReportRisk struct {
	RiskID    int64
	Title     string
	Reasoning string
}

// AnalysisReport represents a structured portfolio summary produced by
// the assistant in a single run. Reports are kept for later review and
// referenced from the dashboard.
type AnalysisReport struct {
	ID              ReportID
	Summary         string // one-paragraph overall assessment
	TopRisks        []ReportRisk
	CoverageGaps    []string // risks or areas lacking controls
	Recommendations []string
	GeneratedBy     string // email of the requesting user, or "system"
	Usage           TokenUsage
	CreatedAt       time.Time
}
