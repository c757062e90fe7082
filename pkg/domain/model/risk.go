package model

import (
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// Risk represents an entry in the risk register
type Risk struct {
	ID                 int64
	Title              string
	Description        string
	CategoryID         types.CategoryID
	OwnerEmail         string
	Status             types.RiskStatus
	LikelihoodID       types.LikelihoodID
	ImpactID           types.ImpactID
	ResidualLikelihood types.LikelihoodID // empty until a residual assessment is recorded
	ResidualImpact     types.ImpactID
	DueDate            *time.Time
	SlackChannelID     string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasResidual reports whether a residual assessment has been recorded
func (r *Risk) HasResidual() bool {
	return r.ResidualLikelihood != "" && r.ResidualImpact != ""
}

// IsOverdue reports whether the due date has passed while the risk is still open
func (r *Risk) IsOverdue(now time.Time) bool {
	return r.DueDate != nil && r.DueDate.Before(now) && r.Status.Normalize().IsOpen()
}
