package config

import (
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// Category represents a risk category configuration
type Category struct {
	ID          string
	Name        string
	Description string
}

// LikelihoodLevel represents a likelihood level configuration
type LikelihoodLevel struct {
	ID          string
	Name        string
	Description string
	Score       int
}

// ImpactLevel represents an impact level configuration
type ImpactLevel struct {
	ID          string
	Name        string
	Description string
	Score       int
}

// SeverityThresholds holds the lower bounds of the MEDIUM, HIGH and
// CRITICAL bands over the risk score (likelihood score x impact score).
type SeverityThresholds struct {
	Medium   int
	High     int
	Critical int
}

// DefaultSeverityThresholds returns the banding used when the
// configuration does not override it.
func DefaultSeverityThresholds() SeverityThresholds {
	return SeverityThresholds{
		Medium:   5,
		High:     10,
		Critical: 17,
	}
}

// RiskConfig holds all risk-related configuration
type RiskConfig struct {
	Categories     []Category
	Likelihood     []LikelihoodLevel
	Impact         []ImpactLevel
	Thresholds     SeverityThresholds
	NotifySeverity types.Severity // create a Slack channel for risks at or above this severity; empty disables
}

// HasCategory reports whether the category ID is configured
func (c *RiskConfig) HasCategory(id types.CategoryID) bool {
	for _, cat := range c.Categories {
		if types.CategoryID(cat.ID) == id {
			return true
		}
	}
	return false
}

// HasLikelihood reports whether the likelihood level ID is configured
func (c *RiskConfig) HasLikelihood(id types.LikelihoodID) bool {
	return c.LikelihoodScore(id) > 0
}

// HasImpact reports whether the impact level ID is configured
func (c *RiskConfig) HasImpact(id types.ImpactID) bool {
	return c.ImpactScore(id) > 0
}

// LikelihoodScore returns the score for a likelihood level ID, or 0 when unknown
func (c *RiskConfig) LikelihoodScore(id types.LikelihoodID) int {
	for _, level := range c.Likelihood {
		if types.LikelihoodID(level.ID) == id {
			return level.Score
		}
	}
	return 0
}

// ImpactScore returns the score for an impact level ID, or 0 when unknown
func (c *RiskConfig) ImpactScore(id types.ImpactID) int {
	for _, level := range c.Impact {
		if types.ImpactID(level.ID) == id {
			return level.Score
		}
	}
	return 0
}

// ScoreOf computes likelihood x impact for the given level IDs.
// Unknown IDs yield 0.
func (c *RiskConfig) ScoreOf(likelihoodID types.LikelihoodID, impactID types.ImpactID) int {
	return c.LikelihoodScore(likelihoodID) * c.ImpactScore(impactID)
}

// SeverityOf maps a risk score onto its severity band
func (c *RiskConfig) SeverityOf(score int) types.Severity {
	th := c.Thresholds
	if th == (SeverityThresholds{}) {
		th = DefaultSeverityThresholds()
	}

	switch {
	case score >= th.Critical:
		return types.SeverityCritical
	case score >= th.High:
		return types.SeverityHigh
	case score >= th.Medium:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

// ShouldNotify reports whether a risk of the given severity warrants a
// Slack channel
func (c *RiskConfig) ShouldNotify(severity types.Severity) bool {
	if c.NotifySeverity == "" {
		return false
	}
	return severity.Rank() >= c.NotifySeverity.Rank()
}
