package core

import (
	"context"
	"fmt"

	"github.com/jungkj/riscura-sub000/pkg/agent/tool"
	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/config"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// matrixSize is the edge length of the likelihood x impact matrix
const matrixSize = 5

// riskToMap converts a Risk to a map for tool response
func riskToMap(r *model.Risk, cfg *config.RiskConfig) map[string]any {
	score := cfg.ScoreOf(r.LikelihoodID, r.ImpactID)
	m := map[string]any{
		"id":          r.ID,
		"title":       r.Title,
		"description": r.Description,
		"category_id": string(r.CategoryID),
		"owner_email": r.OwnerEmail,
		"status":      r.Status.String(),
		"likelihood":  string(r.LikelihoodID),
		"impact":      string(r.ImpactID),
		"score":       score,
		"severity":    cfg.SeverityOf(score).String(),
		"created_at":  r.CreatedAt.String(),
		"updated_at":  r.UpdatedAt.String(),
	}
	if r.HasResidual() {
		residual := cfg.ScoreOf(r.ResidualLikelihood, r.ResidualImpact)
		m["residual_likelihood"] = string(r.ResidualLikelihood)
		m["residual_impact"] = string(r.ResidualImpact)
		m["residual_score"] = residual
		m["residual_severity"] = cfg.SeverityOf(residual).String()
	}
	if r.DueDate != nil {
		m["due_date"] = r.DueDate.Format("2006-01-02")
	}
	return m
}

// listRisksTool retrieves risks from the register with optional filters
type listRisksTool struct {
	repo    interfaces.Repository
	riskCfg *config.RiskConfig
}

func (t *listRisksTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__list_risks",
		Description: "List risks in the register, optionally filtered by status, category, and/or minimum severity",
		Parameters: map[string]*gollem.Parameter{
			"status": {
				Type:        gollem.TypeString,
				Description: "Filter by lifecycle status",
				Required:    false,
				Enum: []string{
					types.RiskStatusIdentified.String(),
					types.RiskStatusAssessed.String(),
					types.RiskStatusMitigating.String(),
					types.RiskStatusAccepted.String(),
					types.RiskStatusClosed.String(),
				},
			},
			"category_id": {
				Type:        gollem.TypeString,
				Description: "Filter by risk category ID",
				Required:    false,
			},
			"min_severity": {
				Type:        gollem.TypeString,
				Description: "Only return risks at or above this severity",
				Required:    false,
				Enum: []string{
					types.SeverityLow.String(),
					types.SeverityMedium.String(),
					types.SeverityHigh.String(),
					types.SeverityCritical.String(),
				},
			},
		},
	}
}

func (t *listRisksTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	var opts []interfaces.ListRiskOption
	if s, ok := args["status"].(string); ok && s != "" {
		status, err := types.ParseRiskStatus(s)
		if err != nil {
			return nil, fmt.Errorf("invalid status %q: must be one of identified, assessed, mitigating, accepted, closed", s)
		}
		opts = append(opts, interfaces.WithRiskStatus(status))
	}
	if c, ok := args["category_id"].(string); ok && c != "" {
		opts = append(opts, interfaces.WithRiskCategory(types.CategoryID(c)))
	}

	var minSeverity types.Severity
	if s, ok := args["min_severity"].(string); ok && s != "" {
		parsed, err := types.ParseSeverity(s)
		if err != nil {
			return nil, fmt.Errorf("invalid min_severity %q: must be one of low, medium, high, critical", s)
		}
		minSeverity = parsed
	}

	tool.Update(ctx, "Listing risks...")
	risks, err := t.repo.Risk().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}

	items := make([]map[string]any, 0, len(risks))
	for _, r := range risks {
		score := t.riskCfg.ScoreOf(r.LikelihoodID, r.ImpactID)
		severity := t.riskCfg.SeverityOf(score)
		if minSeverity != "" && severity.Rank() < minSeverity.Rank() {
			continue
		}
		items = append(items, map[string]any{
			"id":          r.ID,
			"title":       r.Title,
			"status":      r.Status.String(),
			"category_id": string(r.CategoryID),
			"score":       score,
			"severity":    severity.String(),
		})
	}
	return map[string]any{"risks": items}, nil
}

// getRiskTool retrieves risk details with its linked controls
type getRiskTool struct {
	repo    interfaces.Repository
	riskCfg *config.RiskConfig
}

func (t *getRiskTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__get_risk",
		Description: "Get full details of a risk by its ID, including the controls linked to it",
		Parameters: map[string]*gollem.Parameter{
			"risk_id": {
				Type:        gollem.TypeInteger,
				Description: "The ID of the risk to retrieve",
				Required:    true,
			},
		},
	}
}

func (t *getRiskTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	riskID, err := extractInt64(args, "risk_id")
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, fmt.Sprintf("Getting risk #%d...", riskID))
	r, err := t.repo.Risk().Get(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk",
			goerr.V("riskID", riskID),
		)
	}

	controls, err := t.repo.RiskControl().GetControlsByRisk(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list linked controls",
			goerr.V("riskID", riskID),
		)
	}

	linked := make([]map[string]any, len(controls))
	for i, c := range controls {
		linked[i] = map[string]any{
			"id":            c.ID,
			"name":          c.Name,
			"type":          c.Type.String(),
			"status":        c.Status.String(),
			"effectiveness": c.Effectiveness.Normalize().String(),
		}
	}

	out := riskToMap(r, t.riskCfg)
	out["controls"] = linked
	return out, nil
}

// riskMatrixTool aggregates the register into a likelihood x impact grid
type riskMatrixTool struct {
	repo    interfaces.Repository
	riskCfg *config.RiskConfig
}

func (t *riskMatrixTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__risk_matrix",
		Description: "Count risks in a 5x5 matrix: rows are likelihood scores 1-5, columns are impact scores 1-5. Risks whose levels have no configured score are reported separately as unscored",
		Parameters: map[string]*gollem.Parameter{
			"residual": {
				Type:        gollem.TypeBoolean,
				Description: "Use residual likelihood/impact where a residual assessment exists (default: inherent levels)",
				Required:    false,
			},
		},
	}
}

func (t *riskMatrixTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	residual, _ := args["residual"].(bool)

	tool.Update(ctx, "Building risk matrix...")
	risks, err := t.repo.Risk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks for matrix")
	}

	matrix := make([][]int, matrixSize)
	for i := range matrix {
		matrix[i] = make([]int, matrixSize)
	}

	unscored := 0
	for _, r := range risks {
		likelihoodID, impactID := r.LikelihoodID, r.ImpactID
		if residual && r.HasResidual() {
			likelihoodID, impactID = r.ResidualLikelihood, r.ResidualImpact
		}
		l := t.riskCfg.LikelihoodScore(likelihoodID)
		i := t.riskCfg.ImpactScore(impactID)
		if l < 1 || l > matrixSize || i < 1 || i > matrixSize {
			unscored++
			continue
		}
		matrix[l-1][i-1]++
	}

	return map[string]any{
		"matrix":   matrix,
		"total":    len(risks),
		"unscored": unscored,
	}, nil
}

// extractInt64 extracts an int64 value from args map, accepting int, int64, or float64
func extractInt64(args map[string]any, key string) (int64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%s is required", key)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%s must be an integer, got %T", key, v)
	}
}
