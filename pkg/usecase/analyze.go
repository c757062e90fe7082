package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"sort"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/auth"
	"github.com/jungkj/riscura-sub000/pkg/service/llm"
)

//go:embed prompt/analyze_system.md
var analyzePromptTmpl string

var analyzePrompt = template.Must(template.New("analyze_system").Parse(analyzePromptTmpl))

// maxAnalyzeRisks bounds the register snapshot handed to the model so
// large registers stay within the input budget. Risks are ordered by
// score, so the cut drops the least severe ones.
const maxAnalyzeRisks = 200

// DefaultReportPageSize is the report listing page size when the
// caller does not ask for a specific count
const DefaultReportPageSize = 20

// analyzePromptRisk is one register row for the analysis prompt
type analyzePromptRisk struct {
	ID       int64
	Title    string
	Category string
	Status   string
	Severity string
	Score    int
	Owner    string
	Overdue  bool
	Controls []string
}

// analyzePromptControl is one library row for the analysis prompt
type analyzePromptControl struct {
	ID            int64
	Name          string
	Type          string
	Status        string
	Effectiveness string
	LinkedRisks   int
}

// analyzePromptData holds all data for the analysis prompt template
type analyzePromptData struct {
	CurrentTime string
	RiskCount   int
	Truncated   bool
	Risks       []analyzePromptRisk
	Controls    []analyzePromptControl
}

// analysisResult is the JSON structure the model fills in
type analysisResult struct {
	Summary  string `json:"summary"`
	TopRisks []struct {
		RiskID    int64  `json:"risk_id"`
		Title     string `json:"title"`
		Reasoning string `json:"reasoning"`
	} `json:"top_risks"`
	CoverageGaps    []string `json:"coverage_gaps"`
	Recommendations []string `json:"recommendations"`
}

func analysisSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "RiskAnalysisReport",
		Description: "Structured assessment of a risk register",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"summary": {
				Type:        gollem.TypeString,
				Description: "One-paragraph plain text assessment of the overall risk posture.",
				Required:    true,
			},
			"top_risks": {
				Type:        gollem.TypeArray,
				Description: "The risks deserving the most attention right now, most urgent first. At most five.",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"risk_id": {
							Type:        gollem.TypeInteger,
							Description: "ID of the risk, exactly as listed in the register.",
							Required:    true,
						},
						"title": {
							Type:        gollem.TypeString,
							Description: "Title of the risk.",
							Required:    true,
						},
						"reasoning": {
							Type:        gollem.TypeString,
							Description: "Why this risk ranks here: severity, control coverage, overdue state.",
							Required:    true,
						},
					},
				},
			},
			"coverage_gaps": {
				Type:        gollem.TypeArray,
				Description: "Risks or areas with missing or ineffective controls. Empty if coverage looks adequate.",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeString,
				},
			},
			"recommendations": {
				Type:        gollem.TypeArray,
				Description: "Concrete next actions for the risk owners, most impactful first.",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeString,
				},
			},
		},
	}
}

// Analyze runs a one-shot register analysis and stores the structured
// report
func (uc *AssistantUseCase) Analyze(ctx context.Context) (*model.AnalysisReport, error) {
	if uc.llmClient == nil {
		return nil, goerr.New("assistant is not configured")
	}

	prompt, riskCount, err := uc.buildAnalysisPrompt(ctx)
	if err != nil {
		return nil, err
	}
	if riskCount == 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "risk register is empty, nothing to analyze")
	}

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(analysisSchema()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create analysis session")
	}

	resp, err := llm.Retry(ctx, "register analysis", func(ctx context.Context) (*gollem.Response, error) {
		return session.GenerateContent(ctx, gollem.Text(prompt))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate analysis")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("analysis returned no content")
	}

	var result analysisResult
	if err := json.Unmarshal([]byte(resp.Texts[0]), &result); err != nil {
		return nil, goerr.Wrap(err, "failed to parse analysis response",
			goerr.V("response", resp.Texts[0]))
	}

	report := &model.AnalysisReport{
		ID:              model.NewReportID(),
		Summary:         result.Summary,
		CoverageGaps:    result.CoverageGaps,
		Recommendations: result.Recommendations,
		GeneratedBy:     auth.ActorFromContext(ctx),
	}

	// Keep only risks that exist in the register; the model must not
	// invent IDs.
	for _, tr := range result.TopRisks {
		if _, err := uc.repo.Risk().Get(ctx, tr.RiskID); err != nil {
			continue
		}
		report.TopRisks = append(report.TopRisks, model.ReportRisk{
			RiskID:    tr.RiskID,
			Title:     tr.Title,
			Reasoning: tr.Reasoning,
		})
	}

	report.Usage.Add(model.EstimateTokens(prompt), model.EstimateTokens(resp.Texts[0]))

	created, err := uc.repo.Report().Create(ctx, report)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store analysis report")
	}

	return created, nil
}

// GetReport returns a stored analysis report
func (uc *AssistantUseCase) GetReport(ctx context.Context, id model.ReportID) (*model.AnalysisReport, error) {
	report, err := uc.repo.Report().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrReportNotFound, "report not found", goerr.V("report_id", id))
	}
	return report, nil
}

// ListReports returns stored reports newest first with the total count
func (uc *AssistantUseCase) ListReports(ctx context.Context, limit, offset int) ([]*model.AnalysisReport, int, error) {
	if limit <= 0 {
		limit = DefaultReportPageSize
	}
	if offset < 0 {
		offset = 0
	}

	reports, total, err := uc.repo.Report().ListWithPagination(ctx, limit, offset)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to list reports")
	}

	return reports, total, nil
}

// DeleteReport removes a stored analysis report
func (uc *AssistantUseCase) DeleteReport(ctx context.Context, id model.ReportID) error {
	if _, err := uc.repo.Report().Get(ctx, id); err != nil {
		return goerr.Wrap(ErrReportNotFound, "report not found", goerr.V("report_id", id))
	}

	if err := uc.repo.Report().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete report", goerr.V("report_id", id))
	}

	return nil
}

func (uc *AssistantUseCase) buildAnalysisPrompt(ctx context.Context) (string, int, error) {
	risks, err := uc.repo.Risk().List(ctx)
	if err != nil {
		return "", 0, goerr.Wrap(err, "failed to list risks")
	}

	controls, err := uc.repo.Control().List(ctx)
	if err != nil {
		return "", 0, goerr.Wrap(err, "failed to list controls")
	}

	riskIDs := make([]int64, 0, len(risks))
	for _, r := range risks {
		riskIDs = append(riskIDs, r.ID)
	}
	linked, err := uc.repo.RiskControl().GetControlsByRisks(ctx, riskIDs)
	if err != nil {
		return "", 0, goerr.Wrap(err, "failed to load control links")
	}

	sort.SliceStable(risks, func(i, j int) bool {
		si := uc.riskConfig.ScoreOf(risks[i].LikelihoodID, risks[i].ImpactID)
		sj := uc.riskConfig.ScoreOf(risks[j].LikelihoodID, risks[j].ImpactID)
		return si > sj
	})

	now := time.Now()
	data := analyzePromptData{
		CurrentTime: now.UTC().Format(time.RFC3339),
		RiskCount:   len(risks),
		Truncated:   len(risks) > maxAnalyzeRisks,
	}

	snapshot := risks
	if len(snapshot) > maxAnalyzeRisks {
		snapshot = snapshot[:maxAnalyzeRisks]
	}

	linkCounts := make(map[int64]int)
	for _, cs := range linked {
		for _, c := range cs {
			linkCounts[c.ID]++
		}
	}

	for _, r := range snapshot {
		score := uc.riskConfig.ScoreOf(r.LikelihoodID, r.ImpactID)
		row := analyzePromptRisk{
			ID:       r.ID,
			Title:    r.Title,
			Category: string(r.CategoryID),
			Status:   r.Status.Normalize().String(),
			Severity: uc.riskConfig.SeverityOf(score).String(),
			Score:    score,
			Owner:    r.OwnerEmail,
			Overdue:  r.IsOverdue(now),
		}
		for _, c := range linked[r.ID] {
			row.Controls = append(row.Controls, c.Name)
		}
		data.Risks = append(data.Risks, row)
	}

	for _, c := range controls {
		data.Controls = append(data.Controls, analyzePromptControl{
			ID:            c.ID,
			Name:          c.Name,
			Type:          c.Type.String(),
			Status:        c.Status.Normalize().String(),
			Effectiveness: c.Effectiveness.Normalize().String(),
			LinkedRisks:   linkCounts[c.ID],
		})
	}

	var buf bytes.Buffer
	if err := analyzePrompt.Execute(&buf, data); err != nil {
		return "", 0, goerr.Wrap(err, "failed to render analysis prompt")
	}

	return buf.String(), len(risks), nil
}
