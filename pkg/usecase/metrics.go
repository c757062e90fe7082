package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/config"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

const (
	// topRiskCount is the number of highest-scoring risks on the dashboard
	topRiskCount = 5

	// metricsPageSize is the page size for paginated dashboard scans
	metricsPageSize = 200
)

// MetricsUseCase aggregates the dashboard numbers
type MetricsUseCase struct {
	repo       interfaces.Repository
	riskConfig *config.RiskConfig
}

func NewMetricsUseCase(repo interfaces.Repository, riskConfig *config.RiskConfig) *MetricsUseCase {
	return &MetricsUseCase{
		repo:       repo,
		riskConfig: riskConfig,
	}
}

// RiskSummary is one dashboard row for a highlighted risk
type RiskSummary struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Severity string `json:"severity"`
	Score    int    `json:"score"`
}

// MatrixCell is one cell of the likelihood/impact heatmap
type MatrixCell struct {
	LikelihoodID string `json:"likelihood_id"`
	ImpactID     string `json:"impact_id"`
	Count        int    `json:"count"`
}

// RiskMetrics aggregates the risk register
type RiskMetrics struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	BySeverity map[string]int `json:"by_severity"`
	ByCategory map[string]int `json:"by_category"`
	Matrix     []MatrixCell   `json:"matrix"`
	TopRisks   []RiskSummary  `json:"top_risks"`
	Overdue    int            `json:"overdue"`
}

// ControlMetrics aggregates the controls library
type ControlMetrics struct {
	Total                int            `json:"total"`
	ByType               map[string]int `json:"by_type"`
	ByStatus             map[string]int `json:"by_status"`
	ByEffectiveness      map[string]int `json:"by_effectiveness"`
	RisksWithoutControls int            `json:"risks_without_controls"`
}

// QuestionnaireMetrics aggregates one published or closed questionnaire
type QuestionnaireMetrics struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Status       string  `json:"status"`
	Responses    int     `json:"responses"`
	Submitted    int     `json:"submitted"`
	ResponseRate float64 `json:"response_rate"` // submitted or reviewed over all responses
}

// WorkflowMetrics aggregates workflows
type WorkflowMetrics struct {
	Total              int            `json:"total"`
	ByStatus           map[string]int `json:"by_status"`
	EscalatedSteps     int            `json:"escalated_steps"`
	AvgCompletionHours float64        `json:"avg_completion_hours"`
}

// DocumentMetrics aggregates the document store
type DocumentMetrics struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	BySource map[string]int `json:"by_source"`
}

// AssistantMetrics aggregates assistant usage
type AssistantMetrics struct {
	Conversations int `json:"conversations"`
	Reports       int `json:"reports"`
	InputTokens   int `json:"input_tokens"`
	OutputTokens  int `json:"output_tokens"`
	Requests      int `json:"requests"`
}

// Dashboard is the aggregated view the UI renders on its landing page
type Dashboard struct {
	Risks          RiskMetrics            `json:"risks"`
	Controls       ControlMetrics         `json:"controls"`
	Questionnaires []QuestionnaireMetrics `json:"questionnaires"`
	Workflows      WorkflowMetrics        `json:"workflows"`
	Documents      DocumentMetrics        `json:"documents"`
	Assistant      AssistantMetrics       `json:"assistant"`
	GeneratedAt    time.Time              `json:"generated_at"`
}

// Dashboard aggregates all sections. The sections are independent, so
// they load concurrently; the first error cancels the rest.
func (uc *MetricsUseCase) Dashboard(ctx context.Context) (*Dashboard, error) {
	dashboard := &Dashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := uc.riskMetrics(gctx)
		if err != nil {
			return err
		}
		dashboard.Risks = *m
		return nil
	})
	g.Go(func() error {
		m, err := uc.controlMetrics(gctx)
		if err != nil {
			return err
		}
		dashboard.Controls = *m
		return nil
	})
	g.Go(func() error {
		m, err := uc.questionnaireMetrics(gctx)
		if err != nil {
			return err
		}
		dashboard.Questionnaires = m
		return nil
	})
	g.Go(func() error {
		m, err := uc.workflowMetrics(gctx)
		if err != nil {
			return err
		}
		dashboard.Workflows = *m
		return nil
	})
	g.Go(func() error {
		m, err := uc.documentMetrics(gctx)
		if err != nil {
			return err
		}
		dashboard.Documents = *m
		return nil
	})
	g.Go(func() error {
		m, err := uc.assistantMetrics(gctx)
		if err != nil {
			return err
		}
		dashboard.Assistant = *m
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	dashboard.GeneratedAt = time.Now()
	return dashboard, nil
}

func (uc *MetricsUseCase) riskMetrics(ctx context.Context) (*RiskMetrics, error) {
	risks, err := uc.repo.Risk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}

	m := &RiskMetrics{
		Total:      len(risks),
		ByStatus:   make(map[string]int),
		BySeverity: make(map[string]int),
		ByCategory: make(map[string]int),
	}

	// All configured cells are present so the heatmap renders empty
	// cells too.
	cellIndex := make(map[[2]string]int)
	for _, l := range uc.riskConfig.Likelihood {
		for _, i := range uc.riskConfig.Impact {
			cellIndex[[2]string{l.ID, i.ID}] = len(m.Matrix)
			m.Matrix = append(m.Matrix, MatrixCell{LikelihoodID: l.ID, ImpactID: i.ID})
		}
	}

	now := time.Now()
	summaries := make([]RiskSummary, 0, len(risks))
	for _, r := range risks {
		m.ByStatus[r.Status.Normalize().String()]++
		if r.CategoryID != "" {
			m.ByCategory[string(r.CategoryID)]++
		}

		score := uc.riskConfig.ScoreOf(r.LikelihoodID, r.ImpactID)
		severity := uc.riskConfig.SeverityOf(score)
		m.BySeverity[severity.String()]++

		if idx, ok := cellIndex[[2]string{string(r.LikelihoodID), string(r.ImpactID)}]; ok {
			m.Matrix[idx].Count++
		}

		if r.IsOverdue(now) {
			m.Overdue++
		}

		summaries = append(summaries, RiskSummary{
			ID:       r.ID,
			Title:    r.Title,
			Severity: severity.String(),
			Score:    score,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool { return summaries[i].Score > summaries[j].Score })
	if len(summaries) > topRiskCount {
		summaries = summaries[:topRiskCount]
	}
	m.TopRisks = summaries

	return m, nil
}

func (uc *MetricsUseCase) controlMetrics(ctx context.Context) (*ControlMetrics, error) {
	controls, err := uc.repo.Control().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list controls")
	}

	m := &ControlMetrics{
		Total:           len(controls),
		ByType:          make(map[string]int),
		ByStatus:        make(map[string]int),
		ByEffectiveness: make(map[string]int),
	}

	for _, c := range controls {
		if c.Type != "" {
			m.ByType[c.Type.String()]++
		}
		m.ByStatus[c.Status.Normalize().String()]++
		m.ByEffectiveness[c.Effectiveness.Normalize().String()]++
	}

	// Open risks without a single linked control
	risks, err := uc.repo.Risk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}
	riskIDs := make([]int64, 0, len(risks))
	for _, r := range risks {
		riskIDs = append(riskIDs, r.ID)
	}
	linked, err := uc.repo.RiskControl().GetControlsByRisks(ctx, riskIDs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load control links")
	}
	for _, r := range risks {
		if r.Status.Normalize().IsOpen() && len(linked[r.ID]) == 0 {
			m.RisksWithoutControls++
		}
	}

	return m, nil
}

func (uc *MetricsUseCase) questionnaireMetrics(ctx context.Context) ([]QuestionnaireMetrics, error) {
	questionnaires, err := uc.repo.Questionnaire().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list questionnaires")
	}

	var out []QuestionnaireMetrics
	for _, q := range questionnaires {
		status := q.Status.Normalize()
		if status == types.QuestionnaireStatusDraft {
			continue
		}

		responses, err := uc.repo.QuestionnaireResponse().ListByQuestionnaire(ctx, q.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list responses", goerr.V(QuestionnaireIDKey, q.ID))
		}

		qm := QuestionnaireMetrics{
			ID:        q.ID,
			Title:     q.Title,
			Status:    status.String(),
			Responses: len(responses),
		}
		for _, r := range responses {
			if r.Status == types.ResponseStatusSubmitted || r.Status == types.ResponseStatusReviewed {
				qm.Submitted++
			}
		}
		if qm.Responses > 0 {
			qm.ResponseRate = float64(qm.Submitted) / float64(qm.Responses)
		}
		out = append(out, qm)
	}

	return out, nil
}

func (uc *MetricsUseCase) workflowMetrics(ctx context.Context) (*WorkflowMetrics, error) {
	workflows, err := uc.repo.Workflow().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list workflows")
	}

	m := &WorkflowMetrics{
		Total:    len(workflows),
		ByStatus: make(map[string]int),
	}

	var completed int
	var completionHours float64
	for _, w := range workflows {
		m.ByStatus[w.Status.String()]++

		for i := range w.Steps {
			if w.Steps[i].Status == types.StepStatusEscalated {
				m.EscalatedSteps++
			}
		}

		if w.Status == types.WorkflowStatusCompleted {
			completed++
			completionHours += w.UpdatedAt.Sub(w.CreatedAt).Hours()
		}
	}
	if completed > 0 {
		m.AvgCompletionHours = completionHours / float64(completed)
	}

	return m, nil
}

func (uc *MetricsUseCase) documentMetrics(ctx context.Context) (*DocumentMetrics, error) {
	docs, err := uc.repo.Document().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list documents")
	}

	m := &DocumentMetrics{
		Total:    len(docs),
		ByStatus: make(map[string]int),
		BySource: make(map[string]int),
	}
	for _, d := range docs {
		m.ByStatus[string(d.Status)]++
		m.BySource[string(d.Source)]++
	}

	return m, nil
}

func (uc *MetricsUseCase) assistantMetrics(ctx context.Context) (*AssistantMetrics, error) {
	m := &AssistantMetrics{}

	for offset := 0; ; offset += metricsPageSize {
		conversations, total, err := uc.repo.Conversation().ListWithPagination(ctx, metricsPageSize, offset)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list conversations")
		}
		m.Conversations = total

		for _, c := range conversations {
			m.InputTokens += c.Usage.InputTokens
			m.OutputTokens += c.Usage.OutputTokens
			m.Requests += c.Usage.Requests
		}

		if offset+len(conversations) >= total || len(conversations) == 0 {
			break
		}
	}

	_, reports, err := uc.repo.Report().ListWithPagination(ctx, 1, 0)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count reports")
	}
	m.Reports = reports

	return m, nil
}
