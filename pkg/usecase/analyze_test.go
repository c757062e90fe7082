package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/repository/memory"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

func TestAssistantUseCase_Analyze(t *testing.T) {
	t.Run("analyze produces a persisted report", func(t *testing.T) {
		repo := memory.New()
		riskUC := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		risk, err := riskUC.CreateRisk(ctx, usecase.RiskInput{
			Title:        "Unpatched VPN appliance",
			LikelihoodID: "likely",
			ImpactID:     "severe",
		})
		gt.NoError(t, err).Required()

		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						body := fmt.Sprintf(`{
							"summary": "The register is dominated by one critical infrastructure risk.",
							"top_risks": [
								{"risk_id": %d, "title": "Unpatched VPN appliance", "reasoning": "Critical and no controls linked."},
								{"risk_id": 9999, "title": "Hallucinated", "reasoning": "Does not exist."}
							],
							"coverage_gaps": ["No detective controls for network access."],
							"recommendations": ["Patch the VPN appliance this week."]
						}`, risk.ID)
						return &gollem.Response{Texts: []string{body}}, nil
					},
				}, nil
			},
		}
		uc := usecase.NewAssistantUseCase(repo, llm, nil, testRiskConfig())

		report, err := uc.Analyze(ctx)
		gt.NoError(t, err).Required()

		gt.String(t, report.Summary).Contains("critical infrastructure risk")
		gt.Array(t, report.CoverageGaps).Length(1)
		gt.Array(t, report.Recommendations).Length(1)
		gt.Value(t, report.GeneratedBy).Equal("system")
		gt.Number(t, report.Usage.InputTokens).NotEqual(0)
		gt.Number(t, report.Usage.OutputTokens).NotEqual(0)

		// Risks the model made up are dropped
		gt.Array(t, report.TopRisks).Length(1).Required()
		gt.Value(t, report.TopRisks[0].RiskID).Equal(risk.ID)

		stored, err := uc.GetReport(ctx, report.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Summary).Equal(report.Summary)
	})

	t.Run("empty register fails fast", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewAssistantUseCase(repo, &mockLLMClient{}, nil, testRiskConfig())
		ctx := context.Background()

		_, err := uc.Analyze(ctx)
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("analyze without an LLM fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewAssistantUseCase(repo, nil, nil, testRiskConfig())
		ctx := context.Background()

		_, err := uc.Analyze(ctx)
		gt.Value(t, err).NotNil()
	})

	t.Run("non-JSON model output fails", func(t *testing.T) {
		repo := memory.New()
		riskUC := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()
		_, err := riskUC.CreateRisk(ctx, usecase.RiskInput{Title: "Some risk"})
		gt.NoError(t, err).Required()

		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{Texts: []string{"I cannot answer in JSON, sorry."}}, nil
					},
				}, nil
			},
		}
		uc := usecase.NewAssistantUseCase(repo, llm, nil, testRiskConfig())

		_, err = uc.Analyze(ctx)
		gt.Value(t, err).NotNil()
	})

	t.Run("session creation failure surfaces", func(t *testing.T) {
		repo := memory.New()
		riskUC := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()
		_, err := riskUC.CreateRisk(ctx, usecase.RiskInput{Title: "Some risk"})
		gt.NoError(t, err).Required()

		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
				return nil, errors.New("no API key")
			},
		}
		uc := usecase.NewAssistantUseCase(repo, llm, nil, testRiskConfig())

		_, err = uc.Analyze(ctx)
		gt.Value(t, err).NotNil()
	})
}

func TestAssistantUseCase_Reports(t *testing.T) {
	analyze := func(t *testing.T, uc *usecase.AssistantUseCase, ctx context.Context) *model.AnalysisReport {
		t.Helper()
		report, err := uc.Analyze(ctx)
		gt.NoError(t, err).Required()
		return report
	}

	newUC := func(t *testing.T) (*usecase.AssistantUseCase, context.Context) {
		t.Helper()
		repo := memory.New()
		riskUC := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()
		_, err := riskUC.CreateRisk(ctx, usecase.RiskInput{Title: "Some risk"})
		gt.NoError(t, err).Required()

		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{Texts: []string{`{"summary": "Fine.", "top_risks": [], "coverage_gaps": [], "recommendations": []}`}}, nil
					},
				}, nil
			},
		}
		return usecase.NewAssistantUseCase(repo, llm, nil, testRiskConfig()), ctx
	}

	t.Run("list reports paginates", func(t *testing.T) {
		uc, ctx := newUC(t)

		for range 3 {
			analyze(t, uc, ctx)
		}

		page, total, err := uc.ListReports(ctx, 2, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, page).Length(2)
		gt.Number(t, total).Equal(3)
	})

	t.Run("delete report", func(t *testing.T) {
		uc, ctx := newUC(t)
		report := analyze(t, uc, ctx)

		gt.NoError(t, uc.DeleteReport(ctx, report.ID)).Required()

		_, err := uc.GetReport(ctx, report.ID)
		gt.Error(t, err).Is(usecase.ErrReportNotFound)
	})

	t.Run("get missing report fails", func(t *testing.T) {
		uc, ctx := newUC(t)

		_, err := uc.GetReport(ctx, model.ReportID("no-such-report"))
		gt.Error(t, err).Is(usecase.ErrReportNotFound)
	})

	t.Run("delete missing report fails", func(t *testing.T) {
		uc, ctx := newUC(t)

		err := uc.DeleteReport(ctx, model.ReportID("no-such-report"))
		gt.Error(t, err).Is(usecase.ErrReportNotFound)
	})
}
