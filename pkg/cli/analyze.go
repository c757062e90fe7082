package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jungkj/riscura-sub000/pkg/cli/config"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
)

func cmdAnalyze() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var geminiCfg config.Gemini

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Run a one-shot AI analysis of the risk portfolio",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Load risk configuration for scoring context
			riskCfg, _, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load application configuration")
			}

			// Initialize repository
			repo, repoCloser, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer repoCloser()

			// Initialize Gemini LLM client (required)
			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Gemini client")
			}
			if llmClient == nil {
				return goerr.New("gemini-project is required for analyze")
			}

			uc := usecase.New(repo,
				usecase.WithRiskConfig(riskCfg),
				usecase.WithLLM(llmClient),
			)

			logging.Default().Info("Starting portfolio analysis")

			report, err := uc.Assistant.Analyze(ctx)
			if err != nil {
				return goerr.Wrap(err, "analysis failed")
			}

			header := color.New(color.Bold)
			ident := color.New(color.FgCyan)

			fmt.Printf("Analysis report %s (generated %s)\n", ident.Sprint(report.ID),
				report.CreatedAt.Format("2006-01-02 15:04:05 MST"))

			fmt.Println()
			header.Println("Summary")
			fmt.Printf("  %s\n", report.Summary)

			if len(report.TopRisks) > 0 {
				fmt.Println()
				header.Printf("Top risks (%d)\n", len(report.TopRisks))
				for _, risk := range report.TopRisks {
					fmt.Printf("  #%d %s\n", risk.RiskID, risk.Title)
					if risk.Reasoning != "" {
						fmt.Printf("      %s\n", risk.Reasoning)
					}
				}
			}

			if len(report.CoverageGaps) > 0 {
				fmt.Println()
				header.Printf("Coverage gaps (%d)\n", len(report.CoverageGaps))
				for _, gap := range report.CoverageGaps {
					fmt.Printf("  - %s\n", gap)
				}
			}

			if len(report.Recommendations) > 0 {
				fmt.Println()
				header.Printf("Recommendations (%d)\n", len(report.Recommendations))
				for _, rec := range report.Recommendations {
					fmt.Printf("  - %s\n", rec)
				}
			}

			logging.Default().Info("Analysis completed",
				"report_id", report.ID,
				"top_risks", len(report.TopRisks),
				"input_tokens", report.Usage.InputTokens,
				"output_tokens", report.Usage.OutputTokens,
			)
			return nil
		},
	}
}
