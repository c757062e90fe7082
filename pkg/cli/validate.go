package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jungkj/riscura-sub000/pkg/cli/config"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file and print a summary",
		Flags:   appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			riskCfg, workflowCfg, err := appCfg.Configure()
			if err != nil {
				fmt.Printf("%s Configuration is invalid\n", color.New(color.FgRed, color.Bold).Sprint("✗"))
				return goerr.Wrap(err, "configuration validation failed")
			}

			source := appCfg.Path()
			if source == "" {
				source = "built-in defaults"
			}

			ok := color.New(color.FgGreen, color.Bold)
			header := color.New(color.Bold)
			ident := color.New(color.FgCyan)

			fmt.Printf("%s Configuration valid (%s)\n", ok.Sprint("✓"), source)

			fmt.Println()
			header.Printf("Categories (%d)\n", len(riskCfg.Categories))
			for _, cat := range riskCfg.Categories {
				fmt.Printf("  %-18s %s\n", ident.Sprint(cat.ID), cat.Name)
			}

			fmt.Println()
			header.Printf("Likelihood scale (%d)\n", len(riskCfg.Likelihood))
			for _, level := range riskCfg.Likelihood {
				fmt.Printf("  %-18s %s (score %d)\n", ident.Sprint(level.ID), level.Name, level.Score)
			}

			fmt.Println()
			header.Printf("Impact scale (%d)\n", len(riskCfg.Impact))
			for _, level := range riskCfg.Impact {
				fmt.Printf("  %-18s %s (score %d)\n", ident.Sprint(level.ID), level.Name, level.Score)
			}

			fmt.Println()
			header.Println("Severity thresholds")
			fmt.Printf("  medium >= %d, high >= %d, critical >= %d\n",
				riskCfg.Thresholds.Medium, riskCfg.Thresholds.High, riskCfg.Thresholds.Critical)

			fmt.Println()
			if riskCfg.NotifySeverity != "" {
				fmt.Printf("Notify severity: %s\n", ident.Sprint(riskCfg.NotifySeverity.String()))
			} else {
				fmt.Println("Notify severity: disabled")
			}

			fmt.Println()
			header.Printf("Workflow templates (%d)\n", len(workflowCfg.Templates))
			for _, tmpl := range workflowCfg.Templates {
				fmt.Printf("  %-18s %s (%d steps)\n", ident.Sprint(tmpl.ID), tmpl.Name, len(tmpl.Steps))
				for _, step := range tmpl.Steps {
					if step.EscalateAfter > 0 {
						fmt.Printf("    - %s (escalate after %s)\n", step.Name, step.EscalateAfter)
					} else {
						fmt.Printf("    - %s\n", step.Name)
					}
				}
			}

			return nil
		},
	}
}
