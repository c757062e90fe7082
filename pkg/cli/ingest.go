package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jungkj/riscura-sub000/pkg/cli/config"
	"github.com/jungkj/riscura-sub000/pkg/service/index"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
)

func cmdIngest() *cli.Command {
	var source string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var slackCfg config.Slack
	var notionCfg config.Notion
	var githubCfg config.GitHub

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "source",
			Usage:       "Ingestion source (notion, github or all)",
			Value:       "all",
			Sources:     cli.EnvVars("RISCURA_INGEST_SOURCE"),
			Destination: &source,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, notionCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)

	return &cli.Command{
		Name:    "ingest",
		Aliases: []string{"i"},
		Usage:   "Pull external documents into the document store",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize repository
			repo, repoCloser, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer repoCloser()

			var ucOpts []usecase.Option

			// Embed ingested documents when Gemini is configured
			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Gemini client")
			}
			if llmClient != nil {
				indexSvc, err := index.New(llmClient)
				if err != nil {
					return goerr.Wrap(err, "failed to initialize index service")
				}
				ucOpts = append(ucOpts, usecase.WithIndex(indexSvc))
			} else {
				logging.Default().Info("Gemini project not configured, ingested documents will stay unindexed")
			}

			// Slack notice about the ingestion outcome
			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Slack service")
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlack(slackSvc))
				if ch := slackCfg.NotifyChannel(); ch != "" {
					ucOpts = append(ucOpts, usecase.WithNotifyChannel(ch))
				}
			}

			notionSvc, err := notionCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Notion service")
			}
			if notionSvc != nil {
				ucOpts = append(ucOpts, usecase.WithNotion(notionSvc, notionCfg.DatabaseID()))
				logging.Default().Info("Notion source enabled", "database_id", notionCfg.DatabaseID())
			}

			githubSvc, err := githubCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize GitHub service")
			}
			if githubSvc != nil {
				owner, repoName, err := githubCfg.Repo()
				if err != nil {
					return err
				}
				ucOpts = append(ucOpts, usecase.WithGitHub(githubSvc, owner, repoName, githubCfg.Label()))
				logging.Default().Info("GitHub source enabled",
					"owner", owner, "repo", repoName, "label", githubCfg.Label())
			}

			uc := usecase.New(repo, ucOpts...)

			logging.Default().Info("Starting ingestion", "source", source)

			result, err := uc.Ingest.Ingest(ctx, source)
			if err != nil {
				return goerr.Wrap(err, "ingestion failed")
			}

			logging.Default().Info("Ingestion completed",
				"source", source,
				"created", result.Created,
				"updated", result.Updated,
				"skipped", result.Skipped,
				"failed", result.Failed,
			)
			return nil
		},
	}
}
