package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jungkj/riscura-sub000/pkg/cli/config"
	httpctrl "github.com/jungkj/riscura-sub000/pkg/controller/http"
	"github.com/jungkj/riscura-sub000/pkg/service/index"
	"github.com/jungkj/riscura-sub000/pkg/service/worker"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var staticDir string
	var escalationInterval string
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var storageCfg config.Storage
	var geminiCfg config.Gemini
	var slackCfg config.Slack
	var authCfg config.Auth

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RISCURA_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "static-dir",
			Usage:       "Directory with frontend assets to serve (API only when empty)",
			Sources:     cli.EnvVars("RISCURA_STATIC_DIR"),
			Destination: &staticDir,
		},
		&cli.StringFlag{
			Name:        "escalation-interval",
			Usage:       "How often active workflows are scanned for overdue steps (e.g. 1m, 30s)",
			Value:       "1m",
			Sources:     cli.EnvVars("RISCURA_ESCALATION_INTERVAL"),
			Destination: &escalationInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			interval, err := time.ParseDuration(escalationInterval)
			if err != nil {
				return goerr.Wrap(err, "invalid escalation-interval", goerr.V("value", escalationInterval))
			}

			// Load risk and workflow configuration
			riskCfg, workflowCfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load application configuration")
			}

			// Initialize repository based on backend type
			repo, repoCloser, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer repoCloser()

			// Configure authentication
			authUC, err := authCfg.Configure(repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authUC != nil && !authCfg.IsNoAuthn() {
				logging.Default().Info("OIDC authentication enabled")
			}

			ucOpts := []usecase.Option{
				usecase.WithRiskConfig(riskCfg),
				usecase.WithWorkflowConfig(workflowCfg),
			}
			if authUC != nil {
				ucOpts = append(ucOpts, usecase.WithAuth(authUC))
			}

			// Initialize document blob storage if configured
			storageSvc, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize storage")
			}
			if storageSvc != nil {
				ucOpts = append(ucOpts, usecase.WithStorage(storageSvc))
				logging.Default().Info("Document storage enabled", "backend", storageCfg.Backend())
			} else {
				logging.Default().Info("Storage backend not configured, document upload will be disabled")
			}

			// Initialize Gemini client if configured
			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Gemini client")
			}
			if llmClient != nil {
				ucOpts = append(ucOpts, usecase.WithLLM(llmClient))

				indexSvc, err := index.New(llmClient)
				if err != nil {
					return goerr.Wrap(err, "failed to initialize index service")
				}
				ucOpts = append(ucOpts, usecase.WithIndex(indexSvc))
				logging.Default().Info("AI assistant and vector search enabled")
			} else {
				logging.Default().Info("Gemini project not configured, AI assistant features will be disabled")
			}

			// Initialize Slack service if configured
			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Slack service")
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlack(slackSvc))
				if ch := slackCfg.NotifyChannel(); ch != "" {
					ucOpts = append(ucOpts, usecase.WithNotifyChannel(ch))
				}
				logging.Default().Info("Slack notifications enabled", "channel", slackCfg.NotifyChannel())
			} else {
				logging.Default().Info("Slack Bot Token not configured, notifications will be disabled")
			}

			uc := usecase.New(repo, ucOpts...)

			// Start escalation worker scanning active workflows
			escalationWorker := worker.NewEscalationWorker(repo, slackSvc, slackCfg.NotifyChannel(), interval)
			if err := escalationWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start escalation worker")
			}

			httpOpts := []httpctrl.Options{}
			if authUC != nil {
				httpOpts = append(httpOpts, httpctrl.WithAuth(authUC))
			}
			if staticDir != "" {
				httpOpts = append(httpOpts, httpctrl.WithStaticDir(staticDir))
			}

			httpHandler, err := httpctrl.New(uc, httpOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				escalationWorker.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop the escalation worker first
				escalationWorker.Stop()

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
