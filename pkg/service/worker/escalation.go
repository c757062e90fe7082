package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	slacksvc "github.com/jungkj/riscura-sub000/pkg/service/slack"
	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	goslack "github.com/slack-go/slack"
)

// DefaultEscalationInterval is how often active workflows are scanned
const DefaultEscalationInterval = time.Minute

// EscalationWorker scans active workflows and escalates steps that sit
// past their due date plus grace period. Escalations are persisted,
// written to the audit trail and announced on Slack when configured.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type EscalationWorker struct {
	repo          interfaces.Repository
	slackService  slacksvc.Service
	notifyChannel string
	interval      time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewEscalationWorker creates a worker scanning at the given interval.
// slackSvc and notifyChannel are optional; without them escalations are
// still persisted but not announced.
func NewEscalationWorker(repo interfaces.Repository, slackSvc slacksvc.Service, notifyChannel string, interval time.Duration) *EscalationWorker {
	if interval <= 0 {
		interval = DefaultEscalationInterval
	}

	return &EscalationWorker{
		repo:          repo,
		slackService:  slackSvc,
		notifyChannel: notifyChannel,
		interval:      interval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start begins the background scan loop
// - Initial scan and periodic scans both run in a background goroutine
// - Does not block server startup
func (w *EscalationWorker) Start(ctx context.Context) error {
	logging.Default().Info("Escalation worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion.
// Calling Stop more than once is safe.
func (w *EscalationWorker) Stop() {
	w.stopOnce.Do(func() {
		logging.Default().Info("Escalation worker stopping")
		close(w.stopCh)
		<-w.doneCh
		logging.Default().Info("Escalation worker stopped")
	})
}

// run is the main worker loop (runs in goroutine)
func (w *EscalationWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Initial scan (runs in goroutine, does not block server startup)
	if err := w.scan(ctx); err != nil {
		logging.Default().Error("Initial escalation scan failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.scan(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("Escalation scan failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Escalation worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Escalation worker context cancelled")
			return
		}
	}
}

// scan performs a single escalation cycle over all active workflows
func (w *EscalationWorker) scan(ctx context.Context) error {
	now := time.Now().UTC()

	workflows, err := w.repo.Workflow().List(ctx, interfaces.WithWorkflowStatus(types.WorkflowStatusActive))
	if err != nil {
		return goerr.Wrap(err, "failed to list active workflows")
	}

	escalated := 0
	for _, wf := range workflows {
		i := wf.CurrentStep()
		if i < 0 {
			continue
		}
		if !wf.Steps[i].ShouldEscalate(now) {
			continue
		}

		if err := wf.EscalateStep(i, now); err != nil {
			logging.Default().Error("Failed to escalate workflow step",
				"workflowID", wf.ID, "step", i, "error", err.Error())
			continue
		}

		if _, err := w.repo.Workflow().Update(ctx, wf); err != nil {
			logging.Default().Error("Failed to persist escalated workflow",
				"workflowID", wf.ID, "step", i, "error", err.Error())
			continue
		}

		w.recordAudit(ctx, wf, i)
		w.notify(ctx, wf, i)
		escalated++
	}

	if escalated > 0 {
		logging.Default().Info("Escalation scan completed",
			"scanned", len(workflows),
			"escalated", escalated)
	}

	return nil
}

// recordAudit writes the escalation to the audit trail as a system action
func (w *EscalationWorker) recordAudit(ctx context.Context, wf *model.Workflow, stepIndex int) {
	entry := &model.AuditEntry{
		Actor:      model.SystemActor,
		Action:     types.AuditActionEscalateStep,
		EntityType: "workflow",
		EntityID:   fmt.Sprintf("%d", wf.ID),
		Details: map[string]any{
			"step":      int64(stepIndex),
			"step_name": wf.Steps[stepIndex].Name,
		},
	}

	if err := w.repo.Audit().Put(ctx, entry); err != nil {
		logging.Default().Error("Failed to record escalation audit entry",
			"workflowID", wf.ID, "step", stepIndex, "error", err.Error())
	}
}

// notify posts an escalation alert to the configured Slack channel (best-effort)
func (w *EscalationWorker) notify(ctx context.Context, wf *model.Workflow, stepIndex int) {
	if w.slackService == nil || w.notifyChannel == "" {
		return
	}

	step := wf.Steps[stepIndex]
	fallback := fmt.Sprintf("Workflow step escalated: %s / %s", wf.Title, step.Name)

	if _, err := w.slackService.PostMessage(ctx, w.notifyChannel, buildEscalationBlocks(wf, stepIndex), fallback); err != nil {
		logging.Default().Error("Failed to post escalation alert to Slack",
			"workflowID", wf.ID, "channel", w.notifyChannel, "error", err.Error())
	}
}

// buildEscalationBlocks renders the Slack Block Kit alert for an escalated step
func buildEscalationBlocks(wf *model.Workflow, stepIndex int) []goslack.Block {
	step := wf.Steps[stepIndex]

	fields := []*goslack.TextBlockObject{
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Workflow:*\n%s", wf.Title), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Step:*\n%d. %s", stepIndex+1, step.Name), false, false),
	}

	if step.AssigneeEmail != "" {
		fields = append(fields, goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Assignee:*\n%s", step.AssigneeEmail), false, false))
	}
	if step.DueAt != nil {
		fields = append(fields, goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Due:*\n%s", step.DueAt.Format("2006-01-02 15:04 MST")), false, false))
	}

	return []goslack.Block{
		goslack.NewHeaderBlock(
			goslack.NewTextBlockObject(goslack.PlainTextType, "⚠️ Workflow step escalated", true, false),
		),
		goslack.NewSectionBlock(nil, fields, nil),
	}
}
