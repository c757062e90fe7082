package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	goslack "github.com/slack-go/slack"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/config"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/service/slack"
	"github.com/jungkj/riscura-sub000/pkg/utils/errutil"
)

// MaxRiskTitleLength bounds risk titles
const MaxRiskTitleLength = 200

// RiskUseCase manages the risk register
type RiskUseCase struct {
	repo         interfaces.Repository
	riskConfig   *config.RiskConfig
	slackService slack.Service
}

func NewRiskUseCase(repo interfaces.Repository, riskConfig *config.RiskConfig, slackService slack.Service) *RiskUseCase {
	return &RiskUseCase{
		repo:         repo,
		riskConfig:   riskConfig,
		slackService: slackService,
	}
}

// RiskInput carries the caller-editable fields of a risk
type RiskInput struct {
	Title              string
	Description        string
	CategoryID         types.CategoryID
	OwnerEmail         string
	Status             types.RiskStatus
	LikelihoodID       types.LikelihoodID
	ImpactID           types.ImpactID
	ResidualLikelihood types.LikelihoodID
	ResidualImpact     types.ImpactID
	DueDate            *time.Time
}

func (uc *RiskUseCase) validateInput(input RiskInput) error {
	if input.Title == "" {
		return goerr.Wrap(ErrInvalidInput, "risk title is required")
	}
	if utf8.RuneCountInString(input.Title) > MaxRiskTitleLength {
		return goerr.Wrap(ErrInvalidInput, "risk title is too long",
			goerr.V("max", MaxRiskTitleLength))
	}

	if input.CategoryID != "" && !uc.riskConfig.HasCategory(input.CategoryID) {
		return goerr.Wrap(ErrInvalidInput, "unknown risk category",
			goerr.V("category_id", input.CategoryID))
	}

	if input.Status != "" {
		if _, err := types.ParseRiskStatus(string(input.Status)); err != nil {
			return goerr.Wrap(ErrInvalidInput, "invalid risk status",
				goerr.V("status", input.Status))
		}
	}

	if input.LikelihoodID != "" && !uc.riskConfig.HasLikelihood(input.LikelihoodID) {
		return goerr.Wrap(ErrInvalidInput, "unknown likelihood level",
			goerr.V("likelihood_id", input.LikelihoodID))
	}
	if input.ImpactID != "" && !uc.riskConfig.HasImpact(input.ImpactID) {
		return goerr.Wrap(ErrInvalidInput, "unknown impact level",
			goerr.V("impact_id", input.ImpactID))
	}

	// A residual assessment is recorded as a pair
	if (input.ResidualLikelihood == "") != (input.ResidualImpact == "") {
		return goerr.Wrap(ErrInvalidInput, "residual likelihood and impact must be set together")
	}
	if input.ResidualLikelihood != "" && !uc.riskConfig.HasLikelihood(input.ResidualLikelihood) {
		return goerr.Wrap(ErrInvalidInput, "unknown residual likelihood level",
			goerr.V("likelihood_id", input.ResidualLikelihood))
	}
	if input.ResidualImpact != "" && !uc.riskConfig.HasImpact(input.ResidualImpact) {
		return goerr.Wrap(ErrInvalidInput, "unknown residual impact level",
			goerr.V("impact_id", input.ResidualImpact))
	}

	return nil
}

// CreateRisk registers a new risk. Risks at or above the configured
// notify severity get a dedicated Slack channel; if the channel ID
// cannot be persisted the channel is archived again so no orphan
// remains.
func (uc *RiskUseCase) CreateRisk(ctx context.Context, input RiskInput) (*model.Risk, error) {
	if err := uc.validateInput(input); err != nil {
		return nil, err
	}

	risk := &model.Risk{
		Title:              input.Title,
		Description:        input.Description,
		CategoryID:         input.CategoryID,
		OwnerEmail:         input.OwnerEmail,
		Status:             input.Status.Normalize(),
		LikelihoodID:       input.LikelihoodID,
		ImpactID:           input.ImpactID,
		ResidualLikelihood: input.ResidualLikelihood,
		ResidualImpact:     input.ResidualImpact,
		DueDate:            input.DueDate,
	}

	created, err := uc.repo.Risk().Create(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk")
	}

	severity := uc.riskConfig.SeverityOf(uc.riskConfig.ScoreOf(created.LikelihoodID, created.ImpactID))
	if uc.slackService != nil && uc.riskConfig.ShouldNotify(severity) {
		channelID, err := uc.slackService.CreateChannel(ctx, created.ID, created.Title)
		if err != nil {
			// Rollback: delete the risk
			if delErr := uc.repo.Risk().Delete(ctx, created.ID); delErr != nil {
				return nil, goerr.Wrap(err, "failed to create Slack channel for risk, and also failed to roll back risk creation",
					goerr.V("rollback_error", delErr),
					goerr.V(RiskIDKey, created.ID))
			}
			return nil, goerr.Wrap(err, "failed to create Slack channel for risk", goerr.V(RiskIDKey, created.ID))
		}

		created.SlackChannelID = channelID
		updated, err := uc.repo.Risk().Update(ctx, created)
		if err != nil {
			// Rollback: archive the channel so no orphan remains
			if archErr := uc.slackService.ArchiveChannel(ctx, channelID); archErr != nil {
				errutil.Handle(ctx, archErr, "failed to archive orphaned Slack channel")
			}
			return nil, goerr.Wrap(err, "failed to store Slack channel ID on risk",
				goerr.V("channel_id", channelID),
				goerr.V(RiskIDKey, created.ID))
		}
		created = updated

		uc.postRiskNotice(ctx, created, severity)
	}

	recordAudit(ctx, uc.repo, types.AuditActionCreateRisk, "risk", strconv.FormatInt(created.ID, 10), map[string]any{
		"title":    created.Title,
		"severity": severity.String(),
	})

	return created, nil
}

// GetRisk returns a single risk
func (uc *RiskUseCase) GetRisk(ctx context.Context, id int64) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, id))
	}
	return risk, nil
}

// RiskFilter narrows a risk register query
type RiskFilter struct {
	Status     *types.RiskStatus
	CategoryID *types.CategoryID
	OwnerEmail string
	Severity   *types.Severity
}

// ListRisks returns risks matching the filter, highest score first.
// Severity is computed from the configured scales, so it is filtered
// here rather than in the repository.
func (uc *RiskUseCase) ListRisks(ctx context.Context, filter RiskFilter) ([]*model.Risk, error) {
	var opts []interfaces.ListRiskOption
	if filter.Status != nil {
		opts = append(opts, interfaces.WithRiskStatus(*filter.Status))
	}
	if filter.CategoryID != nil {
		opts = append(opts, interfaces.WithRiskCategory(*filter.CategoryID))
	}
	if filter.OwnerEmail != "" {
		opts = append(opts, interfaces.WithRiskOwner(filter.OwnerEmail))
	}

	risks, err := uc.repo.Risk().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}

	if filter.Severity != nil {
		filtered := make([]*model.Risk, 0, len(risks))
		for _, r := range risks {
			severity := uc.riskConfig.SeverityOf(uc.riskConfig.ScoreOf(r.LikelihoodID, r.ImpactID))
			if severity == *filter.Severity {
				filtered = append(filtered, r)
			}
		}
		risks = filtered
	}

	sort.SliceStable(risks, func(i, j int) bool {
		si := uc.riskConfig.ScoreOf(risks[i].LikelihoodID, risks[i].ImpactID)
		sj := uc.riskConfig.ScoreOf(risks[j].LikelihoodID, risks[j].ImpactID)
		return si > sj
	})

	return risks, nil
}

// UpdateRisk replaces the caller-editable fields of a risk. The Slack
// channel is renamed when the title changes.
func (uc *RiskUseCase) UpdateRisk(ctx context.Context, id int64, input RiskInput) (*model.Risk, error) {
	existing, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, id))
	}

	if err := uc.validateInput(input); err != nil {
		return nil, err
	}

	if uc.slackService != nil && existing.SlackChannelID != "" && existing.Title != input.Title {
		if err := uc.slackService.RenameChannel(ctx, existing.SlackChannelID, id, input.Title); err != nil {
			return nil, goerr.Wrap(err, "failed to rename Slack channel",
				goerr.V(RiskIDKey, id),
				goerr.V("channel_id", existing.SlackChannelID))
		}
	}

	risk := &model.Risk{
		ID:                 id,
		Title:              input.Title,
		Description:        input.Description,
		CategoryID:         input.CategoryID,
		OwnerEmail:         input.OwnerEmail,
		Status:             input.Status.Normalize(),
		LikelihoodID:       input.LikelihoodID,
		ImpactID:           input.ImpactID,
		ResidualLikelihood: input.ResidualLikelihood,
		ResidualImpact:     input.ResidualImpact,
		DueDate:            input.DueDate,
		SlackChannelID:     existing.SlackChannelID,
		CreatedAt:          existing.CreatedAt,
	}

	updated, err := uc.repo.Risk().Update(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V(RiskIDKey, id))
	}

	recordAudit(ctx, uc.repo, types.AuditActionUpdateRisk, "risk", strconv.FormatInt(id, 10), map[string]any{
		"title":  updated.Title,
		"status": updated.Status.String(),
	})

	return updated, nil
}

// DeleteRisk removes a risk and its control links. The Slack channel,
// when present, is archived rather than deleted.
func (uc *RiskUseCase) DeleteRisk(ctx context.Context, id int64) error {
	existing, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, id))
	}

	if err := uc.repo.RiskControl().DeleteByRisk(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to unlink controls from risk", goerr.V(RiskIDKey, id))
	}

	if err := uc.repo.Risk().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V(RiskIDKey, id))
	}

	if uc.slackService != nil && existing.SlackChannelID != "" {
		if err := uc.slackService.ArchiveChannel(ctx, existing.SlackChannelID); err != nil {
			errutil.Handle(ctx, err, "failed to archive Slack channel of deleted risk")
		}
	}

	recordAudit(ctx, uc.repo, types.AuditActionDeleteRisk, "risk", strconv.FormatInt(id, 10), map[string]any{
		"title": existing.Title,
	})

	return nil
}

// LinkControl connects a control to a risk. Linking an already linked
// pair is a no-op.
func (uc *RiskUseCase) LinkControl(ctx context.Context, riskID, controlID int64) error {
	if _, err := uc.repo.Risk().Get(ctx, riskID); err != nil {
		return goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}
	if _, err := uc.repo.Control().Get(ctx, controlID); err != nil {
		return goerr.Wrap(ErrControlNotFound, "control not found", goerr.V(ControlIDKey, controlID))
	}

	if err := uc.repo.RiskControl().Link(ctx, riskID, controlID); err != nil {
		return goerr.Wrap(err, "failed to link control to risk",
			goerr.V(RiskIDKey, riskID), goerr.V(ControlIDKey, controlID))
	}

	recordAudit(ctx, uc.repo, types.AuditActionLinkControl, "risk", strconv.FormatInt(riskID, 10), map[string]any{
		"control_id": controlID,
	})

	return nil
}

// UnlinkControl disconnects a control from a risk
func (uc *RiskUseCase) UnlinkControl(ctx context.Context, riskID, controlID int64) error {
	if _, err := uc.repo.Risk().Get(ctx, riskID); err != nil {
		return goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}

	if err := uc.repo.RiskControl().Unlink(ctx, riskID, controlID); err != nil {
		return goerr.Wrap(err, "failed to unlink control from risk",
			goerr.V(RiskIDKey, riskID), goerr.V(ControlIDKey, controlID))
	}

	recordAudit(ctx, uc.repo, types.AuditActionUnlinkControl, "risk", strconv.FormatInt(riskID, 10), map[string]any{
		"control_id": controlID,
	})

	return nil
}

// ListControlsForRisk returns the controls linked to a risk
func (uc *RiskUseCase) ListControlsForRisk(ctx context.Context, riskID int64) ([]*model.Control, error) {
	if _, err := uc.repo.Risk().Get(ctx, riskID); err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}

	controls, err := uc.repo.RiskControl().GetControlsByRisk(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list controls for risk", goerr.V(RiskIDKey, riskID))
	}

	return controls, nil
}

// ControlsForRisks batch-loads the linked controls of multiple risks
func (uc *RiskUseCase) ControlsForRisks(ctx context.Context, riskIDs []int64) (map[int64][]*model.Control, error) {
	linked, err := uc.repo.RiskControl().GetControlsByRisks(ctx, riskIDs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to batch-load controls for risks")
	}
	return linked, nil
}

// postRiskNotice posts a summary message into a freshly created risk
// channel (best-effort).
func (uc *RiskUseCase) postRiskNotice(ctx context.Context, risk *model.Risk, severity types.Severity) {
	fallback := fmt.Sprintf("New risk #%d: %s", risk.ID, risk.Title)

	fields := []*goslack.TextBlockObject{
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Severity:*\n%s", severity), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Status:*\n%s", risk.Status.Normalize()), false, false),
	}
	if risk.CategoryID != "" {
		fields = append(fields, goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Category:*\n%s", risk.CategoryID), false, false))
	}
	if risk.OwnerEmail != "" {
		fields = append(fields, goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Owner:*\n%s", risk.OwnerEmail), false, false))
	}

	blocks := []goslack.Block{
		goslack.NewHeaderBlock(
			goslack.NewTextBlockObject(goslack.PlainTextType, fmt.Sprintf("🚨 Risk #%d: %s", risk.ID, risk.Title), true, false),
		),
		goslack.NewSectionBlock(nil, fields, nil),
	}
	if risk.Description != "" {
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, risk.Description, false, false), nil, nil))
	}

	if _, err := uc.slackService.PostMessage(ctx, risk.SlackChannelID, blocks, fallback); err != nil {
		errutil.Handle(ctx, err, "failed to post risk summary to Slack")
	}
}
