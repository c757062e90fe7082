package usecase

import (
	"context"
	"strconv"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// MaxControlNameLength bounds control names
const MaxControlNameLength = 200

// ControlUseCase manages the controls library
type ControlUseCase struct {
	repo interfaces.Repository
}

func NewControlUseCase(repo interfaces.Repository) *ControlUseCase {
	return &ControlUseCase{repo: repo}
}

// ControlInput carries the caller-editable fields of a control
type ControlInput struct {
	Name          string
	Description   string
	Type          types.ControlType
	Status        types.ControlStatus
	Effectiveness types.Effectiveness
	OwnerEmail    string
	Reference     string
}

func validateControlInput(input ControlInput) error {
	if input.Name == "" {
		return goerr.Wrap(ErrInvalidInput, "control name is required")
	}
	if utf8.RuneCountInString(input.Name) > MaxControlNameLength {
		return goerr.Wrap(ErrInvalidInput, "control name is too long",
			goerr.V("max", MaxControlNameLength))
	}

	if input.Type != "" && !input.Type.IsValid() {
		return goerr.Wrap(ErrInvalidInput, "invalid control type",
			goerr.V("type", input.Type))
	}
	if input.Status != "" && !input.Status.IsValid() {
		return goerr.Wrap(ErrInvalidInput, "invalid control status",
			goerr.V("status", input.Status))
	}
	if input.Effectiveness != "" && !input.Effectiveness.IsValid() {
		return goerr.Wrap(ErrInvalidInput, "invalid effectiveness",
			goerr.V("effectiveness", input.Effectiveness))
	}

	return nil
}

// CreateControl adds a control to the library
func (uc *ControlUseCase) CreateControl(ctx context.Context, input ControlInput) (*model.Control, error) {
	if err := validateControlInput(input); err != nil {
		return nil, err
	}

	control := &model.Control{
		Name:          input.Name,
		Description:   input.Description,
		Type:          input.Type,
		Status:        input.Status.Normalize(),
		Effectiveness: input.Effectiveness.Normalize(),
		OwnerEmail:    input.OwnerEmail,
		Reference:     input.Reference,
	}

	created, err := uc.repo.Control().Create(ctx, control)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create control")
	}

	recordAudit(ctx, uc.repo, types.AuditActionCreateControl, "control", strconv.FormatInt(created.ID, 10), map[string]any{
		"name": created.Name,
	})

	return created, nil
}

// GetControl returns a single control
func (uc *ControlUseCase) GetControl(ctx context.Context, id int64) (*model.Control, error) {
	control, err := uc.repo.Control().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrControlNotFound, "control not found", goerr.V(ControlIDKey, id))
	}
	return control, nil
}

// ControlFilter narrows a controls library query
type ControlFilter struct {
	Type          *types.ControlType
	Status        *types.ControlStatus
	Effectiveness *types.Effectiveness
}

// ListControls returns controls matching the filter
func (uc *ControlUseCase) ListControls(ctx context.Context, filter ControlFilter) ([]*model.Control, error) {
	var opts []interfaces.ListControlOption
	if filter.Type != nil {
		opts = append(opts, interfaces.WithControlType(*filter.Type))
	}
	if filter.Status != nil {
		opts = append(opts, interfaces.WithControlStatus(*filter.Status))
	}
	if filter.Effectiveness != nil {
		opts = append(opts, interfaces.WithEffectiveness(*filter.Effectiveness))
	}

	controls, err := uc.repo.Control().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list controls")
	}

	return controls, nil
}

// UpdateControl replaces the caller-editable fields of a control
func (uc *ControlUseCase) UpdateControl(ctx context.Context, id int64, input ControlInput) (*model.Control, error) {
	existing, err := uc.repo.Control().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrControlNotFound, "control not found", goerr.V(ControlIDKey, id))
	}

	if err := validateControlInput(input); err != nil {
		return nil, err
	}

	control := &model.Control{
		ID:            id,
		Name:          input.Name,
		Description:   input.Description,
		Type:          input.Type,
		Status:        input.Status.Normalize(),
		Effectiveness: input.Effectiveness.Normalize(),
		OwnerEmail:    input.OwnerEmail,
		Reference:     input.Reference,
		CreatedAt:     existing.CreatedAt,
	}

	updated, err := uc.repo.Control().Update(ctx, control)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update control", goerr.V(ControlIDKey, id))
	}

	recordAudit(ctx, uc.repo, types.AuditActionUpdateControl, "control", strconv.FormatInt(id, 10), map[string]any{
		"name":   updated.Name,
		"status": updated.Status.String(),
	})

	return updated, nil
}

// DeleteControl removes a control and all of its risk links
func (uc *ControlUseCase) DeleteControl(ctx context.Context, id int64) error {
	existing, err := uc.repo.Control().Get(ctx, id)
	if err != nil {
		return goerr.Wrap(ErrControlNotFound, "control not found", goerr.V(ControlIDKey, id))
	}

	if err := uc.repo.RiskControl().DeleteByControl(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to unlink risks from control", goerr.V(ControlIDKey, id))
	}

	if err := uc.repo.Control().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete control", goerr.V(ControlIDKey, id))
	}

	recordAudit(ctx, uc.repo, types.AuditActionDeleteControl, "control", strconv.FormatInt(id, 10), map[string]any{
		"name": existing.Name,
	})

	return nil
}

// ListRisksForControl returns the risks a control is linked to
func (uc *ControlUseCase) ListRisksForControl(ctx context.Context, controlID int64) ([]*model.Risk, error) {
	if _, err := uc.repo.Control().Get(ctx, controlID); err != nil {
		return nil, goerr.Wrap(ErrControlNotFound, "control not found", goerr.V(ControlIDKey, controlID))
	}

	risks, err := uc.repo.RiskControl().GetRisksByControl(ctx, controlID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks for control", goerr.V(ControlIDKey, controlID))
	}

	return risks, nil
}
