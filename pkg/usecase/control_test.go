package usecase_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/repository/memory"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

func TestControlUseCase_CreateControl(t *testing.T) {
	t.Run("create control with all fields", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		created, err := uc.CreateControl(ctx, usecase.ControlInput{
			Name:          "Quarterly access review",
			Description:   "Review all privileged accounts every quarter",
			Type:          types.ControlTypeDetective,
			Status:        types.ControlStatusOperating,
			Effectiveness: types.EffectivenessEffective,
			OwnerEmail:    "secops@example.com",
			Reference:     "ISO27001 A.9.2.5",
		})
		gt.NoError(t, err).Required()

		gt.Number(t, created.ID).NotEqual(0)
		gt.Value(t, created.Type).Equal(types.ControlTypeDetective)
		gt.Value(t, created.Status).Equal(types.ControlStatusOperating)
		gt.Value(t, created.Effectiveness).Equal(types.EffectivenessEffective)
		gt.Value(t, created.Reference).Equal("ISO27001 A.9.2.5")

		entries := waitForAudit(t, repo, "control", strconv.FormatInt(created.ID, 10))
		gt.Value(t, entries[0].Action).Equal(types.AuditActionCreateControl)
	})

	t.Run("empty status and effectiveness take defaults", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		created, err := uc.CreateControl(ctx, usecase.ControlInput{Name: "Bare control"})
		gt.NoError(t, err).Required()

		gt.Value(t, created.Status).Equal(types.ControlStatusDraft)
		gt.Value(t, created.Effectiveness).Equal(types.EffectivenessNotTested)
	})

	t.Run("create control without name fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		_, err := uc.CreateControl(ctx, usecase.ControlInput{Description: "nameless"})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("overlong name fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		_, err := uc.CreateControl(ctx, usecase.ControlInput{
			Name: strings.Repeat("n", usecase.MaxControlNameLength+1),
		})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("invalid enum values fail", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		_, err := uc.CreateControl(ctx, usecase.ControlInput{Name: "Typo", Type: "proactive"})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)

		_, err = uc.CreateControl(ctx, usecase.ControlInput{Name: "Typo", Status: "enabled"})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)

		_, err = uc.CreateControl(ctx, usecase.ControlInput{Name: "Typo", Effectiveness: "perfect"})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}

func TestControlUseCase_GetControl(t *testing.T) {
	t.Run("get returns the created control", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		created, err := uc.CreateControl(ctx, usecase.ControlInput{Name: "Lookup target"})
		gt.NoError(t, err).Required()

		got, err := uc.GetControl(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Lookup target")
	})

	t.Run("get missing control fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		_, err := uc.GetControl(ctx, 9999)
		gt.Error(t, err).Is(usecase.ErrControlNotFound)
	})
}

func TestControlUseCase_ListControls(t *testing.T) {
	seed := func(t *testing.T) (*usecase.ControlUseCase, context.Context) {
		t.Helper()
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		inputs := []usecase.ControlInput{
			{Name: "Firewall rules", Type: types.ControlTypePreventive, Status: types.ControlStatusOperating, Effectiveness: types.EffectivenessEffective},
			{Name: "Log review", Type: types.ControlTypeDetective, Status: types.ControlStatusOperating},
			{Name: "Incident runbook", Type: types.ControlTypeCorrective, Status: types.ControlStatusDraft},
		}
		for _, input := range inputs {
			_, err := uc.CreateControl(ctx, input)
			gt.NoError(t, err).Required()
		}
		return uc, ctx
	}

	t.Run("list all", func(t *testing.T) {
		uc, ctx := seed(t)

		controls, err := uc.ListControls(ctx, usecase.ControlFilter{})
		gt.NoError(t, err).Required()
		gt.Array(t, controls).Length(3)
	})

	t.Run("filter by type", func(t *testing.T) {
		uc, ctx := seed(t)

		detective := types.ControlTypeDetective
		controls, err := uc.ListControls(ctx, usecase.ControlFilter{Type: &detective})
		gt.NoError(t, err).Required()
		gt.Array(t, controls).Length(1).Required()
		gt.Value(t, controls[0].Name).Equal("Log review")
	})

	t.Run("filter by status", func(t *testing.T) {
		uc, ctx := seed(t)

		operating := types.ControlStatusOperating
		controls, err := uc.ListControls(ctx, usecase.ControlFilter{Status: &operating})
		gt.NoError(t, err).Required()
		gt.Array(t, controls).Length(2)
	})

	t.Run("filter by effectiveness", func(t *testing.T) {
		uc, ctx := seed(t)

		effective := types.EffectivenessEffective
		controls, err := uc.ListControls(ctx, usecase.ControlFilter{Effectiveness: &effective})
		gt.NoError(t, err).Required()
		gt.Array(t, controls).Length(1).Required()
		gt.Value(t, controls[0].Name).Equal("Firewall rules")
	})
}

func TestControlUseCase_UpdateControl(t *testing.T) {
	t.Run("update replaces fields and keeps creation time", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		created, err := uc.CreateControl(ctx, usecase.ControlInput{
			Name:   "Draft control",
			Status: types.ControlStatusDraft,
		})
		gt.NoError(t, err).Required()

		updated, err := uc.UpdateControl(ctx, created.ID, usecase.ControlInput{
			Name:          "Implemented control",
			Status:        types.ControlStatusImplemented,
			Effectiveness: types.EffectivenessPartial,
		})
		gt.NoError(t, err).Required()

		gt.Value(t, updated.Name).Equal("Implemented control")
		gt.Value(t, updated.Status).Equal(types.ControlStatusImplemented)
		gt.Value(t, updated.Effectiveness).Equal(types.EffectivenessPartial)
		gt.Value(t, updated.CreatedAt).Equal(created.CreatedAt)
	})

	t.Run("update missing control fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		_, err := uc.UpdateControl(ctx, 404, usecase.ControlInput{Name: "Ghost"})
		gt.Error(t, err).Is(usecase.ErrControlNotFound)
	})

	t.Run("update with invalid input fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		created, err := uc.CreateControl(ctx, usecase.ControlInput{Name: "Valid control"})
		gt.NoError(t, err).Required()

		_, err = uc.UpdateControl(ctx, created.ID, usecase.ControlInput{Name: ""})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}

func TestControlUseCase_DeleteControl(t *testing.T) {
	t.Run("delete removes the control and its risk links", func(t *testing.T) {
		repo := memory.New()
		controlUC := usecase.NewControlUseCase(repo)
		riskUC := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		control, err := controlUC.CreateControl(ctx, usecase.ControlInput{Name: "Doomed control"})
		gt.NoError(t, err).Required()
		risk, err := riskUC.CreateRisk(ctx, usecase.RiskInput{Title: "Surviving risk"})
		gt.NoError(t, err).Required()
		gt.NoError(t, riskUC.LinkControl(ctx, risk.ID, control.ID)).Required()

		gt.NoError(t, controlUC.DeleteControl(ctx, control.ID)).Required()

		_, err = controlUC.GetControl(ctx, control.ID)
		gt.Error(t, err).Is(usecase.ErrControlNotFound)

		controls, err := riskUC.ListControlsForRisk(ctx, risk.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, controls).Length(0)
	})

	t.Run("delete missing control fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		err := uc.DeleteControl(ctx, 404)
		gt.Error(t, err).Is(usecase.ErrControlNotFound)
	})
}

func TestControlUseCase_ListRisksForControl(t *testing.T) {
	t.Run("returns linked risks", func(t *testing.T) {
		repo := memory.New()
		controlUC := usecase.NewControlUseCase(repo)
		riskUC := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		control, err := controlUC.CreateControl(ctx, usecase.ControlInput{Name: "Shared control"})
		gt.NoError(t, err).Required()
		r1, err := riskUC.CreateRisk(ctx, usecase.RiskInput{Title: "First risk"})
		gt.NoError(t, err).Required()
		r2, err := riskUC.CreateRisk(ctx, usecase.RiskInput{Title: "Second risk"})
		gt.NoError(t, err).Required()
		gt.NoError(t, riskUC.LinkControl(ctx, r1.ID, control.ID)).Required()
		gt.NoError(t, riskUC.LinkControl(ctx, r2.ID, control.ID)).Required()

		risks, err := controlUC.ListRisksForControl(ctx, control.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(2)

		var titles []string
		for _, r := range risks {
			titles = append(titles, r.Title)
		}
		gt.Array(t, titles).Has("First risk")
		gt.Array(t, titles).Has("Second risk")
	})

	t.Run("missing control fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		_, err := uc.ListRisksForControl(ctx, 404)
		gt.Error(t, err).Is(usecase.ErrControlNotFound)
	})
}
