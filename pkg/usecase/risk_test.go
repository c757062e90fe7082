package usecase_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	goslack "github.com/slack-go/slack"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/config"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/repository/memory"
	"github.com/jungkj/riscura-sub000/pkg/service/slack"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

// testRiskConfig returns a three-by-three scoring configuration with
// the default severity bands
func testRiskConfig() *config.RiskConfig {
	return &config.RiskConfig{
		Categories: []config.Category{
			{ID: "security", Name: "Security"},
			{ID: "compliance", Name: "Compliance"},
			{ID: "operations", Name: "Operations"},
		},
		Likelihood: []config.LikelihoodLevel{
			{ID: "rare", Name: "Rare", Score: 1},
			{ID: "possible", Name: "Possible", Score: 3},
			{ID: "likely", Name: "Likely", Score: 5},
		},
		Impact: []config.ImpactLevel{
			{ID: "minor", Name: "Minor", Score: 1},
			{ID: "moderate", Name: "Moderate", Score: 3},
			{ID: "severe", Name: "Severe", Score: 5},
		},
	}
}

// mockSlackService is a mock implementation of slack.Service that
// records channel operations
type mockSlackService struct {
	channelID string
	createErr error
	renameErr error

	created  []int64  // risk IDs passed to CreateChannel
	renamed  []string // channel IDs passed to RenameChannel
	archived []string // channel IDs passed to ArchiveChannel
	posted   []string // channel IDs passed to PostMessage
}

func (m *mockSlackService) ListJoinedChannels(ctx context.Context) ([]slack.Channel, error) {
	return nil, nil
}

func (m *mockSlackService) GetChannelNames(ctx context.Context, ids []string) (map[string]string, error) {
	return nil, nil
}

func (m *mockSlackService) CreateChannel(ctx context.Context, riskID int64, riskName string) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.created = append(m.created, riskID)
	if m.channelID != "" {
		return m.channelID, nil
	}
	return "C0RISK", nil
}

func (m *mockSlackService) RenameChannel(ctx context.Context, channelID string, riskID int64, riskName string) error {
	if m.renameErr != nil {
		return m.renameErr
	}
	m.renamed = append(m.renamed, channelID)
	return nil
}

func (m *mockSlackService) ArchiveChannel(ctx context.Context, channelID string) error {
	m.archived = append(m.archived, channelID)
	return nil
}

func (m *mockSlackService) PostMessage(ctx context.Context, channelID string, blocks []goslack.Block, text string) (string, error) {
	m.posted = append(m.posted, channelID)
	return "1234567890.123456", nil
}

// waitForAudit polls the audit trail until an entry for the entity
// appears. Audit writes are dispatched asynchronously, so tests have
// to wait for them.
func waitForAudit(t *testing.T, repo interfaces.Repository, entityType, entityID string) []*model.AuditEntry {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := repo.Audit().List(context.Background(), interfaces.WithAuditEntity(entityType, entityID))
		gt.NoError(t, err).Required()
		if len(entries) > 0 {
			return entries
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no audit entry for %s/%s within deadline", entityType, entityID)
	return nil
}

func TestRiskUseCase_CreateRisk(t *testing.T) {
	t.Run("create risk with valid fields", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		due := time.Now().Add(30 * 24 * time.Hour)
		created, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:        "Unencrypted customer data at rest",
			Description:  "Customer PII is stored without encryption",
			CategoryID:   "security",
			OwnerEmail:   "alice@example.com",
			Status:       types.RiskStatusAssessed,
			LikelihoodID: "possible",
			ImpactID:     "severe",
			DueDate:      &due,
		})
		gt.NoError(t, err).Required()

		gt.Number(t, created.ID).NotEqual(0)
		gt.Value(t, created.Title).Equal("Unencrypted customer data at rest")
		gt.Value(t, created.Status).Equal(types.RiskStatusAssessed)
		gt.Value(t, created.CategoryID).Equal(types.CategoryID("security"))
		gt.Value(t, created.SlackChannelID).Equal("")

		entries := waitForAudit(t, repo, "risk", strconv.FormatInt(created.ID, 10))
		gt.Value(t, entries[0].Action).Equal(types.AuditActionCreateRisk)
		gt.Value(t, entries[0].Actor).Equal(model.SystemActor)
	})

	t.Run("empty status defaults to identified", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		created, err := uc.CreateRisk(ctx, usecase.RiskInput{Title: "Untriaged finding"})
		gt.NoError(t, err).Required()
		gt.Value(t, created.Status).Equal(types.RiskStatusIdentified)
	})

	t.Run("create risk without title fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		_, err := uc.CreateRisk(ctx, usecase.RiskInput{Description: "no title"})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("create risk with overlong title fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		_, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title: strings.Repeat("x", usecase.MaxRiskTitleLength+1),
		})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("unknown category fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		_, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:      "Bad category",
			CategoryID: "finance",
		})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("unknown likelihood fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		_, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:        "Bad likelihood",
			LikelihoodID: "certain",
		})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("invalid status fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		_, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:  "Bad status",
			Status: "resolved",
		})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("residual assessment must be a pair", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		_, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:              "Half a residual",
			ResidualLikelihood: "rare",
		})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)

		created, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:              "Full residual",
			LikelihoodID:       "likely",
			ImpactID:           "severe",
			ResidualLikelihood: "rare",
			ResidualImpact:     "minor",
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, created.HasResidual()).True()
	})
}

func TestRiskUseCase_SlackChannel(t *testing.T) {
	t.Run("severe risk gets a dedicated channel", func(t *testing.T) {
		repo := memory.New()
		cfg := testRiskConfig()
		cfg.NotifySeverity = types.SeverityHigh
		mock := &mockSlackService{channelID: "C0BREACH"}
		uc := usecase.NewRiskUseCase(repo, cfg, mock)
		ctx := context.Background()

		created, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:        "Production database exposed",
			LikelihoodID: "likely",
			ImpactID:     "severe",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.SlackChannelID).Equal("C0BREACH")
		gt.Array(t, mock.created).Length(1)

		// The summary notice lands in the fresh channel
		gt.Array(t, mock.posted).Length(1)
		gt.Value(t, mock.posted[0]).Equal("C0BREACH")
	})

	t.Run("low risk gets no channel", func(t *testing.T) {
		repo := memory.New()
		cfg := testRiskConfig()
		cfg.NotifySeverity = types.SeverityHigh
		mock := &mockSlackService{}
		uc := usecase.NewRiskUseCase(repo, cfg, mock)
		ctx := context.Background()

		created, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:        "Stale wiki page",
			LikelihoodID: "rare",
			ImpactID:     "minor",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.SlackChannelID).Equal("")
		gt.Array(t, mock.created).Length(0)
	})

	t.Run("no notify severity disables channels entirely", func(t *testing.T) {
		repo := memory.New()
		mock := &mockSlackService{}
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), mock)
		ctx := context.Background()

		created, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:        "Critical but quiet",
			LikelihoodID: "likely",
			ImpactID:     "severe",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.SlackChannelID).Equal("")
		gt.Array(t, mock.created).Length(0)
	})

	t.Run("channel creation failure rolls back the risk", func(t *testing.T) {
		repo := memory.New()
		cfg := testRiskConfig()
		cfg.NotifySeverity = types.SeverityHigh
		mock := &mockSlackService{createErr: errors.New("slack is down")}
		uc := usecase.NewRiskUseCase(repo, cfg, mock)
		ctx := context.Background()

		_, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:        "Should not survive",
			LikelihoodID: "likely",
			ImpactID:     "severe",
		})
		gt.Value(t, err).NotNil()

		risks, err := uc.ListRisks(ctx, usecase.RiskFilter{})
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(0)
	})
}

func TestRiskUseCase_GetRisk(t *testing.T) {
	t.Run("get returns the created risk", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		created, err := uc.CreateRisk(ctx, usecase.RiskInput{Title: "Lookup target"})
		gt.NoError(t, err).Required()

		got, err := uc.GetRisk(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Lookup target")
	})

	t.Run("get missing risk fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		_, err := uc.GetRisk(ctx, 9999)
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	})
}

func TestRiskUseCase_ListRisks(t *testing.T) {
	seed := func(t *testing.T) (*usecase.RiskUseCase, context.Context) {
		t.Helper()
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		inputs := []usecase.RiskInput{
			{Title: "Paper cut", LikelihoodID: "rare", ImpactID: "minor", OwnerEmail: "bob@example.com"},
			{Title: "Data breach", LikelihoodID: "likely", ImpactID: "severe", CategoryID: "security", OwnerEmail: "alice@example.com"},
			{Title: "Audit gap", LikelihoodID: "possible", ImpactID: "severe", CategoryID: "compliance", Status: types.RiskStatusClosed},
		}
		for _, input := range inputs {
			_, err := uc.CreateRisk(ctx, input)
			gt.NoError(t, err).Required()
		}
		return uc, ctx
	}

	t.Run("list orders by score descending", func(t *testing.T) {
		uc, ctx := seed(t)

		risks, err := uc.ListRisks(ctx, usecase.RiskFilter{})
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(3).Required()

		gt.Value(t, risks[0].Title).Equal("Data breach")
		gt.Value(t, risks[1].Title).Equal("Audit gap")
		gt.Value(t, risks[2].Title).Equal("Paper cut")
	})

	t.Run("filter by status", func(t *testing.T) {
		uc, ctx := seed(t)

		closed := types.RiskStatusClosed
		risks, err := uc.ListRisks(ctx, usecase.RiskFilter{Status: &closed})
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(1).Required()
		gt.Value(t, risks[0].Title).Equal("Audit gap")
	})

	t.Run("filter by category", func(t *testing.T) {
		uc, ctx := seed(t)

		security := types.CategoryID("security")
		risks, err := uc.ListRisks(ctx, usecase.RiskFilter{CategoryID: &security})
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(1).Required()
		gt.Value(t, risks[0].Title).Equal("Data breach")
	})

	t.Run("filter by owner", func(t *testing.T) {
		uc, ctx := seed(t)

		risks, err := uc.ListRisks(ctx, usecase.RiskFilter{OwnerEmail: "bob@example.com"})
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(1).Required()
		gt.Value(t, risks[0].Title).Equal("Paper cut")
	})

	t.Run("filter by computed severity", func(t *testing.T) {
		uc, ctx := seed(t)

		critical := types.SeverityCritical
		risks, err := uc.ListRisks(ctx, usecase.RiskFilter{Severity: &critical})
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(1).Required()
		gt.Value(t, risks[0].Title).Equal("Data breach")

		low := types.SeverityLow
		risks, err = uc.ListRisks(ctx, usecase.RiskFilter{Severity: &low})
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(1).Required()
		gt.Value(t, risks[0].Title).Equal("Paper cut")
	})
}

func TestRiskUseCase_UpdateRisk(t *testing.T) {
	t.Run("update replaces fields and keeps creation time", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		created, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:        "Original title",
			LikelihoodID: "rare",
			ImpactID:     "minor",
		})
		gt.NoError(t, err).Required()

		updated, err := uc.UpdateRisk(ctx, created.ID, usecase.RiskInput{
			Title:        "Escalated title",
			Status:       types.RiskStatusMitigating,
			LikelihoodID: "likely",
			ImpactID:     "severe",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, updated.Title).Equal("Escalated title")
		gt.Value(t, updated.Status).Equal(types.RiskStatusMitigating)
		gt.Value(t, updated.CreatedAt).Equal(created.CreatedAt)
	})

	t.Run("title change renames the Slack channel", func(t *testing.T) {
		repo := memory.New()
		cfg := testRiskConfig()
		cfg.NotifySeverity = types.SeverityHigh
		mock := &mockSlackService{channelID: "C0RENAME"}
		uc := usecase.NewRiskUseCase(repo, cfg, mock)
		ctx := context.Background()

		created, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:        "Before rename",
			LikelihoodID: "likely",
			ImpactID:     "severe",
		})
		gt.NoError(t, err).Required()

		updated, err := uc.UpdateRisk(ctx, created.ID, usecase.RiskInput{
			Title:        "After rename",
			LikelihoodID: "likely",
			ImpactID:     "severe",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, updated.SlackChannelID).Equal("C0RENAME")
		gt.Array(t, mock.renamed).Length(1)
		gt.Value(t, mock.renamed[0]).Equal("C0RENAME")

		// Same title again does not rename
		_, err = uc.UpdateRisk(ctx, created.ID, usecase.RiskInput{
			Title:        "After rename",
			LikelihoodID: "likely",
			ImpactID:     "severe",
		})
		gt.NoError(t, err).Required()
		gt.Array(t, mock.renamed).Length(1)
	})

	t.Run("update missing risk fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		_, err := uc.UpdateRisk(ctx, 404, usecase.RiskInput{Title: "Ghost"})
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	})

	t.Run("update with unknown impact fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		created, err := uc.CreateRisk(ctx, usecase.RiskInput{Title: "Valid risk"})
		gt.NoError(t, err).Required()

		_, err = uc.UpdateRisk(ctx, created.ID, usecase.RiskInput{
			Title:    "Valid risk",
			ImpactID: "catastrophic",
		})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}

func TestRiskUseCase_DeleteRisk(t *testing.T) {
	t.Run("delete removes the risk and its control links", func(t *testing.T) {
		repo := memory.New()
		riskUC := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		controlUC := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		risk, err := riskUC.CreateRisk(ctx, usecase.RiskInput{Title: "Doomed risk"})
		gt.NoError(t, err).Required()
		control, err := controlUC.CreateControl(ctx, usecase.ControlInput{Name: "Surviving control"})
		gt.NoError(t, err).Required()
		gt.NoError(t, riskUC.LinkControl(ctx, risk.ID, control.ID)).Required()

		gt.NoError(t, riskUC.DeleteRisk(ctx, risk.ID)).Required()

		_, err = riskUC.GetRisk(ctx, risk.ID)
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)

		// The control survives, the link does not
		risks, err := controlUC.ListRisksForControl(ctx, control.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(0)
	})

	t.Run("delete archives the Slack channel", func(t *testing.T) {
		repo := memory.New()
		cfg := testRiskConfig()
		cfg.NotifySeverity = types.SeverityHigh
		mock := &mockSlackService{channelID: "C0GONE"}
		uc := usecase.NewRiskUseCase(repo, cfg, mock)
		ctx := context.Background()

		created, err := uc.CreateRisk(ctx, usecase.RiskInput{
			Title:        "Channel holder",
			LikelihoodID: "likely",
			ImpactID:     "severe",
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.DeleteRisk(ctx, created.ID)).Required()
		gt.Array(t, mock.archived).Length(1)
		gt.Value(t, mock.archived[0]).Equal("C0GONE")
	})

	t.Run("delete missing risk fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		err := uc.DeleteRisk(ctx, 404)
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	})
}

func TestRiskUseCase_ControlLinks(t *testing.T) {
	t.Run("link and list controls", func(t *testing.T) {
		repo := memory.New()
		riskUC := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		controlUC := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		risk, err := riskUC.CreateRisk(ctx, usecase.RiskInput{Title: "Linked risk"})
		gt.NoError(t, err).Required()
		mfa, err := controlUC.CreateControl(ctx, usecase.ControlInput{Name: "Enforce MFA"})
		gt.NoError(t, err).Required()
		backup, err := controlUC.CreateControl(ctx, usecase.ControlInput{Name: "Daily backups"})
		gt.NoError(t, err).Required()

		gt.NoError(t, riskUC.LinkControl(ctx, risk.ID, mfa.ID)).Required()
		gt.NoError(t, riskUC.LinkControl(ctx, risk.ID, backup.ID)).Required()

		controls, err := riskUC.ListControlsForRisk(ctx, risk.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, controls).Length(2)

		// Linking twice is a no-op
		gt.NoError(t, riskUC.LinkControl(ctx, risk.ID, mfa.ID)).Required()
		controls, err = riskUC.ListControlsForRisk(ctx, risk.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, controls).Length(2)
	})

	t.Run("unlink removes a single link", func(t *testing.T) {
		repo := memory.New()
		riskUC := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		controlUC := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		risk, err := riskUC.CreateRisk(ctx, usecase.RiskInput{Title: "Linked risk"})
		gt.NoError(t, err).Required()
		control, err := controlUC.CreateControl(ctx, usecase.ControlInput{Name: "Enforce MFA"})
		gt.NoError(t, err).Required()
		gt.NoError(t, riskUC.LinkControl(ctx, risk.ID, control.ID)).Required()

		gt.NoError(t, riskUC.UnlinkControl(ctx, risk.ID, control.ID)).Required()

		controls, err := riskUC.ListControlsForRisk(ctx, risk.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, controls).Length(0)

		// The pair is gone, unlinking again fails
		gt.Error(t, riskUC.UnlinkControl(ctx, risk.ID, control.ID))
	})

	t.Run("link missing control fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		risk, err := uc.CreateRisk(ctx, usecase.RiskInput{Title: "Lonely risk"})
		gt.NoError(t, err).Required()

		err = uc.LinkControl(ctx, risk.ID, 404)
		gt.Error(t, err).Is(usecase.ErrControlNotFound)
	})

	t.Run("link missing risk fails", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		ctx := context.Background()

		err := uc.LinkControl(ctx, 404, 1)
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	})

	t.Run("batch load controls for multiple risks", func(t *testing.T) {
		repo := memory.New()
		riskUC := usecase.NewRiskUseCase(repo, testRiskConfig(), nil)
		controlUC := usecase.NewControlUseCase(repo)
		ctx := context.Background()

		r1, err := riskUC.CreateRisk(ctx, usecase.RiskInput{Title: "First"})
		gt.NoError(t, err).Required()
		r2, err := riskUC.CreateRisk(ctx, usecase.RiskInput{Title: "Second"})
		gt.NoError(t, err).Required()
		control, err := controlUC.CreateControl(ctx, usecase.ControlInput{Name: "Shared control"})
		gt.NoError(t, err).Required()
		gt.NoError(t, riskUC.LinkControl(ctx, r1.ID, control.ID)).Required()

		linked, err := riskUC.ControlsForRisks(ctx, []int64{r1.ID, r2.ID})
		gt.NoError(t, err).Required()
		gt.Array(t, linked[r1.ID]).Length(1)
		gt.Array(t, linked[r2.ID]).Length(0)
	})
}
