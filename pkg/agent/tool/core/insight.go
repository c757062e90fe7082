package core

import (
	"context"
	"fmt"

	"github.com/jungkj/riscura-sub000/pkg/agent/tool"
	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// recordInsightTool writes an analysis note back onto the conversation
type recordInsightTool struct {
	repo           interfaces.Repository
	conversationID model.ConversationID
}

func (t *recordInsightTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__record_insight",
		Description: "Record an analysis insight on the current conversation so the user sees it highlighted alongside the chat",
		Parameters: map[string]*gollem.Parameter{
			"title": {
				Type:        gollem.TypeString,
				Description: "Short headline of the insight",
				Required:    true,
			},
			"body": {
				Type:        gollem.TypeString,
				Description: "The insight itself: the observation and what it means for the organization",
				Required:    true,
			},
			"risk_ids": {
				Type:        gollem.TypeArray,
				Description: "IDs of risks this insight refers to",
				Required:    false,
				Items: &gollem.Parameter{
					Type: gollem.TypeInteger,
				},
			},
		},
	}
}

func (t *recordInsightTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	title, _ := args["title"].(string)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	body, _ := args["body"].(string)
	if body == "" {
		return nil, fmt.Errorf("body is required")
	}

	var riskIDs []int64
	if rawIDs, ok := args["risk_ids"].([]any); ok {
		for _, id := range rawIDs {
			switch n := id.(type) {
			case int:
				riskIDs = append(riskIDs, int64(n))
			case int64:
				riskIDs = append(riskIDs, n)
			case float64:
				riskIDs = append(riskIDs, int64(n))
			}
		}
	}

	tool.Update(ctx, fmt.Sprintf("Recording insight: %s", title))
	insight := &model.Insight{
		ID:             model.NewInsightID(),
		ConversationID: t.conversationID,
		Title:          title,
		Body:           body,
		RiskIDs:        riskIDs,
	}
	if err := t.repo.Conversation().AddInsight(ctx, insight); err != nil {
		return nil, goerr.Wrap(err, "failed to record insight",
			goerr.V("conversationID", t.conversationID),
		)
	}

	return map[string]any{
		"id":    insight.ID,
		"title": insight.Title,
	}, nil
}
