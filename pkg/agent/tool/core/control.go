package core

import (
	"context"
	"fmt"

	"github.com/jungkj/riscura-sub000/pkg/agent/tool"
	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// listControlsTool retrieves controls from the library with optional filters
type listControlsTool struct {
	repo interfaces.Repository
}

func (t *listControlsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__list_controls",
		Description: "List controls in the library, optionally filtered by status, type, and/or effectiveness",
		Parameters: map[string]*gollem.Parameter{
			"status": {
				Type:        gollem.TypeString,
				Description: "Filter by implementation status",
				Required:    false,
				Enum: []string{
					types.ControlStatusDraft.String(),
					types.ControlStatusImplemented.String(),
					types.ControlStatusOperating.String(),
					types.ControlStatusRetired.String(),
				},
			},
			"type": {
				Type:        gollem.TypeString,
				Description: "Filter by control type",
				Required:    false,
				Enum: []string{
					types.ControlTypePreventive.String(),
					types.ControlTypeDetective.String(),
					types.ControlTypeCorrective.String(),
				},
			},
			"effectiveness": {
				Type:        gollem.TypeString,
				Description: "Filter by last observed effectiveness",
				Required:    false,
				Enum: []string{
					types.EffectivenessNotTested.String(),
					types.EffectivenessIneffective.String(),
					types.EffectivenessPartial.String(),
					types.EffectivenessEffective.String(),
				},
			},
		},
	}
}

func (t *listControlsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	var opts []interfaces.ListControlOption
	if s, ok := args["status"].(string); ok && s != "" {
		status, err := types.ParseControlStatus(s)
		if err != nil {
			return nil, fmt.Errorf("invalid status %q: must be one of draft, implemented, operating, retired", s)
		}
		opts = append(opts, interfaces.WithControlStatus(status))
	}
	if s, ok := args["type"].(string); ok && s != "" {
		controlType, err := types.ParseControlType(s)
		if err != nil {
			return nil, fmt.Errorf("invalid type %q: must be one of preventive, detective, corrective", s)
		}
		opts = append(opts, interfaces.WithControlType(controlType))
	}
	if s, ok := args["effectiveness"].(string); ok && s != "" {
		effectiveness, err := types.ParseEffectiveness(s)
		if err != nil {
			return nil, fmt.Errorf("invalid effectiveness %q: must be one of not-tested, ineffective, partial, effective", s)
		}
		opts = append(opts, interfaces.WithEffectiveness(effectiveness))
	}

	tool.Update(ctx, "Listing controls...")
	controls, err := t.repo.Control().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list controls")
	}

	items := make([]map[string]any, len(controls))
	for i, c := range controls {
		items[i] = map[string]any{
			"id":            c.ID,
			"name":          c.Name,
			"type":          c.Type.String(),
			"status":        c.Status.String(),
			"effectiveness": c.Effectiveness.Normalize().String(),
			"reference":     c.Reference,
		}
	}
	return map[string]any{"controls": items}, nil
}
