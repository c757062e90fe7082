package interfaces

import (
	"context"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
)

// ControlRepository defines the interface for Control data access
type ControlRepository interface {
	Create(ctx context.Context, control *model.Control) (*model.Control, error)
	Get(ctx context.Context, id int64) (*model.Control, error)
	List(ctx context.Context, opts ...ListControlOption) ([]*model.Control, error)
	Update(ctx context.Context, control *model.Control) (*model.Control, error)
	Delete(ctx context.Context, id int64) error
}

// RiskControlRepository defines the interface for RiskControl data access
type RiskControlRepository interface {
	Link(ctx context.Context, riskID, controlID int64) error
	Unlink(ctx context.Context, riskID, controlID int64) error
	GetControlsByRisk(ctx context.Context, riskID int64) ([]*model.Control, error)
	GetControlsByRisks(ctx context.Context, riskIDs []int64) (map[int64][]*model.Control, error)
	GetRisksByControl(ctx context.Context, controlID int64) ([]*model.Risk, error)
	DeleteByControl(ctx context.Context, controlID int64) error
	DeleteByRisk(ctx context.Context, riskID int64) error
}
