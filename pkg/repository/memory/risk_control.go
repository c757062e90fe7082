package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type riskControlRepository struct {
	mu    sync.RWMutex
	links []model.RiskControl
	// References to other repositories for join operations
	riskRepo    *riskRepository
	controlRepo *controlRepository
}

func newRiskControlRepository(riskRepo *riskRepository, controlRepo *controlRepository) *riskControlRepository {
	return &riskControlRepository{
		links:       make([]model.RiskControl, 0),
		riskRepo:    riskRepo,
		controlRepo: controlRepo,
	}
}

func (r *riskControlRepository) Link(ctx context.Context, riskID, controlID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check if the link already exists
	for _, link := range r.links {
		if link.RiskID == riskID && link.ControlID == controlID {
			return nil // Already linked, not an error
		}
	}

	// Verify that both risk and control exist
	if _, err := r.riskRepo.Get(ctx, riskID); err != nil {
		return goerr.Wrap(err, "risk not found", goerr.V("riskID", riskID))
	}

	if _, err := r.controlRepo.Get(ctx, controlID); err != nil {
		return goerr.Wrap(err, "control not found", goerr.V("controlID", controlID))
	}

	r.links = append(r.links, model.RiskControl{
		RiskID:    riskID,
		ControlID: controlID,
		CreatedAt: time.Now().UTC(),
	})

	return nil
}

func (r *riskControlRepository) Unlink(ctx context.Context, riskID, controlID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, link := range r.links {
		if link.RiskID == riskID && link.ControlID == controlID {
			r.links = append(r.links[:i], r.links[i+1:]...)
			return nil
		}
	}

	return goerr.Wrap(ErrNotFound, "risk-control link not found",
		goerr.V("riskID", riskID),
		goerr.V("controlID", controlID))
}

func (r *riskControlRepository) GetControlsByRisk(ctx context.Context, riskID int64) ([]*model.Control, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	controlIDs := make([]int64, 0)
	for _, link := range r.links {
		if link.RiskID == riskID {
			controlIDs = append(controlIDs, link.ControlID)
		}
	}

	controls := make([]*model.Control, 0, len(controlIDs))
	for _, id := range controlIDs {
		control, err := r.controlRepo.Get(ctx, id)
		if err != nil {
			// Skip if control was deleted
			continue
		}
		controls = append(controls, control)
	}

	return controls, nil
}

func (r *riskControlRepository) GetControlsByRisks(ctx context.Context, riskIDs []int64) (map[int64][]*model.Control, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	riskToControlIDs := make(map[int64][]int64)
	for _, riskID := range riskIDs {
		riskToControlIDs[riskID] = make([]int64, 0)
	}

	for _, link := range r.links {
		if _, exists := riskToControlIDs[link.RiskID]; exists {
			riskToControlIDs[link.RiskID] = append(riskToControlIDs[link.RiskID], link.ControlID)
		}
	}

	result := make(map[int64][]*model.Control)
	for riskID, controlIDs := range riskToControlIDs {
		controls := make([]*model.Control, 0, len(controlIDs))
		for _, id := range controlIDs {
			control, err := r.controlRepo.Get(ctx, id)
			if err != nil {
				continue
			}
			controls = append(controls, control)
		}
		result[riskID] = controls
	}

	return result, nil
}

func (r *riskControlRepository) GetRisksByControl(ctx context.Context, controlID int64) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	riskIDs := make([]int64, 0)
	for _, link := range r.links {
		if link.ControlID == controlID {
			riskIDs = append(riskIDs, link.RiskID)
		}
	}

	risks := make([]*model.Risk, 0, len(riskIDs))
	for _, id := range riskIDs {
		risk, err := r.riskRepo.Get(ctx, id)
		if err != nil {
			// Skip if risk was deleted
			continue
		}
		risks = append(risks, risk)
	}

	return risks, nil
}

func (r *riskControlRepository) DeleteByControl(ctx context.Context, controlID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := r.links[:0]
	for _, link := range r.links {
		if link.ControlID != controlID {
			remaining = append(remaining, link)
		}
	}
	r.links = remaining

	return nil
}

func (r *riskControlRepository) DeleteByRisk(ctx context.Context, riskID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := r.links[:0]
	for _, link := range r.links {
		if link.RiskID != riskID {
			remaining = append(remaining, link)
		}
	}
	r.links = remaining

	return nil
}
