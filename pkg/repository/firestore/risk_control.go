package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type riskControlDocument struct {
	RiskID    int64     `firestore:"risk_id"`
	ControlID int64     `firestore:"control_id"`
	CreatedAt time.Time `firestore:"created_at"`
}

type riskControlRepository struct {
	client           *firestore.Client
	riskRepo         *riskRepository
	controlRepo      *controlRepository
	collectionPrefix string
}

func newRiskControlRepository(client *firestore.Client, riskRepo *riskRepository, controlRepo *controlRepository) *riskControlRepository {
	return &riskControlRepository{
		client:           client,
		riskRepo:         riskRepo,
		controlRepo:      controlRepo,
		collectionPrefix: "",
	}
}

func (r *riskControlRepository) riskControlsCollection() string {
	return prefixed(r.collectionPrefix, "risk_controls")
}

func (r *riskControlRepository) getLinkDocID(riskID, controlID int64) string {
	return fmt.Sprintf("%d_%d", riskID, controlID)
}

func (r *riskControlRepository) Link(ctx context.Context, riskID, controlID int64) error {
	// Verify that both risk and control exist
	if _, err := r.riskRepo.Get(ctx, riskID); err != nil {
		return goerr.Wrap(err, "risk not found", goerr.V("riskID", riskID))
	}

	if _, err := r.controlRepo.Get(ctx, controlID); err != nil {
		return goerr.Wrap(err, "control not found", goerr.V("controlID", controlID))
	}

	docID := r.getLinkDocID(riskID, controlID)
	docRef := r.client.Collection(r.riskControlsCollection()).Doc(docID)

	// Check if the link already exists
	_, err := docRef.Get(ctx)
	if err == nil {
		// Link already exists, return success
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to check existing link",
			goerr.V("riskID", riskID),
			goerr.V("controlID", controlID))
	}

	doc := &riskControlDocument{
		RiskID:    riskID,
		ControlID: controlID,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := docRef.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to create link",
			goerr.V("riskID", riskID),
			goerr.V("controlID", controlID))
	}

	return nil
}

func (r *riskControlRepository) Unlink(ctx context.Context, riskID, controlID int64) error {
	docID := r.getLinkDocID(riskID, controlID)
	docRef := r.client.Collection(r.riskControlsCollection()).Doc(docID)

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "risk-control link not found",
				goerr.V("riskID", riskID),
				goerr.V("controlID", controlID))
		}
		return goerr.Wrap(err, "failed to check link existence",
			goerr.V("riskID", riskID),
			goerr.V("controlID", controlID))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete link",
			goerr.V("riskID", riskID),
			goerr.V("controlID", controlID))
	}

	return nil
}

func (r *riskControlRepository) linkedControlIDs(ctx context.Context, riskID int64) ([]int64, error) {
	iter := r.client.Collection(r.riskControlsCollection()).
		Where("risk_id", "==", riskID).
		Documents(ctx)
	defer iter.Stop()

	var controlIDs []int64
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate links", goerr.V("riskID", riskID))
		}

		var linkDoc riskControlDocument
		if err := doc.DataTo(&linkDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal link")
		}
		controlIDs = append(controlIDs, linkDoc.ControlID)
	}

	return controlIDs, nil
}

func (r *riskControlRepository) GetControlsByRisk(ctx context.Context, riskID int64) ([]*model.Control, error) {
	controlIDs, err := r.linkedControlIDs(ctx, riskID)
	if err != nil {
		return nil, err
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
	if len(riskIDs) == 0 {
		return make(map[int64][]*model.Control), nil
	}

	type result struct {
		riskID   int64
		controls []*model.Control
		err      error
	}

	resultCh := make(chan result, len(riskIDs))

	for _, riskID := range riskIDs {
		go func(id int64) {
			controls, err := r.GetControlsByRisk(ctx, id)
			resultCh <- result{
				riskID:   id,
				controls: controls,
				err:      err,
			}
		}(riskID)
	}

	resultMap := make(map[int64][]*model.Control, len(riskIDs))
	for i := 0; i < len(riskIDs); i++ {
		res := <-resultCh
		if res.err != nil {
			return nil, goerr.Wrap(res.err, "failed to get controls for risk", goerr.V("riskID", res.riskID))
		}
		resultMap[res.riskID] = res.controls
	}

	return resultMap, nil
}

func (r *riskControlRepository) GetRisksByControl(ctx context.Context, controlID int64) ([]*model.Risk, error) {
	iter := r.client.Collection(r.riskControlsCollection()).
		Where("control_id", "==", controlID).
		Documents(ctx)
	defer iter.Stop()

	var riskIDs []int64
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate links", goerr.V("controlID", controlID))
		}

		var linkDoc riskControlDocument
		if err := doc.DataTo(&linkDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal link")
		}
		riskIDs = append(riskIDs, linkDoc.RiskID)
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

func (r *riskControlRepository) deleteLinksWhere(ctx context.Context, field string, value int64) error {
	iter := r.client.Collection(r.riskControlsCollection()).
		Where(field, "==", value).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate links", goerr.V(field, value))
		}

		if _, err := doc.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete link", goerr.V("doc", doc.Ref.ID))
		}
	}

	return nil
}

func (r *riskControlRepository) DeleteByControl(ctx context.Context, controlID int64) error {
	return r.deleteLinksWhere(ctx, "control_id", controlID)
}

func (r *riskControlRepository) DeleteByRisk(ctx context.Context, riskID int64) error {
	return r.deleteLinksWhere(ctx, "risk_id", riskID)
}
