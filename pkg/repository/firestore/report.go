package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type reportRiskDocument struct {
	RiskID    int64  `firestore:"risk_id"`
	Title     string `firestore:"title"`
	Reasoning string `firestore:"reasoning"`
}

type reportDocument struct {
	ID              string               `firestore:"id"`
	Summary         string               `firestore:"summary"`
	TopRisks        []reportRiskDocument `firestore:"top_risks"`
	CoverageGaps    []string             `firestore:"coverage_gaps"`
	Recommendations []string             `firestore:"recommendations"`
	GeneratedBy     string               `firestore:"generated_by"`
	InputTokens     int                  `firestore:"input_tokens"`
	OutputTokens    int                  `firestore:"output_tokens"`
	Requests        int                  `firestore:"requests"`
	CreatedAt       time.Time            `firestore:"created_at"`
}

func toReportDocument(rep *model.AnalysisReport) *reportDocument {
	doc := &reportDocument{
		ID:              string(rep.ID),
		Summary:         rep.Summary,
		CoverageGaps:    rep.CoverageGaps,
		Recommendations: rep.Recommendations,
		GeneratedBy:     rep.GeneratedBy,
		InputTokens:     rep.Usage.InputTokens,
		OutputTokens:    rep.Usage.OutputTokens,
		Requests:        rep.Usage.Requests,
		CreatedAt:       rep.CreatedAt,
	}

	for _, tr := range rep.TopRisks {
		doc.TopRisks = append(doc.TopRisks, reportRiskDocument{
			RiskID:    tr.RiskID,
			Title:     tr.Title,
			Reasoning: tr.Reasoning,
		})
	}

	return doc
}

func (d *reportDocument) toModel() *model.AnalysisReport {
	rep := &model.AnalysisReport{
		ID:              model.ReportID(d.ID),
		Summary:         d.Summary,
		CoverageGaps:    d.CoverageGaps,
		Recommendations: d.Recommendations,
		GeneratedBy:     d.GeneratedBy,
		Usage: model.TokenUsage{
			InputTokens:  d.InputTokens,
			OutputTokens: d.OutputTokens,
			Requests:     d.Requests,
		},
		CreatedAt: d.CreatedAt,
	}

	for _, tr := range d.TopRisks {
		rep.TopRisks = append(rep.TopRisks, model.ReportRisk{
			RiskID:    tr.RiskID,
			Title:     tr.Title,
			Reasoning: tr.Reasoning,
		})
	}

	return rep
}

type reportRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newReportRepository(client *firestore.Client) *reportRepository {
	return &reportRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *reportRepository) reportsCollection() string {
	return prefixed(r.collectionPrefix, "reports")
}

func (r *reportRepository) Create(ctx context.Context, report *model.AnalysisReport) (*model.AnalysisReport, error) {
	created := toReportDocument(report)
	if created.ID == "" {
		created.ID = string(model.NewReportID())
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	docRef := r.client.Collection(r.reportsCollection()).Doc(created.ID)
	if _, err := docRef.Set(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create report")
	}

	return created.toModel(), nil
}

func (r *reportRepository) Get(ctx context.Context, id model.ReportID) (*model.AnalysisReport, error) {
	docRef := r.client.Collection(r.reportsCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "report not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get report", goerr.V("id", id))
	}

	var repDoc reportDocument
	if err := doc.DataTo(&repDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal report", goerr.V("id", id))
	}

	return repDoc.toModel(), nil
}

func (r *reportRepository) ListWithPagination(ctx context.Context, limit, offset int) ([]*model.AnalysisReport, int, error) {
	// Get total count first
	allDocs, err := r.client.Collection(r.reportsCollection()).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to count reports")
	}
	totalCount := len(allDocs)

	query := r.client.Collection(r.reportsCollection()).
		OrderBy("created_at", firestore.Desc).
		Offset(offset).
		Limit(limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	reports := make([]*model.AnalysisReport, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to iterate reports")
		}

		var repDoc reportDocument
		if err := doc.DataTo(&repDoc); err != nil {
			return nil, 0, goerr.Wrap(err, "failed to unmarshal report")
		}

		reports = append(reports, repDoc.toModel())
	}

	return reports, totalCount, nil
}

func (r *reportRepository) Delete(ctx context.Context, id model.ReportID) error {
	docRef := r.client.Collection(r.reportsCollection()).Doc(string(id))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "report not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get report", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete report", goerr.V("id", id))
	}

	return nil
}
