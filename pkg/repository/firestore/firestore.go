package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = goerr.New("record not found")

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string

	risk          *riskRepository
	control       *controlRepository
	riskControl   *riskControlRepository
	questionnaire *questionnaireRepository
	response      *responseRepository
	workflow      *workflowRepository
	document      *documentRepository
	conversation  *conversationRepository
	report        *reportRepository
	audit         *auditRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
		f.risk.collectionPrefix = prefix
		f.control.collectionPrefix = prefix
		f.riskControl.collectionPrefix = prefix
		f.questionnaire.collectionPrefix = prefix
		f.response.collectionPrefix = prefix
		f.workflow.collectionPrefix = prefix
		f.document.collectionPrefix = prefix
		f.conversation.collectionPrefix = prefix
		f.report.collectionPrefix = prefix
		f.audit.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	riskRepo := newRiskRepository(client)
	controlRepo := newControlRepository(client)
	riskControlRepo := newRiskControlRepository(client, riskRepo, controlRepo)
	questionnaireRepo := newQuestionnaireRepository(client)
	responseRepo := newResponseRepository(client)
	workflowRepo := newWorkflowRepository(client)
	documentRepo := newDocumentRepository(client)
	conversationRepo := newConversationRepository(client)
	reportRepo := newReportRepository(client)
	auditRepo := newAuditRepository(client)

	f := &Firestore{
		client:        client,
		risk:          riskRepo,
		control:       controlRepo,
		riskControl:   riskControlRepo,
		questionnaire: questionnaireRepo,
		response:      responseRepo,
		workflow:      workflowRepo,
		document:      documentRepo,
		conversation:  conversationRepo,
		report:        reportRepo,
		audit:         auditRepo,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) Control() interfaces.ControlRepository {
	return f.control
}

func (f *Firestore) RiskControl() interfaces.RiskControlRepository {
	return f.riskControl
}

func (f *Firestore) Questionnaire() interfaces.QuestionnaireRepository {
	return f.questionnaire
}

func (f *Firestore) QuestionnaireResponse() interfaces.QuestionnaireResponseRepository {
	return f.response
}

func (f *Firestore) Workflow() interfaces.WorkflowRepository {
	return f.workflow
}

func (f *Firestore) Document() interfaces.DocumentRepository {
	return f.document
}

func (f *Firestore) Conversation() interfaces.ConversationRepository {
	return f.conversation
}

func (f *Firestore) Report() interfaces.ReportRepository {
	return f.report
}

func (f *Firestore) Audit() interfaces.AuditRepository {
	return f.audit
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// prefixed prepends the collection prefix used for test isolation
func prefixed(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

// getNextID allocates the next value of a named counter in a transaction
func getNextID(ctx context.Context, client *firestore.Client, counterCollection, counterDoc string) (int64, error) {
	counterRef := client.Collection(counterCollection).Doc(counterDoc)

	var nextID int64
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		nextID = currentValue.(int64) + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID", goerr.V("counter", counterDoc))
	}

	return nextID, nil
}
