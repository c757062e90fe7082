package memory

import (
	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = goerr.New("record not found")

type Memory struct {
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
	tokens        *tokenStore
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	riskRepo := newRiskRepository()
	controlRepo := newControlRepository()
	riskControlRepo := newRiskControlRepository(riskRepo, controlRepo)
	questionnaireRepo := newQuestionnaireRepository()
	responseRepo := newResponseRepository()
	workflowRepo := newWorkflowRepository()
	documentRepo := newDocumentRepository()
	conversationRepo := newConversationRepository()
	reportRepo := newReportRepository()
	auditRepo := newAuditRepository()

	return &Memory{
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
		tokens:        newTokenStore(),
	}
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) Control() interfaces.ControlRepository {
	return m.control
}

func (m *Memory) RiskControl() interfaces.RiskControlRepository {
	return m.riskControl
}

func (m *Memory) Questionnaire() interfaces.QuestionnaireRepository {
	return m.questionnaire
}

func (m *Memory) QuestionnaireResponse() interfaces.QuestionnaireResponseRepository {
	return m.response
}

func (m *Memory) Workflow() interfaces.WorkflowRepository {
	return m.workflow
}

func (m *Memory) Document() interfaces.DocumentRepository {
	return m.document
}

func (m *Memory) Conversation() interfaces.ConversationRepository {
	return m.conversation
}

func (m *Memory) Report() interfaces.ReportRepository {
	return m.report
}

func (m *Memory) Audit() interfaces.AuditRepository {
	return m.audit
}
