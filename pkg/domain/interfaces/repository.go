package interfaces

import (
	"context"

	"github.com/jungkj/riscura-sub000/pkg/domain/model/auth"
)

// Repository defines the interface for data persistence
type Repository interface {
	Risk() RiskRepository
	Control() ControlRepository
	RiskControl() RiskControlRepository
	Questionnaire() QuestionnaireRepository
	QuestionnaireResponse() QuestionnaireResponseRepository
	Workflow() WorkflowRepository
	Document() DocumentRepository
	Conversation() ConversationRepository
	Report() ReportRepository
	Audit() AuditRepository

	// Auth methods
	PutToken(ctx context.Context, token *auth.Token) error
	GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error)
	DeleteToken(ctx context.Context, tokenID auth.TokenID) error
}
