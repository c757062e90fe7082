package usecase

import "errors"

// Sentinel errors for the use case layer
var (
	// Not found errors
	ErrRiskNotFound          = errors.New("risk not found")
	ErrControlNotFound       = errors.New("control not found")
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")
	ErrResponseNotFound      = errors.New("response not found")
	ErrWorkflowNotFound      = errors.New("workflow not found")
	ErrDocumentNotFound      = errors.New("document not found")
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrReportNotFound        = errors.New("report not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Lifecycle errors
	ErrNotEditable     = errors.New("questionnaire is not editable")
	ErrNotPublished    = errors.New("questionnaire is not published")
	ErrResponseNotOpen = errors.New("response does not accept changes")
)

// IsNotFound reports whether err wraps one of the not-found sentinels.
// The HTTP layer maps these to 404.
func IsNotFound(err error) bool {
	for _, sentinel := range []error{
		ErrRiskNotFound,
		ErrControlNotFound,
		ErrQuestionnaireNotFound,
		ErrResponseNotFound,
		ErrWorkflowNotFound,
		ErrDocumentNotFound,
		ErrConversationNotFound,
		ErrReportNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Context keys for error values
const (
	RiskIDKey          = "risk_id"
	ControlIDKey       = "control_id"
	QuestionnaireIDKey = "questionnaire_id"
	ResponseIDKey      = "response_id"
	WorkflowIDKey      = "workflow_id"
	DocumentIDKey      = "document_id"
	ConversationIDKey  = "conversation_id"
	TemplateIDKey      = "template_id"
)
