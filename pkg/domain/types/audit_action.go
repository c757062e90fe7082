package types

// AuditAction identifies what a recorded mutation did
type AuditAction string

const (
	AuditActionCreateRisk AuditAction = "create_risk"
	AuditActionUpdateRisk AuditAction = "update_risk"
	AuditActionDeleteRisk AuditAction = "delete_risk"

	AuditActionCreateControl AuditAction = "create_control"
	AuditActionUpdateControl AuditAction = "update_control"
	AuditActionDeleteControl AuditAction = "delete_control"
	AuditActionLinkControl   AuditAction = "link_control"
	AuditActionUnlinkControl AuditAction = "unlink_control"

	AuditActionCreateQuestionnaire  AuditAction = "create_questionnaire"
	AuditActionUpdateQuestionnaire  AuditAction = "update_questionnaire"
	AuditActionDeleteQuestionnaire  AuditAction = "delete_questionnaire"
	AuditActionPublishQuestionnaire AuditAction = "publish_questionnaire"
	AuditActionCloseQuestionnaire   AuditAction = "close_questionnaire"
	AuditActionSubmitResponse       AuditAction = "submit_response"
	AuditActionReviewResponse       AuditAction = "review_response"

	AuditActionCreateWorkflow AuditAction = "create_workflow"
	AuditActionCancelWorkflow AuditAction = "cancel_workflow"
	AuditActionCompleteStep   AuditAction = "complete_step"
	AuditActionSkipStep       AuditAction = "skip_step"
	AuditActionEscalateStep   AuditAction = "escalate_step"

	AuditActionUploadDocument  AuditAction = "upload_document"
	AuditActionDeleteDocument  AuditAction = "delete_document"
	AuditActionReindexDocument AuditAction = "reindex_document"
	AuditActionIngestDocuments AuditAction = "ingest_documents"
)

// String returns the string representation of the audit action
func (a AuditAction) String() string {
	return string(a)
}
