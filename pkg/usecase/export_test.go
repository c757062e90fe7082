package usecase

// Internals exported for tests
var (
	BuildAssistantSystemPrompt = (*AssistantUseCase).buildSystemPrompt
	BuildAnalysisPrompt        = (*AssistantUseCase).buildAnalysisPrompt
	TruncateText               = truncateText
	BuildFindingText           = buildFindingText
)
