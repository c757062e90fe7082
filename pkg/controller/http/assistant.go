package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

type usageResponse struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	Requests     int `json:"requests"`
}

func newUsageResponse(usage model.TokenUsage) usageResponse {
	return usageResponse{
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Requests:     usage.Requests,
	}
}

type conversationResponse struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	StartedBy string        `json:"started_by"`
	Usage     usageResponse `json:"usage"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func newConversationResponse(conv *model.Conversation) conversationResponse {
	return conversationResponse{
		ID:        string(conv.ID),
		Title:     conv.Title,
		StartedBy: conv.StartedBy,
		Usage:     newUsageResponse(conv.Usage),
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
}

type messageResponse struct {
	Seq       int       `json:"seq"`
	Role      string    `json:"role"`
	Content   string    `json:"content,omitempty"`
	ToolName  string    `json:"tool_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type insightResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	RiskIDs   []int64   `json:"risk_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type conversationDetailResponse struct {
	Conversation conversationResponse `json:"conversation"`
	Messages     []messageResponse    `json:"messages"`
	Insights     []insightResponse    `json:"insights"`
}

func newConversationDetailResponse(detail *usecase.ConversationDetail) conversationDetailResponse {
	resp := conversationDetailResponse{
		Conversation: newConversationResponse(detail.Conversation),
		Messages:     make([]messageResponse, len(detail.Messages)),
		Insights:     make([]insightResponse, len(detail.Insights)),
	}
	for i, msg := range detail.Messages {
		resp.Messages[i] = messageResponse{
			Seq:       msg.Seq,
			Role:      msg.Role.String(),
			Content:   msg.Content,
			ToolName:  msg.ToolName,
			CreatedAt: msg.CreatedAt,
		}
	}
	for i, insight := range detail.Insights {
		resp.Insights[i] = insightResponse{
			ID:        insight.ID,
			Title:     insight.Title,
			Body:      insight.Body,
			RiskIDs:   insight.RiskIDs,
			CreatedAt: insight.CreatedAt,
		}
	}
	return resp
}

type reportResponse struct {
	ID              string               `json:"id"`
	Summary         string               `json:"summary"`
	TopRisks        []reportRiskResponse `json:"top_risks"`
	CoverageGaps    []string             `json:"coverage_gaps,omitempty"`
	Recommendations []string             `json:"recommendations,omitempty"`
	GeneratedBy     string               `json:"generated_by"`
	Usage           usageResponse        `json:"usage"`
	CreatedAt       time.Time            `json:"created_at"`
}

type reportRiskResponse struct {
	RiskID    int64  `json:"risk_id"`
	Title     string `json:"title"`
	Reasoning string `json:"reasoning,omitempty"`
}

func newReportResponse(report *model.AnalysisReport) reportResponse {
	resp := reportResponse{
		ID:              string(report.ID),
		Summary:         report.Summary,
		TopRisks:        make([]reportRiskResponse, len(report.TopRisks)),
		CoverageGaps:    report.CoverageGaps,
		Recommendations: report.Recommendations,
		GeneratedBy:     report.GeneratedBy,
		Usage:           newUsageResponse(report.Usage),
		CreatedAt:       report.CreatedAt,
	}
	for i, risk := range report.TopRisks {
		resp.TopRisks[i] = reportRiskResponse{
			RiskID:    risk.RiskID,
			Title:     risk.Title,
			Reasoning: risk.Reasoning,
		}
	}
	return resp
}

func conversationListHandler(uc *usecase.AssistantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		conversations, total, err := uc.ListConversations(r.Context(), limit, offset)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := make([]conversationResponse, len(conversations))
		for i, conv := range conversations {
			resp[i] = newConversationResponse(conv)
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"conversations": resp,
			"total":         total,
		})
	}
}

func conversationCreateHandler(uc *usecase.AssistantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv, err := uc.CreateConversation(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, newConversationResponse(conv))
	}
}

func conversationGetHandler(uc *usecase.AssistantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.ConversationID(chi.URLParam(r, "conversationID"))

		detail, err := uc.GetConversation(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newConversationDetailResponse(detail))
	}
}

func conversationDeleteHandler(uc *usecase.AssistantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.ConversationID(chi.URLParam(r, "conversationID"))

		if err := uc.DeleteConversation(r.Context(), id); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func chatHandler(uc *usecase.AssistantUseCase) http.HandlerFunc {
	type chatRequest struct {
		Message string `json:"message"`
	}
	type chatResponse struct {
		Reply     string   `json:"reply"`
		ToolCalls []string `json:"tool_calls,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id := model.ConversationID(chi.URLParam(r, "conversationID"))

		var req chatRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		result, err := uc.Chat(r.Context(), id, req.Message)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, chatResponse{
			Reply:     result.Reply,
			ToolCalls: result.ToolCalls,
		})
	}
}

func analyzeHandler(uc *usecase.AssistantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := uc.Analyze(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, newReportResponse(report))
	}
}

func reportListHandler(uc *usecase.AssistantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		reports, total, err := uc.ListReports(r.Context(), limit, offset)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := make([]reportResponse, len(reports))
		for i, report := range reports {
			resp[i] = newReportResponse(report)
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"reports": resp,
			"total":   total,
		})
	}
}

func reportGetHandler(uc *usecase.AssistantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.ReportID(chi.URLParam(r, "reportID"))

		report, err := uc.GetReport(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newReportResponse(report))
	}
}

func reportDeleteHandler(uc *usecase.AssistantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.ReportID(chi.URLParam(r, "reportID"))

		if err := uc.DeleteReport(r.Context(), id); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
