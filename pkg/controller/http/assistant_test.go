package http_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (m *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if m.generateContentFn != nil {
		return m.generateContentFn(ctx, input...)
	}
	return &gollem.Response{
		Texts: []string{"This is a test response from the AI agent."},
	}, nil
}

func (m *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (m *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return m.GenerateContent(ctx, input...)
}

func (m *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return m.GenerateStream(ctx, input...)
}

func (m *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (m *mockLLMSession) AppendHistory(history *gollem.History) error {
	return nil
}

func (m *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type mockLLMClient struct {
	newSessionFn func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error)
}

func (m *mockLLMClient) NewSession(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
	if m.newSessionFn != nil {
		return m.newSessionFn(ctx, opts...)
	}
	return &mockLLMSession{}, nil
}

func (m *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

type conversationPayload struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartedBy string `json:"started_by"`
	Usage     struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		Requests     int `json:"requests"`
	} `json:"usage"`
	CreatedAt time.Time `json:"created_at"`
}

type conversationDetailPayload struct {
	Conversation conversationPayload `json:"conversation"`
	Messages     []struct {
		Seq     int    `json:"seq"`
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Insights []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"insights"`
}

func TestAssistantAPI_Conversations(t *testing.T) {
	handler, _ := setupServer(t, usecase.WithLLM(&mockLLMClient{}))

	rec := doRequest(t, handler, http.MethodPost, "/api/assistant/conversations", nil)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var conv conversationPayload
	parseJSON(t, rec, &conv)
	gt.Value(t, conv.ID).NotEqual("")
	gt.Value(t, conv.StartedBy).Equal("anonymous@localhost")
	gt.Bool(t, conv.CreatedAt.IsZero()).False()

	base := "/api/assistant/conversations/" + conv.ID

	t.Run("chat", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, base+"/messages", map[string]any{
			"message": "What are our top risks right now?",
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Reply     string   `json:"reply"`
			ToolCalls []string `json:"tool_calls"`
		}
		parseJSON(t, rec, &resp)
		gt.Value(t, resp.Reply).Equal("This is a test response from the AI agent.")
		gt.Array(t, resp.ToolCalls).Length(0)
	})

	t.Run("detail carries the exchange", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, base, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var detail conversationDetailPayload
		parseJSON(t, rec, &detail)

		gt.Value(t, detail.Conversation.Title).Equal("What are our top risks right now?")
		gt.Value(t, detail.Conversation.Usage.Requests).Equal(1)

		gt.Array(t, detail.Messages).Length(2).Required()
		gt.Value(t, detail.Messages[0].Seq).Equal(1)
		gt.Value(t, detail.Messages[0].Role).Equal("user")
		gt.Value(t, detail.Messages[0].Content).Equal("What are our top risks right now?")
		gt.Value(t, detail.Messages[1].Seq).Equal(2)
		gt.Value(t, detail.Messages[1].Role).Equal("assistant")
	})

	t.Run("list", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/assistant/conversations", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Conversations []conversationPayload `json:"conversations"`
			Total         int                   `json:"total"`
		}
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Conversations).Length(1)
		gt.Value(t, resp.Total).Equal(1)
	})

	t.Run("empty message", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, base+"/messages", map[string]any{
			"message": "",
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/assistant/conversations/no-such-id/messages", map[string]any{
			"message": "hello",
		})
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodDelete, base, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNoContent)

		rec = doRequest(t, handler, http.MethodGet, base, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestAssistantAPI_ChatWithoutLLM(t *testing.T) {
	handler, _ := setupServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/assistant/conversations", nil)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	var conv conversationPayload
	parseJSON(t, rec, &conv)

	rec = doRequest(t, handler, http.MethodPost, "/api/assistant/conversations/"+conv.ID+"/messages", map[string]any{
		"message": "anyone there?",
	})
	gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
}

type reportPayload struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	TopRisks []struct {
		RiskID    int64  `json:"risk_id"`
		Title     string `json:"title"`
		Reasoning string `json:"reasoning"`
	} `json:"top_risks"`
	CoverageGaps    []string `json:"coverage_gaps"`
	Recommendations []string `json:"recommendations"`
	GeneratedBy     string   `json:"generated_by"`
	Usage           struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	CreatedAt time.Time `json:"created_at"`
}

func TestAssistantAPI_Analyze(t *testing.T) {
	// The report body is assembled once the seeded risk ID is known;
	// the session closure reads it at analyze time.
	var reportBody string
	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{reportBody}}, nil
				},
			}, nil
		},
	}
	handler, _ := setupServer(t, usecase.WithLLM(llm))

	rec := doRequest(t, handler, http.MethodPost, "/api/risks", map[string]any{
		"title":         "Unpatched VPN appliance",
		"likelihood_id": "likely",
		"impact_id":     "severe",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	var risk riskPayload
	parseJSON(t, rec, &risk)

	reportBody = fmt.Sprintf(`{
		"summary": "The register is dominated by one critical infrastructure risk.",
		"top_risks": [
			{"risk_id": %d, "title": "Unpatched VPN appliance", "reasoning": "Critical and no controls linked."}
		],
		"coverage_gaps": ["No detective controls for network access."],
		"recommendations": ["Patch the VPN appliance this week."]
	}`, risk.ID)

	rec = doRequest(t, handler, http.MethodPost, "/api/assistant/analyze", nil)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var report reportPayload
	parseJSON(t, rec, &report)
	gt.Value(t, report.ID).NotEqual("")
	gt.String(t, report.Summary).Contains("critical infrastructure risk")
	gt.Array(t, report.TopRisks).Length(1).Required()
	gt.Value(t, report.TopRisks[0].RiskID).Equal(risk.ID)
	gt.Array(t, report.CoverageGaps).Length(1)
	gt.Array(t, report.Recommendations).Length(1)
	gt.Value(t, report.GeneratedBy).Equal("anonymous@localhost")
	gt.Number(t, report.Usage.InputTokens).NotEqual(0)

	t.Run("reports are listed", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/assistant/reports", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Reports []reportPayload `json:"reports"`
			Total   int             `json:"total"`
		}
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Reports).Length(1)
		gt.Value(t, resp.Total).Equal(1)
	})

	t.Run("get report", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/assistant/reports/"+report.ID, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var got reportPayload
		parseJSON(t, rec, &got)
		gt.Value(t, got.ID).Equal(report.ID)
	})

	t.Run("delete report", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodDelete, "/api/assistant/reports/"+report.ID, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNoContent)

		rec = doRequest(t, handler, http.MethodGet, "/api/assistant/reports/"+report.ID, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestAssistantAPI_AnalyzeEmptyRegister(t *testing.T) {
	handler, _ := setupServer(t, usecase.WithLLM(&mockLLMClient{}))

	rec := doRequest(t, handler, http.MethodPost, "/api/assistant/analyze", nil)
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}
