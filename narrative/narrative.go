package narrative

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Placeholder text stored when the completion service cannot be reached or
// returns something unusable. Narrative content is advisory, so the pipeline
// keeps going with these instead of failing.
const (
	AnaliseIndisponivel   = "Análise técnica indisponível."
	ConclusaoIndisponivel = "Conclusão indisponível."
)

const systemPrompt = `Você é um perito em odontologia legal com ampla experiência em identificação humana.
A partir do resumo de caso fornecido, produza uma análise técnica e uma conclusão pericial.
Responda somente com um objeto JSON com as chaves "analise_tecnica" e "conclusao".`

const completionTimeout = 30 * time.Second

// Narrativa carries the two generated free-text fields through the pipeline
// as structured data; they are only interpolated into the document at render
// time.
type Narrativa struct {
	Analise   string `json:"analise_tecnica"`
	Conclusao string `json:"conclusao"`
}

// Enricher produces the advisory narrative for a laudo or relatorio. It never
// fails: degraded service collapses into placeholder text.
type Enricher interface {
	Gerar(ctx context.Context, resumo string) Narrativa
}

// completionClient is the slice of the openai client the enricher uses,
// extracted so tests can swap in a fake.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIEnricher calls a chat-completion model to write the narrative fields.
type OpenAIEnricher struct {
	client  completionClient
	timeout time.Duration
}

// New creates an enricher backed by the OpenAI API. An empty key yields an
// enricher that always falls back to placeholders, which keeps local
// environments working without credentials.
func New(apiKey string) *OpenAIEnricher {
	e := &OpenAIEnricher{timeout: completionTimeout}
	if apiKey != "" {
		e.client = openai.NewClient(apiKey)
	}
	return e
}

// Gerar builds the two narrative fields from the case summary.
func (e *OpenAIEnricher) Gerar(ctx context.Context, resumo string) Narrativa {
	fallback := Narrativa{Analise: AnaliseIndisponivel, Conclusao: ConclusaoIndisponivel}
	if e.client == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       openai.GPT4oMini,
		Temperature: 0.7,
		MaxTokens:   500,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: resumo},
		},
	})
	if err != nil {
		zap.S().Warnw("narrative completion failed, using placeholders", "error", err)
		return fallback
	}
	if len(resp.Choices) == 0 {
		zap.S().Warn("narrative completion returned no choices, using placeholders")
		return fallback
	}

	var n Narrativa
	content := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &n); err != nil {
		zap.S().Warnw("narrative completion unparsable, using placeholders", "error", err)
		return fallback
	}
	if n.Analise == "" {
		n.Analise = AnaliseIndisponivel
	}
	if n.Conclusao == "" {
		n.Conclusao = ConclusaoIndisponivel
	}
	return n
}

// stripFences removes a markdown code fence some models wrap JSON output in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
