package narrative

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

type fakeCompletion struct {
	content string
	err     error
}

func (f fakeCompletion) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func TestGerarParsesResponse(t *testing.T) {
	e := &OpenAIEnricher{
		client:  fakeCompletion{content: `{"analise_tecnica": "desgaste compatível com 30-40 anos", "conclusao": "identificação positiva"}`},
		timeout: completionTimeout,
	}

	n := e.Gerar(context.Background(), "resumo")

	assert.Equal(t, "desgaste compatível com 30-40 anos", n.Analise)
	assert.Equal(t, "identificação positiva", n.Conclusao)
}

func TestGerarParsesFencedResponse(t *testing.T) {
	e := &OpenAIEnricher{
		client: fakeCompletion{content: "```json\n" +
			`{"analise_tecnica": "a", "conclusao": "b"}` + "\n```"},
		timeout: completionTimeout,
	}

	n := e.Gerar(context.Background(), "resumo")

	assert.Equal(t, "a", n.Analise)
	assert.Equal(t, "b", n.Conclusao)
}

func TestGerarFallsBackOnError(t *testing.T) {
	e := &OpenAIEnricher{
		client:  fakeCompletion{err: errors.New("connection refused")},
		timeout: completionTimeout,
	}

	n := e.Gerar(context.Background(), "resumo")

	assert.Equal(t, AnaliseIndisponivel, n.Analise)
	assert.Equal(t, ConclusaoIndisponivel, n.Conclusao)
}

func TestGerarFallsBackOnUnparsableContent(t *testing.T) {
	e := &OpenAIEnricher{
		client:  fakeCompletion{content: "not json at all"},
		timeout: completionTimeout,
	}

	n := e.Gerar(context.Background(), "resumo")

	assert.Equal(t, AnaliseIndisponivel, n.Analise)
	assert.Equal(t, ConclusaoIndisponivel, n.Conclusao)
}

func TestGerarFillsMissingKeys(t *testing.T) {
	e := &OpenAIEnricher{
		client:  fakeCompletion{content: `{"analise_tecnica": "só análise"}`},
		timeout: completionTimeout,
	}

	n := e.Gerar(context.Background(), "resumo")

	assert.Equal(t, "só análise", n.Analise)
	assert.Equal(t, ConclusaoIndisponivel, n.Conclusao)
}

func TestGerarWithoutClientFallsBack(t *testing.T) {
	e := New("")

	n := e.Gerar(context.Background(), "resumo")

	assert.Equal(t, AnaliseIndisponivel, n.Analise)
	assert.Equal(t, ConclusaoIndisponivel, n.Conclusao)
}
