package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/okian/briefmatch/internal/domain/similarity"
)

const (
	defaultOpenAIModel     = openai.GPT4oMini
	defaultEmbeddingModel  = "text-embedding-3-small"
	openAIGeneratorName    = "openai"
	openAIEmbedderNameBase = "openai"
)

func openAIClient(apiKey, baseURL string) (*openai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg), nil
}

// OpenAIGenerator calls the chat completions API in JSON mode.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator. baseURL may point at any
// OpenAI-compatible endpoint.
func NewOpenAIGenerator(apiKey, model, baseURL string) (*OpenAIGenerator, error) {
	client, err := openAIClient(apiKey, baseURL)
	if err != nil {
		return nil, err
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIGenerator{client: client, model: model}, nil
}

// Name identifies the provider.
func (g *OpenAIGenerator) Name() string { return openAIGeneratorName }

// Generate returns the first choice's content.
func (g *OpenAIGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// OpenAIEmbedder implements similarity.Embedder with the embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dims   int
}

var _ similarity.Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates an embedder producing vectors of dims length.
func NewOpenAIEmbedder(apiKey, model, baseURL string, dims int) (*OpenAIEmbedder, error) {
	client, err := openAIClient(apiKey, baseURL)
	if err != nil {
		return nil, err
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}
	if dims <= 0 {
		dims = similarity.DefaultDimensions
	}
	return &OpenAIEmbedder{client: client, model: model, dims: dims}, nil
}

// Dimensions returns the vector length.
func (e *OpenAIEmbedder) Dimensions() int { return e.dims }

// Name identifies the embedding model.
func (e *OpenAIEmbedder) Name() string { return openAIEmbedderNameBase + ":" + e.model }

// Embed returns the embedding for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (similarity.Vector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, similarity.ErrEmptyText
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dims,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	return similarity.Vector(resp.Data[0].Embedding), nil
}
