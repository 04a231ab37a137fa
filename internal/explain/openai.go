package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const defaultModel = "gpt-4o-mini"

const systemPrompt = "You are an expert quantity surveyor writing rate analyses for public works estimates."

type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAIGenerator(cfg Config, opts ...option.RequestOption) *OpenAIGenerator {
	// Failures surface once as ErrUnavailable; the client never retries.
	base := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		base = append(base, option.WithBaseURL(endpoint))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &OpenAIGenerator{
		client: openai.NewClient(append(base, opts...)...),
		model:  model,
	}
}

func (o *OpenAIGenerator) Name() string { return "openai" }

func (o *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(req.Prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
