package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient serves both OpenAI and Ollama, which exposes the same chat
// completions API under /v1.
type OpenAIClient struct {
	name   string
	client openai.Client
}

func NewOpenAI(name string, opts Options) *OpenAIClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	return &OpenAIClient{name: name, client: openai.NewClient(reqOpts...)}
}

func (c *OpenAIClient) Name() string { return c.name }

func (c *OpenAIClient) Complete(ctx context.Context, r Request) (Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(r.System),
			openai.UserMessage(r.Prompt),
		},
	}
	if r.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(r.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			se := &StatusError{Provider: c.name, StatusCode: apiErr.StatusCode, Message: apiErr.Message}
			if apiErr.Response != nil {
				se.RetryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
			}
			return Response{}, se
		}
		return Response{}, fmt.Errorf("api call: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Response{}, ErrEmptyResponse
	}
	choice := resp.Choices[0]
	return Response{
		Text:         choice.Message.Content,
		Model:        resp.Model,
		StopReason:   choice.FinishReason,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}, nil
}
