// Package llm talks to the chat-completion APIs used to summarize a week of
// messages. Every provider is reached through the same small interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
)

const (
	Anthropic = "anthropic"
	OpenAI    = "openai"
	Google    = "google"
	Ollama    = "ollama"
)

// Providers lists the supported provider names in display order.
var Providers = []string{Anthropic, OpenAI, Google, Ollama}

var ErrEmptyResponse = errors.New("empty response content")

type Request struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

type Response struct {
	Text         string
	Model        string
	StopReason   string
	InputTokens  int
	OutputTokens int
}

// Truncated reports whether the provider stopped on the output token limit.
func (r Response) Truncated() bool {
	switch strings.ToLower(r.StopReason) {
	case "max_tokens", "length":
		return true
	}
	return false
}

type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (Response, error)
}

// StatusError is a non-2xx answer from a provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s api error %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s api error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Temporary reports whether a retry could succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

// Retryable is false for context cancellation and for client errors other
// than timeouts and rate limits. Transport failures are retried.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// New builds the named provider. Unknown names are argument errors.
func New(name string, opts Options) (Provider, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 300 * time.Second}
	}
	switch name {
	case Anthropic:
		return NewAnthropic(opts), nil
	case OpenAI:
		return NewOpenAI(OpenAI, opts), nil
	case Ollama:
		if opts.APIKey == "" {
			opts.APIKey = "ollama"
		}
		return NewOpenAI(Ollama, opts), nil
	case Google:
		return NewGemini(opts), nil
	}
	return nil, apperr.Argumentf("unknown provider %q (want one of %s)", name, strings.Join(Providers, ", "))
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
