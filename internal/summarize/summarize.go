// Package summarize turns a week of chat text into a Markdown summary using
// an LLM provider, with input validation, caching and a fallback model.
package summarize

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/cache"
	"github.com/Zuo-Peng/wa-digest/internal/llm"
	"github.com/Zuo-Peng/wa-digest/internal/parse"
)

const SystemPrompt = "Você é um assistente especializado em analisar conversas de grupos de WhatsApp sobre educação e inteligência artificial. Seu objetivo é gerar resumos estruturados, claros e úteis."

const placeholder = "{messages}"

//go:embed prompt.md
var DefaultTemplate string

const (
	validateWindow   = 500
	minLines         = 3
	fallbackAttempts = 3
	fallbackPreSleep = 10 * time.Second
)

var dateAtLineStart = regexp.MustCompile(`(?m)^\d{2}/\d{2}/\d{4}`)

type Options struct {
	Provider       string
	Model          string
	FallbackModel  string
	MaxTokens      int
	Retry          llm.RetryPolicy
	Template       string
	NoCache        bool
	SkipValidation bool

	// FallbackPreSleep is the minimum wait before the fallback model is
	// tried. Zero means 10s.
	FallbackPreSleep time.Duration

	// Client settings. APIKeyEnv names the variable reported when the key
	// is missing.
	APIKey    string
	APIKeyEnv string
	LLM       llm.Options
}

type Result struct {
	Summary      string
	Provider     string
	Model        string
	Cached       bool
	Truncated    bool
	InputTokens  int
	OutputTokens int
}

type Estimate struct {
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	InputCost    float64
	OutputCost   float64
	Priced       bool
}

func (e Estimate) Cost() float64 { return e.InputCost + e.OutputCost }

type Summarizer struct {
	opts     Options
	cache    *cache.Cache
	log      *slog.Logger
	provider llm.Provider
}

// New fills in defaults. c may be nil to run without a cache.
func New(opts Options, c *cache.Cache, log *slog.Logger) *Summarizer {
	if opts.Model == "" {
		opts.Model = llm.DefaultModel(opts.Provider)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	if opts.Retry.Attempts <= 0 {
		opts.Retry = llm.DefaultRetryPolicy()
	}
	if opts.FallbackPreSleep <= 0 {
		opts.FallbackPreSleep = fallbackPreSleep
	}
	if log == nil {
		log = slog.Default()
	}
	return &Summarizer{opts: opts, cache: c, log: log}
}

// LoadTemplate reads a prompt template file. Templates must contain the
// {messages} placeholder.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperr.NotFound("prompt template "+path, err)
		}
		return "", fmt.Errorf("read prompt template: %w", err)
	}
	tmpl := string(data)
	if !strings.Contains(tmpl, placeholder) {
		return "", apperr.Argumentf("prompt template %s has no %s placeholder", path, placeholder)
	}
	return tmpl, nil
}

// Validate checks that text looks like a WhatsApp transcript: it is not
// blank, has a few lines, and has a message header near the top or a
// dd/mm/yyyy date starting some line.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.Argumentf("invalid input: empty content")
	}
	lines := strings.Split(strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n"), "\n")
	if len(lines) < minLines {
		return apperr.Argumentf("invalid input: too few lines (%d)", len(lines))
	}
	if len(lines) > validateWindow {
		lines = lines[:validateWindow]
	}
	for _, line := range lines {
		if parse.IsHeader(line) {
			return nil
		}
	}
	if dateAtLineStart.MatchString(text) {
		return nil
	}
	return apperr.Argumentf("invalid input: does not look like a WhatsApp export")
}

func (s *Summarizer) Prompt(text string) string {
	return strings.ReplaceAll(s.opts.Template, placeholder, text)
}

func (s *Summarizer) Estimate(text string) Estimate {
	in := llm.EstimateTokens(SystemPrompt + s.Prompt(text))
	out := s.opts.MaxTokens
	e := Estimate{Provider: s.opts.Provider, Model: s.opts.Model, InputTokens: in, OutputTokens: out}
	if p, ok := llm.Pricing[s.opts.Provider][s.opts.Model]; ok {
		e.Priced = true
		e.InputCost = float64(in) / 1e6 * p.Input
		e.OutputCost = float64(out) / 1e6 * p.Output
	} else if s.opts.Provider == llm.Ollama {
		e.Priced = true
	}
	return e
}

func (s *Summarizer) cacheKey(text string) string {
	return cache.Key(text, cache.KeyParams{
		Provider:  s.opts.Provider,
		Model:     s.opts.Model,
		MaxTokens: s.opts.MaxTokens,
		Prompt:    SystemPrompt + "\x00" + s.opts.Template,
	})
}

func (s *Summarizer) client() (llm.Provider, error) {
	if s.provider != nil {
		return s.provider, nil
	}
	if s.opts.APIKey == "" && s.opts.Provider != llm.Ollama {
		env := s.opts.APIKeyEnv
		if env == "" {
			env = "API key"
		}
		return nil, apperr.Argumentf("%s is not set", env)
	}
	lo := s.opts.LLM
	lo.APIKey = s.opts.APIKey
	p, err := llm.New(s.opts.Provider, lo)
	if err != nil {
		return nil, err
	}
	s.provider = p
	return p, nil
}

// Summarize validates text, answers from the cache when possible and
// otherwise calls the provider. Provider failures, including a failed
// fallback, are apperr.KindProvider.
func (s *Summarizer) Summarize(ctx context.Context, text string) (Result, error) {
	if !s.opts.SkipValidation {
		if err := Validate(text); err != nil {
			return Result{}, err
		}
	}

	key := s.cacheKey(text)
	if s.cache != nil && !s.opts.NoCache {
		e, ok, err := s.cache.Get(key)
		if err != nil {
			s.log.Warn("cache read failed", "err", err)
		} else if ok && e.Summary != "" {
			s.log.Info("using cached summary", "provider", e.Provider, "model", e.Model)
			return Result{Summary: e.Summary, Provider: e.Provider, Model: e.Model, Cached: true}, nil
		}
	}

	p, err := s.client()
	if err != nil {
		return Result{}, err
	}

	req := llm.Request{
		Model:     s.opts.Model,
		System:    SystemPrompt,
		Prompt:    s.Prompt(text),
		MaxTokens: s.opts.MaxTokens,
	}
	s.log.Info("generating summary",
		"provider", p.Name(), "model", req.Model, "input_tokens", llm.EstimateTokens(SystemPrompt+req.Prompt))

	resp, err := llm.Complete(ctx, p, req, s.policy(s.opts.Retry))
	if err != nil && s.opts.FallbackModel != "" && s.opts.FallbackModel != s.opts.Model && ctx.Err() == nil {
		s.log.Warn("primary model failed, trying fallback",
			"model", req.Model, "fallback", s.opts.FallbackModel, "err", err)
		req.Model = s.opts.FallbackModel
		pol := s.opts.Retry
		pol.Attempts = max(fallbackAttempts, pol.Attempts)
		pol.PreSleep = max(s.opts.FallbackPreSleep, pol.PreSleep)
		resp, err = llm.Complete(ctx, p, req, s.policy(pol))
	}
	if err != nil {
		return Result{}, apperr.Provider(fmt.Sprintf("%s/%s", p.Name(), req.Model), err)
	}

	res := Result{
		Summary:      resp.Text,
		Provider:     p.Name(),
		Model:        req.Model,
		Truncated:    resp.Truncated(),
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}
	if res.Truncated {
		s.log.Warn("response truncated at the token limit, raise --max-tokens", "max_tokens", req.MaxTokens)
	}

	if s.cache != nil && !s.opts.NoCache {
		err := s.cache.Put(key, cache.Entry{Summary: res.Summary, Provider: res.Provider, Model: res.Model})
		if err != nil {
			s.log.Warn("cache write failed", "err", err)
		}
	}
	return res, nil
}

func (s *Summarizer) policy(pol llm.RetryPolicy) llm.RetryPolicy {
	if pol.PreSleep > 0 {
		s.log.Info("waiting before first call", "pre_sleep", pol.PreSleep)
	}
	pol.Notify = func(err error, wait time.Duration, attempt int) {
		s.log.Warn("transient provider error, retrying",
			"attempt", attempt, "attempts", pol.Attempts, "wait", wait.Round(time.Millisecond), "err", err)
	}
	return pol
}
