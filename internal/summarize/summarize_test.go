package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/cache"
	"github.com/Zuo-Peng/wa-digest/internal/llm"
)

const week = `06/01/2026 09:00 - Ana: bom dia, pessoal
06/01/2026 09:02 - Bruno: alguém testou o novo modelo?
07/01/2026 14:30 - Carla: sim, usei com os alunos
`

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{"whatsapp", week, true},
		{"empty", "  \n ", false},
		{"too short", "06/01/2026 09:00 - Ana: oi\n", false},
		{"date only", "cabeçalho\n06/01/2026 mensagem sem hífen\nfim\n", true},
		{"prose", "um\ndois\ntrês\nquatro\n", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindArgument))
		})
	}
}

type fakeAPI struct {
	srv   *httptest.Server
	hits  atomic.Int32
	fail  map[string]int // model -> status
	calls []string
}

func newFakeAPI(t *testing.T, fail map[string]int) *fakeAPI {
	f := &fakeAPI{fail: fail}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		var body struct {
			Model    string `json:"model"`
			System   string `json:"system"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.calls = append(f.calls, body.Model)
		assert.Equal(t, SystemPrompt, body.System)
		assert.Contains(t, body.Messages[0].Content, "Carla: sim, usei com os alunos")
		assert.NotContains(t, body.Messages[0].Content, placeholder)

		if code, ok := f.fail[body.Model]; ok {
			w.WriteHeader(code)
			fmt.Fprint(w, `{"error":{"type":"api_error","message":"nope"}}`)
			return
		}
		fmt.Fprintf(w, `{"model":%q,"content":[{"type":"text","text":"## Sumário Executivo\n\nSemana movimentada."}],"stop_reason":"end_turn"}`, body.Model)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) options(model string) Options {
	return Options{
		Provider:  llm.Anthropic,
		Model:     model,
		APIKey:    "k",
		Retry:     llm.RetryPolicy{Attempts: 2, Base: time.Millisecond, Max: time.Millisecond},
		LLM:       llm.Options{BaseURL: f.srv.URL, HTTPClient: f.srv.Client()},
		MaxTokens: 1000,
	}
}

func TestSummarizeUsesCache(t *testing.T) {
	api := newFakeAPI(t, nil)
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.bolt"))
	require.NoError(t, err)
	defer c.Close()

	s := New(api.options("m-1"), c, quiet)
	res, err := s.Summarize(context.Background(), week)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Contains(t, res.Summary, "Semana movimentada.")
	assert.Equal(t, "m-1", res.Model)

	// CRLF endings hash to the same key
	res, err = s.Summarize(context.Background(), strings.ReplaceAll(week, "\n", "\r\n"))
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.EqualValues(t, 1, api.hits.Load())

	// a different model misses
	_, err = New(api.options("m-2"), c, quiet).Summarize(context.Background(), week)
	require.NoError(t, err)
	assert.EqualValues(t, 2, api.hits.Load())

	opts := api.options("m-1")
	opts.NoCache = true
	res, err = New(opts, c, quiet).Summarize(context.Background(), week)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.EqualValues(t, 3, api.hits.Load())
}

func TestSummarizeCacheHitNeedsNoKey(t *testing.T) {
	api := newFakeAPI(t, nil)
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.bolt"))
	require.NoError(t, err)
	defer c.Close()

	_, err = New(api.options("m-1"), c, quiet).Summarize(context.Background(), week)
	require.NoError(t, err)

	opts := api.options("m-1")
	opts.APIKey = ""
	res, err := New(opts, c, quiet).Summarize(context.Background(), week)
	require.NoError(t, err)
	assert.True(t, res.Cached)

	_, err = New(opts, nil, quiet).Summarize(context.Background(), week)
	require.Error(t, err)
	assert.Equal(t, apperr.ExitArgument, apperr.ExitCode(err))
}

func TestSummarizeFallback(t *testing.T) {
	api := newFakeAPI(t, map[string]int{"m-main": http.StatusServiceUnavailable})

	opts := api.options("m-main")
	opts.FallbackModel = "m-small"
	opts.FallbackPreSleep = time.Millisecond
	res, err := New(opts, nil, quiet).Summarize(context.Background(), week)
	require.NoError(t, err)
	assert.Equal(t, "m-small", res.Model)
	// two attempts on the main model, then the fallback
	assert.Equal(t, []string{"m-main", "m-main", "m-small"}, api.calls)
}

func TestSummarizeProviderError(t *testing.T) {
	api := newFakeAPI(t, map[string]int{"m-1": http.StatusUnauthorized})

	_, err := New(api.options("m-1"), nil, quiet).Summarize(context.Background(), week)
	require.Error(t, err)
	assert.Equal(t, apperr.ExitProvider, apperr.ExitCode(err))
	assert.EqualValues(t, 1, api.hits.Load(), "401 is not retried")
}

func TestSummarizeRejectsInvalidInput(t *testing.T) {
	api := newFakeAPI(t, nil)
	_, err := New(api.options("m-1"), nil, quiet).Summarize(context.Background(), "oi")
	require.Error(t, err)
	assert.Equal(t, apperr.ExitArgument, apperr.ExitCode(err))
	assert.Zero(t, api.hits.Load())
}

func TestEstimate(t *testing.T) {
	s := New(Options{Provider: llm.Anthropic, MaxTokens: 4096}, nil, quiet)
	e := s.Estimate(week)
	assert.Equal(t, "claude-sonnet-4-20250514", e.Model)
	assert.Equal(t, llm.EstimateTokens(SystemPrompt+s.Prompt(week)), e.InputTokens)
	assert.Equal(t, 4096, e.OutputTokens)
	assert.True(t, e.Priced)
	assert.InDelta(t, 4096.0/1e6*15, e.OutputCost, 1e-12)

	e = New(Options{Provider: llm.OpenAI, Model: "gpt-unknown"}, nil, quiet).Estimate(week)
	assert.False(t, e.Priced)
	assert.Zero(t, e.Cost())
}

func TestLoadTemplate(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadTemplate(filepath.Join(dir, "missing.md"))
	assert.Equal(t, apperr.ExitNotFound, apperr.ExitCode(err))

	assert.Contains(t, DefaultTemplate, placeholder)
	assert.Contains(t, DefaultTemplate, "## Sumário Executivo")
}
