package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/cache"
	"github.com/Zuo-Peng/wa-digest/internal/config"
	"github.com/Zuo-Peng/wa-digest/internal/llm"
	"github.com/Zuo-Peng/wa-digest/internal/summarize"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func summarizeCmd() *cobra.Command {
	var input, output, provider, model, fallbackModel, promptPath string
	var maxTokens, retries int
	var retryBase, retryMax, preSleep time.Duration
	var retryJitter float64
	var estimate, noCache, skipValidation bool

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a week of chat text with an LLM",
		Long: `Send a week of transcript text to the configured provider and write the
Markdown summary. Identical requests are answered from the local cache.

Providers: anthropic (ANTHROPIC_API_KEY), openai (OPENAI_API_KEY),
google (GOOGLE_API_KEY or GEMINI_API_KEY), ollama (no key).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			sc := cfg.Summarize
			flags := cmd.Flags()
			if flags.Changed("provider") {
				sc.Provider = provider
			}
			if !slices.Contains(llm.Providers, sc.Provider) {
				return apperr.Argumentf("unknown provider %q (want one of %s)", sc.Provider, strings.Join(llm.Providers, ", "))
			}
			if flags.Changed("model") || (flags.Changed("provider") && sc.Provider != cfg.Summarize.Provider) {
				sc.Model = model
			}
			if flags.Changed("fallback-model") {
				sc.FallbackModel = fallbackModel
			}
			if flags.Changed("max-tokens") {
				sc.MaxTokens = maxTokens
			}
			if flags.Changed("retries") {
				sc.Retries = retries
			}
			if sc.MaxTokens <= 0 {
				return apperr.Argumentf("--max-tokens must be positive")
			}
			if sc.Retries < 1 {
				return apperr.Argumentf("--retries must be at least 1")
			}

			policy := llm.RetryPolicy{
				Attempts: sc.Retries,
				Base:     time.Duration(sc.RetryBaseSeconds) * time.Second,
				Max:      time.Duration(sc.RetryMaxSeconds) * time.Second,
				Jitter:   sc.RetryJitter,
				PreSleep: preSleep,
			}
			if flags.Changed("retry-base") {
				policy.Base = retryBase
			}
			if flags.Changed("retry-max") {
				policy.Max = retryMax
			}
			if flags.Changed("retry-jitter") {
				policy.Jitter = retryJitter
			}

			if promptPath == "" {
				promptPath = cfg.PromptPath
			}
			var tmpl string
			if promptPath != "" {
				if tmpl, err = summarize.LoadTemplate(promptPath); err != nil {
					return err
				}
			}

			text, err := readText(input)
			if err != nil {
				return err
			}

			opts := summarize.Options{
				Provider:       sc.Provider,
				Model:          sc.Model,
				FallbackModel:  sc.FallbackModel,
				MaxTokens:      sc.MaxTokens,
				Retry:          policy,
				Template:       tmpl,
				NoCache:        noCache,
				SkipValidation: skipValidation,
			}
			opts.APIKey, _ = config.APIKey(sc.Provider)
			if envs := config.APIKeyEnv(sc.Provider); len(envs) > 0 {
				opts.APIKeyEnv = strings.Join(envs, " or ")
			}
			if sc.Provider == llm.Ollama {
				opts.LLM.BaseURL = sc.OllamaURL
			}

			if estimate {
				s := summarize.New(opts, nil, log)
				printEstimate(s.Estimate(text))
				return nil
			}

			var c *cache.Cache
			if !noCache {
				c, err = cache.Open(cfg.CachePath)
				if err != nil {
					log.Warn("cache unavailable, continuing without it", "err", err)
					c = nil
				} else {
					defer c.Close()
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			res, err := summarize.New(opts, c, log).Summarize(ctx, text)
			if err != nil {
				return err
			}
			if !res.Cached {
				log.Info("summary generated", "provider", res.Provider, "model", res.Model,
					"input_tokens", res.InputTokens, "output_tokens", res.OutputTokens)
			}

			out := strings.TrimRight(res.Summary, "\n") + "\n"
			if err := writeOutput(cmd.OutOrStdout(), output, []byte(out)); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Summary written to %s\n", output)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "-", "Week transcript (file or - for stdin)")
	f.StringVarP(&output, "output", "o", "", "Output Markdown file (default stdout)")
	f.StringVar(&provider, "provider", "", "LLM provider: anthropic, openai, google, ollama")
	f.StringVar(&model, "model", "", "Model (default depends on provider)")
	f.StringVar(&fallbackModel, "fallback-model", "", "Model tried once the primary model gives up")
	f.StringVar(&promptPath, "prompt", "", "Prompt template file with a {messages} placeholder")
	f.IntVar(&maxTokens, "max-tokens", 4096, "Maximum output tokens")
	f.IntVar(&retries, "retries", 5, "Total attempts per model")
	f.DurationVar(&retryBase, "retry-base", 2*time.Second, "First retry wait")
	f.DurationVar(&retryMax, "retry-max", 120*time.Second, "Longest retry wait")
	f.Float64Var(&retryJitter, "retry-jitter", 0.25, "Random spread applied to each wait (0-1)")
	f.DurationVar(&preSleep, "pre-sleep", 0, "Wait before the first call")
	f.BoolVar(&estimate, "estimate", false, "Print the token and cost estimate and exit")
	f.BoolVar(&noCache, "no-cache", false, "Neither read nor write the summary cache")
	f.BoolVar(&skipValidation, "skip-validation", false, "Accept input that does not look like a WhatsApp export")

	return cmd
}

func printEstimate(e summarize.Estimate) {
	fmt.Printf("Provider:      %s\n", e.Provider)
	fmt.Printf("Model:         %s\n", e.Model)
	fmt.Printf("Input tokens:  ~%s\n", humanize.Comma(int64(e.InputTokens)))
	fmt.Printf("Output tokens: up to %s\n", humanize.Comma(int64(e.OutputTokens)))
	if !e.Priced {
		fmt.Println("Cost:          unknown (no pricing for this model)")
		return
	}
	fmt.Printf("Cost:          up to $%.4f (input $%.4f, output $%.4f)\n", e.Cost(), e.InputCost, e.OutputCost)
}
