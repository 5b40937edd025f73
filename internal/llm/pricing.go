package llm

import "unicode/utf8"

// Price is USD per million tokens.
type Price struct {
	Input  float64
	Output float64
}

var DefaultModels = map[string]string{
	Anthropic: "claude-sonnet-4-20250514",
	OpenAI:    "gpt-4o",
	Google:    "gemini-2.5-pro",
	Ollama:    "llama3",
}

var Pricing = map[string]map[string]Price{
	Anthropic: {
		"claude-sonnet-4-20250514":   {3.00, 15.00},
		"claude-3-5-sonnet-20241022": {3.00, 15.00},
		"claude-3-haiku-20240307":    {0.25, 1.25},
	},
	OpenAI: {
		"gpt-4o":      {2.50, 10.00},
		"gpt-4o-mini": {0.15, 0.60},
	},
	Google: {
		"gemini-3-pro-preview":   {2.00, 12.00},
		"gemini-3-flash-preview": {0.50, 3.00},
		"gemini-2.5-pro":         {1.25, 10.00},
		"gemini-2.5-flash":       {0.30, 2.50},
		"gemini-2.5-flash-lite":  {0.10, 0.40},
		"gemini-2.0-flash":       {0.10, 0.40},
	},
	Ollama: {
		"llama3":  {0, 0},
		"mistral": {0, 0},
	},
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	return DefaultModels[provider]
}

// EstimateTokens is a rough count at four characters per token.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// EstimateCost prices a call. ok is false for models without a known price;
// local providers always cost zero.
func EstimateCost(provider, model string, inputTokens, outputTokens int) (cost float64, ok bool) {
	if provider == Ollama {
		return 0, true
	}
	p, ok := Pricing[provider][model]
	if !ok {
		return 0, false
	}
	return float64(inputTokens)/1e6*p.Input + float64(outputTokens)/1e6*p.Output, true
}
