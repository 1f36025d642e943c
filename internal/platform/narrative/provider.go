package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrNoProvider is returned when no LLM backend is configured. Callers use
// the rule-based summary instead.
var ErrNoProvider = errors.New("no narrative provider configured")

// Generator produces a narrative summary for one analysis.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config selects one backend of the closed provider set. Selection happens
// once at startup by credential availability, in declaration order; it is
// never re-probed per call.
type Config struct {
	OpenAIKey    string
	AnthropicKey string
	OllamaURL    string
	Model        string
}

// llmGenerator adapts one langchaingo model to the Generator interface.
type llmGenerator struct {
	name  string
	model llms.Model
}

// NewGenerator picks the first available provider: OpenAI, then Anthropic,
// then a local Ollama endpoint. ErrNoProvider when none is configured.
func NewGenerator(cfg Config, log zerolog.Logger) (Generator, error) {
	switch {
	case cfg.OpenAIKey != "":
		opts := []openai.Option{openai.WithToken(cfg.OpenAIKey)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("init openai provider: %w", err)
		}
		log.Info().Str("provider", "openai").Msg("narrative provider selected")
		return &llmGenerator{name: "openai", model: model}, nil

	case cfg.AnthropicKey != "":
		opts := []anthropic.Option{anthropic.WithToken(cfg.AnthropicKey)}
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		model, err := anthropic.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("init anthropic provider: %w", err)
		}
		log.Info().Str("provider", "anthropic").Msg("narrative provider selected")
		return &llmGenerator{name: "anthropic", model: model}, nil

	case cfg.OllamaURL != "":
		opts := []ollama.Option{ollama.WithServerURL(cfg.OllamaURL)}
		if cfg.Model != "" {
			opts = append(opts, ollama.WithModel(cfg.Model))
		}
		model, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("init ollama provider: %w", err)
		}
		log.Info().Str("provider", "ollama").Msg("narrative provider selected")
		return &llmGenerator{name: "ollama", model: model}, nil
	}
	return nil, ErrNoProvider
}

func (g *llmGenerator) Generate(ctx context.Context, req Request) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, g.model, buildPrompt(req),
		llms.WithTemperature(0.2), llms.WithMaxTokens(600))
	if err != nil {
		return "", fmt.Errorf("%s narrative: %w", g.name, err)
	}
	return strings.TrimSpace(out), nil
}

// buildPrompt renders the request into a constrained instruction. The model
// only ever sees already-classified data; it never decides status or risk.
func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are writing a short summary of blood test results for a patient. ")
	b.WriteString("Write two paragraphs: first in English, then the same content in Spanish. ")
	b.WriteString("Do not diagnose and do not contradict the classifications given.\n\n")
	fmt.Fprintf(&b, "Panel: %s. Patient: %d-year-old %s.\nResults:\n", req.TestType, req.PatientAge, req.PatientSex)
	for _, r := range req.Results {
		fmt.Fprintf(&b, "- %s: %s %s, status %s, risk %s\n", r.Parameter, trimFloat(r.Value), r.Unit, r.Status, r.Risk)
	}
	if len(req.Patterns) > 0 {
		fmt.Fprintf(&b, "Detected patterns: %s\n", strings.Join(req.Patterns, ", "))
	}
	return b.String()
}
