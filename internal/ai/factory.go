package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kiranshivaraju/nutrieye/internal/ai/anthropic"
	"github.com/kiranshivaraju/nutrieye/internal/ai/gemini"
	"github.com/kiranshivaraju/nutrieye/internal/ai/openai"
	"github.com/kiranshivaraju/nutrieye/internal/config"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// NewProvider constructs the appropriate Oracle based on config.
// Called once at server startup. A hosted backend without a credential is
// still constructed, as an Oracle that fails every call with ErrConfiguration,
// so the server can start and report the problem per request.
func NewProvider(cfg config.AIConfig) (models.Oracle, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return unconfigured("gemini", "GEMINI_API_KEY"), nil
		}
		return gemini.NewProvider(cfg.Gemini), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return unconfigured("openai", "OPENAI_API_KEY"), nil
		}
		return openai.NewProvider(cfg.OpenAI), nil
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return unconfigured("anthropic", "ANTHROPIC_API_KEY"), nil
		}
		return anthropic.NewProvider(cfg.Anthropic), nil
	case "ollama":
		return openai.NewCompatible("ollama", cfg.Ollama.BaseURL, cfg.Ollama.Model), nil
	case "vllm":
		return openai.NewCompatible("vllm", cfg.VLLM.BaseURL, cfg.VLLM.Model), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, openai, ollama, vllm, anthropic", cfg.Provider)
	}
}

func unconfigured(name, envVar string) *UnconfiguredProvider {
	slog.Warn("AI provider credential missing; analysis requests will fail until it is set",
		"provider", name,
		"env", envVar,
	)
	return NewUnconfiguredProvider(name)
}

// UnconfiguredProvider stands in for a backend whose credential is missing.
type UnconfiguredProvider struct {
	name string
}

func NewUnconfiguredProvider(name string) *UnconfiguredProvider {
	return &UnconfiguredProvider{name: name}
}

func (p *UnconfiguredProvider) Name() string { return p.name }

func (p *UnconfiguredProvider) Attempt(_ context.Context, _ models.InferenceRequest) (*models.RawResult, error) {
	return nil, fmt.Errorf("%w: %s credential is not set", ErrConfiguration, p.name)
}

var _ models.Oracle = (*UnconfiguredProvider)(nil)
