package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// ProviderConfig selects and configures a backend.
type ProviderConfig struct {
	// Provider is one of "gemini", "openai" or "fake".
	Provider string
	APIKey   string
	Model    string
	BaseURL  string

	RPS     float64
	Burst   int
	Retries int

	// FakeReply scripts the "fake" provider.
	FakeReply FakeReply
	Logger    *log.Logger
}

// New builds the configured backend wrapped in the standard middleware
// stack: logging, then retry, then rate limiting closest to the wire.
// A missing API key is not an error here; callers check the credential
// before each action so the process can start without one.
func New(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	var (
		base Provider
		err  error
	)
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch name {
	case "", "gemini":
		name = "gemini"
		base, err = NewGeminiProvider(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
		if err != nil {
			return nil, err
		}
	case "openai":
		base = NewOpenAIProvider(OpenAIConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	case "fake":
		base = NewFakeProvider(cfg.FakeReply)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}

	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}
	limit := RateLimit(cfg.RPS, cfg.Burst)
	if cfg.RPS <= 0 {
		// GEMINI_RPS / OPENAI_RPS
		limit = RateLimitFromEnv(strings.ToUpper(name))
	}
	return Wrap(base,
		WithLogging(cfg.Logger),
		Retry(retries, 500*time.Millisecond),
		limit,
	), nil
}
