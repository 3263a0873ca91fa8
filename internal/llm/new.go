package llm

import (
	"context"
	"strings"
)

// Options selects and configures a provider.
type Options struct {
	Service string
	APIKey  string
	BaseURL string
	Model   string
}

// Provider is a Completer that can describe itself.
type Provider interface {
	Completer
	Service() string
	Model() string
}

// New builds the provider for opts.Service.
func New(ctx context.Context, opts Options) (Provider, error) {
	if strings.EqualFold(strings.TrimSpace(opts.Service), ServiceGemini) {
		return NewGeminiClient(ctx, opts)
	}

	return NewOpenAIClient(opts)
}
