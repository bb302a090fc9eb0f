package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sea-labs/sea/config"
)

// ErrNoProviders is returned when no configured provider has an API key.
var ErrNoProviders = errors.New("llm: no providers available")

// Manager routes prompts to configured providers. The default provider comes
// from llm.default_provider; when that provider has no API key the manager
// falls back to the first available one.
type Manager struct {
	cfg       *config.Config
	providers ProviderMap
	factory   ClientFactory
	logger    *slog.Logger

	mu      sync.Mutex
	clients map[string]Client

	defaultProvider string
}

// ManagerOption configures a Manager at construction.
type ManagerOption func(*Manager)

// WithLogger sets the manager logger. If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithProviders overrides the provider map resolved from config. Intended
// for tests and embedding callers that manage keys themselves.
func WithProviders(providers ProviderMap) ManagerOption {
	return func(m *Manager) {
		m.providers = providers
	}
}

// NewManager builds a manager from configuration and a client factory.
func NewManager(cfg *config.Config, factory ClientFactory, opts ...ManagerOption) (*Manager, error) {
	if factory == nil {
		return nil, errors.New("llm: client factory is required")
	}

	m := &Manager{
		cfg:       cfg,
		providers: ProvidersFromConfig(cfg),
		factory:   factory,
		logger:    slog.Default(),
		clients:   make(map[string]Client),
	}
	for _, opt := range opts {
		opt(m)
	}

	preferred := cfg.GetString("llm.default_provider", defaultProviderName)
	if _, ok := m.providers[preferred]; ok {
		m.defaultProvider = preferred
	} else if names := m.providers.Names(); len(names) > 0 {
		m.defaultProvider = names[0]
		m.logger.Warn("default provider unavailable, falling back",
			slog.String("preferred", preferred),
			slog.String("fallback", m.defaultProvider),
		)
	}
	return m, nil
}

// Providers returns the available provider names in deterministic order.
func (m *Manager) Providers() []string {
	return m.providers.Names()
}

// DefaultProvider returns the resolved default provider name, or "" when no
// provider is available.
func (m *Manager) DefaultProvider() string {
	return m.defaultProvider
}

// Process completes a prompt with the default provider using its configured
// model and temperature.
func (m *Manager) Process(ctx context.Context, prompt string) (Response, error) {
	if m.defaultProvider == "" {
		return Response{}, ErrNoProviders
	}
	return m.Complete(ctx, m.defaultProvider, prompt)
}

// Complete completes a prompt with a specific provider.
func (m *Manager) Complete(ctx context.Context, provider, prompt string) (Response, error) {
	cfg, ok := m.providers[provider]
	if !ok {
		return Response{}, fmt.Errorf("llm: provider %q not configured", provider)
	}

	client, err := m.client(provider, cfg)
	if err != nil {
		return Response{}, err
	}

	temp := cfg.Temperature
	resp, err := client.Complete(ctx, Request{
		Model:       cfg.Model,
		Prompt:      prompt,
		Temperature: &temp,
	})
	if err != nil {
		return Response{}, fmt.Errorf("llm: completing with %q: %w", provider, err)
	}
	if resp.Provider == "" {
		resp.Provider = provider
	}
	return resp, nil
}

// client returns the cached client for a provider, creating it on first use.
func (m *Manager) client(provider string, cfg ProviderConfig) (Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.clients[provider]; ok {
		return c, nil
	}
	c, err := m.factory(provider, cfg)
	if err != nil {
		return nil, err
	}
	m.clients[provider] = c
	return c, nil
}
