// Package llm manages the assistant's LLM providers: per-provider settings
// from configuration, API-key resolution from the environment, and a client
// seam backed by the iris provider registry.
package llm

import (
	"os"
	"sort"
	"strings"

	"github.com/sea-labs/sea/config"
)

const (
	defaultEnvPrefix    = "SEA_"
	defaultProviderName = "openai"
	defaultTemperature  = 0.7
)

// ProviderConfig holds the settings for a single LLM provider.
type ProviderConfig struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	APIKey      string  `json:"-"`
}

// ProviderMap maps provider names to their configurations.
type ProviderMap map[string]ProviderConfig

// ProvidersFromConfig reads llm.providers.* and resolves an API key for each
// provider from the environment. Providers without a key are omitted, so the
// map only contains providers that can actually serve requests.
func ProvidersFromConfig(cfg *config.Config) ProviderMap {
	prefix := cfg.GetString("security.api_key_env_prefix", defaultEnvPrefix)

	providers := make(ProviderMap)
	for name := range cfg.GetStringMap("llm.providers") {
		key := resolveAPIKey(prefix, name)
		if key == "" {
			continue
		}
		base := "llm.providers." + name
		providers[name] = ProviderConfig{
			Model:       cfg.GetString(base+".model", ""),
			Temperature: cfg.GetFloat64(base+".temperature", defaultTemperature),
			APIKey:      key,
		}
	}
	return providers
}

// resolveAPIKey checks the prefixed name first (SEA_OPENAI_API_KEY), then
// the provider-native name (OPENAI_API_KEY).
func resolveAPIKey(prefix, provider string) string {
	upper := strings.ToUpper(strings.TrimSpace(provider))
	if upper == "" {
		return ""
	}
	for _, candidate := range []string{
		strings.ToUpper(strings.TrimSpace(prefix)) + upper + "_API_KEY",
		upper + "_API_KEY",
	} {
		if value := strings.TrimSpace(os.Getenv(candidate)); value != "" {
			return value
		}
	}
	return ""
}

// Names returns the provider names in deterministic (sorted) order.
func (m ProviderMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
