// Package config loads and persists the nested YAML configuration for the
// SEA assistant: LLM provider settings, per-tool defaults, security flags,
// and logging options. Values are addressed by dotted key paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	envConfigPath     = "SEA_CONFIG"
	projectConfigName = "sea.yaml"
	homeConfigDir     = ".sea"
	homeConfigName    = "config.yaml"
)

// Config holds the loaded configuration tree. It is safe for concurrent
// readers; Set and Save must not race with readers.
type Config struct {
	path string
	root map[string]any
}

// Load reads the configuration file at path. A malformed file is a fatal
// load error: no Config is returned. When the file does not exist, the
// default configuration is written there and loaded.
func Load(path string) (*Config, error) {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil, errors.New("config: path is required")
	}
	clean = filepath.Clean(clean)

	// #nosec G304 -- path comes from explicit local config discovery.
	data, err := os.ReadFile(clean)
	if errors.Is(err, os.ErrNotExist) {
		cfg := &Config{path: clean, root: defaultRoot()}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", clean, err)
	}

	root := make(map[string]any)
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", clean, err)
	}
	return &Config{path: clean, root: root}, nil
}

// Discover resolves the config location with first-match semantics:
// explicit path, then $SEA_CONFIG, then ./sea.yaml, then ~/.sea/config.yaml.
// When nothing exists the home location is returned so Load can create it.
func Discover(explicitPath string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("config: resolve working directory: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user home: %w", err)
	}
	return DiscoverFrom(explicitPath, os.Getenv(envConfigPath), cwd, home)
}

// DiscoverFrom is a testable variant of Discover.
func DiscoverFrom(explicitPath, envPath, cwd, homeDir string) (string, error) {
	fallback := filepath.Join(homeDir, homeConfigDir, homeConfigName)

	candidates := make([]string, 0, 3)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		if clean := strings.TrimSpace(envPath); clean != "" {
			candidates = append(candidates, filepath.Clean(clean))
		}
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, fallback)
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			// An explicit path that is missing is still the answer: Load
			// creates the default file there.
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return candidate, nil
			}
			continue
		}
		if err != nil {
			return "", fmt.Errorf("config: checking path %q: %w", candidate, err)
		}
	}
	return fallback, nil
}

// Path returns the backing file path.
func (c *Config) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Get returns the value at a dotted key path, or nil when any segment is
// missing. A missing key is never an error. String values have ${VAR}
// references expanded from the environment.
func (c *Config) Get(key string) any {
	if c == nil {
		return nil
	}
	var value any = c.root
	for _, segment := range strings.Split(key, ".") {
		m, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		value, ok = m[segment]
		if !ok {
			return nil
		}
	}
	if s, ok := value.(string); ok {
		return os.ExpandEnv(s)
	}
	return value
}

// GetString returns the string at key, or fallback when missing or not a string.
func (c *Config) GetString(key, fallback string) string {
	if v, ok := c.Get(key).(string); ok {
		return v
	}
	return fallback
}

// GetBool returns the bool at key, or fallback when missing or not a bool.
func (c *Config) GetBool(key string, fallback bool) bool {
	if v, ok := c.Get(key).(bool); ok {
		return v
	}
	return fallback
}

// GetInt returns the int at key, handling YAML's int and float decodings.
func (c *Config) GetInt(key string, fallback int) int {
	switch v := c.Get(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// GetFloat64 returns the float at key, or fallback when missing.
func (c *Config) GetFloat64(key string, fallback float64) float64 {
	switch v := c.Get(key).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// GetStringMap returns the nested map at key, or nil when missing.
func (c *Config) GetStringMap(key string) map[string]any {
	if v, ok := c.Get(key).(map[string]any); ok {
		return v
	}
	return nil
}

// Set writes value at a dotted key path, creating intermediate maps as
// needed, and persists the full tree to disk.
func (c *Config) Set(key string, value any) error {
	if c == nil {
		return errors.New("config: config is nil")
	}
	clean := strings.TrimSpace(key)
	if clean == "" {
		return errors.New("config: key is required")
	}

	segments := strings.Split(clean, ".")
	node := c.root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value

	return c.Save()
}

// Save writes the configuration tree back to its file atomically.
func (c *Config) Save() error {
	if c == nil {
		return errors.New("config: config is nil")
	}

	data, err := yaml.Marshal(c.root)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o750); err != nil {
		return fmt.Errorf("config: create config dir: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("config: write temp config file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("config: replace config file: %w", err)
	}
	return nil
}
