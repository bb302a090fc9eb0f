package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sea.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_ReadsNestedValues(t *testing.T) {
	path := writeConfig(t, `
llm:
  default_provider: anthropic
  providers:
    anthropic:
      model: claude-2
      temperature: 0.7
security:
  encryption_enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.GetString("llm.default_provider", ""); got != "anthropic" {
		t.Errorf("default_provider = %q, want %q", got, "anthropic")
	}
	if got := cfg.GetString("llm.providers.anthropic.model", ""); got != "claude-2" {
		t.Errorf("model = %q, want %q", got, "claude-2")
	}
	if got := cfg.GetFloat64("llm.providers.anthropic.temperature", 0); got != 0.7 {
		t.Errorf("temperature = %v, want 0.7", got)
	}
	if !cfg.GetBool("security.encryption_enabled", false) {
		t.Error("encryption_enabled should be true")
	}
}

func TestLoad_MalformedFileIsFatal(t *testing.T) {
	path := writeConfig(t, "llm: [unclosed")

	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail on malformed YAML")
	}
}

func TestLoad_MissingFileCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.GetString("llm.default_provider", ""); got != "openai" {
		t.Errorf("default_provider = %q, want %q", got, "openai")
	}
	if got := cfg.GetString("security.api_key_env_prefix", ""); got != "SEA_" {
		t.Errorf("api_key_env_prefix = %q, want %q", got, "SEA_")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file should exist: %v", err)
	}
}

func TestGet_MissingKeyReturnsNil(t *testing.T) {
	path := writeConfig(t, "llm:\n  default_provider: openai\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []string{
		"nonexistent",
		"llm.nonexistent",
		"llm.default_provider.deeper",
		"a.b.c.d",
	}
	for _, key := range tests {
		if got := cfg.Get(key); got != nil {
			t.Errorf("Get(%q) = %v, want nil", key, got)
		}
	}
}

func TestGet_ExpandsEnvironmentValues(t *testing.T) {
	t.Setenv("SEA_TEST_MODEL", "gpt-4")
	path := writeConfig(t, "llm:\n  model: ${SEA_TEST_MODEL}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.GetString("llm.model", ""); got != "gpt-4" {
		t.Errorf("model = %q, want %q", got, "gpt-4")
	}
}

func TestSet_PersistsAndReloads(t *testing.T) {
	path := writeConfig(t, "llm:\n  default_provider: openai\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := cfg.Set("tools.code_analysis.default_language", "java"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.GetString("tools.code_analysis.default_language", ""); got != "java" {
		t.Errorf("default_language = %q, want %q", got, "java")
	}
	if got := reloaded.GetString("llm.default_provider", ""); got != "openai" {
		t.Errorf("existing value lost, default_provider = %q", got)
	}
}

func TestDiscoverFrom_Precedence(t *testing.T) {
	dir := t.TempDir()
	cwd := filepath.Join(dir, "cwd")
	home := filepath.Join(dir, "home")
	for _, d := range []string{cwd, home} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	project := filepath.Join(cwd, projectConfigName)
	if err := os.WriteFile(project, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	got, err := DiscoverFrom("", "", cwd, home)
	if err != nil {
		t.Fatalf("DiscoverFrom: %v", err)
	}
	if got != project {
		t.Errorf("path = %q, want project config %q", got, project)
	}

	// Explicit path wins even when it does not exist yet.
	explicit := filepath.Join(dir, "custom.yaml")
	got, err = DiscoverFrom(explicit, "", cwd, home)
	if err != nil {
		t.Fatalf("DiscoverFrom explicit: %v", err)
	}
	if got != explicit {
		t.Errorf("path = %q, want explicit %q", got, explicit)
	}
}

func TestDiscoverFrom_FallsBackToHome(t *testing.T) {
	dir := t.TempDir()
	got, err := DiscoverFrom("", "", dir, dir)
	if err != nil {
		t.Fatalf("DiscoverFrom: %v", err)
	}
	want := filepath.Join(dir, homeConfigDir, homeConfigName)
	if got != want {
		t.Errorf("path = %q, want home fallback %q", got, want)
	}
	if !strings.HasSuffix(got, homeConfigName) {
		t.Errorf("fallback should end with %q", homeConfigName)
	}
}
