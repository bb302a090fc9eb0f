package config

// defaultRoot returns the configuration tree written on first run. The
// values mirror the documented defaults for the assistant: LLM providers,
// per-tool defaults, security, and logging.
func defaultRoot() map[string]any {
	return map[string]any{
		"llm": map[string]any{
			"default_provider": "openai",
			"providers": map[string]any{
				"openai": map[string]any{
					"model":       "gpt-4",
					"temperature": 0.7,
				},
				"anthropic": map[string]any{
					"model":       "claude-2",
					"temperature": 0.7,
				},
				"mistral": map[string]any{
					"model":       "mistral-large",
					"temperature": 0.7,
				},
				"groq": map[string]any{
					"model":       "groq-large",
					"temperature": 0.7,
				},
				"gemini": map[string]any{
					"model":       "gemini-pro",
					"temperature": 0.7,
				},
			},
		},
		"tools": map[string]any{
			"code_analysis": map[string]any{
				"default_language": "python",
				"linting_rules":    "strict",
			},
			"simulation": map[string]any{
				"default_engine": "numpy",
				"precision":      "double",
			},
			"documentation": map[string]any{
				"default_format": "markdown",
				"auto_generate":  true,
			},
		},
		"security": map[string]any{
			"api_key_env_prefix": "SEA_",
			"encryption_enabled": true,
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
		},
	}
}
