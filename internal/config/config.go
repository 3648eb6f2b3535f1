package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	LLM struct {
		Provider     string
		APIKey       string
		BaseURL      string
		DefaultModel string
		MaxTokens    int
		Temperature  float32
		Timeout      time.Duration
	}
	Registry struct {
		File            string
		DefaultTemplate string
	}
	Session struct {
		Lifetime time.Duration
		IdleTTL  time.Duration
		Sweep    string
	}
	History struct {
		// Retain is how many copied prompts to keep; 0 disables pruning.
		Retain int
	}
	InsecureCookies bool
}

// Load reads config from environment (BLOCKPROMPT_ prefix) and optional blockprompt.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BLOCKPROMPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("blockprompt")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.default_model", "grok-3-mini")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("registry.default_template", "general")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("session.idle_ttl", "2h")
	v.SetDefault("session.sweep", "@every 10m")
	v.SetDefault("history.retain", 500)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.LLM.Provider = v.GetString("llm.provider")
	cfg.LLM.APIKey = v.GetString("llm.api_key")
	cfg.LLM.BaseURL = v.GetString("llm.base_url")
	cfg.LLM.DefaultModel = v.GetString("llm.default_model")
	cfg.LLM.MaxTokens = v.GetInt("llm.max_tokens")
	cfg.LLM.Temperature = float32(v.GetFloat64("llm.temperature"))
	cfg.Registry.File = v.GetString("registry.file")
	cfg.Registry.DefaultTemplate = v.GetString("registry.default_template")
	cfg.Session.Sweep = v.GetString("session.sweep")
	cfg.History.Retain = v.GetInt("history.retain")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"llm.timeout", &cfg.LLM.Timeout},
		{"session.lifetime", &cfg.Session.Lifetime},
		{"session.idle_ttl", &cfg.Session.IdleTTL},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envName(d.key), err)
		}
		*d.dst = parsed
	}

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("BLOCKPROMPT_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("BLOCKPROMPT_DB_DSN is required")
	}
	if cfg.LLM.Provider != "" && cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("BLOCKPROMPT_LLM_API_KEY is required when BLOCKPROMPT_LLM_PROVIDER is set")
	}
	if cfg.LLM.MaxTokens <= 0 {
		return nil, fmt.Errorf("BLOCKPROMPT_LLM_MAX_TOKENS must be positive")
	}
	if cfg.History.Retain < 0 {
		return nil, fmt.Errorf("BLOCKPROMPT_HISTORY_RETAIN must not be negative")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return nil, fmt.Errorf("BLOCKPROMPT_LLM_TEMPERATURE must be between 0 and 2")
	}

	return cfg, nil
}

func envName(key string) string {
	return "BLOCKPROMPT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
