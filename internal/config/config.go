package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// RetryConfig controls per-provider retry behaviour. Defaults are the
// documented conservative constants: 3 attempts, exponential backoff from
// 200ms.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" validate:"min=1,max=10"`
	BackoffBase time.Duration `yaml:"backoff_base" validate:"min=1ms"`
}

type Config struct {
	Astro struct {
		BaseURL string        `yaml:"base_url" validate:"required,url"`
		Timeout time.Duration `yaml:"timeout"`
		Retry   RetryConfig   `yaml:"retry"`
	} `yaml:"astro"`

	News struct {
		BaseURL         string        `yaml:"base_url" validate:"required,url"`
		Language        string        `yaml:"language"`
		Country         string        `yaml:"country"`
		MaxItems        int           `yaml:"max_items" validate:"min=1"`
		Timeout         time.Duration `yaml:"timeout"`
		CacheTTL        time.Duration `yaml:"cache_ttl"`
		ScraperFallback bool          `yaml:"scraper_fallback"`
		ScraperTimeout  time.Duration `yaml:"scraper_timeout"`
	} `yaml:"news"`

	Vector struct {
		BaseURL    string        `yaml:"base_url" validate:"omitempty,url"`
		Collection string        `yaml:"collection"`
		TopK       int           `yaml:"top_k" validate:"min=1"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"vector"`

	LLM struct {
		Provider    string        `yaml:"provider" validate:"oneof=OPENAI NOOP"`
		Model       string        `yaml:"model"`
		MaxTokens   int           `yaml:"max_tokens"`
		Temperature float32       `yaml:"temperature"`
		System      string        `yaml:"system"`
		Timeout     time.Duration `yaml:"timeout"`
		Retry       RetryConfig   `yaml:"retry"`
	} `yaml:"llm"`

	Prompt struct {
		MaxNewsItems      int `yaml:"max_news_items" validate:"min=1"`
		NewsCharBudget    int `yaml:"news_char_budget" validate:"min=10"`
		MaxRetrievedItems int `yaml:"max_retrieved_items" validate:"min=1"`
	} `yaml:"prompt"`

	Gather struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"gather"`

	Log struct {
		RetentionDays int `yaml:"retention_days"`
	} `yaml:"log"`
}

var validate = validator.New()

// Load reads config.yaml, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return nil, fmt.Errorf("config field %s failed %q validation", f.Namespace(), f.Tag())
		}
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Default returns a config with all defaults applied and no provider URLs.
// Used by tests that construct components directly.
func Default() *Config {
	cfg := &Config{}
	cfg.Astro.BaseURL = "http://localhost:9101"
	cfg.News.BaseURL = "http://localhost:9102"
	cfg.LLM.Provider = "NOOP"
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	defaultRetry := func(r *RetryConfig) {
		if r.MaxAttempts == 0 {
			r.MaxAttempts = 3
		}
		if r.BackoffBase == 0 {
			r.BackoffBase = 200 * time.Millisecond
		}
	}
	defaultRetry(&c.Astro.Retry)
	defaultRetry(&c.LLM.Retry)

	if c.Astro.Timeout == 0 {
		c.Astro.Timeout = 10 * time.Second
	}
	if c.News.Timeout == 0 {
		c.News.Timeout = 10 * time.Second
	}
	if c.News.MaxItems == 0 {
		c.News.MaxItems = 10
	}
	if c.News.CacheTTL == 0 {
		c.News.CacheTTL = 1 * time.Hour
	}
	if c.News.ScraperTimeout == 0 {
		c.News.ScraperTimeout = 30 * time.Second
	}
	if c.News.Language == "" {
		c.News.Language = "ru"
	}
	if c.Vector.Collection == "" {
		c.Vector.Collection = "astrobot-results"
	}
	if c.Vector.TopK == 0 {
		c.Vector.TopK = 3
	}
	if c.Vector.Timeout == 0 {
		c.Vector.Timeout = 5 * time.Second
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 60 * time.Second
	}
	if c.Prompt.MaxNewsItems == 0 {
		c.Prompt.MaxNewsItems = 3
	}
	if c.Prompt.NewsCharBudget == 0 {
		c.Prompt.NewsCharBudget = 80
	}
	if c.Prompt.MaxRetrievedItems == 0 {
		c.Prompt.MaxRetrievedItems = 3
	}
	if c.Gather.Timeout == 0 {
		c.Gather.Timeout = 15 * time.Second
	}
}
