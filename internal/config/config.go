// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/reviewgate/internal/application"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken string
	// GitHubRepo is the default "owner/name" for CLI commands; optional.
	GitHubRepo string
	ListenAddr string
	DBPath     string

	ReviewTimeout        time.Duration
	PollInterval         time.Duration
	RequireHumanApproval bool
	RequireCIPass        bool
	AutopilotMode        bool
	ReviewerBWorkflow    string
	DeferredLabels       []string

	LogLevel  slog.Level
	LogFormat string // "text" or "json"
}

// HasGitHubCredentials returns true when a GitHub token is configured.
func (c *Config) HasGitHubCredentials() bool {
	return c.GitHubToken != ""
}

// Engine returns the policy settings passed to the review engine.
func (c *Config) Engine() application.EngineConfig {
	return application.EngineConfig{
		ReviewTimeout:        c.ReviewTimeout,
		PollInterval:         c.PollInterval,
		RequireHumanApproval: c.RequireHumanApproval,
		RequireCIPass:        c.RequireCIPass,
		AutopilotMode:        c.AutopilotMode,
		ReviewerBWorkflow:    c.ReviewerBWorkflow,
		DeferredLabels:       c.DeferredLabels,
	}
}

// Load reads configuration from environment variables and returns a validated Config.
// REVIEWGATE_GITHUB_TOKEN is optional here; commands that talk to GitHub check
// HasGitHubCredentials. Optional variables with defaults:
// REVIEWGATE_LISTEN_ADDR (127.0.0.1:8080), REVIEWGATE_DB_PATH (reviewgate.db),
// REVIEWGATE_REVIEW_TIMEOUT (10m), REVIEWGATE_POLL_INTERVAL (30s),
// REVIEWGATE_REQUIRE_HUMAN_APPROVAL (true), REVIEWGATE_REQUIRE_CI_PASS (true),
// REVIEWGATE_AUTOPILOT_MODE (false), REVIEWGATE_REVIEWER_B_WORKFLOW,
// REVIEWGATE_DEFERRED_LABELS, REVIEWGATE_LOG_LEVEL (info), REVIEWGATE_LOG_FORMAT (text).
func Load() (*Config, error) {
	defaults := application.DefaultEngineConfig()

	cfg := &Config{
		GitHubToken:          os.Getenv("REVIEWGATE_GITHUB_TOKEN"),
		GitHubRepo:           os.Getenv("REVIEWGATE_GITHUB_REPO"),
		ListenAddr:           "127.0.0.1:8080",
		DBPath:               "reviewgate.db",
		ReviewTimeout:        defaults.ReviewTimeout,
		PollInterval:         defaults.PollInterval,
		RequireHumanApproval: defaults.RequireHumanApproval,
		RequireCIPass:        defaults.RequireCIPass,
		AutopilotMode:        defaults.AutopilotMode,
		ReviewerBWorkflow:    defaults.ReviewerBWorkflow,
		DeferredLabels:       defaults.DeferredLabels,
		LogLevel:             slog.LevelInfo,
		LogFormat:            "text",
	}

	if v, ok := os.LookupEnv("REVIEWGATE_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("REVIEWGATE_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("REVIEWGATE_REVIEWER_B_WORKFLOW"); ok {
		cfg.ReviewerBWorkflow = strings.TrimSpace(v)
	}

	if cfg.GitHubRepo != "" {
		if owner, name, ok := strings.Cut(cfg.GitHubRepo, "/"); !ok || owner == "" || name == "" {
			return nil, fmt.Errorf("REVIEWGATE_GITHUB_REPO must be owner/name, got %q", cfg.GitHubRepo)
		}
	}

	var err error
	if cfg.ReviewTimeout, err = durationEnv("REVIEWGATE_REVIEW_TIMEOUT", cfg.ReviewTimeout); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = durationEnv("REVIEWGATE_POLL_INTERVAL", cfg.PollInterval); err != nil {
		return nil, err
	}
	if cfg.RequireHumanApproval, err = boolEnv("REVIEWGATE_REQUIRE_HUMAN_APPROVAL", cfg.RequireHumanApproval); err != nil {
		return nil, err
	}
	if cfg.RequireCIPass, err = boolEnv("REVIEWGATE_REQUIRE_CI_PASS", cfg.RequireCIPass); err != nil {
		return nil, err
	}
	if cfg.AutopilotMode, err = boolEnv("REVIEWGATE_AUTOPILOT_MODE", cfg.AutopilotMode); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("REVIEWGATE_DEFERRED_LABELS"); ok {
		labels := []string{}
		for _, label := range strings.Split(v, ",") {
			label = strings.TrimSpace(label)
			if label != "" {
				labels = append(labels, label)
			}
		}
		cfg.DeferredLabels = labels
	}

	if v, ok := os.LookupEnv("REVIEWGATE_LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("REVIEWGATE_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}
	if v, ok := os.LookupEnv("REVIEWGATE_LOG_FORMAT"); ok {
		switch v = strings.ToLower(strings.TrimSpace(v)); v {
		case "text", "json":
			cfg.LogFormat = v
		default:
			return nil, fmt.Errorf("REVIEWGATE_LOG_FORMAT must be text or json, got %q", v)
		}
	}

	if err := cfg.Engine().Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return parsed, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s has invalid boolean %q: %w", key, v, err)
	}
	return parsed, nil
}
