// Package config loads runtime configuration from .env and environment
// variables into one explicit struct threaded through constructors.
package config

// #region imports
import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/aoi20031020/ripogram-generator/internal/rewrite"
)

// #endregion imports

// #region config

// Config holds all runtime settings.
type Config struct {
	// OpenAI-compatible generation endpoint.
	APIKey      string  // OPENAI_API_KEY, required for network runs
	BaseURL     string  // OPENAI_BASE_URL, default https://api.openai.com/v1
	Model       string  // OPENAI_MODEL, default gpt-4.1-nano
	Temperature float64 // OPENAI_TEMPERATURE, default 0.5

	// Retry policy.
	MaxAttempts       int                       // RIPOGRAM_MAX_ATTEMPTS, default 10
	StageSplit        [3]int                    // RIPOGRAM_STAGE_SPLIT="3,3,4"
	FailedTokenPolicy rewrite.FailedTokenPolicy // RIPOGRAM_FAILED_POLICY

	// Defaults and persistence.
	DefaultBanned string // DEFAULT_BANNED_CHARS, e.g. "さ,い"
	DBPath        string // RIPOGRAM_DB, default ripogram_results.db
}

// #endregion config

// #region load

// Load reads .env from envFile (or the working directory when empty), then
// the environment, and returns the resolved configuration. The API key is
// not validated here: offline paths (metrics, inspection) run without one,
// and the generation client fails fast when it is missing.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		// Best-effort: load .env from current directory
		_ = godotenv.Load()
	}

	cfg := &Config{
		APIKey:            strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL:           envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:             envOr("OPENAI_MODEL", "gpt-4.1-nano"),
		Temperature:       envFloat("OPENAI_TEMPERATURE", 0.5),
		MaxAttempts:       envInt("RIPOGRAM_MAX_ATTEMPTS", 10),
		FailedTokenPolicy: rewrite.KeepOriginal,
		DefaultBanned:     envOr("DEFAULT_BANNED_CHARS", "さ,い"),
		DBPath:            envOr("RIPOGRAM_DB", "ripogram_results.db"),
	}

	split, err := parseStageSplit(envOr("RIPOGRAM_STAGE_SPLIT", "3,3,4"), cfg.MaxAttempts)
	if err != nil {
		return nil, err
	}
	cfg.StageSplit = split

	if p := strings.TrimSpace(os.Getenv("RIPOGRAM_FAILED_POLICY")); p != "" {
		switch rewrite.FailedTokenPolicy(p) {
		case rewrite.KeepOriginal, rewrite.KeepLast:
			cfg.FailedTokenPolicy = rewrite.FailedTokenPolicy(p)
		default:
			return nil, fmt.Errorf("config: unknown failed-token policy %q", p)
		}
	}
	return cfg, nil
}

// RewriteConfig converts the loaded settings into the engine's config.
func (c *Config) RewriteConfig(verbose bool) rewrite.Config {
	return rewrite.Config{
		MaxAttempts:       c.MaxAttempts,
		StageSplit:        c.StageSplit,
		FailedTokenPolicy: c.FailedTokenPolicy,
		Verbose:           verbose,
	}
}

// #endregion load

// #region helpers

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// parseStageSplit parses "a,b,c" into the three stage sub-budgets. The
// parts must be non-negative and sum to maxAttempts.
func parseStageSplit(spec string, maxAttempts int) ([3]int, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return [3]int{}, fmt.Errorf("config: stage split %q needs three parts", spec)
	}
	var out [3]int
	sum := 0
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return [3]int{}, fmt.Errorf("config: bad stage split part %q", p)
		}
		out[i] = n
		sum += n
	}
	if sum != maxAttempts {
		return [3]int{}, fmt.Errorf("config: stage split %q sums to %d, want %d", spec, sum, maxAttempts)
	}
	return out, nil
}

// #endregion helpers
