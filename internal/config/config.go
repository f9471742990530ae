// Package config reads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	// FieldEncryptionKey seals contact fields at rest. Empty disables it.
	FieldEncryptionKey string

	AIServiceURL        string
	AIEnabled           bool
	AIRequestsPerSecond float64
	ChromePath          string
	PresetsPath         string
	ATSRubric           string
	ATSPenalties        string
	LocalAutoClearHours int
	Debounce            time.Duration
	CORSOrigins         string
	LogLevel            string
	LogFormat           string
}

// LoadDefaults populates c with the values used when nothing is set.
func (c *Config) LoadDefaults() {
	c.Port = "3000"
	c.DatabaseURL = ""
	c.AIServiceURL = "http://ai-service:8000"
	c.AIEnabled = false
	c.AIRequestsPerSecond = 2
	c.ATSRubric = "default"
	c.LocalAutoClearHours = 24
	c.Debounce = 300 * time.Millisecond
	c.CORSOrigins = "*"
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// Load applies defaults, then a .env file in the working directory if there
// is one, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup over the defaults.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("PORT", &cfg.Port)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("FIELD_ENCRYPTION_KEY", &cfg.FieldEncryptionKey)
	str("AI_SERVICE_URL", &cfg.AIServiceURL)
	str("CHROME_PATH", &cfg.ChromePath)
	str("PRESETS_PATH", &cfg.PresetsPath)
	str("ATS_RUBRIC", &cfg.ATSRubric)
	str("ATS_PENALTIES", &cfg.ATSPenalties)
	str("CORS_ORIGINS", &cfg.CORSOrigins)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	if v, ok := lookup("AI_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: AI_ENABLED: %w", err)
		}
		cfg.AIEnabled = b
	}
	if v, ok := lookup("AI_REQUESTS_PER_SECOND"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config: AI_REQUESTS_PER_SECOND: %w", err)
		}
		cfg.AIRequestsPerSecond = f
	}
	if v, ok := lookup("LOCAL_AUTO_CLEAR_HOURS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: LOCAL_AUTO_CLEAR_HOURS: %w", err)
		}
		cfg.LocalAutoClearHours = n
	}
	if v, ok := lookup("DEBOUNCE_MS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("config: DEBOUNCE_MS: invalid value %q", v)
		}
		cfg.Debounce = time.Duration(n) * time.Millisecond
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// LocalMaxAge is how long the local draft slot survives. Zero keeps it forever.
func (c *Config) LocalMaxAge() time.Duration {
	if c.LocalAutoClearHours <= 0 {
		return 0
	}
	return time.Duration(c.LocalAutoClearHours) * time.Hour
}
