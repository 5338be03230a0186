package config

import (
	"log"
	"os"
	"strconv"
)

const EnvironmentProduction = "production"

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Templates
	TemplateDir string // extra YAML/JSON template files, merged over the presets

	// Rendering defaults
	DefaultScale  string
	DefaultKey    string
	DefaultOctave int
	Tempo         float64 // BPM

	// Observability
	SentryDSN string // Sentry DSN for error tracking
}

func Load() *Config {
	return &Config{
		Environment:   getEnv("SEQGEN_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		TemplateDir:   getEnv("SEQGEN_TEMPLATE_DIR", ""),
		DefaultScale:  getEnv("SEQGEN_DEFAULT_SCALE", "major"),
		DefaultKey:    getEnv("SEQGEN_DEFAULT_KEY", "C"),
		DefaultOctave: getEnvInt("SEQGEN_DEFAULT_OCTAVE", 4),
		Tempo:         getEnvFloat("SEQGEN_TEMPO", 120),
		SentryDSN:     getEnv("SENTRY_DSN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		log.Printf("Invalid %s=%q, using %g", key, value, defaultValue)
		return defaultValue
	}
	return f
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}
