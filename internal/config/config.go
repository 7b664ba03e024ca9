package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const DefaultInstructionTemplate = `You are a warm, attentive voice companion having a natural spoken conversation` +
	`{{with .UserName}} with {{.}}{{end}}.` +
	`{{with .Topic}} The conversation is about {{.}}; keep it on that subject unless the user moves on.{{end}}` +
	` Keep replies short and conversational, ask one question at a time, and answer in the language the user speaks.`

type Config struct {
	Port         string
	WSPath       string
	DefaultModel string
	LiveModel    string
	TTSModel     string
	DefaultVoice string

	InstructionTemplate string
	TTSPrimaryTimeout   time.Duration

	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	SentryDSN        string
	Environment      string
	MetricsNamespace string
	GinMode          string
}

func Load() (Config, error) {
	cfg := Config{
		Port:             getenv("PORT", "8080"),
		WSPath:           getenv("WS_PATH", "/ws"),
		DefaultModel:     getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		LiveModel:        getenv("GEMINI_LIVE_MODEL", "gemini-live-2.5-flash-preview"),
		TTSModel:         getenv("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		DefaultVoice:     getenv("DEFAULT_VOICE", "Puck"),
		LogFile:          getenv("LOG_FILE", ""),
		SentryDSN:        getenv("SENTRY_DSN", ""),
		Environment:      getenv("ENVIRONMENT", "development"),
		MetricsNamespace: getenv("METRICS_NAMESPACE", "voicerelay"),
		GinMode:          getenv("GIN_MODE", ""),

		InstructionTemplate: DefaultInstructionTemplate,
	}

	var err error
	if cfg.TTSPrimaryTimeout, err = durationEnv("TTS_PRIMARY_TIMEOUT", 20*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LogMaxSizeMB, err = intEnv("LOG_MAX_SIZE_MB", 50); err != nil {
		return Config{}, err
	}
	if cfg.LogMaxBackups, err = intEnv("LOG_MAX_BACKUPS", 5); err != nil {
		return Config{}, err
	}
	if cfg.LogMaxAgeDays, err = intEnv("LOG_MAX_AGE_DAYS", 14); err != nil {
		return Config{}, err
	}

	if path := os.Getenv("INSTRUCTION_TEMPLATE_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("INSTRUCTION_TEMPLATE_FILE: %w", err)
		}
		cfg.InstructionTemplate = string(b)
	}

	if cfg.TTSPrimaryTimeout <= 0 {
		return Config{}, fmt.Errorf("TTS_PRIMARY_TIMEOUT must be positive")
	}
	if cfg.WSPath == "" || cfg.WSPath[0] != '/' {
		return Config{}, fmt.Errorf("WS_PATH must start with /")
	}
	return cfg, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func durationEnv(k string, d time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return d, nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", k, err)
	}
	return out, nil
}

func intEnv(k string, d int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return d, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", k, err)
	}
	return out, nil
}
