package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr      string `yaml:"listenAddr"`
	AssetsDir       string `yaml:"assetsDir"`
	SampleRate      int    `yaml:"sampleRate"`
	SpeakerBufferMs int    `yaml:"speakerBufferMs"`
	PollIntervalMs  int    `yaml:"pollIntervalMs"`
	MaxSessions     int    `yaml:"maxSessions"`
}

// Load builds the config from defaults, then an optional YAML file
// named by SOUNDBENCH_CONFIG, then environment overrides. Later layers
// win.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:      ":9090",
		AssetsDir:       "assets",
		SampleRate:      48000,
		SpeakerBufferMs: 100,
		PollIntervalMs:  16,
		MaxSessions:     8,
	}

	if path := os.Getenv("SOUNDBENCH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.AssetsDir = getEnv("ASSETS_DIR", cfg.AssetsDir)
	var err error
	if cfg.SampleRate, err = getEnvInt("SAMPLE_RATE", cfg.SampleRate); err != nil {
		return nil, err
	}
	if cfg.SpeakerBufferMs, err = getEnvInt("SPEAKER_BUFFER_MS", cfg.SpeakerBufferMs); err != nil {
		return nil, err
	}
	if cfg.PollIntervalMs, err = getEnvInt("POLL_INTERVAL_MS", cfg.PollIntervalMs); err != nil {
		return nil, err
	}
	if cfg.MaxSessions, err = getEnvInt("MAX_SESSIONS", cfg.MaxSessions); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("sample rate %d out of range [8000, 192000]", c.SampleRate)
	}
	if c.SpeakerBufferMs <= 0 {
		return fmt.Errorf("speaker buffer must be positive, got %dms", c.SpeakerBufferMs)
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("poll interval must be positive, got %dms", c.PollIntervalMs)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must be positive, got %d", c.MaxSessions)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
