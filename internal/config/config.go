package config

import (
	"fmt"
	"os"
	"time"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port              string `yaml:"port"`
		ReadHeaderTimeout string `yaml:"read_header_timeout"`
		// AllowOrigins feeds CORS; empty allows any origin.
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"server"`
	Logger LoggerConfig `yaml:"logger"`
	Redis  struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		SessionTTL string `yaml:"session_ttl"`
		CacheTTL   string `yaml:"cache_ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	AMQP struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Quiz QuizConfig `yaml:"quiz"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

type QuizConfig struct {
	LevelQuestions  int                `yaml:"level_questions"`
	FullQuestions   int                `yaml:"full_questions"`
	LeaderboardSize int                `yaml:"leaderboard_size"`
	HistorySize     int                `yaml:"history_size"`
	Levels          []domain.LevelInfo `yaml:"levels"`
	Thresholds      app.ThresholdTable `yaml:"thresholds"`
}

// Default returns the settings used for anything the file leaves out.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Logger = LoggerConfig{Level: "info", Env: "development"}
	cfg.Redis.CacheTTL = "5m"
	cfg.AMQP.Exchange = "quiz.events"
	cfg.Quiz = QuizConfig{LeaderboardSize: 20, HistorySize: 10}
	return cfg
}

// Load reads YAML config from path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the quiz engine cannot run with.
func (c Config) Validate() error {
	if c.Quiz.LevelQuestions < 0 || c.Quiz.FullQuestions < 0 {
		return fmt.Errorf("quiz question counts must not be negative")
	}
	if c.Quiz.LeaderboardSize <= 0 {
		return fmt.Errorf("quiz.leaderboard_size must be positive")
	}
	seen := make(map[domain.Level]bool, len(c.Quiz.Levels))
	for _, l := range c.Quiz.Levels {
		if l.Code == "" || l.Code.IsFull() {
			return fmt.Errorf("invalid level code %q", l.Code)
		}
		if seen[l.Code] {
			return fmt.Errorf("duplicate level %q", l.Code)
		}
		seen[l.Code] = true
	}
	for _, th := range c.Quiz.Thresholds {
		if th.Min < 0 || th.Min > 100 {
			return fmt.Errorf("threshold %v for %s out of range", th.Min, th.Level)
		}
	}
	return nil
}

// Policy builds the engine policy; levels and thresholds fall back to the CEFR ladder.
func (c Config) Policy() app.Policy {
	p := app.DefaultPolicy()
	if len(c.Quiz.Levels) > 0 {
		p.Levels = c.Quiz.Levels
	}
	if len(c.Quiz.Thresholds) > 0 {
		p.Thresholds = c.Quiz.Thresholds
	}
	p.LevelQuestions = c.Quiz.LevelQuestions
	p.FullQuestions = c.Quiz.FullQuestions
	return p
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
