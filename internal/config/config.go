package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"deal-board/internal/domain"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logger  LoggerConfig  `yaml:"logger"`
	CRMAPI  CRMAPIConfig  `yaml:"crm_api"`
	Board   BoardConfig   `yaml:"board"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type CRMAPIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
	// LoadTimeout bounds the concurrent deals+customers fetch
	LoadTimeout time.Duration `yaml:"load_timeout"`
}

type BoardConfig struct {
	DefaultView string                   `yaml:"default_view"`
	Stages      []domain.StageDefinition `yaml:"stages"`
}

type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "debug",
			BasePath:        "/api/board",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		CRMAPI: CRMAPIConfig{
			BaseURL:     "http://localhost:5000/api",
			Timeout:     10 * time.Second,
			LoadTimeout: 20 * time.Second,
		},
		Board: BoardConfig{
			DefaultView: "BOARD",
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Schedule: "@every 1m",
		},
	}
}

// Load reads the yaml file at path if it exists, then applies .env files and
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	// .env files are optional
	_ = godotenv.Load(".env.local", ".env")

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if len(cfg.Board.Stages) == 0 {
		cfg.Board.Stages = domain.DefaultStageDefinitions()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	if apiURL := os.Getenv("CRM_API_URL"); apiURL != "" {
		cfg.CRMAPI.BaseURL = apiURL
	}
	if token := os.Getenv("CRM_API_TOKEN"); token != "" {
		cfg.CRMAPI.Token = token
	}
	if timeout := os.Getenv("CRM_API_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.CRMAPI.Timeout = d
		}
	}
	if view := os.Getenv("BOARD_DEFAULT_VIEW"); view != "" {
		cfg.Board.DefaultView = view
	}
	if schedule := os.Getenv("METRICS_SCHEDULE"); schedule != "" {
		cfg.Metrics.Schedule = schedule
	}
}

// Validate checks the values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if c.CRMAPI.BaseURL == "" {
		return fmt.Errorf("crm_api.base_url is required")
	}
	if c.CRMAPI.Timeout <= 0 {
		return fmt.Errorf("crm_api.timeout must be positive")
	}
	if c.Board.DefaultView != "BOARD" && c.Board.DefaultView != "LIST" {
		return fmt.Errorf("board.default_view must be BOARD or LIST, got %q", c.Board.DefaultView)
	}
	seen := make(map[domain.Stage]bool, len(c.Board.Stages))
	for _, def := range c.Board.Stages {
		if def.Stage == "" {
			return fmt.Errorf("board.stages: stage is required")
		}
		if seen[def.Stage] {
			return fmt.Errorf("board.stages: duplicate stage %s", def.Stage)
		}
		seen[def.Stage] = true
	}
	return nil
}
