package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// applyEnv overrides config values from ID3SHIM_* environment variables.
func applyEnv(cfg *Config) error {
	if level := os.Getenv("ID3SHIM_LOG_LEVEL"); level != "" {
		cfg.Logger.Level = level
	}
	if charset := os.Getenv("ID3SHIM_CHARSET"); charset != "" {
		cfg.Tagging.Rewrite.Charset = charset
	}
	if root := os.Getenv("ID3SHIM_SERVER_ROOT"); root != "" {
		cfg.Server.Root = root
	}
	if path := os.Getenv("ID3SHIM_JOURNAL_PATH"); path != "" {
		cfg.Journal.Path = path
	}
	if v := os.Getenv("ID3SHIM_VERSION"); v != "" {
		version, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ID3SHIM_VERSION: %w", err)
		}
		cfg.Tagging.Version = version
	}
	return nil
}

// Load reads a YAML file from the given path and returns a new Manager.
// If the file doesn't exist, creates a default configuration.
func Load(path string) (*Manager, error) {
	// .env is optional, plain environment variables work as well
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	var cfg *Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		cfg = createDefaultConfig()
		if err := saveDefaultConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		cfg, err = decode(path)
		if err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	manager := NewManager(cfg)
	if err := manager.EnsureDirectories(); err != nil {
		return nil, err
	}
	return manager, nil
}

func decode(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Start from the defaults so sections missing from the file keep them
	cfg := createDefaultConfig()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return cfg, nil
}

// saveDefaultConfig saves the default configuration to the specified file path
func saveDefaultConfig(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	slog.Info("Default configuration saved", "path", path)
	return nil
}
