// Package config loads the disco configuration file.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	// Corpus is the path of the corpus directory.
	Corpus string `yaml:"corpus"`

	// Db is the path of the SQLite corpus database.
	Db string `yaml:"db"`

	// Annotators is the preference order used when several
	// annotators cover the same (sub)document and stage.
	Annotators []string `yaml:"annotators"`
}

// Load reads a config from a specified path. If the file does not
// exist, returns defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./disco.yaml first, then
// ~/.config/disco/config.yaml, then defaults. The DISCO_CORPUS and
// DISCO_DB environment variables override whatever was read.
func LoadDefault() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if corpus := os.Getenv("DISCO_CORPUS"); corpus != "" {
		cfg.Corpus = corpus
	}
	if db := os.Getenv("DISCO_DB"); db != "" {
		cfg.Db = db
	}
	return cfg, nil
}

func load() (*Config, error) {
	cwdPath := "disco.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		return Load(cwdPath)
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return defaultConfig(), nil
	}
	if _, err := os.Stat(userPath); err == nil {
		return Load(userPath)
	}
	return defaultConfig(), nil
}

// Save writes the config to the given path, creating directories as
// needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "disco", "config.yaml"), nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if len(cfg.Annotators) == 0 {
		cfg.Annotators = []string{"GOLD", "SILVER", "BRONZE"}
	}
}
