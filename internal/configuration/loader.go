package configuration

import (
	"fmt"
	"log/slog"

	"dappstate/internal/configuration/properties"
	"dappstate/internal/configuration/util"

	"gopkg.in/yaml.v3"
)

// DefaultDir is where the base and profile YAML files live unless the caller
// overrides it.
const DefaultDir = "internal/static"

// Load reads the base application.yml from baseDir, then overlays
// application-<profile>.yml on top of it. Unknown defaults are applied last
// so a minimal config file is valid.
func Load(baseDir string) (*properties.Config, error) {
	cfg, err := loadBaseConfig(baseDir)
	if err != nil {
		return nil, err
	}

	if err := loadProfileConfig(baseDir, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func loadBaseConfig(baseDir string) (*properties.Config, error) {
	baseConfig, err := util.LoadAndExpandYaml(baseDir, "application")
	if err != nil {
		slog.Error("Error loading base config", "error", err)
		return nil, err
	}

	cfg := properties.Config{}
	if err := yaml.Unmarshal([]byte(baseConfig), &cfg); err != nil {
		slog.Error("Error parsing base config", "error", err)
		return nil, err
	}

	return &cfg, nil
}

func loadProfileConfig(baseDir string, cfg *properties.Config) error {
	if cfg.Application.Profile == "" {
		return nil
	}

	profileConfig, err := util.LoadAndExpandYaml(baseDir, fmt.Sprintf("application-%s", cfg.Application.Profile))
	if err != nil {
		slog.Error("Error loading profile config", "error", err)
		return err
	}

	if err := yaml.Unmarshal([]byte(profileConfig), cfg); err != nil {
		slog.Error("Error parsing profile config", "error", err)
		return err
	}

	return nil
}

func applyDefaults(cfg *properties.Config) {
	if cfg.Application.LogLevel == "" {
		cfg.Application.LogLevel = "info"
	}
	if cfg.Store.RequiredApprovals <= 0 {
		cfg.Store.RequiredApprovals = 2
	}
	if cfg.Notify.DefaultTimeout == 0 {
		cfg.Notify.DefaultTimeout = 2500
	}
	if cfg.Notify.LoadingDelay == 0 {
		cfg.Notify.LoadingDelay = 200
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300_000
	}
	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = 512
	}
	if cfg.Poll.Interval == 0 {
		cfg.Poll.Interval = 10_000
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}
}
