package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is read once at startup and passed into components by value; nothing
// mutates it afterwards. An absent file means built-in defaults; a malformed
// file is a startup failure, never silently ignored.
type Config struct {
	Editor               string
	CopyPaths            string
	DefaultStrategy      MergeStrategy
	AutoConfirm          bool
	StaleDays            int
	WatchIntervalSeconds int
	LogLevel             string
}

const (
	defaultStaleDays     = 30
	defaultWatchInterval = 5
	defaultTrunkBranch   = "main"
)

func defaultConfig() Config {
	return Config{
		DefaultStrategy:      StrategyMerge,
		StaleDays:            defaultStaleDays,
		WatchIntervalSeconds: defaultWatchInterval,
		LogLevel:             "INFO",
	}
}

// CopyPathList splits the space-separated copy_paths setting.
func (c Config) CopyPathList() []string {
	return strings.Fields(c.CopyPaths)
}

func (c Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleDays) * 24 * time.Hour
}

func (c Config) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalSeconds) * time.Second
}

func configFilePath() (string, error) {
	if override := strings.TrimSpace(os.Getenv("WTR_CONFIG")); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("cannot resolve home directory")
	}
	return filepath.Join(home, ".config", "wtr", "config.yaml"), nil
}

func logFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "wtr", "debug.log")
}

func LoadConfig() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("editor", "")
	v.SetDefault("copy_paths", "")
	v.SetDefault("default_strategy", string(StrategyMerge))
	v.SetDefault("auto_confirm", false)
	v.SetDefault("stale_days", defaultStaleDays)
	v.SetDefault("watch_interval_seconds", defaultWatchInterval)
	v.SetDefault("log_level", "INFO")
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg := Config{
		Editor:               strings.TrimSpace(v.GetString("editor")),
		CopyPaths:            strings.TrimSpace(v.GetString("copy_paths")),
		AutoConfirm:          v.GetBool("auto_confirm"),
		StaleDays:            v.GetInt("stale_days"),
		WatchIntervalSeconds: v.GetInt("watch_interval_seconds"),
		LogLevel:             strings.TrimSpace(v.GetString("log_level")),
	}
	strategy, err := ParseMergeStrategy(v.GetString("default_strategy"))
	if err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	cfg.DefaultStrategy = strategy

	if cfg.StaleDays <= 0 {
		return Config{}, fmt.Errorf("config file %s: stale_days must be positive, got %d", path, cfg.StaleDays)
	}
	if cfg.WatchIntervalSeconds <= 0 {
		return Config{}, fmt.Errorf("config file %s: watch_interval_seconds must be positive, got %d", path, cfg.WatchIntervalSeconds)
	}
	return cfg, nil
}
