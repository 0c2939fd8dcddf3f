package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfig()
		},
	}
}

func runConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	path, err := configFilePath()
	if err != nil {
		return err
	}

	source := path
	if _, statErr := os.Stat(path); statErr != nil {
		source = path + " (not present, using defaults)"
	}
	fmt.Println(headerStyle.Render("configuration") + dimStyle.Render(" "+source))
	fmt.Printf("  editor                  %s\n", orUnset(cfg.Editor))
	fmt.Printf("  copy_paths              %s\n", orUnset(cfg.CopyPaths))
	fmt.Printf("  default_strategy        %s\n", cfg.DefaultStrategy)
	fmt.Printf("  auto_confirm            %t\n", cfg.AutoConfirm)
	fmt.Printf("  stale_days              %d\n", cfg.StaleDays)
	fmt.Printf("  watch_interval_seconds  %d\n", cfg.WatchIntervalSeconds)
	fmt.Printf("  log_level               %s\n", cfg.LogLevel)
	return nil
}

func orUnset(value string) string {
	if value == "" {
		return dimStyle.Render("(unset)")
	}
	return value
}
