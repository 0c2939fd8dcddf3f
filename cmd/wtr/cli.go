package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wtr",
		Short:         "Manage parallel Git worktrees: create, merge back, clean up",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newCreateCommand(),
		newListCommand(),
		newStatusCommand(),
		newMergeCommand(),
		newCleanupCommand(),
		newConfigCommand(),
	)
	return root
}

func usageError(cmd *cobra.Command, message string) error {
	return fmt.Errorf("%s\n\n%s", message, strings.TrimSpace(cmd.UsageString()))
}

// app bundles the pieces every subcommand wires up: immutable config, logger,
// backend, registry. Built fresh per invocation.
type app struct {
	cfg      Config
	log      *Logger
	backend  Backend
	registry *Registry
}

func newApp() (*app, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(logFilePath(), cfg.LogLevel)
	if err != nil {
		// Logging must never block the tool; fall back to stderr.
		logger, _ = NewLogger("", cfg.LogLevel)
	}
	backend, err := newGitBackend("", logger)
	if err != nil {
		logger.Close()
		return nil, err
	}
	return &app{
		cfg:      cfg,
		log:      logger,
		backend:  backend,
		registry: NewRegistry(backend),
	}, nil
}

// classifier resolves the trunk branch fresh on every call; trunk resolution
// is a backend query, never cached across operations.
func (a *app) classifier() *Classifier {
	trunk := ResolveTrunk(a.backend)
	return NewClassifier(a.backend, trunk, a.cfg.StaleAfter(), a.log)
}

func (a *app) reporter() *StatusReporter {
	return NewStatusReporter(a.registry, a.classifier())
}

func (a *app) Close() {
	_ = a.log.Close()
}

// branchCompletion offers the branches of current worktrees for shell
// completion.
func branchCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	a, err := newApp()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer a.Close()
	records, _, err := a.registry.Snapshot()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	branches := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Detached() {
			continue
		}
		branches = append(branches, rec.Branch)
	}
	return branches, cobra.ShellCompDirectiveNoFileComp
}
