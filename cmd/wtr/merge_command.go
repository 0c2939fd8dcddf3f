package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newMergeCommand() *cobra.Command {
	var strategyFlag string
	var auto bool

	cmd := &cobra.Command{
		Use:   "merge [<branch>]",
		Short: "Merge a worktree branch back into trunk",
		Long: "Runs the merge workflow for a worktree branch: preflight checks,\n" +
			"the chosen strategy against trunk, and optional post-merge retirement.\n" +
			"Without a branch argument an interactive picker is shown.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			branch := ""
			if len(args) == 1 {
				branch = args[0]
			}
			return runMerge(branch, strategyFlag, auto)
		},
	}
	cmd.Flags().StringVar(&strategyFlag, "strategy", "", "Merge strategy: merge, rebase or squash (default from config)")
	cmd.Flags().BoolVar(&auto, "auto", false, "Skip prompts; run full post-merge cleanup")
	cmd.ValidArgsFunction = branchCompletion
	return cmd
}

func runMerge(branch string, strategyFlag string, auto bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	strategy := a.cfg.DefaultStrategy
	if strings.TrimSpace(strategyFlag) != "" {
		strategy, err = ParseMergeStrategy(strategyFlag)
		if err != nil {
			return err
		}
	}

	if strings.TrimSpace(branch) == "" {
		branch, err = pickMergeBranch(a)
		if err != nil {
			return err
		}
	}

	engine := NewMergeEngine(a.backend, a.registry, a.log)
	req := MergeRequest{SourceBranch: branch, Strategy: strategy}
	if auto || a.cfg.AutoConfirm {
		req.Cleanup = &PostMergeCleanup{
			RemoveWorktree:     true,
			DeleteLocalBranch:  true,
			DeleteRemoteBranch: true,
			PushTrunk:          true,
		}
	}

	stop := startDelayedSpinner(fmt.Sprintf("Merging %s (%s)", branch, strategy), 0)
	result := engine.Run(req)
	stop()

	for _, warning := range result.Warnings {
		fmt.Fprintln(os.Stderr, warningStyle.Render("warning: "+warning))
	}
	if result.Err != nil {
		var conflict *ConflictError
		if errors.As(result.Err, &conflict) {
			fmt.Fprintln(os.Stderr, warningStyle.Render(
				fmt.Sprintf("conflict while merging %s into %s; the checkout was left as git left it for manual resolution", branch, result.Trunk)))
		}
		return result.Err
	}

	fmt.Printf("merged %s into %s (%s)\n", branchStyle.Render(branch), branchStyle.Render(result.Trunk), strategy)

	// The merge is done; retirement is a separate, opt-in pass.
	if req.Cleanup == nil && stderrIsTTY() {
		cleanup, err := promptPostMergeCleanup(branch)
		if err != nil {
			return err
		}
		if cleanup != nil && cleanup.any() {
			for _, warning := range engine.Retire(*cleanup, branch) {
				fmt.Fprintln(os.Stderr, warningStyle.Render("warning: "+warning))
			}
		}
	}
	return nil
}

func pickMergeBranch(a *app) (string, error) {
	records, _, err := a.registry.Snapshot()
	if err != nil {
		return "", err
	}
	trunk := ResolveTrunk(a.backend)
	candidates := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Detached() || rec.Branch == trunk {
			continue
		}
		candidates = append(candidates, rec.Branch)
	}
	if len(candidates) == 0 {
		return "", &PreconditionError{Reason: "no mergeable worktree branches"}
	}
	if !stderrIsTTY() {
		return "", &PreconditionError{Reason: "branch argument required in non-interactive mode"}
	}
	return runSelect("Merge which branch into "+trunk+"?", candidates)
}

func promptPostMergeCleanup(branch string) (*PostMergeCleanup, error) {
	options := []huh.Option[string]{
		huh.NewOption("remove worktree", "worktree").Selected(true),
		huh.NewOption("delete local branch", "local").Selected(true),
		huh.NewOption("delete remote branch", "remote"),
		huh.NewOption("push trunk", "push"),
	}
	selected, err := runMultiSelect(fmt.Sprintf("Retire %s?", branch), options)
	if err != nil {
		return nil, err
	}
	cleanup := &PostMergeCleanup{}
	for _, choice := range selected {
		switch choice {
		case "worktree":
			cleanup.RemoveWorktree = true
		case "local":
			cleanup.DeleteLocalBranch = true
		case "remote":
			cleanup.DeleteRemoteBranch = true
		case "push":
			cleanup.PushTrunk = true
		}
	}
	return cleanup, nil
}
