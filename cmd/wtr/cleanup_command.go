package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCleanupCommand() *cobra.Command {
	var dryRun bool
	var auto bool
	var pruneOnly bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Retire orphaned, merged and stale worktrees",
		Long: "Classifies every worktree and removes the removable ones, grouped by\n" +
			"reason. Each group is confirmed separately unless --auto is given.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCleanup(dryRun, auto, pruneOnly)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed without touching anything")
	cmd.Flags().BoolVar(&auto, "auto", false, "Remove all candidates without prompting")
	cmd.Flags().BoolVar(&pruneOnly, "prune-only", false, "Only prune orphaned worktree records")
	return cmd
}

func runCleanup(dryRun, auto, pruneOnly bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records, malformed, err := a.registry.Snapshot()
	if err != nil {
		return err
	}
	for _, warning := range malformed {
		fmt.Fprintln(os.Stderr, warningStyle.Render("warning: malformed listing line: "+warning))
	}
	classifications, err := a.classifier().ClassifyAll(records)
	if err != nil {
		return err
	}
	plan := BuildCleanupPlan(classifications)
	if plan.Empty() {
		fmt.Println("nothing to clean up")
		return nil
	}

	opts := CleanupOptions{DryRun: dryRun, PruneOnly: pruneOnly}
	if !auto && !a.cfg.AutoConfirm && !dryRun {
		if !stderrIsTTY() {
			return &PreconditionError{Reason: "refusing to remove worktrees without a terminal; pass --auto or --dry-run"}
		}
		opts.Confirm = confirmCleanupGroup
	}

	engine := NewCleanupEngine(a.backend, a.log)
	report, err := engine.Run(plan, opts)
	if err != nil {
		return err
	}

	printCleanupReport(report, plan)
	if failed := report.FailedCount(); failed > 0 {
		return fmt.Errorf("%d cleanup step(s) failed", failed)
	}
	return nil
}

func confirmCleanupGroup(group StatusKind, candidates []Classification) (bool, error) {
	fmt.Println(headerStyle.Render(string(group)) + dimStyle.Render(fmt.Sprintf(" (%d)", len(candidates))))
	for _, cls := range candidates {
		fmt.Printf("  %s  %s  %s\n",
			branchStyle.Render(cls.Record.Branch),
			renderReasons(cls),
			dimStyle.Render(cls.Record.Path),
		)
	}
	return runConfirm(
		fmt.Sprintf("Remove %d %s worktree(s)?", len(candidates), group),
		"Worktree directories and their local branches will be deleted.",
	)
}

func printCleanupReport(report CleanupReport, plan CleanupPlan) {
	for _, action := range report.Actions {
		switch {
		case action.DryRun:
			fmt.Printf("  %s %s %s\n", dimStyle.Render("would"), action.Op, action.Target)
		case action.Err != nil:
			fmt.Fprintln(os.Stderr, warningStyle.Render(fmt.Sprintf("  failed: %s %s: %v", action.Op, action.Target, action.Err)))
		default:
			fmt.Printf("  %s %s\n", action.Op, action.Target)
		}
	}
	for _, group := range report.Skipped {
		fmt.Println(dimStyle.Render("skipped " + group + " group"))
	}
	if len(plan.Active) > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d active worktree(s) untouched", len(plan.Active))))
	}
}
