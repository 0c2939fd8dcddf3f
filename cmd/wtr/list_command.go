package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List worktrees with their classification",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runList()
		},
	}
}

func runList() error {
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
	if len(records) == 0 {
		fmt.Println("no worktrees")
		return nil
	}

	classifier := a.classifier()
	trunk := classifier.Trunk()
	fmt.Println(headerStyle.Render("worktrees") + dimStyle.Render(" (trunk: "+trunk+")"))

	for _, rec := range records {
		if rec.Branch == trunk {
			fmt.Printf("  %s  %s  %s\n", branchStyle.Render(rec.Branch), dimStyle.Render("trunk"), pathLink(rec.Path))
			continue
		}
		cls, err := classifier.Classify(rec)
		if err != nil {
			fmt.Printf("  %s  %s  %s\n", branchStyle.Render(rec.Branch), warningStyle.Render("error: "+err.Error()), pathLink(rec.Path))
			continue
		}
		fmt.Printf("  %s  %s  %s  %s  %s  %s\n",
			branchStyle.Render(rec.Branch),
			renderReasons(cls),
			renderAheadBehind(cls.Ahead, cls.Behind),
			renderDirty(cls.Dirty),
			dimStyle.Render(renderAge(cls.LastActivity)),
			pathLink(rec.Path),
		)
	}
	return nil
}
