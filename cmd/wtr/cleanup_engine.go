package main

import (
	"fmt"
)

// CleanupPlan groups removal candidates by reason. Groups overlap when a
// record carries several reasons (merged and stale); presentation is per
// group, execution deduplicates by path. Active records are listed for
// reporting only and are never acted on.
type CleanupPlan struct {
	Orphaned []Classification
	Merged   []Classification
	Stale    []Classification
	Active   []Classification
}

func (p CleanupPlan) Empty() bool {
	return len(p.Orphaned)+len(p.Merged)+len(p.Stale) == 0
}

// BuildCleanupPlan distributes classifications into reason groups. A record
// appears in every group whose reason it carries.
func BuildCleanupPlan(classifications []Classification) CleanupPlan {
	var plan CleanupPlan
	for _, cls := range classifications {
		if cls.HasReason(StatusOrphaned) {
			plan.Orphaned = append(plan.Orphaned, cls)
			continue
		}
		inGroup := false
		if cls.HasReason(StatusMerged) {
			plan.Merged = append(plan.Merged, cls)
			inGroup = true
		}
		if cls.HasReason(StatusStale) {
			plan.Stale = append(plan.Stale, cls)
			inGroup = true
		}
		if !inGroup {
			plan.Active = append(plan.Active, cls)
		}
	}
	return plan
}

// ConfirmFunc asks whether a group of candidates should be processed. A nil
// ConfirmFunc means proceed.
type ConfirmFunc func(group StatusKind, candidates []Classification) (bool, error)

type CleanupOptions struct {
	DryRun    bool
	PruneOnly bool
	Confirm   ConfirmFunc
}

// CleanupAction records one mutating step the engine performed, or would have
// performed in dry-run mode.
type CleanupAction struct {
	Op     string
	Target string
	DryRun bool
	Err    error
}

type CleanupReport struct {
	Actions []CleanupAction
	Skipped []string
}

type CleanupEngine struct {
	backend Backend
	log     *Logger
}

func NewCleanupEngine(backend Backend, log *Logger) *CleanupEngine {
	return &CleanupEngine{backend: backend, log: log.With("component", "cleanup")}
}

// Run retires the plan's candidates: orphaned first (a missing directory
// allows no further inspection), then merged, then stale. In dry-run mode
// every mutating backend call is short-circuited and only recorded.
func (e *CleanupEngine) Run(plan CleanupPlan, opts CleanupOptions) (CleanupReport, error) {
	report := CleanupReport{}
	processed := map[string]bool{}

	ok, err := e.confirmGroup(opts, StatusOrphaned, plan.Orphaned)
	if err != nil {
		return report, err
	}
	if !ok && len(plan.Orphaned) > 0 {
		report.Skipped = append(report.Skipped, string(StatusOrphaned))
	}
	if ok {
		// The backing directories are gone; only the backend's own
		// administrative cleanup can retire the records. Never a
		// checkout-based delete.
		e.mutate(&report, opts.DryRun, "prune worktrees", "", func() error {
			return e.backend.PruneWorktrees()
		})
		for _, cls := range plan.Orphaned {
			processed[cls.Record.Path] = true
			if cls.Record.Detached() {
				continue
			}
			e.deleteBranchEscalating(&report, opts.DryRun, cls.Record.Branch)
		}
	}

	if opts.PruneOnly {
		return report, nil
	}

	for _, group := range []struct {
		kind       StatusKind
		candidates []Classification
	}{
		{StatusMerged, plan.Merged},
		{StatusStale, plan.Stale},
	} {
		pending := make([]Classification, 0, len(group.candidates))
		for _, cls := range group.candidates {
			if !processed[cls.Record.Path] {
				pending = append(pending, cls)
			}
		}
		if len(pending) == 0 {
			continue
		}
		ok, err := e.confirmGroup(opts, group.kind, pending)
		if err != nil {
			return report, err
		}
		if !ok {
			report.Skipped = append(report.Skipped, string(group.kind))
			continue
		}
		for _, cls := range pending {
			processed[cls.Record.Path] = true
			e.retire(&report, opts.DryRun, cls)
		}
	}
	return report, nil
}

func (e *CleanupEngine) confirmGroup(opts CleanupOptions, kind StatusKind, candidates []Classification) (bool, error) {
	if len(candidates) == 0 {
		return false, nil
	}
	if opts.Confirm == nil || opts.DryRun {
		return true, nil
	}
	return opts.Confirm(kind, candidates)
}

// retire removes one worktree and deletes its branch, escalating to forced
// variants only after the graceful call is rejected by the backend (the
// directory may have picked up work the classifier did not see; that race is
// benign and the graceful rejection is the signal).
func (e *CleanupEngine) retire(report *CleanupReport, dryRun bool, cls Classification) {
	path := cls.Record.Path
	removed := e.mutate(report, dryRun, "remove worktree", path, func() error {
		return e.backend.RemoveWorktree(path, false)
	})
	if !removed {
		removed = e.mutate(report, dryRun, "remove worktree (forced)", path, func() error {
			return e.backend.RemoveWorktree(path, true)
		})
	}
	if !removed {
		return
	}
	if !cls.Record.Detached() {
		e.deleteBranchEscalating(report, dryRun, cls.Record.Branch)
	}
}

func (e *CleanupEngine) deleteBranchEscalating(report *CleanupReport, dryRun bool, branch string) {
	deleted := e.mutate(report, dryRun, "delete branch", branch, func() error {
		return e.backend.DeleteBranch(branch, false)
	})
	if !deleted {
		deleted = e.mutate(report, dryRun, "delete branch (forced)", branch, func() error {
			return e.backend.DeleteBranch(branch, true)
		})
	}
	if !deleted {
		return
	}
	remotes, err := e.backend.Remotes()
	if err != nil || len(remotes) == 0 {
		return
	}
	remote := remotes[0]
	exists, err := e.backend.RemoteBranchExists(remote, branch)
	if err != nil || !exists {
		return
	}
	e.mutate(report, dryRun, "delete remote branch", remote+"/"+branch, func() error {
		return e.backend.DeleteRemoteBranch(remote, branch)
	})
}

// mutate runs one mutating backend call unless dry-run is active, records the
// action either way, and reports whether the step succeeded. In dry-run mode
// the step counts as succeeded so escalation paths are not recorded.
func (e *CleanupEngine) mutate(report *CleanupReport, dryRun bool, op, target string, fn func() error) bool {
	action := CleanupAction{Op: op, Target: target, DryRun: dryRun}
	if dryRun {
		report.Actions = append(report.Actions, action)
		return true
	}
	action.Err = fn()
	report.Actions = append(report.Actions, action)
	if action.Err != nil {
		e.log.Warn("cleanup step failed", "op", op, "target", target, "error", action.Err)
		return false
	}
	e.log.Info("cleanup step", "op", op, "target", target)
	return true
}

// FailedCount is the number of attempted removals that did not succeed even
// after escalation.
func (r CleanupReport) FailedCount() int {
	failedByKey := map[string]bool{}
	for _, action := range r.Actions {
		key := actionKey(action)
		if action.Err != nil {
			failedByKey[key] = true
		} else {
			failedByKey[key] = false
		}
	}
	failed := 0
	for _, stillFailed := range failedByKey {
		if stillFailed {
			failed++
		}
	}
	return failed
}

func actionKey(action CleanupAction) string {
	op := action.Op
	switch op {
	case "remove worktree (forced)":
		op = "remove worktree"
	case "delete branch (forced)":
		op = "delete branch"
	}
	return fmt.Sprintf("%s:%s", op, action.Target)
}
