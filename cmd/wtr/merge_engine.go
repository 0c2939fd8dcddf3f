package main

import (
	"errors"
	"fmt"
	"strings"
)

// MergePhase names the states of the merge workflow. The linear prompt flow
// of earlier tooling is an explicit state machine here: Idle → Preflight →
// Merging → PostMergeCleanup → Done, with Aborted terminal from Preflight or
// Merging.
type MergePhase int

const (
	PhaseIdle MergePhase = iota
	PhasePreflight
	PhaseMerging
	PhasePostMergeCleanup
	PhaseDone
	PhaseAborted
)

func (p MergePhase) String() string {
	switch p {
	case PhasePreflight:
		return "preflight"
	case PhaseMerging:
		return "merging"
	case PhasePostMergeCleanup:
		return "post-merge-cleanup"
	case PhaseDone:
		return "done"
	case PhaseAborted:
		return "aborted"
	default:
		return "idle"
	}
}

type MergeOutcome int

const (
	OutcomeSucceeded MergeOutcome = iota
	OutcomePreconditionFailed
	OutcomeConflictAbort
	OutcomeBackendFailed
)

func (o MergeOutcome) String() string {
	switch o {
	case OutcomePreconditionFailed:
		return "precondition-failed"
	case OutcomeConflictAbort:
		return "conflict-abort"
	case OutcomeBackendFailed:
		return "backend-failed"
	default:
		return "succeeded"
	}
}

// PostMergeCleanup selects the optional retirement sub-steps that run after a
// successful merge. Each is independently skippable; all are best-effort and
// never roll back the merge.
type PostMergeCleanup struct {
	RemoveWorktree     bool
	DeleteLocalBranch  bool
	DeleteRemoteBranch bool
	PushTrunk          bool
}

func (p PostMergeCleanup) any() bool {
	return p.RemoveWorktree || p.DeleteLocalBranch || p.DeleteRemoteBranch || p.PushTrunk
}

// MergeRequest is a transient, single-invocation workflow description.
type MergeRequest struct {
	SourceBranch string
	Strategy     MergeStrategy
	Cleanup      *PostMergeCleanup
}

type MergeResult struct {
	Phase      MergePhase
	Outcome    MergeOutcome
	Trunk      string
	SourcePath string
	Warnings   []string
	Err        error
}

func (r MergeResult) Succeeded() bool {
	return r.Phase == PhaseDone && r.Outcome == OutcomeSucceeded
}

type MergeEngine struct {
	backend  Backend
	registry *Registry
	log      *Logger
}

func NewMergeEngine(backend Backend, registry *Registry, log *Logger) *MergeEngine {
	return &MergeEngine{backend: backend, registry: registry, log: log.With("component", "merge")}
}

// Run executes the merge workflow. Preconditions are re-verified from a fresh
// snapshot immediately before acting; nothing from earlier listings is
// trusted.
func (e *MergeEngine) Run(req MergeRequest) MergeResult {
	result := MergeResult{Phase: PhasePreflight}

	source := strings.TrimSpace(req.SourceBranch)
	if source == "" {
		return e.abort(result, OutcomePreconditionFailed, &PreconditionError{Reason: "source branch name required"})
	}
	if source == detachedBranch {
		return e.abort(result, OutcomePreconditionFailed, &PreconditionError{Reason: "cannot merge a detached worktree"})
	}

	trunk := ResolveTrunk(e.backend)
	result.Trunk = trunk
	if source == trunk {
		return e.abort(result, OutcomePreconditionFailed, &PreconditionError{Reason: fmt.Sprintf("%s is the trunk branch", source)})
	}
	e.log.Info("merge preflight", "source", source, "trunk", trunk, "strategy", string(req.Strategy))

	sourceRec, ok, err := e.registry.RecordForBranch(source)
	if err != nil {
		return e.abort(result, OutcomeBackendFailed, err)
	}
	if !ok {
		return e.abort(result, OutcomePreconditionFailed, &PreconditionError{Reason: fmt.Sprintf("no worktree has branch %s checked out", source)})
	}
	result.SourcePath = sourceRec.Path
	if !e.backend.IsValidCheckout(sourceRec.Path) {
		return e.abort(result, OutcomePreconditionFailed, &PreconditionError{Reason: fmt.Sprintf("worktree %s is orphaned", sourceRec.Path)})
	}

	trunkRec, ok, err := e.registry.RecordForBranch(trunk)
	if err != nil {
		return e.abort(result, OutcomeBackendFailed, err)
	}
	if !ok {
		return e.abort(result, OutcomePreconditionFailed, &PreconditionError{Reason: fmt.Sprintf("no worktree has trunk branch %s checked out", trunk)})
	}

	dirty, err := e.backend.DiffStatus(sourceRec.Path)
	if err != nil {
		return e.abort(result, OutcomeBackendFailed, err)
	}
	if dirty.IsDirty() {
		// Fail closed before any checkout switch is attempted.
		return e.abort(result, OutcomePreconditionFailed, &PreconditionError{
			Reason: fmt.Sprintf("worktree %s has uncommitted changes (%s)", sourceRec.Path, dirty),
		})
	}

	result.Phase = PhaseMerging
	if err := e.backend.Checkout(trunkRec.Path, trunk); err != nil {
		return e.abort(result, OutcomeBackendFailed, err)
	}
	if remotes, remErr := e.backend.Remotes(); remErr == nil && len(remotes) > 0 {
		if pullErr := e.backend.Pull(trunkRec.Path, remotes[0], trunk); pullErr != nil {
			// Pull failure is non-fatal: continue with the local trunk state.
			e.log.Warn("trunk pull failed, continuing with local state", "remote", remotes[0], "error", pullErr)
			result.Warnings = append(result.Warnings, fmt.Sprintf("pull from %s failed: %v", remotes[0], pullErr))
		}
	}

	if err := e.applyStrategy(req.Strategy, source, sourceRec.Path, trunk, trunkRec.Path); err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			// The trunk checkout is left exactly as git left it; resolution
			// is manual.
			return e.abort(result, OutcomeConflictAbort, err)
		}
		return e.abort(result, OutcomeBackendFailed, err)
	}
	e.log.Info("merge applied", "source", source, "trunk", trunk, "strategy", string(req.Strategy))

	if req.Cleanup != nil && req.Cleanup.any() {
		result.Phase = PhasePostMergeCleanup
		result.Warnings = append(result.Warnings, e.postMergeCleanup(*req.Cleanup, source, sourceRec.Path, trunk, trunkRec.Path)...)
	}

	result.Phase = PhaseDone
	result.Outcome = OutcomeSucceeded
	return result
}

func (e *MergeEngine) applyStrategy(strategy MergeStrategy, source, sourcePath, trunk, trunkPath string) error {
	switch strategy {
	case StrategyRebase:
		if err := e.backend.Rebase(sourcePath, trunk); err != nil {
			return err
		}
		// Fail closed if the fast-forward is not possible; never fall back to
		// a non-ff merge silently.
		return e.backend.Merge(trunkPath, source, mergeModeFFOnly)
	case StrategySquash:
		if err := e.backend.Merge(trunkPath, source, mergeModeSquash); err != nil {
			return err
		}
		return e.backend.Commit(trunkPath, fmt.Sprintf("Squash merge branch '%s'", source))
	default:
		return e.backend.Merge(trunkPath, source, mergeModeCommit)
	}
}

// postMergeCleanup runs the opted-in retirement sub-steps. Failures are
// collected as warnings: once the merge itself has succeeded, cleanup is
// best-effort and earlier sub-steps are never rolled back.
func (e *MergeEngine) postMergeCleanup(cleanup PostMergeCleanup, source, sourcePath, trunk, trunkPath string) []string {
	var warnings []string

	if cleanup.RemoveWorktree {
		if err := e.backend.RemoveWorktree(sourcePath, false); err != nil {
			if err := e.backend.RemoveWorktree(sourcePath, true); err != nil {
				warnings = append(warnings, fmt.Sprintf("remove worktree %s: %v", sourcePath, err))
			}
		}
	}
	if cleanup.DeleteLocalBranch {
		if err := e.backend.DeleteBranch(source, false); err != nil {
			warnings = append(warnings, fmt.Sprintf("delete branch %s: %v", source, err))
		}
	}

	remotes, err := e.backend.Remotes()
	if err != nil || len(remotes) == 0 {
		if cleanup.DeleteRemoteBranch || cleanup.PushTrunk {
			warnings = append(warnings, "no remote configured; skipping remote steps")
		}
		return warnings
	}
	remote := remotes[0]

	if cleanup.DeleteRemoteBranch {
		exists, err := e.backend.RemoteBranchExists(remote, source)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("check remote branch %s/%s: %v", remote, source, err))
		} else if exists {
			if err := e.backend.DeleteRemoteBranch(remote, source); err != nil {
				warnings = append(warnings, fmt.Sprintf("delete remote branch %s/%s: %v", remote, source, err))
			}
		}
	}
	if cleanup.PushTrunk {
		if err := e.backend.Push(trunkPath, remote, trunk); err != nil {
			warnings = append(warnings, fmt.Sprintf("push %s to %s: %v", trunk, remote, err))
		}
	}
	return warnings
}

// Retire runs the retirement sub-steps on their own, after a merge that
// completed without cleanup. The source worktree and trunk checkout are
// looked up fresh.
func (e *MergeEngine) Retire(cleanup PostMergeCleanup, source string) []string {
	if !cleanup.any() {
		return nil
	}
	trunk := ResolveTrunk(e.backend)
	var warnings []string

	sourcePath := ""
	if rec, ok, err := e.registry.RecordForBranch(source); err == nil && ok {
		sourcePath = rec.Path
	} else if cleanup.RemoveWorktree {
		warnings = append(warnings, fmt.Sprintf("no worktree has branch %s checked out", source))
		cleanup.RemoveWorktree = false
	}

	trunkPath := ""
	if rec, ok, err := e.registry.RecordForBranch(trunk); err == nil && ok {
		trunkPath = rec.Path
	} else if cleanup.PushTrunk {
		warnings = append(warnings, fmt.Sprintf("no worktree has trunk branch %s checked out", trunk))
		cleanup.PushTrunk = false
	}
	return append(warnings, e.postMergeCleanup(cleanup, source, sourcePath, trunk, trunkPath)...)
}

func (e *MergeEngine) abort(result MergeResult, outcome MergeOutcome, err error) MergeResult {
	result.Phase = PhaseAborted
	result.Outcome = outcome
	result.Err = err
	e.log.Warn("merge aborted", "outcome", outcome.String(), "error", err)
	return result
}

// ResolveTrunk prefers main, falls back to master, then to the remote's
// symbolic HEAD, and finally to a constant default.
func ResolveTrunk(backend Backend) string {
	if ok, err := backend.BranchExists("main"); err == nil && ok {
		return "main"
	}
	if ok, err := backend.BranchExists("master"); err == nil && ok {
		return "master"
	}
	if remotes, err := backend.Remotes(); err == nil && len(remotes) > 0 {
		if head, err := backend.RemoteHead(remotes[0]); err == nil && strings.TrimSpace(head) != "" {
			return strings.TrimSpace(head)
		}
	}
	return defaultTrunkBranch
}
