package main

import (
	"fmt"
	"strings"
	"time"
)

// MergeStrategy selects how a worktree branch is reconciled into trunk.
type MergeStrategy string

const (
	StrategyMerge  MergeStrategy = "merge"
	StrategyRebase MergeStrategy = "rebase"
	StrategySquash MergeStrategy = "squash"
)

func ParseMergeStrategy(value string) (MergeStrategy, error) {
	switch MergeStrategy(strings.ToLower(strings.TrimSpace(value))) {
	case StrategyMerge:
		return StrategyMerge, nil
	case StrategyRebase:
		return StrategyRebase, nil
	case StrategySquash:
		return StrategySquash, nil
	default:
		return "", fmt.Errorf("unknown merge strategy %q (want merge, rebase or squash)", value)
	}
}

// mergeMode is the primitive-level merge flavor, distinct from the
// user-facing strategy: the rebase strategy uses a fast-forward-only merge
// after rebasing, squash uses a squash merge plus a synthesized commit.
type mergeMode int

const (
	mergeModeCommit mergeMode = iota
	mergeModeFFOnly
	mergeModeSquash
)

func (m mergeMode) String() string {
	switch m {
	case mergeModeFFOnly:
		return "ff-only"
	case mergeModeSquash:
		return "squash"
	default:
		return "commit"
	}
}

// DirtyState counts uncommitted work in a checkout.
type DirtyState struct {
	Staged    int
	Modified  int
	Untracked int
}

func (d DirtyState) IsDirty() bool {
	return d.Staged+d.Modified+d.Untracked > 0
}

func (d DirtyState) String() string {
	return fmt.Sprintf("%d staged, %d modified, %d untracked", d.Staged, d.Modified, d.Untracked)
}

// Backend is the narrow surface of the version-control tool this system
// consumes. Each operation maps 1:1 onto a git primitive; none of them retry,
// cache, or roll anything back. Higher layers re-query immediately before
// acting instead of trusting earlier snapshots.
type Backend interface {
	// Root is the top-level directory of the primary checkout.
	Root() string

	ListWorktrees() (string, error)
	CreateWorktree(path, branch string, fromExisting bool) error
	RemoveWorktree(path string, force bool) error
	PruneWorktrees() error

	BranchExists(name string) (bool, error)
	RemoteBranchExists(remote, name string) (bool, error)
	// AheadBehind reports how many commits a has that b lacks, and vice versa.
	AheadBehind(a, b string) (ahead, behind int, err error)
	// IsMerged reports whether branch has zero commits unreachable from target.
	IsMerged(branch, target string) (bool, error)

	Checkout(dir, branch string) error
	Pull(dir, remote, branch string) error
	Merge(dir, source string, mode mergeMode) error
	Rebase(dir, onto string) error
	Commit(dir, message string) error
	Push(dir, remote, branch string) error
	DeleteBranch(name string, force bool) error
	DeleteRemoteBranch(remote, name string) error

	DiffStatus(dir string) (DirtyState, error)
	LastCommitTime(dir string) (time.Time, error)
	Remotes() ([]string, error)
	// RemoteHead resolves the remote's symbolic HEAD to a short branch name.
	RemoteHead(remote string) (string, error)
	// IsValidCheckout reports whether dir exists and looks like a checkout.
	IsValidCheckout(dir string) bool
}
