package main

import (
	"fmt"
	"strings"
	"time"
)

// fakeBackend is an in-memory Backend that records every call it receives.
// Mutating calls are recorded separately so tests can assert that read-only
// paths (dry-run, status collection) touch nothing.
type fakeBackend struct {
	root           string
	listing        string
	listErr        error
	branches       map[string]bool
	remoteBranches map[string]bool
	remotes        []string
	remoteHead     string
	aheadBehind    map[string][2]int
	merged         map[string]bool
	dirty          map[string]DirtyState
	lastCommit     map[string]time.Time
	invalidPaths   map[string]bool

	pullErr           error
	rebaseErr         error
	mergeErr          map[string]error
	pruneErr          error
	removeGracefulErr map[string]error
	removeForcedErr   map[string]error
	deleteSafeErr     map[string]error
	deleteForcedErr   map[string]error

	calls    []string
	mutating []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		root:              "/repo",
		branches:          map[string]bool{},
		remoteBranches:    map[string]bool{},
		aheadBehind:       map[string][2]int{},
		merged:            map[string]bool{},
		dirty:             map[string]DirtyState{},
		lastCommit:        map[string]time.Time{},
		invalidPaths:      map[string]bool{},
		mergeErr:          map[string]error{},
		removeGracefulErr: map[string]error{},
		removeForcedErr:   map[string]error{},
		deleteSafeErr:     map[string]error{},
		deleteForcedErr:   map[string]error{},
	}
}

func (f *fakeBackend) record(format string, args ...any) string {
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)
	return call
}

func (f *fakeBackend) recordMutation(format string, args ...any) {
	f.mutating = append(f.mutating, f.record(format, args...))
}

func (f *fakeBackend) callCount(prefix string) int {
	count := 0
	for _, call := range f.calls {
		if strings.HasPrefix(call, prefix) {
			count++
		}
	}
	return count
}

func (f *fakeBackend) hasCall(prefix string) bool {
	return f.callCount(prefix) > 0
}

func (f *fakeBackend) Root() string { return f.root }

func (f *fakeBackend) ListWorktrees() (string, error) {
	f.record("list-worktrees")
	return f.listing, f.listErr
}

func (f *fakeBackend) CreateWorktree(path, branch string, fromExisting bool) error {
	f.recordMutation("create-worktree %s %s existing=%v", path, branch, fromExisting)
	return nil
}

func (f *fakeBackend) RemoveWorktree(path string, force bool) error {
	f.recordMutation("remove-worktree %s force=%v", path, force)
	if force {
		return f.removeForcedErr[path]
	}
	return f.removeGracefulErr[path]
}

func (f *fakeBackend) PruneWorktrees() error {
	f.recordMutation("prune-worktrees")
	return f.pruneErr
}

func (f *fakeBackend) BranchExists(name string) (bool, error) {
	f.record("branch-exists %s", name)
	return f.branches[name], nil
}

func (f *fakeBackend) RemoteBranchExists(remote, name string) (bool, error) {
	f.record("remote-branch-exists %s/%s", remote, name)
	return f.remoteBranches[remote+"/"+name], nil
}

func (f *fakeBackend) AheadBehind(a, b string) (int, int, error) {
	f.record("ahead-behind %s %s", a, b)
	counts := f.aheadBehind[a+".."+b]
	return counts[0], counts[1], nil
}

func (f *fakeBackend) IsMerged(branch, target string) (bool, error) {
	f.record("is-merged %s %s", branch, target)
	return f.merged[branch], nil
}

func (f *fakeBackend) Checkout(dir, branch string) error {
	f.recordMutation("checkout %s %s", dir, branch)
	return nil
}

func (f *fakeBackend) Pull(dir, remote, branch string) error {
	f.recordMutation("pull %s %s %s", dir, remote, branch)
	return f.pullErr
}

func (f *fakeBackend) Merge(dir, source string, mode mergeMode) error {
	f.recordMutation("merge %s %s in %s", mode, source, dir)
	return f.mergeErr[mode.String()]
}

func (f *fakeBackend) Rebase(dir, onto string) error {
	f.recordMutation("rebase %s onto %s", dir, onto)
	return f.rebaseErr
}

func (f *fakeBackend) Commit(dir, message string) error {
	f.recordMutation("commit %s %q", dir, message)
	return nil
}

func (f *fakeBackend) Push(dir, remote, branch string) error {
	f.recordMutation("push %s %s %s", dir, remote, branch)
	return nil
}

func (f *fakeBackend) DeleteBranch(name string, force bool) error {
	f.recordMutation("delete-branch %s force=%v", name, force)
	if force {
		return f.deleteForcedErr[name]
	}
	return f.deleteSafeErr[name]
}

func (f *fakeBackend) DeleteRemoteBranch(remote, name string) error {
	f.recordMutation("delete-remote-branch %s/%s", remote, name)
	return nil
}

func (f *fakeBackend) DiffStatus(dir string) (DirtyState, error) {
	f.record("diff-status %s", dir)
	return f.dirty[dir], nil
}

func (f *fakeBackend) LastCommitTime(dir string) (time.Time, error) {
	f.record("last-commit-time %s", dir)
	return f.lastCommit[dir], nil
}

func (f *fakeBackend) Remotes() ([]string, error) {
	f.record("remotes")
	return f.remotes, nil
}

func (f *fakeBackend) RemoteHead(remote string) (string, error) {
	f.record("remote-head %s", remote)
	return f.remoteHead, nil
}

func (f *fakeBackend) IsValidCheckout(dir string) bool {
	f.record("is-valid-checkout %s", dir)
	return !f.invalidPaths[dir]
}

// porcelainEntry builds one worktree block of porcelain listing output.
func porcelainEntry(path, head, branch string) string {
	lines := []string{"worktree " + path}
	if head != "" {
		lines = append(lines, "HEAD "+head)
	}
	if branch == detachedBranch {
		lines = append(lines, "detached")
	} else if branch != "" {
		lines = append(lines, "branch refs/heads/"+branch)
	}
	return strings.Join(lines, "\n") + "\n"
}

func porcelainListing(entries ...string) string {
	return strings.Join(entries, "\n")
}
