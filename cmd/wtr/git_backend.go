package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// gitBackend drives the real git binary for lifecycle and history-mutating
// operations and go-git for read-side queries against the primary repository
// (see gogit_backend.go). go-git has no linked-worktree lifecycle parity, so
// worktree add/remove, merges and rebases always go through the binary.
type gitBackend struct {
	gitPath  string
	repoRoot string
	log      *Logger
}

func newGitBackend(dir string, log *Logger) (*gitBackend, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, errGitNotInstalled
	}
	root, err := gitOutputInDir(dir, gitPath, "rev-parse", "--show-toplevel")
	if err != nil || strings.TrimSpace(root) == "" {
		return nil, errNotInGitRepository
	}
	return &gitBackend{gitPath: gitPath, repoRoot: root, log: log}, nil
}

func (b *gitBackend) Root() string {
	return b.repoRoot
}

func (b *gitBackend) run(dir string, args ...string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = b.repoRoot
	}
	cmd := exec.Command(b.gitPath, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		b.log.Debug("git command failed", "args", strings.Join(args, " "), "dir", dir, "stderr", strings.TrimSpace(stderr.String()))
		return "", &BackendError{
			Op:     "git " + strings.Join(args, " "),
			Output: stderr.String(),
			Err:    err,
		}
	}
	return stdout.String(), nil
}

func (b *gitBackend) ListWorktrees() (string, error) {
	return b.run(b.repoRoot, "worktree", "list", "--porcelain")
}

func (b *gitBackend) CreateWorktree(path, branch string, fromExisting bool) error {
	var err error
	if fromExisting {
		_, err = b.run(b.repoRoot, "worktree", "add", path, branch)
	} else {
		_, err = b.run(b.repoRoot, "worktree", "add", "-b", branch, path, "HEAD")
	}
	return err
}

func (b *gitBackend) RemoveWorktree(path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	_, err := b.run(b.repoRoot, args...)
	return err
}

func (b *gitBackend) PruneWorktrees() error {
	_, err := b.run(b.repoRoot, "worktree", "prune")
	return err
}

func (b *gitBackend) AheadBehind(a, b2 string) (int, int, error) {
	ahead, err := b.revListCount(b2 + ".." + a)
	if err != nil {
		return 0, 0, err
	}
	behind, err := b.revListCount(a + ".." + b2)
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

func (b *gitBackend) IsMerged(branch, target string) (bool, error) {
	count, err := b.revListCount(target + ".." + branch)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (b *gitBackend) revListCount(rangeExpr string) (int, error) {
	out, err := b.run(b.repoRoot, "rev-list", "--count", rangeExpr)
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, &BackendError{Op: "git rev-list --count " + rangeExpr, Output: out, Err: err}
	}
	return count, nil
}

func (b *gitBackend) Checkout(dir, branch string) error {
	_, err := b.run(dir, "checkout", branch)
	return err
}

func (b *gitBackend) Pull(dir, remote, branch string) error {
	_, err := b.run(dir, "pull", remote, branch)
	return err
}

func (b *gitBackend) Merge(dir, source string, mode mergeMode) error {
	args := []string{"merge"}
	switch mode {
	case mergeModeFFOnly:
		args = append(args, "--ff-only")
	case mergeModeSquash:
		args = append(args, "--squash")
	default:
		args = append(args, "--no-edit")
	}
	args = append(args, source)
	_, err := b.run(dir, args...)
	return b.conflictOr(err, "merge", source, "")
}

func (b *gitBackend) Rebase(dir, onto string) error {
	_, err := b.run(dir, "rebase", onto)
	return b.conflictOr(err, "rebase", "", onto)
}

// conflictOr rewraps a backend failure as a ConflictError when git's output
// indicates it stopped on conflicts rather than failing outright.
func (b *gitBackend) conflictOr(err error, op, source, target string) error {
	if err == nil {
		return nil
	}
	var backendErr *BackendError
	if errors.As(err, &backendErr) && isConflictOutput(backendErr.Output) {
		return &ConflictError{Op: op, Source: source, Target: target, Output: backendErr.Output}
	}
	return err
}

func (b *gitBackend) Commit(dir, message string) error {
	_, err := b.run(dir, "commit", "-m", message)
	return err
}

func (b *gitBackend) Push(dir, remote, branch string) error {
	_, err := b.run(dir, "push", remote, branch)
	return err
}

func (b *gitBackend) DeleteBranch(name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := b.run(b.repoRoot, "branch", flag, name)
	return err
}

func (b *gitBackend) DeleteRemoteBranch(remote, name string) error {
	_, err := b.run(b.repoRoot, "push", remote, "--delete", name)
	return err
}

func (b *gitBackend) DiffStatus(dir string) (DirtyState, error) {
	// go-git's worktree status is unreliable inside linked worktrees; parse
	// porcelain output from the binary there and use go-git only for the
	// primary checkout.
	if isLinkedWorktreeDir(dir) {
		out, err := b.run(dir, "status", "--porcelain")
		if err != nil {
			return DirtyState{}, err
		}
		return parseStatusPorcelain(out), nil
	}
	return gogitDiffStatus(dir)
}

func (b *gitBackend) LastCommitTime(dir string) (time.Time, error) {
	out, err := b.run(dir, "log", "-1", "--format=%ct")
	if err != nil {
		return time.Time{}, err
	}
	raw := strings.TrimSpace(out)
	if raw == "" {
		return time.Time{}, nil
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, &BackendError{Op: "git log -1 --format=%ct", Output: out, Err: err}
	}
	return time.Unix(unix, 0), nil
}

func (b *gitBackend) BranchExists(name string) (bool, error) {
	return gogitBranchExists(b.repoRoot, name)
}

func (b *gitBackend) RemoteBranchExists(remote, name string) (bool, error) {
	return gogitRemoteBranchExists(b.repoRoot, remote, name)
}

func (b *gitBackend) Remotes() ([]string, error) {
	return gogitRemotes(b.repoRoot)
}

func (b *gitBackend) RemoteHead(remote string) (string, error) {
	return gogitRemoteHead(b.repoRoot, remote)
}

func (b *gitBackend) IsValidCheckout(dir string) bool {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return false
	}
	if _, err := os.Stat(dir); err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	// .git is a directory in the primary checkout and a gitdir pointer file
	// in linked worktrees; both are valid.
	return info.IsDir() || info.Mode().IsRegular()
}

func parseStatusPorcelain(output string) DirtyState {
	var state DirtyState
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 2 {
			continue
		}
		x, y := line[0], line[1]
		if x == '?' && y == '?' {
			state.Untracked++
			continue
		}
		if x != ' ' {
			state.Staged++
		}
		if y != ' ' {
			state.Modified++
		}
	}
	return state
}

func gitOutputInDir(dir string, gitPath string, args ...string) (string, error) {
	cmd := exec.Command(gitPath, args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
