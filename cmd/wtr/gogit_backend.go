package main

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Read-side queries answered in-process with go-git against the primary
// repository. Lifecycle operations stay on the git binary: go-git's
// linked-worktree support is incomplete.

func openGogitRepo(repoRoot string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(repoRoot, &git.PlainOpenOptions{DetectDotGit: true})
}

func gogitBranchExists(repoRoot, name string) (bool, error) {
	repo, err := openGogitRepo(repoRoot)
	if err != nil {
		return false, err
	}
	_, err = repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	return false, err
}

func gogitRemoteBranchExists(repoRoot, remote, name string) (bool, error) {
	repo, err := openGogitRepo(repoRoot)
	if err != nil {
		return false, err
	}
	_, err = repo.Reference(plumbing.NewRemoteReferenceName(remote, name), true)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	return false, err
}

func gogitRemotes(repoRoot string) ([]string, error) {
	repo, err := openGogitRepo(repoRoot)
	if err != nil {
		return nil, err
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(remotes))
	for _, r := range remotes {
		names = append(names, r.Config().Name)
	}
	sort.Strings(names)
	return names, nil
}

// gogitRemoteHead resolves refs/remotes/<remote>/HEAD and returns the short
// branch name it points at, or "" when the symbolic ref is absent.
func gogitRemoteHead(repoRoot, remote string) (string, error) {
	repo, err := openGogitRepo(repoRoot)
	if err != nil {
		return "", err
	}
	name := plumbing.ReferenceName("refs/remotes/" + remote + "/HEAD")
	ref, err := repo.Reference(name, false)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", err
	}
	if ref.Type() != plumbing.SymbolicReference {
		return "", nil
	}
	target := ref.Target().Short()
	return strings.TrimPrefix(target, remote+"/"), nil
}

func gogitDiffStatus(dir string) (DirtyState, error) {
	repo, err := openGogitRepo(dir)
	if err != nil {
		return DirtyState{}, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return DirtyState{}, err
	}
	status, err := wt.Status()
	if err != nil {
		return DirtyState{}, err
	}
	var state DirtyState
	for _, fileStatus := range status {
		if fileStatus.Staging == git.Untracked {
			state.Untracked++
			continue
		}
		if fileStatus.Staging != git.Unmodified {
			state.Staged++
		}
		if fileStatus.Worktree != git.Unmodified && fileStatus.Worktree != git.Untracked {
			state.Modified++
		}
	}
	return state, nil
}

func isLinkedWorktreeDir(dir string) bool {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return false
	}
	dotGit := filepath.Join(dir, ".git")
	info, err := os.Stat(dotGit)
	if err != nil || info.IsDir() {
		return false
	}
	data, err := os.ReadFile(dotGit)
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(string(data)), "gitdir:")
}
