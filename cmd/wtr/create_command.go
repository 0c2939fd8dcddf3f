package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newCreateCommand() *cobra.Command {
	var editorOverride string
	var noEditor bool
	var fromExisting bool

	cmd := &cobra.Command{
		Use:   "create <branch>",
		Short: "Create a worktree for a branch and optionally open an editor",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return nil
			}
			if len(args) == 0 {
				return usageError(cmd, "missing branch argument")
			}
			return usageError(cmd, "too many arguments; provide exactly one branch name")
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return runCreate(args[0], editorOverride, noEditor, fromExisting)
		},
	}
	cmd.Flags().StringVar(&editorOverride, "editor", "", "Editor command to open in the new worktree")
	cmd.Flags().BoolVar(&noEditor, "no-editor", false, "Do not open an editor")
	cmd.Flags().BoolVar(&fromExisting, "from-existing", false, "Check out an existing branch instead of creating one")
	return cmd
}

func runCreate(branch string, editorOverride string, noEditor bool, fromExisting bool) error {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return &PreconditionError{Reason: "branch name required"}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if rec, ok, err := a.registry.RecordForBranch(branch); err != nil {
		return err
	} else if ok {
		return &PreconditionError{Reason: fmt.Sprintf("branch %s is already checked out at %s", branch, rec.Path)}
	}

	exists, err := a.backend.BranchExists(branch)
	if err != nil {
		return err
	}
	if exists && !fromExisting {
		reuse, err := promptReuseBranch(branch, a.cfg.AutoConfirm)
		if err != nil {
			return err
		}
		if !reuse {
			fmt.Fprintln(os.Stderr, "aborted: branch already exists")
			return &PreconditionError{Reason: fmt.Sprintf("branch %s already exists", branch)}
		}
		fromExisting = true
	}
	if fromExisting && !exists {
		return &PreconditionError{Reason: fmt.Sprintf("branch %s does not exist", branch)}
	}

	target, err := worktreePathFor(a.backend.Root(), branch)
	if err != nil {
		return err
	}
	a.log.Info("creating worktree", "branch", branch, "path", target, "from_existing", fromExisting)

	stop := startDelayedSpinner("Creating worktree for "+branch, 0)
	err = a.backend.CreateWorktree(target, branch, fromExisting)
	stop()
	if err != nil {
		return err
	}

	for _, warning := range propagatePaths(a.backend.Root(), target, a.cfg.CopyPathList()) {
		fmt.Fprintln(os.Stderr, warningStyle.Render("warning: "+warning))
		a.log.Warn("propagation skipped", "detail", warning)
	}

	fmt.Printf("created %s on %s\n", pathLink(target), branchStyle.Render(branch))

	editor := strings.TrimSpace(editorOverride)
	if editor == "" {
		editor = a.cfg.Editor
	}
	if noEditor || editor == "" {
		return nil
	}
	return openEditor(editor, target)
}

// promptReuseBranch asks whether an existing branch should be checked out
// into the new worktree rather than silently creating a duplicate.
func promptReuseBranch(branch string, autoConfirm bool) (bool, error) {
	if autoConfirm {
		return true, nil
	}
	if !stderrIsTTY() {
		return false, nil
	}
	return runConfirm(
		fmt.Sprintf("Branch %s already exists", branch),
		"Check out the existing branch into a new worktree?",
	)
}

// worktreePathFor places worktrees in a sibling directory of the primary
// checkout, one per branch, slashes flattened.
func worktreePathFor(repoRoot, branch string) (string, error) {
	base := filepath.Base(repoRoot)
	name := strings.ReplaceAll(strings.TrimSpace(branch), "/", "-")
	root := filepath.Join(filepath.Dir(repoRoot), base+".worktrees")
	candidate := filepath.Join(root, name)
	for i := 2; i < 10000; i++ {
		_, statErr := os.Stat(candidate)
		if errors.Is(statErr, os.ErrNotExist) {
			return candidate, nil
		}
		if statErr != nil {
			return "", statErr
		}
		candidate = filepath.Join(root, fmt.Sprintf("%s-%d", name, i))
	}
	return "", errors.New("no available worktree path")
}

// propagatePaths copies the configured paths from the primary checkout into
// the new worktree. Missing sources are skipped with a warning; propagation
// never fails the create.
func propagatePaths(repoRoot, target string, paths []string) []string {
	var warnings []string
	for _, rel := range paths {
		src := filepath.Join(repoRoot, rel)
		dst := filepath.Join(target, rel)
		if err := copyPath(src, dst); err != nil {
			warnings = append(warnings, fmt.Sprintf("could not copy %s: %v", rel, err))
		}
	}
	return warnings
}

func copyPath(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return err
		}
		for _, entry := range entries {
			if err := copyPath(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func openEditor(editor, path string) error {
	cmd := exec.Command(editor, path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Start()
}
