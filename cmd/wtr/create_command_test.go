package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorktreePathFor_PlacesWorktreeInSiblingDirectory(t *testing.T) {
	repo := filepath.Join(t.TempDir(), "project")
	if err := os.MkdirAll(repo, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := worktreePathFor(repo, "feature/login")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(filepath.Dir(repo), "project.worktrees", "feature-login")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWorktreePathFor_SuffixesWhenPathIsTaken(t *testing.T) {
	base := t.TempDir()
	repo := filepath.Join(base, "project")
	taken := filepath.Join(base, "project.worktrees", "feature")
	if err := os.MkdirAll(taken, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := worktreePathFor(repo, "feature")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(base, "project.worktrees", "feature-2")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPropagatePaths_CopiesFilesAndDirectories(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, ".env"), []byte("KEY=1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	nested := filepath.Join(src, ".claude")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, "settings.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	warnings := propagatePaths(src, dst, []string{".env", ".claude"})
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if _, err := os.Stat(filepath.Join(dst, ".env")); err != nil {
		t.Fatalf("expected .env copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, ".claude", "settings.json")); err != nil {
		t.Fatalf("expected nested file copied: %v", err)
	}
}

func TestPromptReuseBranch_AutoConfirmSkipsThePrompt(t *testing.T) {
	reuse, err := promptReuseBranch("feature", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reuse {
		t.Fatalf("auto-confirm must reuse the existing branch")
	}
}

func TestPropagatePaths_MissingSourceWarnsWithoutFailing(t *testing.T) {
	warnings := propagatePaths(t.TempDir(), t.TempDir(), []string{"does-not-exist"})
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
}
