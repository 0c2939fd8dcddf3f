package main

import (
	"testing"
)

func TestSnapshot_ParsesBranchesAndShortensHeads(t *testing.T) {
	fake := newFakeBackend()
	fake.listing = porcelainListing(
		porcelainEntry("/repo", "0123456789abcdef0123", "main"),
		porcelainEntry("/repo.worktrees/feature-x", "fedcba9876543210fedc", "feature/x"),
	)

	records, malformed, err := NewRegistry(fake).Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(malformed) != 0 {
		t.Fatalf("expected no malformed lines, got %v", malformed)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Branch != "main" || records[0].Path != "/repo" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[0].Head != "0123456789ab" {
		t.Fatalf("expected 12-char head, got %q", records[0].Head)
	}
	if records[1].Branch != "feature/x" {
		t.Fatalf("expected slash branch preserved, got %q", records[1].Branch)
	}
}

func TestSnapshot_ExcludesBareRecord(t *testing.T) {
	fake := newFakeBackend()
	fake.listing = "worktree /repo.git\nbare\n\n" +
		porcelainEntry("/repo.worktrees/feature", "abc123", "feature")

	records, _, err := NewRegistry(fake).Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected bare record excluded, got %d records", len(records))
	}
	if records[0].Branch != "feature" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestSnapshot_DetachedHeadGetsSentinelBranch(t *testing.T) {
	fake := newFakeBackend()
	fake.listing = porcelainEntry("/repo.worktrees/experiment", "abcdef123456", detachedBranch)

	records, _, err := NewRegistry(fake).Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !records[0].Detached() {
		t.Fatalf("expected detached record, got branch %q", records[0].Branch)
	}
}

func TestSnapshot_MissingBranchLineDefaultsToDetached(t *testing.T) {
	fake := newFakeBackend()
	fake.listing = "worktree /repo.worktrees/odd\nHEAD abcdef123456\n"

	records, _, err := NewRegistry(fake).Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Branch != detachedBranch {
		t.Fatalf("expected detached fallback, got %+v", records)
	}
}

func TestSnapshot_CollectsMalformedLinesWithoutFailing(t *testing.T) {
	fake := newFakeBackend()
	fake.listing = "branch refs/heads/orphan-line\n" +
		"worktree\n" +
		porcelainEntry("/repo.worktrees/ok", "abc123", "ok")

	records, malformed, err := NewRegistry(fake).Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Branch != "ok" {
		t.Fatalf("expected the valid record to survive, got %+v", records)
	}
	if len(malformed) != 2 {
		t.Fatalf("expected 2 malformed lines, got %v", malformed)
	}
}

func TestParseWorktreeList_PathWithSpaces(t *testing.T) {
	records, malformed := parseWorktreeList("worktree /repo my worktrees/feature\nbranch refs/heads/feature\n")
	if len(malformed) != 0 {
		t.Fatalf("expected no malformed lines, got %v", malformed)
	}
	if len(records) != 1 || records[0].Path != "/repo my worktrees/feature" {
		t.Fatalf("expected spaced path preserved, got %+v", records)
	}
}

func TestRecordForBranch_FindsMatchingRecord(t *testing.T) {
	fake := newFakeBackend()
	fake.listing = porcelainListing(
		porcelainEntry("/repo", "abc123", "main"),
		porcelainEntry("/repo.worktrees/feature", "def456", "feature"),
	)

	rec, ok, err := NewRegistry(fake).RecordForBranch("feature")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected record for feature")
	}
	if rec.Path != "/repo.worktrees/feature" {
		t.Fatalf("unexpected path %q", rec.Path)
	}
}

func TestRecordForBranch_EmptyBranchNeverMatches(t *testing.T) {
	fake := newFakeBackend()
	fake.listing = porcelainEntry("/repo", "abc123", "main")

	_, ok, err := NewRegistry(fake).RecordForBranch("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no match for blank branch name")
	}
}
