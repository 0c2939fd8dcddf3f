package main

import (
	"testing"
	"time"
)

func testClassifier(fake *fakeBackend, staleAfter time.Duration, now time.Time) *Classifier {
	c := NewClassifier(fake, "main", staleAfter, newDiscardLogger())
	c.now = func() time.Time { return now }
	return c
}

func TestClassify_OrphanShortCircuitsAllOtherQueries(t *testing.T) {
	fake := newFakeBackend()
	fake.invalidPaths["/gone"] = true
	c := testClassifier(fake, 30*24*time.Hour, time.Now())

	cls, err := c.Classify(WorktreeRecord{Path: "/gone", Branch: "feature"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Status != StatusOrphaned {
		t.Fatalf("expected orphaned, got %s", cls.Status)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected only the checkout validity probe, got calls %v", fake.calls)
	}
}

func TestClassify_MergedTakesPriorityOverStale(t *testing.T) {
	now := time.Now()
	fake := newFakeBackend()
	fake.merged["feature"] = true
	fake.lastCommit["/wt/feature"] = now.Add(-60 * 24 * time.Hour)
	c := testClassifier(fake, 30*24*time.Hour, now)

	cls, err := c.Classify(WorktreeRecord{Path: "/wt/feature", Branch: "feature"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Status != StatusMerged {
		t.Fatalf("expected merged status, got %s", cls.Status)
	}
	if !cls.HasReason(StatusMerged) || !cls.HasReason(StatusStale) {
		t.Fatalf("expected both merged and stale reasons, got %v", cls.Reasons)
	}
}

func TestClassify_StaleByLastCommitAge(t *testing.T) {
	now := time.Now()
	fake := newFakeBackend()
	fake.lastCommit["/wt/old"] = now.Add(-31 * 24 * time.Hour)
	c := testClassifier(fake, 30*24*time.Hour, now)

	cls, err := c.Classify(WorktreeRecord{Path: "/wt/old", Branch: "old-work"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Status != StatusStale {
		t.Fatalf("expected stale, got %s", cls.Status)
	}
	if len(cls.Reasons) != 1 {
		t.Fatalf("expected a single stale reason, got %v", cls.Reasons)
	}
}

func TestClassify_RecentUnmergedWorktreeIsActive(t *testing.T) {
	now := time.Now()
	fake := newFakeBackend()
	fake.lastCommit["/wt/fresh"] = now.Add(-time.Hour)
	fake.aheadBehind["fresh..main"] = [2]int{3, 1}
	fake.dirty["/wt/fresh"] = DirtyState{Modified: 2}
	c := testClassifier(fake, 30*24*time.Hour, now)

	cls, err := c.Classify(WorktreeRecord{Path: "/wt/fresh", Branch: "fresh"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Status != StatusActive {
		t.Fatalf("expected active, got %s", cls.Status)
	}
	if cls.Ahead != 3 || cls.Behind != 1 {
		t.Fatalf("expected ahead 3 behind 1, got %d %d", cls.Ahead, cls.Behind)
	}
	if !cls.Dirty.IsDirty() {
		t.Fatalf("expected dirty state to be carried through")
	}
}

func TestClassify_DetachedUsesHeadAndSkipsMergeCheck(t *testing.T) {
	now := time.Now()
	fake := newFakeBackend()
	fake.lastCommit["/wt/detached"] = now.Add(-time.Hour)
	c := testClassifier(fake, 30*24*time.Hour, now)

	cls, err := c.Classify(WorktreeRecord{Path: "/wt/detached", Branch: detachedBranch, Head: "abcdef123456"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Status != StatusActive {
		t.Fatalf("expected active, got %s", cls.Status)
	}
	if !fake.hasCall("ahead-behind abcdef123456 main") {
		t.Fatalf("expected ahead/behind against the head commit, got calls %v", fake.calls)
	}
	if fake.hasCall("is-merged") {
		t.Fatalf("detached worktree must not be merge-checked, got calls %v", fake.calls)
	}
}

func TestClassify_RemoteTrackingWhenUpstreamExists(t *testing.T) {
	now := time.Now()
	fake := newFakeBackend()
	fake.remotes = []string{"origin"}
	fake.remoteBranches["origin/feature"] = true
	fake.aheadBehind["feature..origin/feature"] = [2]int{2, 0}
	fake.lastCommit["/wt/feature"] = now.Add(-time.Hour)
	c := testClassifier(fake, 30*24*time.Hour, now)

	cls, err := c.Classify(WorktreeRecord{Path: "/wt/feature", Branch: "feature"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Remote == nil {
		t.Fatalf("expected remote tracking info")
	}
	if cls.Remote.Ref != "origin/feature" || cls.Remote.Ahead != 2 {
		t.Fatalf("unexpected remote tracking %+v", cls.Remote)
	}
}

func TestClassifyAll_SkipsTrunkAndBareRecords(t *testing.T) {
	now := time.Now()
	fake := newFakeBackend()
	fake.lastCommit["/wt/feature"] = now.Add(-time.Hour)
	c := testClassifier(fake, 30*24*time.Hour, now)

	records := []WorktreeRecord{
		{Path: "/repo", Branch: "main"},
		{Path: "/repo.git", Bare: true},
		{Path: "/wt/feature", Branch: "feature"},
	}
	out, err := c.ClassifyAll(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Record.Branch != "feature" {
		t.Fatalf("expected only the feature record classified, got %+v", out)
	}
}
