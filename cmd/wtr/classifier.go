package main

import (
	"os"
	"time"
)

// StatusKind is a worktree classification outcome. Orphaned is a first-class
// outcome, not an error: it drives the cleanup engine.
type StatusKind string

const (
	StatusActive   StatusKind = "active"
	StatusMerged   StatusKind = "merged"
	StatusOrphaned StatusKind = "orphaned"
	StatusStale    StatusKind = "stale"
)

// RemoteTracking carries the upstream ref and its own ahead/behind counts.
type RemoteTracking struct {
	Ref    string
	Ahead  int
	Behind int
}

// Classification is derived and ephemeral: recomputed on every call, never
// persisted. Status holds the highest-priority reason; Reasons holds every
// reason that applies, so a record that is both merged and stale shows up in
// both cleanup groups.
type Classification struct {
	Record       WorktreeRecord
	Status       StatusKind
	Reasons      []StatusKind
	Ahead        int
	Behind       int
	Dirty        DirtyState
	Remote       *RemoteTracking
	LastActivity time.Time
}

func (c Classification) HasReason(kind StatusKind) bool {
	for _, r := range c.Reasons {
		if r == kind {
			return true
		}
	}
	return false
}

type Classifier struct {
	backend    Backend
	trunk      string
	staleAfter time.Duration
	log        *Logger

	// now is a test seam; production uses time.Now.
	now func() time.Time
}

func NewClassifier(backend Backend, trunk string, staleAfter time.Duration, log *Logger) *Classifier {
	return &Classifier{
		backend:    backend,
		trunk:      trunk,
		staleAfter: staleAfter,
		log:        log,
		now:        time.Now,
	}
}

func (c *Classifier) Trunk() string {
	return c.trunk
}

// ClassifyAll classifies every non-trunk record in the snapshot. The trunk's
// own worktree is never a candidate for merging or cleanup.
func (c *Classifier) ClassifyAll(records []WorktreeRecord) ([]Classification, error) {
	out := make([]Classification, 0, len(records))
	for _, rec := range records {
		if rec.Bare || rec.Branch == c.trunk {
			continue
		}
		cls, err := c.Classify(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, cls)
	}
	return out, nil
}

// Classify computes the status of a single record. A missing or invalid
// checkout short-circuits every other check: an absent directory cannot be
// queried for dirty state or ahead/behind counts.
func (c *Classifier) Classify(rec WorktreeRecord) (Classification, error) {
	cls := Classification{Record: rec}

	if !c.backend.IsValidCheckout(rec.Path) {
		cls.Status = StatusOrphaned
		cls.Reasons = []StatusKind{StatusOrphaned}
		c.log.Debug("worktree classified orphaned", "path", rec.Path, "branch", rec.Branch)
		return cls, nil
	}

	ref := rec.Branch
	if rec.Detached() {
		ref = rec.Head
	}

	ahead, behind, err := c.backend.AheadBehind(ref, c.trunk)
	if err != nil {
		return cls, err
	}
	cls.Ahead, cls.Behind = ahead, behind

	dirty, err := c.backend.DiffStatus(rec.Path)
	if err != nil {
		return cls, err
	}
	cls.Dirty = dirty

	if remote, err := c.remoteTracking(rec); err == nil {
		cls.Remote = remote
	} else {
		c.log.Warn("remote tracking lookup failed", "branch", rec.Branch, "error", err)
	}

	// Merged status takes priority over staleness: a merged worktree should
	// surface for cleanup regardless of age.
	if !rec.Detached() {
		merged, err := c.backend.IsMerged(rec.Branch, c.trunk)
		if err != nil {
			return cls, err
		}
		if merged {
			cls.Reasons = append(cls.Reasons, StatusMerged)
		}
	}

	cls.LastActivity = c.lastActivity(rec.Path)
	if !cls.LastActivity.IsZero() && c.now().Sub(cls.LastActivity) > c.staleAfter {
		cls.Reasons = append(cls.Reasons, StatusStale)
	}

	switch {
	case cls.HasReason(StatusMerged):
		cls.Status = StatusMerged
	case cls.HasReason(StatusStale):
		cls.Status = StatusStale
	default:
		cls.Status = StatusActive
	}
	return cls, nil
}

func (c *Classifier) remoteTracking(rec WorktreeRecord) (*RemoteTracking, error) {
	if rec.Detached() {
		return nil, nil
	}
	remotes, err := c.backend.Remotes()
	if err != nil || len(remotes) == 0 {
		return nil, err
	}
	remote := remotes[0]
	exists, err := c.backend.RemoteBranchExists(remote, rec.Branch)
	if err != nil || !exists {
		return nil, err
	}
	ref := remote + "/" + rec.Branch
	ahead, behind, err := c.backend.AheadBehind(rec.Branch, ref)
	if err != nil {
		return nil, err
	}
	return &RemoteTracking{Ref: ref, Ahead: ahead, Behind: behind}, nil
}

// lastActivity prefers the latest commit timestamp in the worktree and falls
// back to the directory's modification time when no commits exist. The mtime
// fallback is best-effort only: unrelated operations can touch directory
// metadata.
func (c *Classifier) lastActivity(path string) time.Time {
	when, err := c.backend.LastCommitTime(path)
	if err == nil && !when.IsZero() {
		return when
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		return time.Time{}
	}
	return info.ModTime()
}
