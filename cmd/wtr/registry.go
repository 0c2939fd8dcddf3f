package main

import (
	"strings"
)

// detachedBranch is the sentinel branch name for a detached-HEAD worktree.
// Downstream code must never conflate it with an empty or missing branch.
const detachedBranch = "detached"

// WorktreeRecord is one physical checkout as reported by the backend. Records
// are re-derived from the backend on every snapshot; nothing is cached.
type WorktreeRecord struct {
	Path   string
	Branch string
	Head   string
	Bare   bool
}

func (r WorktreeRecord) Detached() bool {
	return r.Branch == detachedBranch
}

// Registry enumerates worktrees and isolates all assumptions about the
// porcelain listing format from the rest of the system.
type Registry struct {
	backend Backend
}

func NewRegistry(backend Backend) *Registry {
	return &Registry{backend: backend}
}

// Snapshot lists all worktrees known to the backend, excluding the bare
// administrative record. Malformed listing lines are returned separately and
// are not fatal.
func (r *Registry) Snapshot() ([]WorktreeRecord, []string, error) {
	raw, err := r.backend.ListWorktrees()
	if err != nil {
		return nil, nil, err
	}
	records, malformed := parseWorktreeList(raw)
	filtered := make([]WorktreeRecord, 0, len(records))
	for _, rec := range records {
		if rec.Bare {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered, malformed, nil
}

// RecordForBranch returns the snapshot record checked out on branch.
func (r *Registry) RecordForBranch(branch string) (WorktreeRecord, bool, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return WorktreeRecord{}, false, nil
	}
	records, _, err := r.Snapshot()
	if err != nil {
		return WorktreeRecord{}, false, err
	}
	for _, rec := range records {
		if rec.Branch == branch {
			return rec, true, nil
		}
	}
	return WorktreeRecord{}, false, nil
}

func parseWorktreeList(output string) ([]WorktreeRecord, []string) {
	var records []WorktreeRecord
	var malformed []string
	var current *WorktreeRecord

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			current = nil
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "worktree":
			if len(fields) < 2 {
				malformed = append(malformed, line)
				current = nil
				continue
			}
			records = append(records, WorktreeRecord{Path: strings.Join(fields[1:], " ")})
			current = &records[len(records)-1]
		case "HEAD":
			if current == nil || len(fields) < 2 {
				malformed = append(malformed, line)
				continue
			}
			current.Head = shortCommit(fields[1])
		case "branch":
			if current == nil {
				malformed = append(malformed, line)
				continue
			}
			current.Branch = shortBranch(strings.Join(fields[1:], " "))
		case "detached":
			if current == nil {
				malformed = append(malformed, line)
				continue
			}
			if current.Branch == "" {
				current.Branch = detachedBranch
			}
		case "bare":
			if current == nil {
				malformed = append(malformed, line)
				continue
			}
			current.Bare = true
		case "locked", "prunable":
			// Annotations on the preceding record; nothing to track yet.
		default:
			if current == nil {
				malformed = append(malformed, line)
			}
		}
	}

	for i := range records {
		if records[i].Branch == "" && !records[i].Bare {
			records[i].Branch = detachedBranch
		}
	}
	return records, malformed
}

func shortBranch(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "refs/heads/")
	value = strings.TrimPrefix(value, "refs/remotes/")
	value = strings.TrimPrefix(value, "origin/")
	if value == "" {
		return detachedBranch
	}
	return value
}

func shortCommit(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 12 {
		return value[:12]
	}
	return value
}
