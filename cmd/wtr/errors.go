package main

import (
	"errors"
	"fmt"
	"strings"
)

var errGitNotInstalled = errors.New("git not installed")
var errNotInGitRepository = errors.New("not in a git repository")

// PreconditionError reports an operation that refused to start. Nothing has
// been mutated when this error is returned.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// BackendError wraps a failed git invocation. Output carries the stderr text
// of the command when git produced any; the raw exit error stays available
// via Unwrap.
type BackendError struct {
	Op     string
	Output string
	Err    error
}

func (e *BackendError) Error() string {
	if msg := strings.TrimSpace(e.Output); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ConflictError marks a merge or rebase that git stopped partway through.
// The checkout is left exactly as git left it; resolution is manual.
type ConflictError struct {
	Op     string
	Source string
	Target string
	Output string
}

func (e *ConflictError) Error() string {
	subject := e.Op
	switch {
	case e.Source != "" && e.Target != "":
		subject = fmt.Sprintf("%s of %s into %s", e.Op, e.Source, e.Target)
	case e.Source != "":
		subject = fmt.Sprintf("%s of %s", e.Op, e.Source)
	case e.Target != "":
		subject = fmt.Sprintf("%s onto %s", e.Op, e.Target)
	}
	return subject + " stopped on conflicts; resolve them in the checkout and finish or abort manually"
}

func commandErrorWithOutput(fallback error, output []byte) error {
	msg := strings.TrimSpace(string(output))
	if msg == "" {
		return fallback
	}
	return errors.New(msg)
}

func isConflictOutput(output string) bool {
	for _, marker := range []string{
		"CONFLICT",
		"could not apply",
		"Automatic merge failed",
		"Not possible to fast-forward",
		"not possible to fast-forward",
	} {
		if strings.Contains(output, marker) {
			return true
		}
	}
	return false
}
