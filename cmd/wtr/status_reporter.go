package main

import (
	"time"
)

// StatusAggregate is an immutable snapshot for presentation. It is the only
// output intended for repeated polling; producing it mutates nothing.
type StatusAggregate struct {
	Trunk       string
	Total       int
	DirtyCount  int
	AheadTotal  int
	BehindTotal int
	Worktrees   []Classification
	Warnings    []string
	CollectedAt time.Time
}

type StatusReporter struct {
	registry   *Registry
	classifier *Classifier
}

func NewStatusReporter(registry *Registry, classifier *Classifier) *StatusReporter {
	return &StatusReporter{registry: registry, classifier: classifier}
}

// Collect re-derives the aggregate from a fresh backend snapshot.
func (r *StatusReporter) Collect() (StatusAggregate, error) {
	records, malformed, err := r.registry.Snapshot()
	if err != nil {
		return StatusAggregate{}, err
	}
	classifications, err := r.classifier.ClassifyAll(records)
	if err != nil {
		return StatusAggregate{}, err
	}

	agg := StatusAggregate{
		Trunk:       r.classifier.Trunk(),
		Total:       len(classifications),
		Worktrees:   classifications,
		Warnings:    malformed,
		CollectedAt: time.Now(),
	}
	for _, cls := range classifications {
		if cls.Dirty.IsDirty() {
			agg.DirtyCount++
		}
		agg.AheadTotal += cls.Ahead
		agg.BehindTotal += cls.Behind
	}
	return agg, nil
}
