package index

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cameronsjo/modulemd/internal/modulemd"
	"github.com/cameronsjo/modulemd/internal/trace"
)

// Priority bounds accepted by Merger.Associate.
const (
	MinPriority = 0
	MaxPriority = 1000
)

// Merger combines indexes from repositories of different priority.
// Indexes of equal priority are merged without override, so conflicting
// default streams fail. A higher priority level replaces the defaults of
// every module it carries defaults for.
type Merger struct {
	opts   options
	levels map[int][]*Index
}

// NewMerger creates an empty merger.
func NewMerger(opts ...Option) *Merger {
	return &Merger{
		opts:   newOptions(opts),
		levels: make(map[int][]*Index),
	}
}

// Associate queues a copy of idx at priority.
func (m *Merger) Associate(idx *Index, priority int) error {
	if idx == nil {
		return modulemd.InvalidArgumentf(modulemd.DomainIndex, "index must not be nil")
	}
	if priority < MinPriority || priority > MaxPriority {
		return modulemd.InvalidArgumentf(modulemd.DomainIndex,
			"priority %d outside %d..%d", priority, MinPriority, MaxPriority)
	}
	m.levels[priority] = append(m.levels[priority], idx.Copy())
	return nil
}

// Priorities lists the associated priority levels in ascending order.
func (m *Merger) Priorities() []int {
	return slices.Sorted(maps.Keys(m.levels))
}

// Resolve merges every associated index into a new one.
func (m *Merger) Resolve() (_ *Index, err error) {
	span := trace.Begin(m.opts.logger, m.opts.observer, "index.resolve", "levels", len(m.levels))
	defer span.End(&err)

	final := New(m.optionList()...)
	for _, priority := range m.Priorities() {
		span.Logger().Debug("resolving priority level", "priority", priority)

		level := New(m.optionList()...)
		for _, idx := range m.levels[priority] {
			if err := Merge(idx, level, modulemd.OverrideNone); err != nil {
				return nil, fmt.Errorf("priority %d: %w", priority, err)
			}
		}
		if err := overlay(level, final); err != nil {
			return nil, fmt.Errorf("priority %d: %w", priority, err)
		}
	}
	return final, nil
}

func (m *Merger) optionList() []Option {
	return []Option{
		WithLogger(m.opts.logger),
		WithObserver(m.opts.observer),
		WithStrictMode(m.opts.strict),
	}
}

// overlay merges higher into lower, replacing lower's defaults for every
// module where higher has defaults.
func overlay(higher, lower *Index) error {
	for _, name := range higher.ModuleNames() {
		m := higher.modules[name]
		existing, ok := lower.modules[name]
		if !ok {
			lower.modules[name] = m.Copy()
			continue
		}
		if m.Defaults() != nil {
			existing.ClearDefaults()
		}
		if err := existing.Merge(m, modulemd.OverrideNone); err != nil {
			return fmt.Errorf("merge module %q: %w", name, err)
		}
	}
	return nil
}
