// Package index aggregates parsed documents into modules keyed by name and
// merges whole indexes, optionally by priority.
package index

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/cameronsjo/modulemd/internal/codec"
	"github.com/cameronsjo/modulemd/internal/modulemd"
	"github.com/cameronsjo/modulemd/internal/trace"
)

type options struct {
	logger   *slog.Logger
	observer trace.Observer
	strict   bool
}

func newOptions(opts []Option) options {
	o := options{logger: trace.Discard(), strict: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures an Index or a Merger.
type Option func(*options)

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver sets the observer notified of index operations.
func WithObserver(observer trace.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithStrictMode sets whether documents with unknown keys are rejected.
func WithStrictMode(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// Index maps module names to modules.
type Index struct {
	opts    options
	modules map[string]*modulemd.Module
}

// New creates an empty index.
func New(opts ...Option) *Index {
	return &Index{
		opts:    newOptions(opts),
		modules: make(map[string]*modulemd.Module),
	}
}

func (idx *Index) parser() *codec.Parser {
	return codec.NewParser().
		WithStrictMode(idx.opts.strict).
		WithLogger(idx.opts.logger).
		WithObserver(idx.opts.observer)
}

func (idx *Index) module(name string) *modulemd.Module {
	m, ok := idx.modules[name]
	if !ok {
		m = modulemd.NewModule(name)
		idx.modules[name] = m
	}
	return m
}

func requireName(kind, name string) error {
	if name == "" {
		return modulemd.InvalidArgumentf(modulemd.DomainIndex, "%s has no module name", kind)
	}
	return nil
}

// AddModuleStream adds a copy of s. The stream must name its module and
// stream.
func (idx *Index) AddModuleStream(s *modulemd.ModuleStream) error {
	if s == nil {
		return modulemd.InvalidArgumentf(modulemd.DomainIndex, "stream must not be nil")
	}
	if err := requireName("module stream", s.ModuleName()); err != nil {
		return err
	}
	if s.StreamName() == "" {
		return modulemd.InvalidArgumentf(modulemd.DomainIndex,
			"module stream of %q has no stream name", s.ModuleName())
	}
	if err := s.Validate(); err != nil {
		return err
	}
	return idx.module(s.ModuleName()).AddStream(s)
}

// AddDefaults attaches d to its module, merging it with existing defaults
// without override.
func (idx *Index) AddDefaults(d *modulemd.Defaults) error {
	if d == nil {
		return modulemd.InvalidArgumentf(modulemd.DomainIndex, "defaults must not be nil")
	}
	if err := requireName("defaults", d.ModuleName()); err != nil {
		return err
	}
	return idx.module(d.ModuleName()).MergeDefaults(d, modulemd.OverrideNone)
}

// AddTranslation attaches t to its module.
func (idx *Index) AddTranslation(t *modulemd.Translation) error {
	if t == nil {
		return modulemd.InvalidArgumentf(modulemd.DomainIndex, "translation must not be nil")
	}
	if err := requireName("translation", t.ModuleName()); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	return idx.module(t.ModuleName()).AddTranslation(t)
}

// AddDocument dispatches doc to the matching Add method.
func (idx *Index) AddDocument(doc modulemd.Document) error {
	switch v := doc.(type) {
	case *modulemd.ModuleStream:
		return idx.AddModuleStream(v)
	case *modulemd.Defaults:
		return idx.AddDefaults(v)
	case *modulemd.Translation:
		return idx.AddTranslation(v)
	default:
		return modulemd.InvalidArgumentf(modulemd.DomainIndex, "unsupported document %T", doc)
	}
}

// AddModule merges m into the module of the same name. Distinct streams
// coexist and defaults go through the defaults merger without override.
func (idx *Index) AddModule(m *modulemd.Module) error {
	if m == nil {
		return modulemd.InvalidArgumentf(modulemd.DomainIndex, "module must not be nil")
	}
	if err := requireName("module", m.Name()); err != nil {
		return err
	}
	existing, ok := idx.modules[m.Name()]
	if !ok {
		idx.modules[m.Name()] = m.Copy()
		return nil
	}
	return existing.Merge(m, modulemd.OverrideNone)
}

// UpdateFromString parses every document in text and adds the valid ones.
// Additions are staged and applied only if all of them succeed, so on error
// the index is unchanged. Documents that failed to parse are returned and
// do not prevent the others from being added.
func (idx *Index) UpdateFromString(text string) (failures []*codec.Subdocument, err error) {
	span := trace.Begin(idx.opts.logger, idx.opts.observer, "index.update", "bytes", len(text))
	defer span.End(&err)

	res := idx.parser().ParseString(text)
	staged := idx.Copy()
	for _, doc := range res.Documents {
		if err := staged.AddDocument(doc); err != nil {
			return res.Failures, fmt.Errorf("add %s of module %q: %w",
				doc.DocumentType(), doc.ModuleName(), err)
		}
	}
	idx.modules = staged.modules
	for _, f := range res.Failures {
		span.Logger().Debug("skipped document", "error", f.Err)
	}
	return res.Failures, nil
}

// UpdateFromReader reads r to the end and calls UpdateFromString.
func (idx *Index) UpdateFromReader(r io.Reader) ([]*codec.Subdocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml: %w", err)
	}
	return idx.UpdateFromString(string(data))
}

// UpdateFromFile reads path and calls UpdateFromString.
func (idx *Index) UpdateFromFile(path string) ([]*codec.Subdocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	failures, err := idx.UpdateFromString(string(data))
	if err != nil {
		return failures, fmt.Errorf("%s: %w", path, err)
	}
	return failures, nil
}

// FailuresError joins the errors of failed documents, or returns nil.
func FailuresError(failures []*codec.Subdocument) error {
	errs := make([]error, len(failures))
	for i, f := range failures {
		errs[i] = f.Err
	}
	return errors.Join(errs...)
}

// Module returns a copy of the named module, or nil.
func (idx *Index) Module(name string) *modulemd.Module {
	m, ok := idx.modules[name]
	if !ok {
		return nil
	}
	return m.Copy()
}

// ModuleNames lists module names in order.
func (idx *Index) ModuleNames() []string {
	return slices.Sorted(maps.Keys(idx.modules))
}

// Len returns the number of modules.
func (idx *Index) Len() int { return len(idx.modules) }

// DefaultStreams maps each module with a default stream to that stream.
func (idx *Index) DefaultStreams() map[string]string {
	out := make(map[string]string)
	for name, m := range idx.modules {
		if d := m.Defaults(); d != nil && d.DefaultStream != "" {
			out[name] = d.DefaultStream
		}
	}
	return out
}

// Documents returns copies of every document in dump order: modules by
// name, and within a module streams, then defaults, then translations.
func (idx *Index) Documents() []modulemd.Document {
	var out []modulemd.Document
	for _, name := range idx.ModuleNames() {
		out = append(out, idx.modules[name].Documents()...)
	}
	return out
}

// DumpTo writes every document to w in dump order.
func (idx *Index) DumpTo(w io.Writer) error {
	return codec.Emit(w, idx.Documents()...)
}

// Dump renders every document in dump order.
func (idx *Index) Dump() (string, error) {
	var b strings.Builder
	if err := idx.DumpTo(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Copy returns a deep copy sharing the options of idx.
func (idx *Index) Copy() *Index {
	out := &Index{opts: idx.opts, modules: make(map[string]*modulemd.Module, len(idx.modules))}
	for name, m := range idx.modules {
		out.modules[name] = m.Copy()
	}
	return out
}

// Merge merges every module of from into into under policy. On error into
// is unchanged.
func Merge(from, into *Index, policy modulemd.MergePolicy) (err error) {
	if from == nil || into == nil {
		return modulemd.InvalidArgumentf(modulemd.DomainIndex, "cannot merge nil index")
	}
	span := trace.Begin(into.opts.logger, into.opts.observer, "index.merge", "modules", from.Len())
	defer span.End(&err)

	staged := into.Copy()
	for _, name := range from.ModuleNames() {
		m := from.modules[name]
		existing, ok := staged.modules[name]
		if !ok {
			staged.modules[name] = m.Copy()
			continue
		}
		if err := existing.Merge(m, policy); err != nil {
			return fmt.Errorf("merge module %q: %w", name, err)
		}
	}
	into.modules = staged.modules
	return nil
}
