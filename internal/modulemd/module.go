package modulemd

import (
	"maps"
	"slices"
)

// Module groups every stream, the defaults and the translations that share
// a module name.
type Module struct {
	name string

	streams      map[StreamKey]*ModuleStream
	defaults     *Defaults
	translations map[string]*Translation
}

// NewModule returns an empty module named name.
func NewModule(name string) *Module {
	return &Module{name: name}
}

func (m *Module) Name() string { return m.name }

// AddStream stores a copy of s. A stream with the same key is replaced.
func (m *Module) AddStream(s *ModuleStream) error {
	if s == nil {
		return InvalidArgumentf(DomainModel, "stream must not be nil")
	}
	if s.moduleName != m.name {
		return InvalidArgumentf(DomainModel,
			"stream %s does not belong to module %q", s.NSVCA(), m.name)
	}
	if m.streams == nil {
		m.streams = make(map[StreamKey]*ModuleStream)
	}
	c := s.Copy()
	c.associateTranslation(m.translations[c.streamName])
	m.streams[c.Key()] = c
	return nil
}

// Stream returns a copy of the stream with key, or nil.
func (m *Module) Stream(key StreamKey) *ModuleStream {
	s, ok := m.streams[key]
	if !ok {
		return nil
	}
	return s.Copy()
}

// Streams returns copies of every stream ordered by stream name, version,
// context and arch.
func (m *Module) Streams() []*ModuleStream {
	keys := slices.SortedFunc(maps.Keys(m.streams), compareStreamKeys)
	out := make([]*ModuleStream, len(keys))
	for i, k := range keys {
		out[i] = m.streams[k].Copy()
	}
	return out
}

// StreamNames lists distinct stream names in order.
func (m *Module) StreamNames() []string {
	seen := make(map[string]struct{})
	for k := range m.streams {
		seen[k.Stream] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// RemoveStream drops the stream with key.
func (m *Module) RemoveStream(key StreamKey) {
	delete(m.streams, key)
}

// Defaults returns a copy of the module defaults, or nil.
func (m *Module) Defaults() *Defaults {
	if m.defaults == nil {
		return nil
	}
	return m.defaults.Copy()
}

// SetDefaults attaches d to a module without defaults. Replacing different
// existing defaults is a conflict; use MergeDefaults or ClearDefaults.
func (m *Module) SetDefaults(d *Defaults) error {
	if d == nil {
		return InvalidArgumentf(DomainModel, "defaults must not be nil")
	}
	if d.moduleName != m.name {
		return InvalidArgumentf(DomainModel,
			"defaults for %q cannot be attached to module %q", d.moduleName, m.name)
	}
	if m.defaults != nil && !m.defaults.Equal(d) {
		return ConflictErrorf("module %q already has different defaults", m.name)
	}
	m.defaults = d.Copy()
	return nil
}

// MergeDefaults merges d into the module defaults under policy, or attaches
// it when the module has none. On error the module is unchanged.
func (m *Module) MergeDefaults(d *Defaults, policy MergePolicy) error {
	if m.defaults == nil {
		return m.SetDefaults(d)
	}
	merged, err := MergeDefaults(m.defaults, d, policy)
	if err != nil {
		return err
	}
	m.defaults = merged
	return nil
}

// ClearDefaults removes the module defaults.
func (m *Module) ClearDefaults() { m.defaults = nil }

// AddTranslation stores a copy of t unless the module already holds a
// newer translation for the same stream. The translation is attached to
// every stream of that name.
func (m *Module) AddTranslation(t *Translation) error {
	if t == nil {
		return InvalidArgumentf(DomainModel, "translation must not be nil")
	}
	if t.moduleName != m.name {
		return InvalidArgumentf(DomainModel,
			"translation for %q cannot be attached to module %q", t.moduleName, m.name)
	}
	if existing, ok := m.translations[t.streamName]; ok && existing.Modified > t.Modified {
		return nil
	}
	if m.translations == nil {
		m.translations = make(map[string]*Translation)
	}
	c := t.Copy()
	m.translations[t.streamName] = c
	for k, s := range m.streams {
		if k.Stream == t.streamName {
			s.associateTranslation(c)
		}
	}
	return nil
}

// Translation returns a copy of the translation of stream, or nil.
func (m *Module) Translation(stream string) *Translation {
	t, ok := m.translations[stream]
	if !ok {
		return nil
	}
	return t.Copy()
}

// Translations returns copies of every translation ordered by stream.
func (m *Module) Translations() []*Translation {
	names := slices.Sorted(maps.Keys(m.translations))
	out := make([]*Translation, len(names))
	for i, n := range names {
		out[i] = m.translations[n].Copy()
	}
	return out
}

// Merge adds the streams and translations of other and merges its defaults
// under policy. On error m is unchanged.
func (m *Module) Merge(other *Module, policy MergePolicy) error {
	if other == nil {
		return InvalidArgumentf(DomainModel, "module must not be nil")
	}
	if other.name != m.name {
		return InvalidArgumentf(DomainModel,
			"cannot merge module %q into %q", other.name, m.name)
	}

	staged := m.Copy()
	if other.defaults != nil {
		if err := staged.MergeDefaults(other.defaults, policy); err != nil {
			return err
		}
	}
	for _, t := range other.translations {
		if err := staged.AddTranslation(t); err != nil {
			return err
		}
	}
	for _, s := range other.streams {
		if err := staged.AddStream(s); err != nil {
			return err
		}
	}
	*m = *staged
	return nil
}

// Documents returns copies of every document of the module in emission
// order: streams, defaults, translations.
func (m *Module) Documents() []Document {
	var out []Document
	for _, s := range m.Streams() {
		out = append(out, s)
	}
	if m.defaults != nil {
		out = append(out, m.defaults.Copy())
	}
	for _, t := range m.Translations() {
		out = append(out, t)
	}
	return out
}

// Copy returns a deep copy.
func (m *Module) Copy() *Module {
	out := &Module{name: m.name}
	if m.defaults != nil {
		out.defaults = m.defaults.Copy()
	}
	for k, t := range m.translations {
		if out.translations == nil {
			out.translations = make(map[string]*Translation, len(m.translations))
		}
		out.translations[k] = t.Copy()
	}
	for k, s := range m.streams {
		if out.streams == nil {
			out.streams = make(map[StreamKey]*ModuleStream, len(m.streams))
		}
		c := s.Copy()
		c.associateTranslation(out.translations[k.Stream])
		out.streams[k] = c
	}
	return out
}

// Equal compares names, streams, defaults and translations.
func (m *Module) Equal(o *Module) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.name == o.name &&
		m.defaults.Equal(o.defaults) &&
		maps.EqualFunc(m.streams, o.streams, (*ModuleStream).Equal) &&
		maps.EqualFunc(m.translations, o.translations, (*Translation).Equal)
}
