package modulemd

import (
	"maps"
	"slices"
)

// profileDefaults maps a stream name to the profiles installed by default
// from that stream.
type profileDefaults map[string]*Set

func (m profileDefaults) set(stream string, profiles []string) profileDefaults {
	if m == nil {
		m = make(profileDefaults)
	}
	m[stream] = NewSet(profiles...)
	return m
}

func (m profileDefaults) get(stream string) ([]string, bool) {
	s, ok := m[stream]
	if !ok {
		return nil, false
	}
	return s.Values(), true
}

func (m profileDefaults) streams() []string {
	return slices.Sorted(maps.Keys(m))
}

func (m profileDefaults) copy() profileDefaults {
	if m == nil {
		return nil
	}
	out := make(profileDefaults, len(m))
	for k, v := range m {
		out[k] = v.Copy()
	}
	return out
}

func (m profileDefaults) equal(o profileDefaults) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		w, ok := o[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

// Intent is a named policy selecting a default stream and default profiles
// for a particular context, e.g. "server" or "desktop".
type Intent struct {
	name string

	DefaultStream string
	profiles      profileDefaults
}

// NewIntent returns an empty intent named name.
func NewIntent(name string) *Intent {
	return &Intent{name: name}
}

func (i *Intent) Name() string { return i.name }

// SetProfilesForStream replaces the default profiles of stream. An empty
// list is meaningful: the stream has no default profiles.
func (i *Intent) SetProfilesForStream(stream string, profiles ...string) {
	i.profiles = i.profiles.set(stream, profiles)
}

// ProfilesForStream returns the default profiles of stream and whether the
// stream has an entry at all.
func (i *Intent) ProfilesForStream(stream string) ([]string, bool) {
	return i.profiles.get(stream)
}

// RemoveProfilesForStream drops the entry for stream.
func (i *Intent) RemoveProfilesForStream(stream string) {
	delete(i.profiles, stream)
}

// ProfileStreams lists the streams that have profile defaults.
func (i *Intent) ProfileStreams() []string { return i.profiles.streams() }

// Copy returns a deep copy.
func (i *Intent) Copy() *Intent {
	return &Intent{
		name:          i.name,
		DefaultStream: i.DefaultStream,
		profiles:      i.profiles.copy(),
	}
}

// Equal compares every field.
func (i *Intent) Equal(o *Intent) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.name == o.name &&
		i.DefaultStream == o.DefaultStream &&
		i.profiles.equal(o.profiles)
}
