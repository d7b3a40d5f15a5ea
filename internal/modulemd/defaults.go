package modulemd

import (
	"maps"
	"slices"
)

// DefaultsVersion1 is the only modulemd-defaults format version.
const DefaultsVersion1 uint64 = 1

// Defaults records the default stream and default profiles of one module,
// optionally refined per intent.
type Defaults struct {
	moduleName string

	DefaultStream string
	// Modified is a YYYYMMDDHHMM stamp used to order competing documents.
	Modified uint64

	profiles profileDefaults
	intents  map[string]*Intent
}

// NewDefaults returns empty defaults for module.
func NewDefaults(module string) *Defaults {
	return &Defaults{moduleName: module}
}

func (d *Defaults) DocumentType() Doctype   { return DoctypeDefaults }
func (d *Defaults) DocumentVersion() uint64 { return DefaultsVersion1 }
func (d *Defaults) ModuleName() string      { return d.moduleName }
func (d *Defaults) isDocument()             {}

// SetModuleName renames the module the defaults apply to.
func (d *Defaults) SetModuleName(module string) { d.moduleName = module }

// SetProfilesForStream replaces the default profiles of stream.
func (d *Defaults) SetProfilesForStream(stream string, profiles ...string) {
	d.profiles = d.profiles.set(stream, profiles)
}

// ProfilesForStream returns the default profiles of stream and whether the
// stream has an entry.
func (d *Defaults) ProfilesForStream(stream string) ([]string, bool) {
	return d.profiles.get(stream)
}

// RemoveProfilesForStream drops the entry for stream.
func (d *Defaults) RemoveProfilesForStream(stream string) {
	delete(d.profiles, stream)
}

// ProfileStreams lists the streams with profile defaults.
func (d *Defaults) ProfileStreams() []string { return d.profiles.streams() }

// AddIntent stores a copy of intent, replacing one with the same name.
func (d *Defaults) AddIntent(intent *Intent) error {
	if intent == nil {
		return InvalidArgumentf(DomainModel, "intent must not be nil")
	}
	if intent.name == "" {
		return InvalidArgumentf(DomainModel, "intent name must not be empty")
	}
	if d.intents == nil {
		d.intents = make(map[string]*Intent)
	}
	d.intents[intent.name] = intent.Copy()
	return nil
}

// Intent returns a copy of the named intent, or nil.
func (d *Defaults) Intent(name string) *Intent {
	i, ok := d.intents[name]
	if !ok {
		return nil
	}
	return i.Copy()
}

// RemoveIntent drops the named intent.
func (d *Defaults) RemoveIntent(name string) {
	delete(d.intents, name)
}

// IntentNames lists intent names in order.
func (d *Defaults) IntentNames() []string {
	return slices.Sorted(maps.Keys(d.intents))
}

// Validate checks the required fields.
func (d *Defaults) Validate() error {
	if d.moduleName == "" {
		return ValidationErrorf(DocumentDefaults, "missing required field %q", "module")
	}
	return nil
}

// Copy returns a deep copy.
func (d *Defaults) Copy() *Defaults {
	out := &Defaults{
		moduleName:    d.moduleName,
		DefaultStream: d.DefaultStream,
		Modified:      d.Modified,
		profiles:      d.profiles.copy(),
	}
	if d.intents != nil {
		out.intents = make(map[string]*Intent, len(d.intents))
		for k, v := range d.intents {
			out.intents[k] = v.Copy()
		}
	}
	return out
}

// Equal compares every field.
func (d *Defaults) Equal(o *Defaults) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.moduleName != o.moduleName ||
		d.DefaultStream != o.DefaultStream ||
		d.Modified != o.Modified ||
		!d.profiles.equal(o.profiles) ||
		len(d.intents) != len(o.intents) {
		return false
	}
	for k, v := range d.intents {
		if !v.Equal(o.intents[k]) {
			return false
		}
	}
	return true
}
