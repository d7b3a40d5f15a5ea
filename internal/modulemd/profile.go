package modulemd

import (
	"maps"
	"slices"
)

// Profile is a named set of packages to install for a use case.
type Profile struct {
	name string

	Description string
	RPMs        *Set

	// descriptions is the translation overlay. It is attached by the owning
	// stream and is not part of the document.
	descriptions localized
}

// NewProfile returns an empty profile named name.
func NewProfile(name string) *Profile {
	return &Profile{name: name, RPMs: NewSet()}
}

func (p *Profile) Name() string { return p.name }

// LocalizedDescription returns the translated description for locale,
// falling back to Description.
func (p *Profile) LocalizedDescription(locale string) string {
	if v, ok := p.descriptions.lookup(locale); ok {
		return v
	}
	return p.Description
}

// Locales lists the locales the overlay has a description for.
func (p *Profile) Locales() []string {
	return slices.Sorted(maps.Keys(p.descriptions))
}

func (p *Profile) setLocalizedDescription(locale, description string) {
	if p.descriptions == nil {
		p.descriptions = make(localized)
	}
	p.descriptions[locale] = description
}

// Copy returns a deep copy, overlay included.
func (p *Profile) Copy() *Profile {
	out := &Profile{
		name:        p.name,
		Description: p.Description,
		RPMs:        p.RPMs.Copy(),
	}
	if p.descriptions != nil {
		out.descriptions = maps.Clone(p.descriptions)
	}
	return out
}

// Equal compares the document fields. The translation overlay is ignored.
func (p *Profile) Equal(o *Profile) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.name == o.name &&
		p.Description == o.Description &&
		p.RPMs.Equal(o.RPMs)
}
