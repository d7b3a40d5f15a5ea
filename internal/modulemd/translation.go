package modulemd

import (
	"maps"
	"slices"
)

// TranslationsVersion1 is the only modulemd-translations format version.
const TranslationsVersion1 uint64 = 1

// TranslationEntry holds the strings of one locale.
type TranslationEntry struct {
	locale string

	Summary     string
	Description string

	profileDescriptions map[string]string
}

// NewTranslationEntry returns an empty entry for locale, which is stored in
// canonical form.
func NewTranslationEntry(locale string) (*TranslationEntry, error) {
	canonical, err := CanonicalLocale(locale)
	if err != nil {
		return nil, err
	}
	return &TranslationEntry{locale: canonical}, nil
}

func (e *TranslationEntry) Locale() string { return e.locale }

// SetProfileDescription sets the translated description of a profile.
func (e *TranslationEntry) SetProfileDescription(profile, description string) {
	if e.profileDescriptions == nil {
		e.profileDescriptions = make(map[string]string)
	}
	e.profileDescriptions[profile] = description
}

// ProfileDescription returns the translated description of a profile.
func (e *TranslationEntry) ProfileDescription(profile string) (string, bool) {
	d, ok := e.profileDescriptions[profile]
	return d, ok
}

// ProfileNames lists profiles with a translated description.
func (e *TranslationEntry) ProfileNames() []string {
	return slices.Sorted(maps.Keys(e.profileDescriptions))
}

// Copy returns a deep copy.
func (e *TranslationEntry) Copy() *TranslationEntry {
	out := *e
	out.profileDescriptions = copyStringMap(e.profileDescriptions)
	return &out
}

// Equal compares every field.
func (e *TranslationEntry) Equal(o *TranslationEntry) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.locale == o.locale &&
		e.Summary == o.Summary &&
		e.Description == o.Description &&
		equalStringMap(e.profileDescriptions, o.profileDescriptions)
}

// Translation carries localized strings for one module stream.
type Translation struct {
	moduleName string
	streamName string

	Modified uint64

	entries map[string]*TranslationEntry
}

// NewTranslation returns an empty translation document.
func NewTranslation(module, stream string, modified uint64) *Translation {
	return &Translation{moduleName: module, streamName: stream, Modified: modified}
}

func (t *Translation) DocumentType() Doctype   { return DoctypeTranslations }
func (t *Translation) DocumentVersion() uint64 { return TranslationsVersion1 }
func (t *Translation) ModuleName() string      { return t.moduleName }
func (t *Translation) isDocument()             {}

// StreamName returns the stream the strings belong to.
func (t *Translation) StreamName() string { return t.streamName }

// SetModuleName sets the module name.
func (t *Translation) SetModuleName(module string) { t.moduleName = module }

// SetStreamName sets the stream name.
func (t *Translation) SetStreamName(stream string) { t.streamName = stream }

// SetEntry stores a copy of e, replacing the entry for the same locale.
func (t *Translation) SetEntry(e *TranslationEntry) error {
	if e == nil {
		return InvalidArgumentf(DomainModel, "translation entry must not be nil")
	}
	if t.entries == nil {
		t.entries = make(map[string]*TranslationEntry)
	}
	t.entries[e.locale] = e.Copy()
	return nil
}

// Entry returns a copy of the entry for locale, or nil. The locale is
// canonicalised before lookup.
func (t *Translation) Entry(locale string) *TranslationEntry {
	canonical, err := CanonicalLocale(locale)
	if err != nil {
		return nil
	}
	e, ok := t.entries[canonical]
	if !ok {
		return nil
	}
	return e.Copy()
}

// Locales lists the locales in order.
func (t *Translation) Locales() []string {
	return slices.Sorted(maps.Keys(t.entries))
}

func (t *Translation) match(locale string) *TranslationEntry {
	best, ok := matchLocale(t.Locales(), locale)
	if !ok {
		return nil
	}
	return t.entries[best]
}

func (t *Translation) applyToProfile(p *Profile) {
	for locale, e := range t.entries {
		if d, ok := e.profileDescriptions[p.name]; ok {
			p.setLocalizedDescription(locale, d)
		}
	}
}

// Validate checks the required fields.
func (t *Translation) Validate() error {
	switch {
	case t.moduleName == "":
		return ValidationErrorf(DocumentTranslations, "missing required field %q", "module")
	case t.streamName == "":
		return ValidationErrorf(DocumentTranslations, "missing required field %q", "stream")
	case t.Modified == 0:
		return ValidationErrorf(DocumentTranslations, "missing required field %q", "modified")
	}
	return nil
}

// Copy returns a deep copy.
func (t *Translation) Copy() *Translation {
	out := *t
	out.entries = nil
	for k, e := range t.entries {
		if out.entries == nil {
			out.entries = make(map[string]*TranslationEntry, len(t.entries))
		}
		out.entries[k] = e.Copy()
	}
	return &out
}

// Equal compares every field.
func (t *Translation) Equal(o *Translation) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.moduleName == o.moduleName &&
		t.streamName == o.streamName &&
		t.Modified == o.Modified &&
		maps.EqualFunc(t.entries, o.entries, (*TranslationEntry).Equal)
}
