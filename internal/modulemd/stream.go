package modulemd

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ServiceLevel is a named support period of a version 2 stream.
type ServiceLevel struct {
	Name string
	// EOL is the end of the service level as YYYY-MM-DD, or empty.
	EOL string
}

// BuildOpts carries build instructions. They are stored, never interpreted.
type BuildOpts struct {
	RPMMacros    string
	RPMWhitelist *Set
}

// Copy returns a deep copy.
func (b *BuildOpts) Copy() *BuildOpts {
	if b == nil {
		return nil
	}
	return &BuildOpts{RPMMacros: b.RPMMacros, RPMWhitelist: b.RPMWhitelist.Copy()}
}

// Equal compares both fields. A nil BuildOpts equals an empty one.
func (b *BuildOpts) Equal(o *BuildOpts) bool {
	return b.macros() == o.macros() && b.whitelist().Equal(o.whitelist())
}

// IsEmpty reports whether there is nothing to emit.
func (b *BuildOpts) IsEmpty() bool {
	return b.macros() == "" && b.whitelist().Len() == 0
}

func (b *BuildOpts) macros() string {
	if b == nil {
		return ""
	}
	return b.RPMMacros
}

func (b *BuildOpts) whitelist() *Set {
	if b == nil {
		return nil
	}
	return b.RPMWhitelist
}

// StreamKey identifies a stream within its module.
type StreamKey struct {
	Stream  string
	Version uint64
	Context string
	Arch    string
}

func compareStreamKeys(a, b StreamKey) int {
	return cmp.Or(
		cmp.Compare(a.Stream, b.Stream),
		cmp.Compare(a.Version, b.Version),
		cmp.Compare(a.Context, b.Context),
		cmp.Compare(a.Arch, b.Arch),
	)
}

// ModuleStream is one stream of a module. Its metadata version is fixed at
// construction and decides which fields may be set.
type ModuleStream struct {
	mdversion  MDVersion
	moduleName string
	streamName string

	Version     uint64
	Context     string
	Arch        string
	Summary     string
	Description string

	ModuleLicenses  *Set
	ContentLicenses *Set

	Community     string
	Documentation string
	Tracker       string

	RPMAPI       *Set
	RPMFilter    *Set
	RPMArtifacts *Set
	BuildOpts    *BuildOpts

	profiles         map[string]*Profile
	rpmComponents    map[string]*RPMComponent
	moduleComponents map[string]*ModuleComponent

	// version 1
	eol           string
	buildRequires map[string]string
	requires      map[string]string

	// version 2
	serviceLevels map[string]ServiceLevel
	dependencies  []*Dependencies

	// opaque, normalized by SetXMD
	xmd map[string]any

	translation *Translation
}

// NewModuleStream returns an empty stream of the given metadata version.
func NewModuleStream(mdversion MDVersion, module, stream string) (*ModuleStream, error) {
	if _, err := ParseMDVersion(uint64(mdversion)); err != nil {
		return nil, err
	}
	return &ModuleStream{
		mdversion:       mdversion,
		moduleName:      module,
		streamName:      stream,
		ModuleLicenses:  NewSet(),
		ContentLicenses: NewSet(),
		RPMAPI:          NewSet(),
		RPMFilter:       NewSet(),
		RPMArtifacts:    NewSet(),
	}, nil
}

func (s *ModuleStream) DocumentType() Doctype   { return DoctypeModule }
func (s *ModuleStream) DocumentVersion() uint64 { return uint64(s.mdversion) }
func (s *ModuleStream) ModuleName() string      { return s.moduleName }
func (s *ModuleStream) isDocument()             {}

// MDVersion returns the metadata version.
func (s *ModuleStream) MDVersion() MDVersion { return s.mdversion }

// StreamName returns the stream name.
func (s *ModuleStream) StreamName() string { return s.streamName }

// SetModuleName sets the owning module's name.
func (s *ModuleStream) SetModuleName(name string) { s.moduleName = name }

// SetStreamName sets the stream name.
func (s *ModuleStream) SetStreamName(name string) { s.streamName = name }

// Key returns the identity of the stream within its module.
func (s *ModuleStream) Key() StreamKey {
	return StreamKey{Stream: s.streamName, Version: s.Version, Context: s.Context, Arch: s.Arch}
}

// NSVCA renders name:stream:version:context:arch, dropping trailing empty
// parts.
func (s *ModuleStream) NSVCA() string {
	parts := []string{s.moduleName, s.streamName, "", s.Context, s.Arch}
	if s.Version != 0 {
		parts[2] = strconv.FormatUint(s.Version, 10)
	}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ":")
}

func (s *ModuleStream) requireVersion(v MDVersion, field string) error {
	if s.mdversion != v {
		return ValidationErrorf(DocumentModule,
			"field %q is not valid in version %d", field, s.mdversion)
	}
	return nil
}

// SetEOL sets the version 1 end-of-life date.
func (s *ModuleStream) SetEOL(eol string) error {
	if err := s.requireVersion(MDVersion1, "eol"); err != nil {
		return err
	}
	s.eol = eol
	return nil
}

// EOL returns the version 1 end-of-life date.
func (s *ModuleStream) EOL() string { return s.eol }

// SetXMD replaces the extensible metadata. Values are normalized to the
// types a parsed document carries, so an emitted stream parses back equal.
func (s *ModuleStream) SetXMD(xmd map[string]any) error {
	norm, err := NormalizeXMD(xmd)
	if err != nil {
		return ValidationErrorf(DocumentModule, "invalid xmd: %v", err)
	}
	s.xmd = norm
	return nil
}

// XMD returns a copy of the extensible metadata.
func (s *ModuleStream) XMD() map[string]any { return copyXMD(s.xmd) }

// AddBuildRequires records a version 1 build-time dependency.
func (s *ModuleStream) AddBuildRequires(module, stream string) error {
	if err := s.requireVersion(MDVersion1, "buildrequires"); err != nil {
		return err
	}
	if s.buildRequires == nil {
		s.buildRequires = make(map[string]string)
	}
	s.buildRequires[module] = stream
	return nil
}

// AddRequires records a version 1 run-time dependency.
func (s *ModuleStream) AddRequires(module, stream string) error {
	if err := s.requireVersion(MDVersion1, "requires"); err != nil {
		return err
	}
	if s.requires == nil {
		s.requires = make(map[string]string)
	}
	s.requires[module] = stream
	return nil
}

// BuildRequires returns the version 1 build-time dependencies.
func (s *ModuleStream) BuildRequires() map[string]string { return copyStringMap(s.buildRequires) }

// Requires returns the version 1 run-time dependencies.
func (s *ModuleStream) Requires() map[string]string { return copyStringMap(s.requires) }

// AddServiceLevel stores a version 2 service level, replacing one with the
// same name.
func (s *ModuleStream) AddServiceLevel(sl ServiceLevel) error {
	if err := s.requireVersion(MDVersion2, "servicelevels"); err != nil {
		return err
	}
	if sl.Name == "" {
		return InvalidArgumentf(DomainModel, "service level name must not be empty")
	}
	if s.serviceLevels == nil {
		s.serviceLevels = make(map[string]ServiceLevel)
	}
	s.serviceLevels[sl.Name] = sl
	return nil
}

// ServiceLevel returns the named service level.
func (s *ModuleStream) ServiceLevel(name string) (ServiceLevel, bool) {
	sl, ok := s.serviceLevels[name]
	return sl, ok
}

// ServiceLevelNames lists service levels in order.
func (s *ModuleStream) ServiceLevelNames() []string {
	return slices.Sorted(maps.Keys(s.serviceLevels))
}

// AddDependencies appends a copy of deps to the version 2 dependency list.
func (s *ModuleStream) AddDependencies(deps *Dependencies) error {
	if err := s.requireVersion(MDVersion2, "dependencies"); err != nil {
		return err
	}
	if deps == nil {
		return InvalidArgumentf(DomainModel, "dependencies must not be nil")
	}
	s.dependencies = append(s.dependencies, deps.Copy())
	return nil
}

// Dependencies returns copies of the version 2 dependency entries.
func (s *ModuleStream) Dependencies() []*Dependencies {
	out := make([]*Dependencies, len(s.dependencies))
	for i, d := range s.dependencies {
		out[i] = d.Copy()
	}
	return out
}

// ClearDependencies removes every dependency, of either version.
func (s *ModuleStream) ClearDependencies() {
	s.dependencies = nil
	s.buildRequires = nil
	s.requires = nil
}

// AddProfile stores a copy of p, replacing a profile with the same name.
func (s *ModuleStream) AddProfile(p *Profile) error {
	if p == nil {
		return InvalidArgumentf(DomainModel, "profile must not be nil")
	}
	if p.name == "" {
		return InvalidArgumentf(DomainModel, "profile name must not be empty")
	}
	if s.profiles == nil {
		s.profiles = make(map[string]*Profile)
	}
	c := p.Copy()
	s.profiles[p.name] = c
	if s.translation != nil {
		s.translation.applyToProfile(c)
	}
	return nil
}

// Profile returns a copy of the named profile, or nil.
func (s *ModuleStream) Profile(name string) *Profile {
	p, ok := s.profiles[name]
	if !ok {
		return nil
	}
	return p.Copy()
}

// ProfileNames lists profiles in order.
func (s *ModuleStream) ProfileNames() []string {
	return slices.Sorted(maps.Keys(s.profiles))
}

// AddComponent stores a copy of c, replacing a component of the same kind
// and name.
func (s *ModuleStream) AddComponent(c Component) error {
	if c == nil {
		return InvalidArgumentf(DomainModel, "component must not be nil")
	}
	if c.Name() == "" {
		return InvalidArgumentf(DomainModel, "component name must not be empty")
	}
	switch v := c.(type) {
	case *RPMComponent:
		if s.rpmComponents == nil {
			s.rpmComponents = make(map[string]*RPMComponent)
		}
		s.rpmComponents[v.name] = v.Copy()
	case *ModuleComponent:
		if s.moduleComponents == nil {
			s.moduleComponents = make(map[string]*ModuleComponent)
		}
		s.moduleComponents[v.name] = v.Copy()
	}
	return nil
}

// RPMComponent returns a copy of the named RPM component, or nil.
func (s *ModuleStream) RPMComponent(name string) *RPMComponent {
	c, ok := s.rpmComponents[name]
	if !ok {
		return nil
	}
	return c.Copy()
}

// ModuleComponent returns a copy of the named module component, or nil.
func (s *ModuleStream) ModuleComponent(name string) *ModuleComponent {
	c, ok := s.moduleComponents[name]
	if !ok {
		return nil
	}
	return c.Copy()
}

// RPMComponentNames lists RPM components in order.
func (s *ModuleStream) RPMComponentNames() []string {
	return slices.Sorted(maps.Keys(s.rpmComponents))
}

// ModuleComponentNames lists module components in order.
func (s *ModuleStream) ModuleComponentNames() []string {
	return slices.Sorted(maps.Keys(s.moduleComponents))
}

// Components returns copies of every component, RPMs first, each kind in
// name order.
func (s *ModuleStream) Components() []Component {
	out := make([]Component, 0, len(s.rpmComponents)+len(s.moduleComponents))
	for _, name := range s.RPMComponentNames() {
		out = append(out, s.rpmComponents[name].Copy())
	}
	for _, name := range s.ModuleComponentNames() {
		out = append(out, s.moduleComponents[name].Copy())
	}
	return out
}

// LocalizedSummary returns the translated summary for locale, falling back
// to Summary.
func (s *ModuleStream) LocalizedSummary(locale string) string {
	if e := s.translationEntry(locale); e != nil && e.Summary != "" {
		return e.Summary
	}
	return s.Summary
}

// LocalizedDescription returns the translated description for locale,
// falling back to Description.
func (s *ModuleStream) LocalizedDescription(locale string) string {
	if e := s.translationEntry(locale); e != nil && e.Description != "" {
		return e.Description
	}
	return s.Description
}

func (s *ModuleStream) translationEntry(locale string) *TranslationEntry {
	if s.translation == nil {
		return nil
	}
	return s.translation.match(locale)
}

// associateTranslation attaches t as the translation overlay of the stream
// and its profiles. t is owned by the caller's module.
func (s *ModuleStream) associateTranslation(t *Translation) {
	s.translation = t
	for _, p := range s.profiles {
		p.descriptions = nil
		if t != nil {
			t.applyToProfile(p)
		}
	}
}

// Validate checks required fields and version-specific constraints.
func (s *ModuleStream) Validate() error {
	if _, err := ParseMDVersion(uint64(s.mdversion)); err != nil {
		return ValidationErrorf(DocumentModule, "unsupported version %d", s.mdversion)
	}
	switch {
	case s.Summary == "":
		return ValidationErrorf(DocumentModule, "missing required field %q", "summary")
	case s.Description == "":
		return ValidationErrorf(DocumentModule, "missing required field %q", "description")
	case s.ModuleLicenses.Len() == 0:
		return ValidationErrorf(DocumentModule, "missing required field %q", "license.module")
	}
	for _, sl := range s.serviceLevels {
		if sl.EOL != "" && !isDate(sl.EOL) {
			return ValidationErrorf(DocumentModule,
				"service level %q has invalid eol %q", sl.Name, sl.EOL)
		}
	}
	if s.eol != "" && !isDate(s.eol) {
		return ValidationErrorf(DocumentModule, "invalid eol %q", s.eol)
	}
	return nil
}

// Copy returns a deep copy. The translation overlay is shared with the
// owning module and is copied by reference.
func (s *ModuleStream) Copy() *ModuleStream {
	out := *s
	out.ModuleLicenses = s.ModuleLicenses.Copy()
	out.ContentLicenses = s.ContentLicenses.Copy()
	out.xmd = copyXMD(s.xmd)
	out.RPMAPI = s.RPMAPI.Copy()
	out.RPMFilter = s.RPMFilter.Copy()
	out.RPMArtifacts = s.RPMArtifacts.Copy()
	out.BuildOpts = s.BuildOpts.Copy()
	out.buildRequires = copyStringMap(s.buildRequires)
	out.requires = copyStringMap(s.requires)
	out.serviceLevels = maps.Clone(s.serviceLevels)
	out.dependencies = s.Dependencies()
	if s.dependencies == nil {
		out.dependencies = nil
	}

	out.profiles = nil
	for name, p := range s.profiles {
		if out.profiles == nil {
			out.profiles = make(map[string]*Profile, len(s.profiles))
		}
		out.profiles[name] = p.Copy()
	}
	out.rpmComponents = nil
	for name, c := range s.rpmComponents {
		if out.rpmComponents == nil {
			out.rpmComponents = make(map[string]*RPMComponent, len(s.rpmComponents))
		}
		out.rpmComponents[name] = c.Copy()
	}
	out.moduleComponents = nil
	for name, c := range s.moduleComponents {
		if out.moduleComponents == nil {
			out.moduleComponents = make(map[string]*ModuleComponent, len(s.moduleComponents))
		}
		out.moduleComponents[name] = c.Copy()
	}
	return &out
}

// Equal compares every document field. Translation overlays are ignored.
func (s *ModuleStream) Equal(o *ModuleStream) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.mdversion != o.mdversion ||
		s.moduleName != o.moduleName ||
		s.streamName != o.streamName ||
		s.Version != o.Version ||
		s.Context != o.Context ||
		s.Arch != o.Arch ||
		s.Summary != o.Summary ||
		s.Description != o.Description ||
		s.Community != o.Community ||
		s.Documentation != o.Documentation ||
		s.Tracker != o.Tracker ||
		s.eol != o.eol {
		return false
	}
	if !s.ModuleLicenses.Equal(o.ModuleLicenses) ||
		!s.ContentLicenses.Equal(o.ContentLicenses) ||
		!s.RPMAPI.Equal(o.RPMAPI) ||
		!s.RPMFilter.Equal(o.RPMFilter) ||
		!s.RPMArtifacts.Equal(o.RPMArtifacts) ||
		!s.BuildOpts.Equal(o.BuildOpts) ||
		!equalXMD(s.xmd, o.xmd) ||
		!equalStringMap(s.buildRequires, o.buildRequires) ||
		!equalStringMap(s.requires, o.requires) ||
		!maps.Equal(s.serviceLevels, o.serviceLevels) {
		return false
	}
	if !slices.EqualFunc(s.dependencies, o.dependencies, (*Dependencies).Equal) {
		return false
	}
	if !maps.EqualFunc(s.profiles, o.profiles, (*Profile).Equal) ||
		!maps.EqualFunc(s.rpmComponents, o.rpmComponents, (*RPMComponent).Equal) ||
		!maps.EqualFunc(s.moduleComponents, o.moduleComponents, (*ModuleComponent).Equal) {
		return false
	}
	return true
}

func (s *ModuleStream) String() string {
	return fmt.Sprintf("%s (modulemd v%d)", s.NSVCA(), s.mdversion)
}

// isDate reports whether v looks like YYYY-MM-DD.
func isDate(v string) bool {
	if len(v) != 10 || v[4] != '-' || v[7] != '-' {
		return false
	}
	for i, r := range v {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
