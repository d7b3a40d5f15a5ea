package modulemd

// Dependencies is one alternative set of build-time and run-time module
// requirements of a version 2 stream. Each required module maps to the
// streams that satisfy it; an empty set means any stream.
type Dependencies struct {
	buildRequires map[string]*Set
	requires      map[string]*Set
}

// NewDependencies returns an empty dependency set.
func NewDependencies() *Dependencies {
	return &Dependencies{}
}

// AddBuildtimeStream adds streams of module to the build requirements.
// Calling it without streams records the module with an empty set.
func (d *Dependencies) AddBuildtimeStream(module string, streams ...string) {
	d.buildRequires = addDependency(d.buildRequires, module, streams)
}

// AddRuntimeStream adds streams of module to the run-time requirements.
func (d *Dependencies) AddRuntimeStream(module string, streams ...string) {
	d.requires = addDependency(d.requires, module, streams)
}

// BuildtimeModules lists the modules required at build time.
func (d *Dependencies) BuildtimeModules() []string { return sortedKeys(d.buildRequires) }

// RuntimeModules lists the modules required at run time.
func (d *Dependencies) RuntimeModules() []string { return sortedKeys(d.requires) }

// BuildtimeStreams returns the acceptable build-time streams of module.
func (d *Dependencies) BuildtimeStreams(module string) []string {
	return d.buildRequires[module].Values()
}

// RuntimeStreams returns the acceptable run-time streams of module.
func (d *Dependencies) RuntimeStreams(module string) []string {
	return d.requires[module].Values()
}

// Copy returns a deep copy.
func (d *Dependencies) Copy() *Dependencies {
	return &Dependencies{
		buildRequires: copySetMap(d.buildRequires),
		requires:      copySetMap(d.requires),
	}
}

// Equal compares both requirement maps.
func (d *Dependencies) Equal(o *Dependencies) bool {
	if d == nil || o == nil {
		return d == o
	}
	return equalSetMap(d.buildRequires, o.buildRequires) &&
		equalSetMap(d.requires, o.requires)
}

func addDependency(m map[string]*Set, module string, streams []string) map[string]*Set {
	if m == nil {
		m = make(map[string]*Set)
	}
	s, ok := m[module]
	if !ok {
		s = NewSet()
		m[module] = s
	}
	s.Add(streams...)
	return m
}

func copySetMap(m map[string]*Set) map[string]*Set {
	return map[string]*Set(profileDefaults(m).copy())
}

func equalSetMap(a, b map[string]*Set) bool {
	return profileDefaults(a).equal(profileDefaults(b))
}
