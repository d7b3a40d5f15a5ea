package modulemd

import "fmt"

// ComponentKind is the variant tag of a Component.
type ComponentKind int

const (
	ComponentRPM ComponentKind = iota + 1
	ComponentModule
)

func (k ComponentKind) String() string {
	switch k {
	case ComponentRPM:
		return "rpm"
	case ComponentModule:
		return "module"
	default:
		return fmt.Sprintf("component(%d)", int(k))
	}
}

// ParseComponentKind accepts the singular and the plural YAML spelling.
func ParseComponentKind(s string) (ComponentKind, error) {
	switch s {
	case "rpm", "rpms":
		return ComponentRPM, nil
	case "module", "modules":
		return ComponentModule, nil
	default:
		return 0, InvalidArgumentf(DomainModel, "unknown component kind %q", s)
	}
}

// Component is a build component of a module stream. It is a closed sum
// type: the only implementations are *RPMComponent and *ModuleComponent.
type Component interface {
	Kind() ComponentKind
	Name() string
	Rationale() string
	SetRationale(rationale string)
	Buildorder() int64
	SetBuildorder(order int64)

	copyComponent() Component
	equalComponent(other Component) bool
}

// NewComponent constructs an empty component of the given kind.
func NewComponent(kind ComponentKind, name string) (Component, error) {
	if name == "" {
		return nil, InvalidArgumentf(DomainModel, "component name must not be empty")
	}
	switch kind {
	case ComponentRPM:
		return NewRPMComponent(name), nil
	case ComponentModule:
		return NewModuleComponent(name), nil
	default:
		return nil, InvalidArgumentf(DomainModel, "unknown component kind %d", int(kind))
	}
}

// CopyComponent returns a deep copy of c.
func CopyComponent(c Component) Component {
	if c == nil {
		return nil
	}
	return c.copyComponent()
}

// EqualComponents reports whether a and b are the same variant with equal
// fields.
func EqualComponents(a, b Component) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.equalComponent(b)
}

type componentBase struct {
	name       string
	rationale  string
	buildorder int64
}

func (c *componentBase) Name() string                  { return c.name }
func (c *componentBase) Rationale() string             { return c.rationale }
func (c *componentBase) SetRationale(rationale string) { c.rationale = rationale }
func (c *componentBase) Buildorder() int64             { return c.buildorder }
func (c *componentBase) SetBuildorder(order int64)     { c.buildorder = order }

// RPMComponent is a package built as part of the stream.
type RPMComponent struct {
	componentBase

	Repository string
	Cache      string
	Ref        string
	Arches     *Set
	Multilib   *Set
}

// NewRPMComponent returns an RPM component named name.
func NewRPMComponent(name string) *RPMComponent {
	return &RPMComponent{
		componentBase: componentBase{name: name},
		Arches:        NewSet(),
		Multilib:      NewSet(),
	}
}

func (c *RPMComponent) Kind() ComponentKind { return ComponentRPM }

// Copy returns a deep copy.
func (c *RPMComponent) Copy() *RPMComponent {
	out := *c
	out.Arches = c.Arches.Copy()
	out.Multilib = c.Multilib.Copy()
	return &out
}

// Equal compares every field.
func (c *RPMComponent) Equal(o *RPMComponent) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.componentBase == o.componentBase &&
		c.Repository == o.Repository &&
		c.Cache == o.Cache &&
		c.Ref == o.Ref &&
		c.Arches.Equal(o.Arches) &&
		c.Multilib.Equal(o.Multilib)
}

func (c *RPMComponent) copyComponent() Component { return c.Copy() }

func (c *RPMComponent) equalComponent(other Component) bool {
	o, ok := other.(*RPMComponent)
	return ok && c.Equal(o)
}

// ModuleComponent is another module built into the stream.
type ModuleComponent struct {
	componentBase

	Repository string
	Ref        string
}

// NewModuleComponent returns a module component named name.
func NewModuleComponent(name string) *ModuleComponent {
	return &ModuleComponent{componentBase: componentBase{name: name}}
}

func (c *ModuleComponent) Kind() ComponentKind { return ComponentModule }

// Copy returns a copy.
func (c *ModuleComponent) Copy() *ModuleComponent {
	out := *c
	return &out
}

// Equal compares every field.
func (c *ModuleComponent) Equal(o *ModuleComponent) bool {
	if c == nil || o == nil {
		return c == o
	}
	return *c == *o
}

func (c *ModuleComponent) copyComponent() Component { return c.Copy() }

func (c *ModuleComponent) equalComponent(other Component) bool {
	o, ok := other.(*ModuleComponent)
	return ok && c.Equal(o)
}
