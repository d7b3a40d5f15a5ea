package modulemd

import "fmt"

// MergePolicy decides which side wins when both defaults list profiles for
// the same stream. There is no default: the zero value is rejected.
type MergePolicy int

const (
	// OverrideNone takes the union of both profile sets.
	OverrideNone MergePolicy = iota + 1
	// OverrideFirst keeps the first document's set.
	OverrideFirst
	// OverrideSecond keeps the second document's set.
	OverrideSecond
)

func (p MergePolicy) String() string {
	switch p {
	case OverrideNone:
		return "none"
	case OverrideFirst:
		return "first"
	case OverrideSecond:
		return "second"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseMergePolicy maps "none", "first" and "second" to a MergePolicy.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch s {
	case "none":
		return OverrideNone, nil
	case "first":
		return OverrideFirst, nil
	case "second":
		return OverrideSecond, nil
	default:
		return 0, InvalidArgumentf(DomainMerger, "unknown merge policy %q", s)
	}
}

func (p MergePolicy) valid() bool {
	return p >= OverrideNone && p <= OverrideSecond
}

// MergeDefaults combines two defaults documents of the same module into a
// new one. Neither input is modified.
//
// Differing default streams are a conflict whatever the policy. Profile
// sets of a stream present on both sides are unioned under OverrideNone,
// otherwise the side named by the policy wins. Intents merge by name with
// the same rules, and Modified becomes the newer of the two stamps.
func MergeDefaults(first, second *Defaults, policy MergePolicy) (*Defaults, error) {
	if first == nil || second == nil {
		return nil, InvalidArgumentf(DomainMerger, "cannot merge nil defaults")
	}
	if !policy.valid() {
		return nil, InvalidArgumentf(DomainMerger, "invalid merge policy %s", policy)
	}
	if first.moduleName != second.moduleName {
		return nil, InvalidArgumentf(DomainMerger,
			"cannot merge defaults of different modules %q and %q",
			first.moduleName, second.moduleName)
	}

	module := first.moduleName
	stream, err := mergeDefaultStream(module, first.DefaultStream, second.DefaultStream)
	if err != nil {
		return nil, err
	}

	merged := &Defaults{
		moduleName:    module,
		DefaultStream: stream,
		Modified:      max(first.Modified, second.Modified),
		profiles:      mergeProfileDefaults(first.profiles, second.profiles, policy),
	}

	for name, a := range first.intents {
		b, shared := second.intents[name]
		if !shared {
			merged.setIntent(a.Copy())
			continue
		}
		intent, err := mergeIntent(module, a, b, policy)
		if err != nil {
			return nil, wrapContext(err, "intent %q", name)
		}
		merged.setIntent(intent)
	}
	for name, b := range second.intents {
		if _, shared := first.intents[name]; !shared {
			merged.setIntent(b.Copy())
		}
	}

	return merged, nil
}

func (d *Defaults) setIntent(i *Intent) {
	if d.intents == nil {
		d.intents = make(map[string]*Intent)
	}
	d.intents[i.name] = i
}

func mergeIntent(module string, a, b *Intent, policy MergePolicy) (*Intent, error) {
	stream, err := mergeDefaultStream(module, a.DefaultStream, b.DefaultStream)
	if err != nil {
		return nil, err
	}
	return &Intent{
		name:          a.name,
		DefaultStream: stream,
		profiles:      mergeProfileDefaults(a.profiles, b.profiles, policy),
	}, nil
}

func mergeDefaultStream(module, a, b string) (string, error) {
	switch {
	case a == "":
		return b, nil
	case b == "" || a == b:
		return a, nil
	default:
		return "", ConflictErrorf(
			"module %q has conflicting default streams %q and %q", module, a, b)
	}
}

func mergeProfileDefaults(a, b profileDefaults, policy MergePolicy) profileDefaults {
	if a == nil && b == nil {
		return nil
	}
	out := make(profileDefaults, len(a)+len(b))
	for stream, s := range a {
		out[stream] = s.Copy()
	}
	for stream, s := range b {
		existing, shared := out[stream]
		switch {
		case !shared:
			out[stream] = s.Copy()
		case policy == OverrideFirst:
			// keep
		case policy == OverrideSecond:
			out[stream] = s.Copy()
		default:
			out[stream] = Union(existing, s)
		}
	}
	return out
}
