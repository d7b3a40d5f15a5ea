package codec

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/modulemd/internal/modulemd"
)

// Emitted key order.
//
// Every document: document, version, data.
//
// modulemd data: name, stream, version, context, arch, summary,
// description, eol (v1) or servicelevels (v2), license (module, content),
// xmd, dependencies, references (community, documentation, tracker),
// profiles, api, filter, buildopts, components (rpms, modules), artifacts.
//
// modulemd-defaults data: module, modified, stream, profiles, intents.
//
// modulemd-translations data: module, stream, modified, translations.
//
// Entries of maps keyed by name (profiles, components, intents, locales)
// are emitted in name order.

// Emit writes docs to w as a YAML stream. Every document is validated
// first; nothing is written for a document that fails.
func Emit(w io.Writer, docs ...modulemd.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, doc := range docs {
		node, err := documentNode(doc)
		if err != nil {
			return err
		}
		if err := enc.Encode(node); err != nil {
			return fmt.Errorf("encode %s: %w", doc.DocumentType(), err)
		}
	}
	return enc.Close()
}

// EmitString renders docs as a YAML stream.
func EmitString(docs ...modulemd.Document) (string, error) {
	var buf bytes.Buffer
	if err := Emit(&buf, docs...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func documentNode(doc modulemd.Document) (*yaml.Node, error) {
	if doc == nil {
		return nil, modulemd.InvalidArgumentf(modulemd.DomainParser, "cannot emit a nil document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var (
		data *yaml.Node
		err  error
	)
	switch v := doc.(type) {
	case *modulemd.ModuleStream:
		data, err = streamNode(v)
	case *modulemd.Defaults:
		data = defaultsNode(v)
	case *modulemd.Translation:
		data = translationNode(v)
	}
	if err != nil {
		return nil, err
	}

	top := newMap()
	top.add("document", strNode(doc.DocumentType().String()))
	top.add("version", uintNode(doc.DocumentVersion()))
	top.add("data", data)
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{top.node}}, nil
}

// mapBuilder appends key/value pairs to a mapping node. The helpers skip
// empty values; add never does.
type mapBuilder struct {
	node *yaml.Node
}

func newMap() *mapBuilder {
	return &mapBuilder{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

func (m *mapBuilder) empty() bool { return len(m.node.Content) == 0 }

func (m *mapBuilder) add(key string, value *yaml.Node) {
	m.node.Content = append(m.node.Content, strNode(key), value)
}

func (m *mapBuilder) str(key, value string) {
	if value != "" {
		m.add(key, strNode(value))
	}
}

func (m *mapBuilder) uint(key string, value uint64) {
	if value != 0 {
		m.add(key, uintNode(value))
	}
}

func (m *mapBuilder) int(key string, value int64) {
	if value != 0 {
		m.add(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(value, 10)})
	}
}

func (m *mapBuilder) set(key string, s *modulemd.Set) {
	if s.Len() > 0 {
		m.add(key, seqNode(s.Values(), false))
	}
}

func (m *mapBuilder) sub(key string, child *mapBuilder) {
	if !child.empty() {
		m.add(key, child.node)
	}
}

// entry adds child even when it is empty, as "{}".
func (m *mapBuilder) entry(key string, child *mapBuilder) {
	if child.empty() {
		child.node.Style = yaml.FlowStyle
	}
	m.add(key, child.node)
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func uintNode(v uint64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(v, 10)}
}

func seqNode(values []string, flow bool) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if flow || len(values) == 0 {
		n.Style = yaml.FlowStyle
	}
	for _, v := range values {
		n.Content = append(n.Content, strNode(v))
	}
	return n
}

func rpmsNode(s *modulemd.Set) *mapBuilder {
	m := newMap()
	m.set("rpms", s)
	return m
}

func streamNode(s *modulemd.ModuleStream) (*yaml.Node, error) {
	data := newMap()
	data.str("name", s.ModuleName())
	data.str("stream", s.StreamName())
	data.uint("version", s.Version)
	data.str("context", s.Context)
	data.str("arch", s.Arch)
	data.str("summary", s.Summary)
	data.str("description", s.Description)

	switch s.MDVersion() {
	case modulemd.MDVersion1:
		data.str("eol", s.EOL())
	case modulemd.MDVersion2:
		if names := s.ServiceLevelNames(); len(names) > 0 {
			levels := newMap()
			for _, name := range names {
				sl, _ := s.ServiceLevel(name)
				level := newMap()
				level.str("eol", sl.EOL)
				levels.entry(name, level)
			}
			data.sub("servicelevels", levels)
		}
	}

	license := newMap()
	license.set("module", s.ModuleLicenses)
	license.set("content", s.ContentLicenses)
	data.sub("license", license)

	if xmd := s.XMD(); len(xmd) > 0 {
		node, err := modulemd.XMDNode(xmd)
		if err != nil {
			return nil, fmt.Errorf("encode xmd of %s: %w", s.NSVCA(), err)
		}
		data.add("xmd", node)
	}

	if deps := dependenciesNode(s); deps != nil {
		data.add("dependencies", deps)
	}

	refs := newMap()
	refs.str("community", s.Community)
	refs.str("documentation", s.Documentation)
	refs.str("tracker", s.Tracker)
	data.sub("references", refs)

	profiles := newMap()
	for _, name := range s.ProfileNames() {
		p := s.Profile(name)
		profile := newMap()
		profile.str("description", p.Description)
		profile.set("rpms", p.RPMs)
		profiles.entry(name, profile)
	}
	data.sub("profiles", profiles)

	data.sub("api", rpmsNode(s.RPMAPI))
	data.sub("filter", rpmsNode(s.RPMFilter))

	if !s.BuildOpts.IsEmpty() {
		rpms := newMap()
		rpms.str("macros", s.BuildOpts.RPMMacros)
		rpms.set("whitelist", s.BuildOpts.RPMWhitelist)
		opts := newMap()
		opts.sub("rpms", rpms)
		data.sub("buildopts", opts)
	}

	data.sub("components", componentsNode(s))
	data.sub("artifacts", rpmsNode(s.RPMArtifacts))
	return data.node, nil
}

func dependenciesNode(s *modulemd.ModuleStream) *yaml.Node {
	if s.MDVersion() == modulemd.MDVersion1 {
		deps := newMap()
		for _, req := range []struct {
			key string
			m   map[string]string
		}{
			{"buildrequires", s.BuildRequires()},
			{"requires", s.Requires()},
		} {
			if len(req.m) == 0 {
				continue
			}
			reqs := newMap()
			for _, module := range slices.Sorted(maps.Keys(req.m)) {
				reqs.add(module, strNode(req.m[module]))
			}
			deps.add(req.key, reqs.node)
		}
		if deps.empty() {
			return nil
		}
		return deps.node
	}

	all := s.Dependencies()
	if len(all) == 0 {
		return nil
	}
	list := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, d := range all {
		entry := newMap()
		entry.sub("buildrequires", streamsNode(d.BuildtimeModules(), d.BuildtimeStreams))
		entry.sub("requires", streamsNode(d.RuntimeModules(), d.RuntimeStreams))
		if entry.empty() {
			entry.node.Style = yaml.FlowStyle
		}
		list.Content = append(list.Content, entry.node)
	}
	return list
}

func streamsNode(modules []string, streams func(string) []string) *mapBuilder {
	m := newMap()
	for _, module := range modules {
		m.add(module, seqNode(streams(module), true))
	}
	return m
}

func componentsNode(s *modulemd.ModuleStream) *mapBuilder {
	rpms := newMap()
	for _, name := range s.RPMComponentNames() {
		c := s.RPMComponent(name)
		m := newMap()
		m.str("rationale", c.Rationale())
		m.str("repository", c.Repository)
		m.str("cache", c.Cache)
		m.str("ref", c.Ref)
		m.int("buildorder", c.Buildorder())
		m.set("arches", c.Arches)
		m.set("multilib", c.Multilib)
		rpms.entry(name, m)
	}

	modules := newMap()
	for _, name := range s.ModuleComponentNames() {
		c := s.ModuleComponent(name)
		m := newMap()
		m.str("rationale", c.Rationale())
		m.str("repository", c.Repository)
		m.str("ref", c.Ref)
		m.int("buildorder", c.Buildorder())
		modules.entry(name, m)
	}

	out := newMap()
	out.sub("rpms", rpms)
	out.sub("modules", modules)
	return out
}

func defaultsNode(d *modulemd.Defaults) *yaml.Node {
	data := newMap()
	data.str("module", d.ModuleName())
	data.uint("modified", d.Modified)
	data.str("stream", d.DefaultStream)
	data.sub("profiles", profileDefaultsNode(d.ProfileStreams(), d.ProfilesForStream))

	intents := newMap()
	for _, name := range d.IntentNames() {
		i := d.Intent(name)
		m := newMap()
		m.str("stream", i.DefaultStream)
		m.sub("profiles", profileDefaultsNode(i.ProfileStreams(), i.ProfilesForStream))
		intents.entry(name, m)
	}
	data.sub("intents", intents)
	return data.node
}

func profileDefaultsNode(streams []string, profiles func(string) ([]string, bool)) *mapBuilder {
	m := newMap()
	for _, stream := range streams {
		p, _ := profiles(stream)
		m.add(stream, seqNode(p, true))
	}
	return m
}

func translationNode(t *modulemd.Translation) *yaml.Node {
	data := newMap()
	data.str("module", t.ModuleName())
	data.str("stream", t.StreamName())
	data.uint("modified", t.Modified)

	entries := newMap()
	for _, locale := range t.Locales() {
		e := t.Entry(locale)
		m := newMap()
		m.str("summary", e.Summary)
		m.str("description", e.Description)
		profiles := newMap()
		for _, name := range e.ProfileNames() {
			desc, _ := e.ProfileDescription(name)
			profiles.add(name, strNode(desc))
		}
		m.sub("profiles", profiles)
		entries.entry(locale, m)
	}
	data.sub("translations", entries)
	return data.node
}
