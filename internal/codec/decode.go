package codec

import (
	"log/slog"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/modulemd/internal/modulemd"
)

// decoder carries the settings shared by the document parsers.
type decoder struct {
	strict   bool
	logger   *slog.Logger
	document string
}

func deref(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

func (d *decoder) errorf(node *yaml.Node, format string, args ...any) error {
	return parseErrorf(node, d.document, format, args...)
}

// unknown rejects key in strict mode and logs it otherwise.
func (d *decoder) unknown(node *yaml.Node, section, key string) error {
	if d.strict {
		return d.errorf(node, "unexpected key %q in %s", key, section)
	}
	d.logger.Debug("ignoring unknown key",
		"document", d.document, "section", section, "key", key, "line", node.Line)
	return nil
}

// mapping calls fn for each key of a mapping node in document order.
// A null node is an empty mapping.
func (d *decoder) mapping(node *yaml.Node, section string, fn func(key string, value *yaml.Node) error) error {
	node = deref(node)
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return d.errorf(node, "%s must be a mapping", section)
	}
	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := deref(node.Content[i])
		if keyNode.Kind != yaml.ScalarNode {
			return d.errorf(keyNode, "%s has a non-scalar key", section)
		}
		key := keyNode.Value
		if _, dup := seen[key]; dup {
			return d.errorf(keyNode, "duplicate key %q in %s", key, section)
		}
		seen[key] = struct{}{}
		if err := fn(key, deref(node.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) str(node *yaml.Node) (string, error) {
	if isNull(node) {
		return "", nil
	}
	if node.Kind != yaml.ScalarNode {
		return "", d.errorf(node, "expected a scalar value")
	}
	return node.Value, nil
}

func (d *decoder) uint(node *yaml.Node) (uint64, error) {
	v, err := strconv.ParseUint(node.Value, 10, 64)
	if err != nil || node.Kind != yaml.ScalarNode {
		return 0, d.errorf(node, "%q is not an unsigned integer", node.Value)
	}
	return v, nil
}

func (d *decoder) int(node *yaml.Node) (int64, error) {
	v, err := strconv.ParseInt(node.Value, 10, 64)
	if err != nil || node.Kind != yaml.ScalarNode {
		return 0, d.errorf(node, "%q is not an integer", node.Value)
	}
	return v, nil
}

// set reads a sequence of scalars. A null node is an empty set.
func (d *decoder) set(node *yaml.Node, section string) (*modulemd.Set, error) {
	out := modulemd.NewSet()
	if isNull(node) {
		return out, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, d.errorf(node, "%s must be a list", section)
	}
	for _, item := range node.Content {
		v, err := d.str(deref(item))
		if err != nil {
			return nil, err
		}
		out.Add(v)
	}
	return out, nil
}

// rpmSet reads a mapping whose only key is "rpms", as used by api, filter
// and artifacts.
func (d *decoder) rpmSet(node *yaml.Node, section string) (*modulemd.Set, error) {
	out := modulemd.NewSet()
	err := d.mapping(node, section, func(key string, value *yaml.Node) error {
		if key != "rpms" {
			return d.unknown(value, section, key)
		}
		s, err := d.set(value, section+".rpms")
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

// xmd decodes an opaque mapping.
func (d *decoder) xmd(node *yaml.Node) (map[string]any, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, d.errorf(node, "xmd must be a mapping")
	}
	var out map[string]any
	if err := node.Decode(&out); err != nil {
		return nil, d.errorf(node, "decode xmd: %v", err)
	}
	return out, nil
}

// invalid wraps a failed Validate of a finished document.
func (d *decoder) invalid(node *yaml.Node, err error) error {
	e := parseErrorf(node, d.document, "invalid document")
	e.Err = err
	return e
}
