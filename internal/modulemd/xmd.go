package modulemd

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// NormalizeXMD returns xmd as the YAML decoder would produce it: nested
// maps become map[string]any, slices become []any, integers become int
// and floats stay float64. Values that cannot be represented in YAML are
// rejected.
func NormalizeXMD(xmd map[string]any) (map[string]any, error) {
	if len(xmd) == 0 {
		return nil, nil
	}
	node, err := XMDNode(xmd)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := node.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode xmd: %w", err)
	}
	return out, nil
}

// XMDNode renders xmd as a YAML mapping node with keys in sorted order.
// Whole-number floats keep a fractional part so they decode as floats.
func XMDNode(xmd map[string]any) (*yaml.Node, error) {
	return xmdValueNode(xmd)
}

func xmdValueNode(value any) (*yaml.Node, error) {
	switch v := value.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case float64:
		return floatNode(v, 64), nil
	case float32:
		return floatNode(float64(v), 32), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return nil, fmt.Errorf("%T cannot be represented in YAML", value)
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			break
		}
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		for _, k := range keys {
			child, err := xmdValueNode(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, fmt.Errorf("xmd key %q: %w", k, err)
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		}
		return node, nil
	case reflect.Slice, reflect.Array:
		// []byte is a binary scalar, not a sequence
		if rv.Type().Elem().Kind() == reflect.Uint8 || (rv.Kind() == reflect.Slice && rv.IsNil()) {
			break
		}
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i := 0; i < rv.Len(); i++ {
			child, err := xmdValueNode(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("xmd item %d: %w", i, err)
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	}

	var node yaml.Node
	if err := node.Encode(value); err != nil {
		return nil, fmt.Errorf("encode xmd value %T: %w", value, err)
	}
	return &node, nil
}

func floatNode(f float64, bits int) *yaml.Node {
	var s string
	switch {
	case math.IsInf(f, 1):
		s = ".inf"
	case math.IsInf(f, -1):
		s = "-.inf"
	case math.IsNaN(f):
		s = ".nan"
	default:
		s = strconv.FormatFloat(f, 'g', -1, bits)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
}

// copyValue deep-copies a normalized xmd value. Scalars are immutable
// and returned as-is.
func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = copyValue(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = copyValue(val)
		}
		return out
	default:
		return value
	}
}

func copyXMD(xmd map[string]any) map[string]any {
	if xmd == nil {
		return nil
	}
	return copyValue(xmd).(map[string]any)
}

// equalXMD compares two normalized xmd maps. NaN never equals itself, as
// in YAML.
func equalXMD(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
