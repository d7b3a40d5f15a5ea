package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/modulemd/internal/modulemd"
)

// Subdocument is one classified YAML document awaiting a type-specific
// parser.
type Subdocument struct {
	Doctype modulemd.Doctype
	Version uint64
	// YAML is the raw text of the document, markers excluded.
	YAML string
	// Err is set when the document could not be classified or parsed.
	Err error

	root *yaml.Node
}

// NewSubdocument classifies a single YAML document. The returned error is
// also stored in the Subdocument.
func NewSubdocument(text string) (*Subdocument, error) {
	sd := classify(text)
	return sd, sd.Err
}

// Split cuts text into documents and classifies each of them. Documents
// that fail classification carry their error; the returned error joins all
// of them.
func Split(text string) ([]*Subdocument, error) {
	var (
		docs []*Subdocument
		errs []error
	)
	for _, raw := range splitDocuments(text) {
		sd := classify(raw)
		if sd.Err != nil {
			errs = append(errs, sd.Err)
		}
		docs = append(docs, sd)
	}
	return docs, errors.Join(errs...)
}

// splitDocuments cuts a YAML stream at document markers. Chunks holding
// only blank lines, comments or directives are dropped.
func splitDocuments(text string) []string {
	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if hasContent(current.String()) {
			chunks = append(chunks, current.String())
		}
		current.Reset()
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		bare := strings.TrimRight(line, "\r\n")
		switch {
		case isMarker(bare, "---"):
			flush()
			if rest := strings.TrimLeft(bare[3:], " \t"); rest != "" && !strings.HasPrefix(rest, "#") {
				current.WriteString(rest)
				current.WriteString(line[len(bare):])
			}
		case isMarker(bare, "..."):
			flush()
		default:
			current.WriteString(line)
		}
	}
	flush()
	return chunks
}

func isMarker(line, marker string) bool {
	if !strings.HasPrefix(line, marker) {
		return false
	}
	rest := line[len(marker):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

func hasContent(chunk string) bool {
	for _, line := range strings.Split(chunk, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "%") {
			return true
		}
	}
	return false
}

func classify(raw string) *Subdocument {
	sd := &Subdocument{YAML: raw}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &root); err != nil {
		sd.Err = &modulemd.Error{
			Kind:    modulemd.KindParse,
			Domain:  modulemd.DomainParser,
			Message: "malformed YAML",
			Err:     err,
		}
		return sd
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		sd.Err = parseErrorf(&root, "", "document is not a mapping")
		return sd
	}

	top := root.Content[0]
	sd.root = top
	var docNode, versionNode *yaml.Node
	seen := make(map[string]bool, len(top.Content)/2)
	for i := 0; i+1 < len(top.Content); i += 2 {
		key := top.Content[i].Value
		// A repeated classifier key would make the type ambiguous
		if seen[key] && (key == "document" || key == "version") {
			sd.Err = parseErrorf(top.Content[i], "", "duplicate key %q in document", key)
			return sd
		}
		seen[key] = true
		switch key {
		case "document":
			docNode = deref(top.Content[i+1])
		case "version":
			versionNode = deref(top.Content[i+1])
		}
	}

	if docNode == nil {
		sd.Err = parseErrorf(top, "", "missing %q key", "document")
		return sd
	}
	doctype, err := modulemd.ParseDoctype(docNode.Value)
	if err != nil || docNode.Kind != yaml.ScalarNode {
		sd.Err = parseErrorf(docNode, "", "unknown document type %q", docNode.Value)
		return sd
	}
	sd.Doctype = doctype

	if versionNode == nil {
		sd.Err = parseErrorf(top, doctype.String(), "missing %q key", "version")
		return sd
	}
	version, err := strconv.ParseUint(versionNode.Value, 10, 64)
	if err != nil || versionNode.Kind != yaml.ScalarNode {
		sd.Err = parseErrorf(versionNode, doctype.String(), "version %q is not a number", versionNode.Value)
		return sd
	}
	if !doctype.Supports(version) {
		sd.Err = parseErrorf(versionNode, doctype.String(),
			"unsupported version %d (supported: %v)", version, modulemd.SupportedVersions[doctype])
		return sd
	}
	sd.Version = version
	return sd
}

func parseErrorf(node *yaml.Node, document, format string, args ...any) *modulemd.Error {
	e := &modulemd.Error{
		Kind:     modulemd.KindParse,
		Domain:   modulemd.DomainParser,
		Document: document,
		Message:  fmt.Sprintf(format, args...),
	}
	if node != nil {
		e.Line = node.Line
	}
	return e
}
