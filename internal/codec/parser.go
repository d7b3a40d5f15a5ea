package codec

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/modulemd/internal/modulemd"
	"github.com/cameronsjo/modulemd/internal/trace"
)

// DocumentObserver is implemented by observers that also want one call per
// parsed document.
type DocumentObserver interface {
	ObserveDocument(doctype string, err error)
}

// Parser turns YAML text into typed documents.
type Parser struct {
	strict   bool
	logger   *slog.Logger
	observer trace.Observer
}

// NewParser creates a parser in strict mode.
func NewParser() *Parser {
	return &Parser{
		strict: true,
		logger: trace.Discard(),
	}
}

// WithStrictMode sets whether unknown keys are rejected (true) or ignored.
func (p *Parser) WithStrictMode(strict bool) *Parser {
	p.strict = strict
	return p
}

// WithLogger sets the logger for debug output.
func (p *Parser) WithLogger(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = trace.Discard()
	}
	p.logger = logger
	return p
}

// WithObserver sets the observer notified of parse operations.
func (p *Parser) WithObserver(observer trace.Observer) *Parser {
	p.observer = observer
	return p
}

// Strict reports whether unknown keys are rejected.
func (p *Parser) Strict() bool { return p.strict }

// Result holds the outcome of parsing a YAML stream.
type Result struct {
	// Documents are the successfully parsed documents in input order.
	Documents []modulemd.Document
	// Failures are the documents that failed, each with its Err set.
	Failures []*Subdocument
}

// Err joins the errors of every failed document.
func (r *Result) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f.Err
	}
	return errors.Join(errs...)
}

// ParseString parses every document in text. Failed documents are reported
// in Result.Failures and never yield a partial object.
func (p *Parser) ParseString(text string) *Result {
	var err error
	span := trace.Begin(p.logger, p.observer, "codec.parse", "bytes", len(text))
	defer span.End(&err)

	res := &Result{}
	subdocs, _ := Split(text)
	for _, sd := range subdocs {
		doc, perr := p.ParseSubdocument(sd)
		if perr != nil {
			sd.Err = perr
			res.Failures = append(res.Failures, sd)
			continue
		}
		res.Documents = append(res.Documents, doc)
	}
	err = res.Err()
	return res
}

// ParseReader reads r to the end and parses it.
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml: %w", err)
	}
	return p.ParseString(string(data)), nil
}

// ParseSubdocument parses a classified document.
func (p *Parser) ParseSubdocument(sd *Subdocument) (doc modulemd.Document, err error) {
	defer func() { p.observeDocument(sd, err) }()

	if sd.Err != nil {
		return nil, sd.Err
	}
	if sd.root == nil {
		classified := classify(sd.YAML)
		if classified.Err != nil {
			return nil, classified.Err
		}
		*sd = *classified
	}

	d := &decoder{strict: p.strict, logger: p.logger, document: sd.Doctype.String()}
	var data *yaml.Node
	err = d.mapping(sd.root, "document", func(key string, value *yaml.Node) error {
		switch key {
		case "document", "version":
			return nil
		case "data":
			data = value
			return nil
		default:
			return d.unknown(value, "document", key)
		}
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, d.errorf(sd.root, "missing %q section", "data")
	}

	switch sd.Doctype {
	case modulemd.DoctypeModule:
		s, err := d.moduleStream(data, modulemd.MDVersion(sd.Version))
		if err != nil {
			return nil, err
		}
		return s, nil
	case modulemd.DoctypeDefaults:
		def, err := d.defaults(data)
		if err != nil {
			return nil, err
		}
		return def, nil
	case modulemd.DoctypeTranslations:
		t, err := d.translation(data)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, d.errorf(sd.root, "unknown document type %s", sd.Doctype)
	}
}

func (p *Parser) observeDocument(sd *Subdocument, err error) {
	o, ok := p.observer.(DocumentObserver)
	if !ok {
		return
	}
	doctype := ""
	if sd.Doctype != 0 {
		doctype = sd.Doctype.String()
	}
	o.ObserveDocument(doctype, err)
}

// ParseModuleStream parses text holding exactly one module stream.
func (p *Parser) ParseModuleStream(text string) (*modulemd.ModuleStream, error) {
	return parseOne[*modulemd.ModuleStream](p, text, modulemd.DoctypeModule)
}

// ParseDefaults parses text holding exactly one defaults document.
func (p *Parser) ParseDefaults(text string) (*modulemd.Defaults, error) {
	return parseOne[*modulemd.Defaults](p, text, modulemd.DoctypeDefaults)
}

// ParseTranslation parses text holding exactly one translations document.
func (p *Parser) ParseTranslation(text string) (*modulemd.Translation, error) {
	return parseOne[*modulemd.Translation](p, text, modulemd.DoctypeTranslations)
}

func parseOne[T modulemd.Document](p *Parser, text string, want modulemd.Doctype) (T, error) {
	var zero T
	res := p.ParseString(text)
	if err := res.Err(); err != nil {
		return zero, err
	}
	if len(res.Documents) != 1 {
		return zero, modulemd.InvalidArgumentf(modulemd.DomainParser,
			"expected one %s document, found %d", want, len(res.Documents))
	}
	doc, ok := res.Documents[0].(T)
	if !ok {
		return zero, modulemd.InvalidArgumentf(modulemd.DomainParser,
			"expected a %s document, found %s", want, res.Documents[0].DocumentType())
	}
	return doc, nil
}
