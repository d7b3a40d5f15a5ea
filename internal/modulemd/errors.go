package modulemd

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	// KindParse marks malformed or unsupported YAML shapes.
	KindParse Kind = iota + 1
	// KindValidation marks a known shape with a field outside its domain.
	KindValidation
	// KindConflict marks irreconcilable values found while merging.
	KindConflict
	// KindInvalidArgument marks a violated calling contract.
	KindInvalidArgument
)

// Sentinel errors, one per Kind. Every *Error matches the sentinel of its
// Kind with errors.Is.
var (
	ErrParse           = errors.New("parse error")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("merge conflict")
	ErrInvalidArgument = errors.New("invalid argument")
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindParse:
		return ErrParse
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return nil
	}
}

// Domain names the subsystem that raised an Error.
type Domain string

const (
	DomainParser    Domain = "parser"
	DomainValidator Domain = "validator"
	DomainMerger    Domain = "merger"
	DomainIndex     Domain = "index"
	DomainModel     Domain = "model"
)

// Error is the structured error returned by every fallible operation of the
// document model, the codec and the index.
type Error struct {
	Kind    Kind
	Domain  Domain
	Message string

	// Document is the document type the error was found in, if any.
	Document string
	// Line is the 1-based YAML line, or zero when unknown.
	Line int

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Domain))
	if e.Document != "" {
		b.WriteString(": ")
		b.WriteString(e.Document)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// ValidationErrorf returns a validation error for the given document type.
func ValidationErrorf(document, format string, args ...any) *Error {
	return &Error{
		Kind:     KindValidation,
		Domain:   DomainValidator,
		Document: document,
		Message:  fmt.Sprintf(format, args...),
	}
}

// ConflictErrorf returns a merge conflict error.
func ConflictErrorf(format string, args ...any) *Error {
	return &Error{
		Kind:    KindConflict,
		Domain:  DomainMerger,
		Message: fmt.Sprintf(format, args...),
	}
}

// InvalidArgumentf returns a contract violation raised by domain.
func InvalidArgumentf(domain Domain, format string, args ...any) *Error {
	return &Error{
		Kind:    KindInvalidArgument,
		Domain:  domain,
		Message: fmt.Sprintf(format, args...),
	}
}

// wrapContext prefixes a merge error with an enclosing scope such as an
// intent name, keeping its kind.
func wrapContext(err error, format string, args ...any) error {
	var e *Error
	if !errors.As(err, &e) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
	}
	return &Error{
		Kind:     e.Kind,
		Domain:   e.Domain,
		Document: e.Document,
		Line:     e.Line,
		Message:  fmt.Sprintf(format, args...) + ": " + e.Message,
		Err:      e.Err,
	}
}
