package modulemd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "validation", err: ValidationErrorf(DocumentModule, "missing"), want: ErrValidation},
		{name: "conflict", err: ConflictErrorf("boom"), want: ErrConflict},
		{name: "invalid argument", err: InvalidArgumentf(DomainIndex, "nil"), want: ErrInvalidArgument},
		{name: "parse", err: &Error{Kind: KindParse, Domain: DomainParser}, want: ErrParse},
		{name: "wrapped", err: fmt.Errorf("load: %w", ConflictErrorf("boom")), want: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.want)
			for _, other := range []error{ErrParse, ErrValidation, ErrConflict, ErrInvalidArgument} {
				if other != tt.want {
					assert.NotErrorIs(t, tt.err, other)
				}
			}
		})
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := ValidationErrorf(DocumentDefaults, "missing required field %q", "module")
	err := &Error{
		Kind:     KindParse,
		Domain:   DomainParser,
		Document: DocumentDefaults,
		Line:     3,
		Message:  "invalid document",
		Err:      cause,
	}

	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t,
		`parser: modulemd-defaults line 3: invalid document: validator: modulemd-defaults: missing required field "module"`,
		err.Error())
}

func TestWrapContextKeepsKind(t *testing.T) {
	err := wrapContext(ConflictErrorf("streams differ"), "intent %q", "server")

	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), `intent "server": streams differ`)

	plain := wrapContext(errors.New("plain"), "intent %q", "server")
	assert.EqualError(t, plain, `intent "server": plain`)
}
