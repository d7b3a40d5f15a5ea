package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/modulemd/internal/modulemd"
)

func TestEmitRoundTripsFixtures(t *testing.T) {
	for _, name := range []string{
		"nodejs-v2.yaml",
		"python-v1.yaml",
		"nodejs-defaults.yaml",
		"nodejs-translations.yaml",
	} {
		t.Run(name, func(t *testing.T) {
			res := NewParser().ParseString(readTestdata(t, name))
			require.NoError(t, res.Err())
			require.Len(t, res.Documents, 1)
			orig := res.Documents[0]

			out, err := EmitString(orig)
			require.NoError(t, err)

			again := NewParser().ParseString(out)
			require.NoError(t, again.Err(), out)
			require.Len(t, again.Documents, 1)
			assert.True(t, equalDocuments(orig, again.Documents[0]), "round trip changed document:\n%s\n%s",
				out, spew.Sdump(again.Documents[0]))

			stable, err := EmitString(again.Documents[0])
			require.NoError(t, err)
			assert.Equal(t, out, stable)
		})
	}
}

func equalDocuments(a, b modulemd.Document) bool {
	switch x := a.(type) {
	case *modulemd.ModuleStream:
		y, ok := b.(*modulemd.ModuleStream)
		return ok && x.Equal(y)
	case *modulemd.Defaults:
		y, ok := b.(*modulemd.Defaults)
		return ok && x.Equal(y)
	case *modulemd.Translation:
		y, ok := b.(*modulemd.Translation)
		return ok && x.Equal(y)
	}
	return false
}

func TestEmitKeyOrder(t *testing.T) {
	s, err := modulemd.NewModuleStream(modulemd.MDVersion2, "nodejs", "12")
	require.NoError(t, err)
	s.Summary = "summary"
	s.Description = "description"
	s.ModuleLicenses.Add("MIT")
	s.RPMArtifacts.Add("nodejs")
	s.RPMAPI.Add("nodejs")
	s.Community = "https://nodejs.org"
	s.Version = 1
	require.NoError(t, s.AddComponent(modulemd.NewRPMComponent("nodejs")))

	out, err := EmitString(s)
	require.NoError(t, err)

	order := []string{
		"document: modulemd",
		"version: 2",
		"data:",
		"  name: nodejs",
		`  stream: "12"`,
		"  version: 1",
		"  summary: summary",
		"  description: description",
		"  license:",
		"  references:",
		"  api:",
		"  components:",
		"      nodejs: {}",
		"  artifacts:",
	}
	last := -1
	for _, line := range order {
		idx := strings.Index(out, line+"\n")
		require.GreaterOrEqual(t, idx, 0, "missing %q in\n%s", line, out)
		assert.Greater(t, idx, last, "%q out of order in\n%s", line, out)
		last = idx
	}
}

func TestEmitXMDRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		xmd      map[string]any
		wantLine string
	}{
		{name: "string slice", xmd: map[string]any{"a": []string{"x", "y"}}, wantLine: "- x"},
		{name: "int64", xmd: map[string]any{"n": int64(5)}, wantLine: "    n: 5"},
		{name: "whole float", xmd: map[string]any{"f": 1.0}, wantLine: "    f: 1.0"},
		{name: "fractional float", xmd: map[string]any{"f": float32(0.5)}, wantLine: "    f: 0.5"},
		{name: "large float", xmd: map[string]any{"f": 1e21}, wantLine: "    f: 1e+21"},
		{name: "numeric string", xmd: map[string]any{"s": "1.0"}, wantLine: `    s: "1.0"`},
		{
			name: "nested",
			xmd: map[string]any{"mbs": map[string]any{
				"rpms":    map[string]map[string]string{"nodejs": {"ref": "abc"}},
				"arches":  []any{"x86_64", uint8(3), nil, []int{1, 2}},
				"enabled": true,
			}},
			wantLine: "nodejs:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := modulemd.NewModuleStream(modulemd.MDVersion2, "nodejs", "12")
			require.NoError(t, err)
			s.Summary = "summary"
			s.Description = "description"
			s.ModuleLicenses.Add("MIT")
			require.NoError(t, s.SetXMD(tt.xmd))

			out, err := EmitString(s)
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantLine+"\n")

			again, err := NewParser().ParseModuleStream(out)
			require.NoError(t, err, out)
			assert.True(t, s.Equal(again), "xmd changed in round trip:\n%s\n%s",
				spew.Sdump(s.XMD()), spew.Sdump(again.XMD()))
		})
	}
}

func TestEmitQuotesAmbiguousScalars(t *testing.T) {
	d := modulemd.NewDefaults("python")
	d.DefaultStream = "3.10"
	d.SetProfilesForStream("3.10")
	d.SetProfilesForStream("true", "default")

	out, err := EmitString(d)
	require.NoError(t, err)
	assert.Contains(t, out, `stream: "3.10"`)
	assert.Contains(t, out, `"3.10": []`)

	back, err := NewParser().ParseDefaults(out)
	require.NoError(t, err)
	assert.True(t, d.Equal(back), out)
}

func TestEmitMultipleDocuments(t *testing.T) {
	d := modulemd.NewDefaults("nodejs")
	tr := modulemd.NewTranslation("nodejs", "12", 1)

	var buf bytes.Buffer
	require.NoError(t, Emit(&buf, d, tr))

	res := NewParser().ParseString(buf.String())
	require.NoError(t, res.Err())
	require.Len(t, res.Documents, 2)
}

func TestEmitRejectsInvalidDocuments(t *testing.T) {
	_, err := EmitString(modulemd.NewDefaults(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, modulemd.ErrValidation)

	_, err = EmitString(nil)
	assert.ErrorIs(t, err, modulemd.ErrInvalidArgument)
}
