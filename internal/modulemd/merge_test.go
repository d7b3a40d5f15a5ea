package modulemd

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDefaults(stream string, profiles map[string][]string) *Defaults {
	d := NewDefaults("nodejs")
	d.DefaultStream = stream
	for s, p := range profiles {
		d.SetProfilesForStream(s, p...)
	}
	return d
}

func TestMergeDefaults(t *testing.T) {
	tests := []struct {
		name     string
		first    *Defaults
		second   *Defaults
		policy   MergePolicy
		stream   string
		profiles map[string][]string
	}{
		{
			name:     "default stream taken from the side that sets it",
			first:    newTestDefaults("", nil),
			second:   newTestDefaults("12", nil),
			policy:   OverrideNone,
			stream:   "12",
			profiles: map[string][]string{},
		},
		{
			name:     "both unset stays unset",
			first:    newTestDefaults("", nil),
			second:   newTestDefaults("", nil),
			policy:   OverrideNone,
			stream:   "",
			profiles: map[string][]string{},
		},
		{
			name:   "profile sets union",
			first:  newTestDefaults("12", map[string][]string{"12": {"default"}, "10": {"minimal"}}),
			second: newTestDefaults("12", map[string][]string{"12": {"development"}, "14": {}}),
			policy: OverrideNone,
			stream: "12",
			profiles: map[string][]string{
				"10": {"minimal"},
				"12": {"default", "development"},
				"14": nil,
			},
		},
		{
			name:   "override first keeps the first set",
			first:  newTestDefaults("", map[string][]string{"12": {"default"}}),
			second: newTestDefaults("", map[string][]string{"12": {"development"}, "14": {"default"}}),
			policy: OverrideFirst,
			profiles: map[string][]string{
				"12": {"default"},
				"14": {"default"},
			},
		},
		{
			name:   "override second keeps the second set",
			first:  newTestDefaults("", map[string][]string{"12": {"default"}, "10": {"minimal"}}),
			second: newTestDefaults("", map[string][]string{"12": {"development"}}),
			policy: OverrideSecond,
			profiles: map[string][]string{
				"10": {"minimal"},
				"12": {"development"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			firstBefore, secondBefore := tt.first.Copy(), tt.second.Copy()

			merged, err := MergeDefaults(tt.first, tt.second, tt.policy)
			require.NoError(t, err)

			assert.Equal(t, "nodejs", merged.ModuleName())
			assert.Equal(t, tt.stream, merged.DefaultStream)
			assert.Len(t, merged.ProfileStreams(), len(tt.profiles), spew.Sdump(merged.ProfileStreams()))
			for stream, want := range tt.profiles {
				got, ok := merged.ProfilesForStream(stream)
				assert.True(t, ok, "stream %s missing", stream)
				assert.Equal(t, want, got, "stream %s", stream)
			}

			assert.True(t, tt.first.Equal(firstBefore), "first input was modified")
			assert.True(t, tt.second.Equal(secondBefore), "second input was modified")
		})
	}
}

func TestMergeDefaultsConflictingStreams(t *testing.T) {
	first := newTestDefaults("12", nil)
	second := newTestDefaults("14", nil)

	for _, policy := range []MergePolicy{OverrideNone, OverrideFirst, OverrideSecond} {
		t.Run(policy.String(), func(t *testing.T) {
			merged, err := MergeDefaults(first, second, policy)
			require.Error(t, err)
			assert.Nil(t, merged)
			assert.ErrorIs(t, err, ErrConflict)
			assert.Contains(t, err.Error(), `"12"`)
			assert.Contains(t, err.Error(), `"14"`)
			assert.Contains(t, err.Error(), `"nodejs"`)
		})
	}
}

func TestMergeDefaultsIntents(t *testing.T) {
	first := NewDefaults("nodejs")
	server := NewIntent("server")
	server.DefaultStream = "12"
	server.SetProfilesForStream("12", "default")
	require.NoError(t, first.AddIntent(server))
	desktop := NewIntent("desktop")
	desktop.DefaultStream = "14"
	require.NoError(t, first.AddIntent(desktop))

	second := NewDefaults("nodejs")
	server2 := NewIntent("server")
	server2.SetProfilesForStream("12", "minimal")
	require.NoError(t, second.AddIntent(server2))
	cloud := NewIntent("cloud")
	cloud.DefaultStream = "10"
	require.NoError(t, second.AddIntent(cloud))

	merged, err := MergeDefaults(first, second, OverrideNone)
	require.NoError(t, err)

	assert.Equal(t, []string{"cloud", "desktop", "server"}, merged.IntentNames())
	got := merged.Intent("server")
	require.NotNil(t, got)
	assert.Equal(t, "12", got.DefaultStream)
	profiles, _ := got.ProfilesForStream("12")
	assert.Equal(t, []string{"default", "minimal"}, profiles)
	assert.Equal(t, "10", merged.Intent("cloud").DefaultStream)
}

func TestMergeDefaultsIntentConflictNamesIntent(t *testing.T) {
	first := NewDefaults("nodejs")
	a := NewIntent("server")
	a.DefaultStream = "12"
	require.NoError(t, first.AddIntent(a))

	second := NewDefaults("nodejs")
	b := NewIntent("server")
	b.DefaultStream = "14"
	require.NoError(t, second.AddIntent(b))

	_, err := MergeDefaults(first, second, OverrideSecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), `intent "server"`)
	assert.Contains(t, err.Error(), `"12"`)
	assert.Contains(t, err.Error(), `"14"`)
}

func TestMergeDefaultsModifiedTakesNewest(t *testing.T) {
	first := newTestDefaults("12", nil)
	first.Modified = 201812071200
	second := newTestDefaults("", nil)
	second.Modified = 201901010000

	merged, err := MergeDefaults(first, second, OverrideNone)
	require.NoError(t, err)
	assert.Equal(t, uint64(201901010000), merged.Modified)
}

func TestMergeDefaultsInvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		first  *Defaults
		second *Defaults
		policy MergePolicy
	}{
		{name: "nil first", first: nil, second: NewDefaults("a"), policy: OverrideNone},
		{name: "nil second", first: NewDefaults("a"), second: nil, policy: OverrideNone},
		{name: "different modules", first: NewDefaults("a"), second: NewDefaults("b"), policy: OverrideNone},
		{name: "missing policy", first: NewDefaults("a"), second: NewDefaults("a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MergeDefaults(tt.first, tt.second, tt.policy)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestParseMergePolicy(t *testing.T) {
	for _, p := range []MergePolicy{OverrideNone, OverrideFirst, OverrideSecond} {
		got, err := ParseMergePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParseMergePolicy("latest")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
