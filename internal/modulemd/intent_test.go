package modulemd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentCopyIsIndependent(t *testing.T) {
	orig := NewIntent("intent_a")
	orig.DefaultStream = "a_default_stream"
	orig.SetProfilesForStream("a_default_stream", "server")

	cp := orig.Copy()
	require.NotNil(t, cp)
	assert.Equal(t, "intent_a", cp.Name())
	assert.Equal(t, "a_default_stream", cp.DefaultStream)
	assert.True(t, orig.Equal(cp))

	cp.DefaultStream = "other_stream"
	cp.SetProfilesForStream("a_default_stream", "client")

	assert.Equal(t, "a_default_stream", orig.DefaultStream)
	profiles, ok := orig.ProfilesForStream("a_default_stream")
	require.True(t, ok)
	assert.Equal(t, []string{"server"}, profiles)
	assert.False(t, orig.Equal(cp))
}

func TestIntentEmptyProfileListIsKept(t *testing.T) {
	i := NewIntent("desktop")
	i.SetProfilesForStream("1.0")

	profiles, ok := i.ProfilesForStream("1.0")
	assert.True(t, ok)
	assert.Empty(t, profiles)
	assert.Equal(t, []string{"1.0"}, i.ProfileStreams())

	i.RemoveProfilesForStream("1.0")
	_, ok = i.ProfilesForStream("1.0")
	assert.False(t, ok)
}
