package modulemd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOrdersAndDeduplicates(t *testing.T) {
	s := NewSet("zsh", "bash", "zsh", "fish")

	assert.Equal(t, []string{"bash", "fish", "zsh"}, s.Values())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("fish"))

	s.Remove("fish")
	assert.False(t, s.Contains("fish"))
}

func TestSetZeroAndNil(t *testing.T) {
	var zero Set
	zero.Add("a")
	assert.Equal(t, []string{"a"}, zero.Values())

	var nilSet *Set
	assert.Equal(t, 0, nilSet.Len())
	assert.Nil(t, nilSet.Values())
	assert.False(t, nilSet.Contains("a"))
	assert.True(t, nilSet.Equal(NewSet()))
	assert.Equal(t, 0, nilSet.Copy().Len())
}

func TestSetCopyIsIndependent(t *testing.T) {
	orig := NewSet("a", "b")
	cp := orig.Copy()
	cp.Add("c")

	assert.Equal(t, []string{"a", "b"}, orig.Values())
	assert.False(t, orig.Equal(cp))
}

func TestUnion(t *testing.T) {
	u := Union(NewSet("a", "c"), nil, NewSet("b", "c"))
	assert.Equal(t, []string{"a", "b", "c"}, u.Values())
}
