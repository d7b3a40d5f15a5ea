package modulemd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleAddStreamKeysByIdentity(t *testing.T) {
	m := NewModule("nodejs")

	s1 := newTestStream(t, MDVersion2)
	s2 := newTestStream(t, MDVersion2)
	s2.SetStreamName("10")
	s3 := newTestStream(t, MDVersion2)
	s3.Version = 20180101

	for _, s := range []*ModuleStream{s1, s2, s3} {
		require.NoError(t, m.AddStream(s))
	}

	streams := m.Streams()
	require.Len(t, streams, 3)
	assert.Equal(t, "10", streams[0].StreamName())
	assert.Equal(t, uint64(20180101), streams[1].Version)
	assert.Equal(t, uint64(20190101), streams[2].Version)
	assert.Equal(t, []string{"10", "12"}, m.StreamNames())

	replacement := s1.Copy()
	replacement.Summary = "replaced"
	require.NoError(t, m.AddStream(replacement))
	assert.Len(t, m.Streams(), 3)
	assert.Equal(t, "replaced", m.Stream(s1.Key()).Summary)
}

func TestModuleAddStreamRejectsForeignStream(t *testing.T) {
	m := NewModule("python")
	err := m.AddStream(newTestStream(t, MDVersion1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, m.AddStream(nil), ErrInvalidArgument)
}

func TestModuleSetDefaults(t *testing.T) {
	m := NewModule("nodejs")
	d := newTestDefaults("12", map[string][]string{"12": {"default"}})

	require.NoError(t, m.SetDefaults(d))
	require.NoError(t, m.SetDefaults(d.Copy()), "setting equal defaults again is allowed")

	other := newTestDefaults("14", nil)
	err := m.SetDefaults(other)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "12", m.Defaults().DefaultStream)

	m.ClearDefaults()
	require.NoError(t, m.SetDefaults(other))
	assert.Equal(t, "14", m.Defaults().DefaultStream)

	assert.ErrorIs(t, m.SetDefaults(NewDefaults("python")), ErrInvalidArgument)
}

func TestModuleMergeDefaults(t *testing.T) {
	m := NewModule("nodejs")
	require.NoError(t, m.MergeDefaults(newTestDefaults("12", map[string][]string{"12": {"default"}}), OverrideNone))
	require.NoError(t, m.MergeDefaults(newTestDefaults("", map[string][]string{"12": {"minimal"}}), OverrideNone))

	profiles, _ := m.Defaults().ProfilesForStream("12")
	assert.Equal(t, []string{"default", "minimal"}, profiles)

	err := m.MergeDefaults(newTestDefaults("14", nil), OverrideNone)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "12", m.Defaults().DefaultStream)
}

func TestModuleMergeIsAtomic(t *testing.T) {
	m := NewModule("nodejs")
	require.NoError(t, m.SetDefaults(newTestDefaults("12", nil)))
	before := m.Copy()

	other := NewModule("nodejs")
	require.NoError(t, other.AddStream(newTestStream(t, MDVersion2)))
	require.NoError(t, other.SetDefaults(newTestDefaults("14", nil)))

	err := m.Merge(other, OverrideNone)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, m.Equal(before))
	assert.Empty(t, m.Streams())
}

func TestModuleTranslationsAttachToStreams(t *testing.T) {
	m := NewModule("nodejs")
	require.NoError(t, m.AddStream(newTestStream(t, MDVersion2)))

	tr := NewTranslation("nodejs", "12", 201901010000)
	entry, err := NewTranslationEntry("de_DE")
	require.NoError(t, err)
	entry.Summary = "JavaScript-Laufzeit"
	entry.SetProfileDescription("default", "Standardinstallation")
	require.NoError(t, tr.SetEntry(entry))
	require.NoError(t, m.AddTranslation(tr))

	s := m.Streams()[0]
	assert.Equal(t, "JavaScript-Laufzeit", s.LocalizedSummary("de-DE"))
	assert.Equal(t, "JavaScript-Laufzeit", s.LocalizedSummary("de"))
	assert.Equal(t, "Javascript runtime", s.LocalizedSummary("ja"))
	assert.Equal(t, s.Description, s.LocalizedDescription("de-DE"))
	assert.Equal(t, "Standardinstallation", s.Profile("default").LocalizedDescription("de-DE"))

	older := NewTranslation("nodejs", "12", 201801010000)
	require.NoError(t, m.AddTranslation(older))
	assert.Equal(t, uint64(201901010000), m.Translation("12").Modified)

	// streams added later pick up the translation too
	late := newTestStream(t, MDVersion2)
	late.Version = 20200101
	require.NoError(t, m.AddStream(late))
	assert.Equal(t, "JavaScript-Laufzeit", m.Stream(late.Key()).LocalizedSummary("de-DE"))
}

func TestModuleDocumentsOrder(t *testing.T) {
	m := NewModule("nodejs")
	require.NoError(t, m.AddTranslation(NewTranslation("nodejs", "12", 1)))
	require.NoError(t, m.SetDefaults(newTestDefaults("12", nil)))
	require.NoError(t, m.AddStream(newTestStream(t, MDVersion2)))

	docs := m.Documents()
	require.Len(t, docs, 3)
	assert.Equal(t, DoctypeModule, docs[0].DocumentType())
	assert.Equal(t, DoctypeDefaults, docs[1].DocumentType())
	assert.Equal(t, DoctypeTranslations, docs[2].DocumentType())
}
