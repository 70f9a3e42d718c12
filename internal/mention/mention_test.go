package mention

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

const registryYAML = `
mentions:
  - id: 42
    displayName: Alice Andersen
  - id: 7
    displayName: Bob
    link: https://example.com/bob
  - id: 9
    displayName: Straße Team
  - id: 11
    displayName: alicia
`

func TestParseAndLookup(t *testing.T) {
	r, err := Parse([]byte(registryYAML))
	require.NoError(t, err)
	require.Equal(t, 4, r.Len())

	m, ok := r.Lookup(7)
	require.True(t, ok)
	require.Equal(t, "Bob", m.DisplayName)
	require.Equal(t, "https://example.com/bob", m.Link)

	_, ok = r.Lookup(8)
	require.False(t, ok)
}

func TestSuggest(t *testing.T) {
	r, err := Parse([]byte(registryYAML))
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		limit int
		want  []int64
	}{
		{"empty query matches all", "", 0, []int64{42, 7, 9, 11}},
		{"case insensitive", "ALI", 0, []int64{42, 11}},
		{"substring", "ders", 0, []int64{42}},
		{"folds sharp s", "strasse", 0, []int64{9}},
		{"limit", "", 2, []int64{42, 7}},
		{"no match", "zed", 0, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Suggest(tt.query, tt.limit)
			ids := make([]int64, 0, len(got))
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			require.Equal(t, tt.want, ids)
		})
	}
}

func TestSuggestDefaultLimit(t *testing.T) {
	var entries []Mention
	for i := int64(1); i <= 8; i++ {
		entries = append(entries, Mention{ID: i, DisplayName: "user"})
	}
	r, err := New(entries)
	require.NoError(t, err)
	require.Len(t, r.Suggest("us", 0), DefaultSuggestLimit)
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []Mention
	}{
		{"zero id", []Mention{{ID: 0, DisplayName: "x"}}},
		{"negative id", []Mention{{ID: -1, DisplayName: "x"}}},
		{"blank name", []Mention{{ID: 1, DisplayName: "  "}}},
		{"duplicate", []Mention{{ID: 1, DisplayName: "a"}, {ID: 1, DisplayName: "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries)
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("mentions: ["))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("DRAFTMD_TEST_NAME", "Carol")
	path := filepath.Join(t.TempDir(), "mentions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mentions:\n  - id: 3\n    displayName: ${DRAFTMD_TEST_NAME}\n"), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	m, ok := r.Lookup(3)
	require.True(t, ok)
	require.Equal(t, "Carol", m.DisplayName)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}
