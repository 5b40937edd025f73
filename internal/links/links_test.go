package links

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wa-digest/internal/parse"
)

const chat = `05/01/2026 09:00 - Ana: olhem https://example.com/article?id=5&utm_source=whatsapp.
05/01/2026 09:05 - Bruno adicionou https://spam.example.com
05/01/2026 10:00 - Bruno: (https://go.dev/blog/) e https://example.com/article?id=5
06/01/2026 11:00 - Carla: repetindo
https://go.dev/blog
`

func TestExtract(t *testing.T) {
	msgs, err := parse.ParseString(chat)
	require.NoError(t, err)

	recs := Extract(msgs)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, "https://example.com/article?id=5", first.URL)
	assert.Equal(t, "https://example.com/article?id=5&utm_source=whatsapp", first.URLOriginal)
	assert.Equal(t, "example.com", first.Domain)
	assert.Equal(t, "Ana", first.SharedBy)
	assert.Equal(t, "05/01/2026", first.Date)
	assert.Equal(t, "olhem https://example.com/article?id=5&utm_source=whatsapp.", first.Context)
	assert.Equal(t, 2, first.Count)
	require.Len(t, first.Occurrences, 1)
	assert.Equal(t, "Bruno", first.Occurrences[0].SharedBy)
	assert.Equal(t, StatusPending, first.Status)

	second := recs[1]
	assert.Equal(t, "https://go.dev/blog", second.URL)
	assert.Equal(t, "https://go.dev/blog/", second.URLOriginal)
	assert.Equal(t, "Bruno", second.SharedBy)
	assert.Equal(t, 2, second.Count)
	assert.Equal(t, "06/01/2026", second.Occurrences[0].Date)
}

// The set of distinct URLs does not depend on message order, but output
// order follows first appearance.
func TestExtractOrderIndependentSet(t *testing.T) {
	msgs, err := parse.ParseString(chat)
	require.NoError(t, err)

	reversed := make([]parse.Message, len(msgs))
	for i, m := range msgs {
		reversed[len(msgs)-1-i] = m
	}

	urls := func(recs []Record) []string {
		var out []string
		for _, r := range recs {
			out = append(out, r.URL)
		}
		return out
	}
	a := urls(Extract(msgs))
	b := urls(Extract(reversed))
	assert.ElementsMatch(t, a, b)
	assert.Equal(t, []string{"https://go.dev/blog", "https://example.com/article?id=5"}, b)
}

func TestFindURLs(t *testing.T) {
	got := FindURLs(`veja "https://a.com/x", [https://b.com/y] e https://c.com/z?q=1!`)
	assert.Equal(t, []string{"https://a.com/x", "https://b.com/y", "https://c.com/z?q=1"}, got)
	assert.Empty(t, FindURLs("sem links aqui"))
}

func TestRegistryRoundTripAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links", "links.json")

	recs, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, recs)

	existing := []Record{
		{URL: "https://old.example/1", Title: "kept", Enriched: true},
		{URL: "https://old.example/2"},
	}
	require.NoError(t, Save(path, existing))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, existing, loaded)

	fresh := []Record{
		{URL: "https://new.example/a"},
		{URL: "https://old.example/1", Title: "ignored"},
		{URL: "https://new.example/b"},
		{URL: "https://new.example/a"},
	}
	merged, added := Merge(loaded, fresh)
	require.Len(t, added, 2)
	assert.Equal(t, []string{
		"https://new.example/a",
		"https://new.example/b",
		"https://old.example/1",
		"https://old.example/2",
	}, []string{merged[0].URL, merged[1].URL, merged[2].URL, merged[3].URL})
	assert.Equal(t, "kept", merged[2].Title)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
