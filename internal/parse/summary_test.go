package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const summaryDoc = `Resumos do grupo "Aprendizados IA + Educação"
Semana: 06/01/2026 - 12/01/2026

# Resumo da semana

## Sumário Executivo

O grupo discutiu **NotebookLM** em sala de aula
e avaliação com IA.

## Links

- [Artigo](https://example.com/article?id=5)
- [interno](#topo)
`

func TestParseSummary(t *testing.T) {
	s, err := ParseSummary("resumo_semana_2026-01-06_2026-01-12.md", summaryDoc)
	require.NoError(t, err)

	assert.Equal(t, time.January, s.Start.Month)
	assert.Equal(t, 6, s.Start.Day)
	assert.Equal(t, 12, s.End.Day)
	assert.Equal(t, "2026-01-06_2026-01-12", s.Key())
	assert.Equal(t, "Resumo da semana", s.Title)

	require.Len(t, s.Sections, 3)
	assert.Equal(t, "", s.Sections[0].Heading)
	assert.Equal(t, "Sumário Executivo", s.Sections[1].Heading)
	assert.Equal(t, 6, s.Sections[1].LineNumber)
	assert.Equal(t, "Links", s.Sections[2].Heading)

	assert.Equal(t, "O grupo discutiu **NotebookLM** em sala de aula e avaliação com IA.", s.Excerpt(280))
	assert.Equal(t, "O grupo discutiu...", s.Excerpt(24))

	assert.True(t, strings.HasPrefix(s.Body(), "## Sumário Executivo"))

	links := s.Links()
	require.Len(t, links, 1)
	assert.Equal(t, MarkdownLink{Title: "Artigo", URL: "https://example.com/article?id=5"}, links[0])
}

func TestParseSummaryWithoutExecutiveSection(t *testing.T) {
	s, err := ParseSummary("x_2026-01-06_2026-01-12.md", "texto livre")
	require.NoError(t, err)
	assert.Equal(t, defaultExcerpt, s.Excerpt(280))
	assert.Equal(t, defaultTitle, s.Title)
	assert.Equal(t, "texto livre", s.Body())
}

func TestParseSummaryBadName(t *testing.T) {
	_, err := ParseSummary("resumo.md", summaryDoc)
	require.Error(t, err)
}

func TestParseSummaryFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "resumo_semana_2026-01-06_2026-01-12.md")
	require.NoError(t, os.WriteFile(p, []byte(summaryDoc), 0o644))
	s, err := ParseSummaryFile(p)
	require.NoError(t, err)
	assert.Equal(t, p, s.Path)
	assert.Equal(t, int64(len(summaryDoc)), s.Size)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "O grupo viu Artigo e IA", PlainText("## O **grupo** viu [Artigo](https://x.y) e `IA`"))
}
