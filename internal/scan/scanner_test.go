package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("# x\n"), 0o644))
}

func TestSummaries(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "resumo_semana_2026-01-05_2026-01-11.md"))
	touch(t, filepath.Join(root, "2025", "resumo_2025-12-29_2026-01-04.md"))
	touch(t, filepath.Join(root, "LEIAME.md"))
	touch(t, filepath.Join(root, "semana_2026-01-05_2026-01-11.txt"))
	touch(t, filepath.Join(root, ".rascunhos", "resumo_2026-02-02_2026-02-08.md"))

	files, err := Summaries(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "resumo_2025-12-29_2026-01-04.md", filepath.Base(files[0].Path))
	assert.Equal(t, "2026-01-11", files[1].End.ISO())
	assert.EqualValues(t, 4, files[1].Size)
	assert.NotZero(t, files[1].Mtime)

	files, err = Summaries(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.md"))
	touch(t, filepath.Join(root, "sub", "a.md"))
	touch(t, filepath.Join(root, "c.txt"))

	got, err := Files(root, ".md")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.md"), filepath.Join(root, "sub", "a.md")}, got)
}
