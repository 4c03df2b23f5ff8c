package rename

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docscan/form-renamer/internal/config"
	"github.com/docscan/form-renamer/internal/domain"
)

func newTestManager(t *testing.T) (*Manager, string, string) {
	t.Helper()
	input := t.TempDir()
	output := t.TempDir()
	dirs := config.DirsConfig{Input: input, Output: output, Temp: t.TempDir()}
	return NewManager(dirs, "Patientenbogen - ", nil), input, output
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"+name), 0o644))
	return path
}

func TestManager_EnsureDirs_MissingInput(t *testing.T) {
	dirs := config.DirsConfig{
		Input:  filepath.Join(t.TempDir(), "does-not-exist"),
		Output: t.TempDir(),
	}
	m := NewManager(dirs, "Patientenbogen - ", nil)

	err := m.EnsureDirs()
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
	assert.Contains(t, err.Error(), "input directory does not exist")
}

func TestManager_EnsureDirs_InputIsFile(t *testing.T) {
	dir := t.TempDir()
	file := writePDF(t, dir, "not-a-dir.pdf")

	m := NewManager(config.DirsConfig{Input: file, Output: t.TempDir()}, "", nil)
	err := m.EnsureDirs()
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
}

func TestManager_EnsureDirs_CreatesOutput(t *testing.T) {
	input := t.TempDir()
	output := filepath.Join(t.TempDir(), "nested", "out")

	m := NewManager(config.DirsConfig{Input: input, Output: output}, "", nil)
	require.NoError(t, m.EnsureDirs())

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestManager_ListDocuments_FiltersAndSorts(t *testing.T) {
	m, input, _ := newTestManager(t)

	writePDF(t, input, "scan002.pdf")
	writePDF(t, input, "scan001.pdf")
	writePDF(t, input, "UPPER.PDF")
	require.NoError(t, os.WriteFile(filepath.Join(input, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(input, "subdir.pdf"), 0o755))

	docs, err := m.ListDocuments(false)
	require.NoError(t, err)

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"UPPER.PDF", "scan001.pdf", "scan002.pdf"}, names)
}

func TestManager_ListDocuments_TodayFilter(t *testing.T) {
	m, input, _ := newTestManager(t)

	old := writePDF(t, input, "old.pdf")
	writePDF(t, input, "fresh.pdf")

	yesterday := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, yesterday, yesterday))

	docs, err := m.ListDocuments(true)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "fresh.pdf", docs[0].Name)
}

func TestManager_ListDocuments_EmptyDirectory(t *testing.T) {
	m, _, _ := newTestManager(t)

	docs, err := m.ListDocuments(false)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestManager_RenameAndMove_MovesToPrefixedName(t *testing.T) {
	m, input, output := newTestManager(t)
	src := writePDF(t, input, "scan001.pdf")

	newPath, err := m.RenameAndMove(src, "Maria Klein")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(output, "Patientenbogen - Maria Klein.pdf"), newPath)

	assert.FileExists(t, newPath)
	assert.NoFileExists(t, src)

	data, err := os.ReadFile(newPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scan001.pdf")
}

func TestManager_RenameAndMove_CollisionCounter(t *testing.T) {
	m, input, output := newTestManager(t)

	var got []string
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		src := writePDF(t, input, name)
		newPath, err := m.RenameAndMove(src, "Anna Schmidt")
		require.NoError(t, err)
		got = append(got, filepath.Base(newPath))
	}

	assert.Equal(t, []string{
		"Patientenbogen - Anna Schmidt.pdf",
		"Patientenbogen - Anna Schmidt (1).pdf",
		"Patientenbogen - Anna Schmidt (2).pdf",
	}, got)

	for _, name := range got {
		assert.FileExists(t, filepath.Join(output, name))
	}
}

func TestManager_RenameAndMove_MissingSource(t *testing.T) {
	m, input, _ := newTestManager(t)

	_, err := m.RenameAndMove(filepath.Join(input, "ghost.pdf"), "Maria Klein")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeIO))
}

func TestManager_Archive_MovesIntoOriginals(t *testing.T) {
	m, input, output := newTestManager(t)
	src := writePDF(t, input, "batch.pdf")

	archived, err := m.Archive(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(output, "originals", "batch.pdf"), archived)
	assert.FileExists(t, archived)
	assert.NoFileExists(t, src)
}

func TestManager_Archive_CollisionCounter(t *testing.T) {
	m, input, output := newTestManager(t)

	first := writePDF(t, input, "batch.pdf")
	_, err := m.Archive(first)
	require.NoError(t, err)

	second := writePDF(t, input, "batch.pdf")
	archived, err := m.Archive(second)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(output, "originals", "batch_1.pdf"), archived)
	assert.FileExists(t, filepath.Join(output, "originals", "batch.pdf"))
	assert.FileExists(t, archived)
}
