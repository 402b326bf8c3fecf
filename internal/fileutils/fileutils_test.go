package fileutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/fintrack/internal/fileutils"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	touch(t, testFile)

	assert.True(t, fileutils.FileExists(testFile))
	assert.False(t, fileutils.FileExists(filepath.Join(tmpDir, "nonexistent.txt")))
	assert.False(t, fileutils.FileExists(tmpDir))
}

func TestDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()
	assert.True(t, fileutils.DirectoryExists(tmpDir))
	assert.False(t, fileutils.DirectoryExists(filepath.Join(tmpDir, "missing")))
}

func TestCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.csv")
	f, err := fileutils.CreateFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.True(t, fileutils.FileExists(path))
}

func TestListStatements(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2024-03.pdf", "2024-01.PDF", "notes.md", "2024-02.txt"} {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.pdf"), 0750))

	files, err := fileutils.ListStatements(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "2024-01.PDF"),
		filepath.Join(dir, "2024-02.txt"),
		filepath.Join(dir, "2024-03.pdf"),
	}, files)

	pdfOnly, err := fileutils.ListStatements(dir, []string{"*.pdf"})
	require.NoError(t, err)
	assert.Len(t, pdfOnly, 2)

	_, err = fileutils.ListStatements(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}

func TestSortByName(t *testing.T) {
	paths := []string{"/z/b.pdf", "/a/c.pdf", "/y/a.pdf"}
	fileutils.SortByName(paths)
	assert.Equal(t, []string{"/y/a.pdf", "/z/b.pdf", "/a/c.pdf"}, paths)
}
