package source

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/docsmith/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(logger.Options{Level: "error", Writer: io.Discard})
	require.NoError(t, err)
	return log
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanCollectsSourceFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "internal/util.go", "package internal")
	writeFile(t, root, "image.png", "binary")
	writeFile(t, root, "node_modules/dep/index.js", "skip me")

	project, err := Scan(root, Options{}, newTestLogger(t))
	require.NoError(t, err)

	require.Equal(t, filepath.Base(root), project.Name)
	require.Len(t, project.Files, 2)
	require.Equal(t, "internal/util.go", project.Files[0].Path)
	require.Equal(t, "main.go", project.Files[1].Path)
}

func TestScanSkipsOversizedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "small.go", "package small")
	writeFile(t, root, "big.go", strings.Repeat("x", 128))

	project, err := Scan(root, Options{MaxFileSize: 64}, newTestLogger(t))
	require.NoError(t, err)

	require.Len(t, project.Files, 1)
	require.Equal(t, "small.go", project.Files[0].Path)
}

func TestScanHonorsExtensionFilter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "script.py", "print()")

	project, err := Scan(root, Options{Extensions: []string{".py"}}, newTestLogger(t))
	require.NoError(t, err)

	require.Len(t, project.Files, 1)
	require.Equal(t, "script.py", project.Files[0].Path)
}

func TestProjectInputs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")

	project, err := Scan(root, Options{}, newTestLogger(t))
	require.NoError(t, err)

	inputs := project.Inputs()
	require.Equal(t, project.Name, inputs["project"])
	require.Contains(t, inputs["code"], "--- main.go ---")
	require.Contains(t, inputs["file_tree"], "main.go")
	require.NotContains(t, inputs, "commit")
}
