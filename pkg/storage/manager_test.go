package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestManagerSave(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir, 0)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	manager.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

	path, err := manager.Save(pngHeader)
	if err != nil {
		t.Fatalf("Failed to save screenshot: %v", err)
	}

	if want := filepath.Join(tempDir, "failure-20240301T123000-001.png"); path != want {
		t.Errorf("Expected %s, got %s", want, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !bytes.Equal(content, pngHeader) {
		t.Error("File content does not match expected data")
	}

	// No temp files left behind
	entries, _ := os.ReadDir(tempDir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("Temporary file left behind: %s", e.Name())
		}
	}
}

func TestManagerUnknownContent(t *testing.T) {
	manager, err := NewManager(t.TempDir(), 0)
	require.NoError(t, err)

	path, err := manager.Save([]byte("not an image"))
	require.NoError(t, err)
	assert.Equal(t, ".bin", filepath.Ext(path))
}

func TestManagerPrunesOldest(t *testing.T) {
	tempDir := t.TempDir()
	manager, err := NewManager(tempDir, 2)
	require.NoError(t, err)

	var paths []string
	for i := 0; i < 3; i++ {
		p, err := manager.Save(pngHeader)
		require.NoError(t, err)
		paths = append(paths, p)
	}

	assert.Equal(t, paths[1:], manager.Saved())
	_, err = os.Stat(paths[0])
	assert.True(t, os.IsNotExist(err))
}

func TestManagerScansExistingFiles(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "failure-20240101T000000-001.png"), pngHeader, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("keep"), 0644))

	manager, err := NewManager(tempDir, 1)
	require.NoError(t, err)
	assert.Len(t, manager.Saved(), 1)

	_, err = manager.Save(pngHeader)
	require.NoError(t, err)

	assert.Len(t, manager.Saved(), 1)
	_, err = os.Stat(filepath.Join(tempDir, "failure-20240101T000000-001.png"))
	assert.True(t, os.IsNotExist(err), "older screenshot should be pruned")
	_, err = os.Stat(filepath.Join(tempDir, "notes.txt"))
	assert.NoError(t, err, "unrelated files are left alone")
}

type shooter struct {
	data []byte
	err  error
}

func (s shooter) Screenshot(ctx context.Context) ([]byte, error) { return s.data, s.err }

func TestManagerCapture(t *testing.T) {
	manager, err := NewManager(t.TempDir(), 0)
	require.NoError(t, err)

	path, err := manager.Capture(context.Background(), shooter{data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(path))

	_, err = manager.Capture(context.Background(), shooter{err: errors.New("target closed")})
	assert.ErrorContains(t, err, "target closed")
}

func TestManagerDirectoryCreation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	manager, err := NewManager(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, dir, manager.GetOutputDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
