package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/h2non/filetype"
)

// Screenshotter captures the current page
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Manager stores failure screenshots in one directory and keeps only the
// most recent maxFiles of them
type Manager struct {
	outputDir string
	maxFiles  int
	saved     []string
	seq       int
	now       func() time.Time
	mu        sync.Mutex
}

// NewManager creates a screenshot store in outputDir. maxFiles <= 0 keeps
// every file.
func NewManager(outputDir string, maxFiles int) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		maxFiles:  maxFiles,
		now:       time.Now,
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing screenshots: %w", err)
	}

	return manager, nil
}

// scanExistingFiles picks up screenshots left by earlier runs, oldest first
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) || strings.HasSuffix(entry.Name(), ".tmp") {
			continue
		}
		m.saved = append(m.saved, filepath.Join(m.outputDir, entry.Name()))
	}
	sort.Strings(m.saved)
	return nil
}

const filePrefix = "failure-"

// Save writes one screenshot and returns its path. The extension comes from
// the image's magic bytes.
func (m *Manager) Save(data []byte) (string, error) {
	ext := "bin"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		ext = kind.Extension
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	name := fmt.Sprintf("%s%s-%03d.%s", filePrefix, m.now().UTC().Format("20060102T150405"), m.seq, ext)
	filename := filepath.Join(m.outputDir, name)

	if err := writeAtomic(filename, data); err != nil {
		return "", err
	}
	m.saved = append(m.saved, filename)
	m.prune()

	return filename, nil
}

// Capture takes a screenshot through s and saves it
func (m *Manager) Capture(ctx context.Context, s Screenshotter) (string, error) {
	data, err := s.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	return m.Save(data)
}

func (m *Manager) prune() {
	if m.maxFiles <= 0 {
		return
	}
	for len(m.saved) > m.maxFiles {
		os.Remove(m.saved[0])
		m.saved = m.saved[1:]
	}
}

func writeAtomic(filename string, data []byte) error {
	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// GetOutputDir returns the screenshot directory
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// Saved returns the paths currently kept, oldest first
func (m *Manager) Saved() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.saved...)
}
