package files

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/contre95/tubequeue/src/features/config"
	"github.com/google/uuid"
)

// Workspace hands out per-request directories below the configured temp dir,
// so concurrent downloads of the same video never collide.
type Workspace struct {
	config *config.Manager
}

// NewWorkspace creates a new Workspace.
func NewWorkspace(cfg *config.Manager) *Workspace {
	return &Workspace{config: cfg}
}

// NewDir creates a fresh, uniquely named directory.
func (w *Workspace) NewDir() (string, error) {
	dir := filepath.Join(w.config.Get().Media.TempDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return dir, nil
}

// Rename gives a downloaded file a readable name derived from title, in the same directory.
func (w *Workspace) Rename(path, title string) (string, error) {
	newPath := filepath.Join(filepath.Dir(path), SafeFilename(title, filepath.Ext(path)))
	if newPath == path {
		return path, nil
	}
	if err := os.Rename(path, newPath); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", path, err)
	}
	return newPath, nil
}

// Release removes a directory created by NewDir together with its content.
// Directories outside the temp dir are refused.
func (w *Workspace) Release(dir string) error {
	root, err := filepath.Abs(w.config.Get().Media.TempDir)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if filepath.Dir(abs) != root {
		return fmt.Errorf("refusing to remove %s: not a workspace directory", dir)
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return nil
}
