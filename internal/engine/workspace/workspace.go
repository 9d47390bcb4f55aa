// Package workspace manages ephemeral scratch directories.
//
// Every execution request owns exactly one scratch directory, created
// fresh and destroyed afterwards regardless of outcome. Nothing is
// shared between submissions, so no residue can leak across them.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	appErr "arbiter/pkg/errors"
)

// Workspace is an exclusively-owned scratch directory for one request.
type Workspace struct {
	ID  string
	Dir string
}

// Create makes a fresh scratch directory under root. Callers must
// defer Cleanup on every path.
func Create(root string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	id := uuid.NewString()
	dir := filepath.Join(root, "arbiter-"+id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, appErr.Wrapf(err, appErr.WorkspaceFailure, "create scratch dir failed")
	}
	return &Workspace{ID: id, Dir: dir}, nil
}

// WriteSource materializes the submission source under the workspace.
func (w *Workspace) WriteSource(name, code string) (string, error) {
	if name == "" {
		return "", appErr.ValidationError("source_file_name", "required")
	}
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return "", appErr.Wrapf(err, appErr.WorkspaceFailure, "write source failed")
	}
	return path, nil
}

// Path resolves a name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Cleanup removes the scratch directory and everything under it.
func (w *Workspace) Cleanup() {
	if w == nil || w.Dir == "" {
		return
	}
	_ = os.RemoveAll(w.Dir)
}
