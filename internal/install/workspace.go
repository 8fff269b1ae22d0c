package install

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/orca-dev/orca-install/internal/log"
)

// Workspace is the scratch directory exclusively owned by one install
// attempt. All downloaded and extracted artifacts live here; the only
// file that outlives the attempt is the installed binary.
type Workspace struct {
	dir    string
	logger log.Logger
}

// NewWorkspace creates a scratch directory under root. An empty root
// uses the system temporary directory.
func NewWorkspace(root string, logger log.Logger) (*Workspace, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, fmt.Errorf("failed to create scratch root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(root, "orca-install-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	logger.Debug("created scratch workspace", "dir", dir)
	return &Workspace{dir: dir, logger: logger}, nil
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path joins elements onto the workspace root.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.dir}, elem...)...)
}

// Close removes the workspace. Removal is best-effort: a failure is
// logged but never turns a successful install into an error.
func (w *Workspace) Close() {
	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Warn("scratch directory cleanup failed", "dir", w.dir, "error", err)
		return
	}
	w.logger.Debug("removed scratch workspace", "dir", w.dir)
}
