package install

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orca-dev/orca-install/internal/log"
)

func TestWorkspaceLifecycle(t *testing.T) {
	root := t.TempDir()

	ws, err := NewWorkspace(root, log.NewNoop())
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}

	if !strings.HasPrefix(ws.Dir(), root) {
		t.Errorf("workspace %s not under root %s", ws.Dir(), root)
	}

	// Workspace is usable for scratch files.
	path := ws.Path("asset.tar.gz")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("failed to write into workspace: %v", err)
	}

	ws.Close()

	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Error("workspace should be removed after Close")
	}
}

func TestWorkspaceCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "tmp")

	ws, err := NewWorkspace(root, log.NewNoop())
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	defer ws.Close()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("scratch root should be created: %v", err)
	}
}

func TestWorkspacePathJoins(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir(), log.NewNoop())
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	defer ws.Close()

	got := ws.Path("extracted", "orca")
	want := filepath.Join(ws.Dir(), "extracted", "orca")
	if got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestWorkspaceDefaultRoot(t *testing.T) {
	ws, err := NewWorkspace("", log.NewNoop())
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	defer ws.Close()

	if ws.Dir() == "" {
		t.Error("workspace dir should not be empty")
	}
}
