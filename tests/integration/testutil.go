// Package integration provides CLI integration tests for dockm.
package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/mesh-intelligence/dockm/internal/dockplist"
	"github.com/mesh-intelligence/dockm/pkg/types"
)

var (
	// dockmBin is the path to the built dockm binary.
	dockmBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// TestEnv is an isolated Dock file plus config and data directories.
type TestEnv struct {
	t        *testing.T
	TempDir  string
	Config   string
	DataDir  string
	DockFile string
}

// NewTestEnv creates an environment whose Dock file holds Safari, Mail and
// Notes in persistent-apps and an empty persistent-others.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build dockm: %v", buildErr)
	}
	if dockmBin == "" {
		t.Fatal("dockm binary not built (dockmBin is empty)")
	}

	tempDir := t.TempDir()
	env := &TestEnv{
		t:        t,
		TempDir:  tempDir,
		Config:   filepath.Join(tempDir, "config"),
		DataDir:  filepath.Join(tempDir, "data"),
		DockFile: filepath.Join(tempDir, "com.apple.dock.plist"),
	}

	doc := &types.Document{
		Sections: map[types.Section][]types.Entry{
			types.SectionPersistentApps: {
				appEntry(101, "Safari", "file:///Applications/Safari.app/"),
				appEntry(202, "Mail", "file:///System/Applications/Mail.app/"),
				appEntry(303, "Notes", "file:///System/Applications/Notes.app/"),
			},
			types.SectionPersistentOthers: {},
		},
		Extra:  map[string]any{"orientation": "bottom", "tilesize": uint64(52)},
		Format: plist.BinaryFormat,
	}
	require.NoError(t, dockplist.WriteFile(env.DockFile, doc))
	return env
}

func appEntry(guid uint32, label, url string) types.Entry {
	return types.Entry{
		GUID:     guid,
		TileType: types.TileTypeFile,
		Tile: types.TileDescriptor{
			FileType: 41,
			File:     types.FileReference{URLStringType: types.URLStringTypeFileURL, URLString: url},
			Label:    label,
		},
	}
}

// CmdResult holds the result of a dockm command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the dockm binary against this environment.
func (e *TestEnv) Run(args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{
		"--config-dir", e.Config,
		"--data-dir", e.DataDir,
		"--dock-file", e.DockFile,
	}, args...)
	cmd := exec.Command(dockmBin, allArgs...)
	cmd.Env = append(os.Environ(), "HOME="+e.TempDir)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run dockm: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRun executes dockm and fails the test if it returns non-zero.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	result := e.Run(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("dockm %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// Document reads the Dock file back through the codec.
func (e *TestEnv) Document() *types.Document {
	e.t.Helper()
	doc, err := dockplist.ReadFile(e.DockFile)
	require.NoError(e.t, err)
	return doc
}

// Row is one rendered entry in --json output.
type Row struct {
	Section string `json:"section"`
	Index   int    `json:"index"`
	GUID    uint32 `json:"guid"`
	Label   string `json:"label"`
	URL     string `json:"url"`
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", s, err)
	}
	return result
}
