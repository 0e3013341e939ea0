package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/mesh-intelligence/dockm/internal/backup"
	"github.com/mesh-intelligence/dockm/internal/dockplist"
	"github.com/mesh-intelligence/dockm/internal/sqlite"
	"github.com/mesh-intelligence/dockm/pkg/types"
)

// env holds the per-test locations passed to every command.
type env struct {
	dockFile  string
	configDir string
	dataDir   string
}

func fileEntry(guid uint32, label, url string) types.Entry {
	return types.Entry{
		GUID:     guid,
		TileType: types.TileTypeFile,
		Tile: types.TileDescriptor{
			FileType: 41,
			File:     types.FileReference{URLStringType: types.URLStringTypeFileURL, URLString: url},
			Label:    label,
			Extra:    map[string]any{"bundle-identifier": "com.example." + label},
		},
	}
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{
		dockFile:  filepath.Join(dir, "com.apple.dock.plist"),
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
	doc := &types.Document{
		Sections: map[types.Section][]types.Entry{
			types.SectionPersistentApps: {
				fileEntry(11, "Safari", "file:///Applications/Safari.app/"),
				fileEntry(22, "Mail", "file:///System/Applications/Mail.app/"),
				fileEntry(33, "Notes", "file:///System/Applications/Notes.app/"),
			},
			types.SectionPersistentOthers: {},
		},
		Extra:  map[string]any{"autohide": true, "tilesize": uint64(48)},
		Format: plist.XMLFormat,
	}
	require.NoError(t, dockplist.WriteFile(e.dockFile, doc))
	return e
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--dock-file", e.dockFile,
		"--config-dir", e.configDir,
		"--data-dir", e.dataDir,
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e env) doc(t *testing.T) *types.Document {
	t.Helper()
	doc, err := dockplist.ReadFile(e.dockFile)
	require.NoError(t, err)
	return doc
}

func (e env) labels(t *testing.T, s types.Section) []string {
	t.Helper()
	entries, ok := e.doc(t).Section(s)
	require.True(t, ok, "section %s present", s)
	out := make([]string, len(entries))
	for i, en := range entries {
		out[i] = en.Tile.Label
	}
	return out
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"default position is end", nil, []string{"Safari", "Mail", "Notes", "Google Chrome"}},
		{"beginning", []string{"--position", "beginning"}, []string{"Google Chrome", "Safari", "Mail", "Notes"}},
		{"middle of three", []string{"-p", "middle"}, []string{"Safari", "Google Chrome", "Mail", "Notes"}},
		{"explicit section", []string{"--section", "persistent-apps", "--position", "end"}, []string{"Safari", "Mail", "Notes", "Google Chrome"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			args := append([]string{"add", "/Applications/Google Chrome.app"}, tt.args...)
			out, err := e.run(t, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "Google Chrome")
			assert.Equal(t, tt.want, e.labels(t, types.SectionPersistentApps))
		})
	}
}

func TestAddPreservesDocument(t *testing.T) {
	e := newEnv(t)
	before := e.doc(t)

	_, err := e.run(t, "add", "/Applications/Google Chrome.app")
	require.NoError(t, err)

	after := e.doc(t)
	assert.Equal(t, plist.XMLFormat, after.Format, "format is kept")
	assert.Equal(t, before.Extra, after.Extra, "unknown top-level keys are kept")
	assert.False(t, after.HasSection(types.SectionRecentApps))
	assert.False(t, after.HasSection(types.SectionStaticApps))
	others, ok := after.Section(types.SectionPersistentOthers)
	assert.True(t, ok)
	assert.Empty(t, others)

	apps, _ := after.Section(types.SectionPersistentApps)
	assert.Equal(t, before.Sections[types.SectionPersistentApps], apps[:3])

	added := apps[3]
	assert.Equal(t, types.TileTypeFile, added.TileType)
	assert.Equal(t, uint32(types.FileTypeFileTile), added.Tile.FileType)
	assert.Equal(t, "/Applications/Google Chrome.app", added.Tile.File.URLString)
	assert.Nil(t, added.Tile.DisplayAs)
}

func TestAddMissingSection(t *testing.T) {
	e := newEnv(t)
	original, err := os.ReadFile(e.dockFile)
	require.NoError(t, err)

	_, err = e.run(t, "add", "/Applications/Notes.app", "--section", "static-apps")
	require.ErrorIs(t, err, types.ErrSectionMissing)
	assert.Contains(t, err.Error(), "static-apps")
	assert.Equal(t, exitUserError, exitCode(err))

	current, err := os.ReadFile(e.dockFile)
	require.NoError(t, err)
	assert.Equal(t, original, current, "dock file untouched")

	backups, err := backup.NewStore(e.dataDir).List()
	require.NoError(t, err)
	assert.Empty(t, backups, "no backup for a failed edit")
}

func TestAddEnsureSection(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "add", "/Applications/Notes.app", "--section", "static-apps", "--ensure-section")
	require.NoError(t, err)
	assert.Equal(t, []string{"Notes"}, e.labels(t, types.SectionStaticApps))
	assert.False(t, e.doc(t).HasSection(types.SectionStaticOthers))
}

func TestAddUserErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"label too short", []string{"add", "/Applications/.app"}, types.ErrPrecondition},
		{"unknown position", []string{"add", "/Applications/Notes.app", "--position", "sideways"}, types.ErrInvalidPosition},
		{"unknown section", []string{"add", "/Applications/Notes.app", "--section", "dock"}, types.ErrUnknownSection},
		{"missing path", []string{"add"}, errUsage},
		{"extra path", []string{"add", "/Applications/Notes.app", "/Applications/Mail.app"}, errUsage},
		{"unknown flag", []string{"add", "/Applications/Notes.app", "--color", "red"}, errUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.run(t, tt.args...)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}
}

func TestAddJSON(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "--json", "add", "/Applications/Google Chrome.app", "-p", "beginning")
	require.NoError(t, err)

	var rows []entryRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 4)
	assert.Equal(t, "Google Chrome", rows[0].Label)
	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, "persistent-apps", rows[0].Section)
}

func TestRemove(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "remove", "22")
	require.NoError(t, err)
	assert.Equal(t, []string{"Safari", "Notes"}, e.labels(t, types.SectionPersistentApps))

	_, err = e.run(t, "remove", "11", "--section", "persistent-apps")
	require.NoError(t, err)
	assert.Equal(t, []string{"Notes"}, e.labels(t, types.SectionPersistentApps))
}

func TestRemoveErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown guid", []string{"remove", "999"}, types.ErrEntryNotFound},
		{"guid in another section", []string{"remove", "11", "--section", "persistent-others"}, types.ErrEntryNotFound},
		{"absent section", []string{"remove", "11", "--section", "recent-apps"}, types.ErrSectionMissing},
		{"not a number", []string{"remove", "Safari"}, errUsage},
		{"too large", []string{"remove", "4294967296"}, errUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.run(t, tt.args...)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}
}

func TestEnsureSection(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "ensure-section", "recent-apps")
	require.NoError(t, err)
	assert.Contains(t, out, "Created section recent-apps")
	assert.True(t, e.doc(t).HasSection(types.SectionRecentApps))

	out, err = e.run(t, "ensure-section", "recent-apps")
	require.NoError(t, err)
	assert.Contains(t, out, "already present")

	backups, err := backup.NewStore(e.dataDir).List()
	require.NoError(t, err)
	assert.Len(t, backups, 1, "an unchanged document is not rewritten")
}

func TestList(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "SECTION")
	assert.Contains(t, out, "Safari")
	assert.Contains(t, out, "Notes")

	out, err = e.run(t, "--json", "list", "persistent-apps")
	require.NoError(t, err)
	var rows []entryRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, uint32(22), rows[1].GUID)

	out, err = e.run(t, "--json", "list", "persistent-others")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	_, err = e.run(t, "list", "static-others")
	assert.ErrorIs(t, err, types.ErrSectionMissing)
}

func TestHistoryAndBackups(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "add", "/Applications/Google Chrome.app", "-p", "middle")
	require.NoError(t, err)
	_, err = e.run(t, "remove", "33")
	require.NoError(t, err)

	out, err := e.run(t, "--json", "history")
	require.NoError(t, err)
	var edits []sqlite.Edit
	require.NoError(t, json.Unmarshal([]byte(out), &edits))
	require.Len(t, edits, 2)
	assert.Equal(t, sqlite.OpRemove, edits[0].Operation)
	assert.Equal(t, uint32(33), edits[0].GUID)
	assert.Equal(t, sqlite.OpInsert, edits[1].Operation)
	assert.Equal(t, "middle", edits[1].Position)
	assert.Equal(t, 1, edits[1].Index)
	assert.NotEmpty(t, edits[1].BackupID)

	out, err = e.run(t, "backups")
	require.NoError(t, err)
	assert.Contains(t, out, edits[0].BackupID)
	assert.Contains(t, out, edits[1].BackupID)
}

func TestNoBackup(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "--no-backup", "add", "/Applications/Notes.app")
	require.NoError(t, err)

	backups, err := backup.NewStore(e.dataDir).List()
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestRestore(t *testing.T) {
	e := newEnv(t)
	original, err := os.ReadFile(e.dockFile)
	require.NoError(t, err)

	_, err = e.run(t, "add", "/Applications/Google Chrome.app")
	require.NoError(t, err)

	backups, err := backup.NewStore(e.dataDir).List()
	require.NoError(t, err)
	require.Len(t, backups, 1)

	out, err := e.run(t, "restore", backups[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored")

	current, err := os.ReadFile(e.dockFile)
	require.NoError(t, err)
	assert.Equal(t, original, current)

	backups, err = backup.NewStore(e.dataDir).List()
	require.NoError(t, err)
	assert.Len(t, backups, 2, "the replaced file is backed up too")

	_, err = e.run(t, "restore", "0190b6a2-7c1e-7000-8000-000000000000")
	assert.ErrorIs(t, err, backup.ErrBackupNotFound)
}

func TestRestoreRejectsMalformedBackup(t *testing.T) {
	e := newEnv(t)
	b, err := backup.NewStore(e.dataDir).Save([]byte("<plist><array/></plist>"))
	require.NoError(t, err)

	_, err = e.run(t, "restore", b.ID)
	assert.ErrorIs(t, err, types.ErrDecode)
}

func TestMalformedDockFile(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.dockFile, []byte("not a plist {"), 0o644))

	_, err := e.run(t, "add", "/Applications/Notes.app")
	require.ErrorIs(t, err, types.ErrDecode)
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestMissingDockFile(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.Remove(e.dockFile))

	_, err := e.run(t, "list")
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestConfigFile(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "list")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(e.configDir, configFileExt), "default config written on first run")

	cfg := "default_position: beginning\nkeep_backups: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte(cfg), 0o644))

	for i := 0; i < 4; i++ {
		_, err := e.run(t, "add", "/Applications/App"+strconv.Itoa(i)+".app")
		require.NoError(t, err)
	}
	assert.Equal(t, "App3", e.labels(t, types.SectionPersistentApps)[0])

	backups, err := backup.NewStore(e.dataDir).List()
	require.NoError(t, err)
	assert.Len(t, backups, 2, "keep_backups prunes older copies")
}

func TestConfigFromEnv(t *testing.T) {
	e := newEnv(t)
	t.Setenv("DOCKM_DEFAULT_POSITION", "middle")

	_, err := e.run(t, "add", "/Applications/Maps.app")
	require.NoError(t, err)
	assert.Equal(t, []string{"Safari", "Maps", "Mail", "Notes"}, e.labels(t, types.SectionPersistentApps))
}

func TestConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, "config")
	configDock := filepath.Join(dir, "config.plist")
	configData := filepath.Join(dir, "config-data")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	cfgYAML := "dock_file: " + configDock + "\ndata_dir: " + configData + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, configFileExt), []byte(cfgYAML), 0o644))

	t.Setenv("DOCKM_DOCK_FILE", filepath.Join(dir, "env.plist"))
	t.Setenv("DOCKM_DATA_DIR", filepath.Join(dir, "env-data"))
	t.Setenv("DOCKM_KEEP_BACKUPS", "7")

	cfg, err := loadConfig(rootFlags{configDir: configDir})
	require.NoError(t, err)
	assert.Equal(t, configDock, cfg.DockFile, "config beats env")
	assert.Equal(t, configData, cfg.DataDir, "config beats env")
	assert.Equal(t, 7, cfg.KeepBackups, "env overrides non-path keys")

	flagDock := filepath.Join(dir, "flag.plist")
	cfg, err = loadConfig(rootFlags{configDir: configDir, dockFile: flagDock})
	require.NoError(t, err)
	assert.Equal(t, flagDock, cfg.DockFile, "flag beats config")

	require.NoError(t, os.WriteFile(filepath.Join(configDir, configFileExt), []byte("keep_backups: 3\n"), 0o644))
	cfg, err = loadConfig(rootFlags{configDir: configDir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "env.plist"), cfg.DockFile, "env applies when config is silent")
}

func TestInvalidConfig(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte("default_section: dock\n"), 0o644))

	_, err := e.run(t, "list")
	require.ErrorIs(t, err, types.ErrUnknownSection)
}

func TestVersion(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "dockm v"+Version)
	assert.Contains(t, out.String(), modulePath)
}
