package cli

import (
	"fmt"
	"os"

	"github.com/mesh-intelligence/dockm/internal/backup"
	"github.com/mesh-intelligence/dockm/internal/dockplist"
	"github.com/mesh-intelligence/dockm/internal/sqlite"
	"github.com/mesh-intelligence/dockm/pkg/types"
)

// editFunc applies one change to doc and describes it for the journal.
// Returning changed == false skips the save.
type editFunc func(doc *types.Document) (edit sqlite.Edit, changed bool, err error)

// load reads and decodes the Dock file, returning the raw bytes alongside the
// document so they can be backed up unchanged.
func (a *app) load() (*types.Document, []byte, error) {
	data, err := os.ReadFile(a.cfg.DockFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read dock file: %w", err)
	}
	doc, err := dockplist.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", a.cfg.DockFile, err)
	}
	a.log.Debug("dock file loaded", "path", a.cfg.DockFile, "bytes", len(data), "sections", len(doc.Sections))
	return doc, data, nil
}

// edit runs one load, mutate, backup, save, journal cycle. Nothing is written
// if fn fails or reports no change.
func (a *app) edit(op string, fn editFunc) (*types.Document, sqlite.Edit, error) {
	doc, original, err := a.load()
	if err != nil {
		return nil, sqlite.Edit{}, err
	}

	e, changed, err := fn(doc)
	if err != nil {
		return nil, sqlite.Edit{}, err
	}
	if !changed {
		a.log.Debug("no change, dock file left untouched", "operation", op)
		return doc, e, nil
	}

	data, err := dockplist.Encode(doc)
	if err != nil {
		return nil, sqlite.Edit{}, err
	}

	e.Operation = op
	e.DockFile = a.cfg.DockFile
	if e.BackupID, err = a.backup(original); err != nil {
		return nil, sqlite.Edit{}, err
	}
	if err := dockplist.WriteBytes(a.cfg.DockFile, data); err != nil {
		return nil, sqlite.Edit{}, fmt.Errorf("write dock file: %w", err)
	}
	a.log.Debug("dock file saved", "path", a.cfg.DockFile, "bytes", len(data))

	if err := a.record(e); err != nil {
		return nil, sqlite.Edit{}, err
	}
	return doc, e, nil
}

// backup stores original and prunes old backups. It returns an empty ID when
// backups are disabled.
func (a *app) backup(original []byte) (string, error) {
	if !a.cfg.Backup {
		return "", nil
	}
	store := backup.NewStore(a.cfg.DataDir)
	b, err := store.Save(original)
	if err != nil {
		return "", fmt.Errorf("backup dock file: %w", err)
	}
	a.log.Debug("backup stored", "id", b.ID, "bytes", b.Size)

	if a.cfg.KeepBackups > 0 {
		removed, err := store.Prune(a.cfg.KeepBackups)
		if err != nil {
			return "", fmt.Errorf("prune backups: %w", err)
		}
		if removed > 0 {
			a.log.Debug("old backups pruned", "removed", removed)
		}
	}
	return b.ID, nil
}

// record appends e to the journal. The Dock file has already been written, so
// a failure here is reported with that context.
func (a *app) record(e sqlite.Edit) error {
	j, err := a.openJournal()
	if err != nil {
		return fmt.Errorf("dock file saved but journal unavailable: %w", err)
	}
	defer j.Detach()

	id, err := j.Record(e)
	if err != nil {
		return fmt.Errorf("dock file saved but not journaled: %w", err)
	}
	a.log.Debug("edit journaled", "id", id, "operation", e.Operation)
	return nil
}

func (a *app) openJournal() (*sqlite.Journal, error) {
	j := sqlite.NewJournal()
	if err := j.Attach(a.cfg.DataDir); err != nil {
		return nil, err
	}
	return j, nil
}
