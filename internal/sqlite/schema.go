package sqlite

// Schema DDL for the edit journal. The database persists across runs, so
// every statement is idempotent.
const (
	createEdits = `CREATE TABLE IF NOT EXISTS edits (
    edit_id TEXT PRIMARY KEY,
    operation TEXT NOT NULL,
    section TEXT NOT NULL,
    guid INTEGER NOT NULL,
    label TEXT NOT NULL,
    url TEXT NOT NULL,
    position TEXT NOT NULL,
    entry_index INTEGER NOT NULL,
    backup_id TEXT NOT NULL,
    dock_file TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	idxEditsGUID    = `CREATE INDEX IF NOT EXISTS idx_edits_guid ON edits(guid);`
	idxEditsSection = `CREATE INDEX IF NOT EXISTS idx_edits_section ON edits(section);`
)

// schemaDDL lists all statements in execution order.
var schemaDDL = []string{
	createEdits,
	idxEditsGUID,
	idxEditsSection,
}
