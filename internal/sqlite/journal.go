// Package sqlite records applied Dock edits in a SQLite journal so users can
// see what dockm changed and which backup precedes each change.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// JournalFile is the database file name inside the data directory.
const JournalFile = "journal.db"

// Edit operations.
const (
	OpInsert  = "insert"
	OpRemove  = "remove"
	OpEnsure  = "ensure"
	OpRestore = "restore"
)

// Journal lifecycle errors.
var (
	ErrJournalDetached = errors.New("journal is detached")
	ErrAlreadyAttached = errors.New("journal is already attached")
	ErrInvalidEdit     = errors.New("invalid edit")
)

// Edit is one journal row.
type Edit struct {
	EditID    string    `json:"edit_id"`
	Operation string    `json:"operation"`
	Section   string    `json:"section"`
	GUID      uint32    `json:"guid"`
	Label     string    `json:"label"`
	URL       string    `json:"url"`
	Position  string    `json:"position"`
	Index     int       `json:"index"`
	BackupID  string    `json:"backup_id"`
	DockFile  string    `json:"dock_file"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal stores edits in <dataDir>/journal.db.
type Journal struct {
	mu       sync.Mutex
	attached bool
	db       *sql.DB
}

// NewJournal creates a detached journal. Call Attach before use.
func NewJournal() *Journal {
	return &Journal{}
}

// Attach opens (creating if needed) the journal database in dataDir.
// Returns ErrAlreadyAttached if called twice without Detach.
func (j *Journal) Attach(dataDir string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.attached {
		return ErrAlreadyAttached
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, JournalFile))
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("applying journal schema: %w", err)
		}
	}

	j.db = db
	j.attached = true
	return nil
}

// Detach closes the database. Idempotent.
func (j *Journal) Detach() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.attached {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	j.attached = false
	return err
}

// Record stores e and returns its ID. EditID and CreatedAt are filled in
// when empty.
func (j *Journal) Record(e Edit) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.attached {
		return "", ErrJournalDetached
	}
	if e.Operation == "" {
		return "", fmt.Errorf("%w: operation is empty", ErrInvalidEdit)
	}
	if e.EditID == "" {
		e.EditID = generateUUID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := j.db.Exec(
		`INSERT INTO edits (edit_id, operation, section, guid, label, url, position, entry_index, backup_id, dock_file, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EditID, e.Operation, e.Section, int64(e.GUID), e.Label, e.URL, e.Position, e.Index,
		e.BackupID, e.DockFile, e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("recording edit: %w", err)
	}
	return e.EditID, nil
}

// Recent returns up to limit edits, newest first. limit <= 0 returns all.
func (j *Journal) Recent(limit int) ([]Edit, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.attached {
		return nil, ErrJournalDetached
	}

	query := `SELECT edit_id, operation, section, guid, label, url, position, entry_index, backup_id, dock_file, created_at
		FROM edits ORDER BY edit_id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying edits: %w", err)
	}
	defer rows.Close()

	var edits []Edit
	for rows.Next() {
		var (
			e         Edit
			guid      int64
			createdAt string
		)
		if err := rows.Scan(&e.EditID, &e.Operation, &e.Section, &guid, &e.Label, &e.URL,
			&e.Position, &e.Index, &e.BackupID, &e.DockFile, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning edit: %w", err)
		}
		e.GUID = uint32(guid)
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at of %s: %w", e.EditID, err)
		}
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edits: %w", err)
	}
	return edits, nil
}

// generateUUID generates a new UUID v7 for edit IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
