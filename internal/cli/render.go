package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mesh-intelligence/dockm/internal/backup"
	"github.com/mesh-intelligence/dockm/internal/sqlite"
	"github.com/mesh-intelligence/dockm/pkg/types"
)

// entryRow is the rendered form of one entry.
type entryRow struct {
	Section  string `json:"section"`
	Index    int    `json:"index"`
	GUID     uint32 `json:"guid"`
	Label    string `json:"label"`
	TileType string `json:"tile_type"`
	URL      string `json:"url"`
}

func rowsFor(doc *types.Document, sections []types.Section) []entryRow {
	var rows []entryRow
	for _, s := range sections {
		entries, _ := doc.Section(s)
		for i, e := range entries {
			rows = append(rows, entryRow{
				Section:  string(s),
				Index:    i,
				GUID:     e.GUID,
				Label:    e.Tile.Label,
				TileType: e.TileType,
				URL:      e.Tile.File.URLString,
			})
		}
	}
	return rows
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func (a *app) renderEntries(w io.Writer, rows []entryRow) error {
	if a.flags.jsonMode {
		if rows == nil {
			rows = []entryRow{}
		}
		return writeJSON(w, rows)
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Section, strconv.Itoa(r.Index), strconv.FormatUint(uint64(r.GUID), 10), r.Label, r.TileType, r.URL}
	}
	return writeTable(w, []string{"SECTION", "INDEX", "GUID", "LABEL", "TYPE", "URL"}, cells)
}

func (a *app) renderEdits(w io.Writer, edits []sqlite.Edit) error {
	if a.flags.jsonMode {
		if edits == nil {
			edits = []sqlite.Edit{}
		}
		return writeJSON(w, edits)
	}
	cells := make([][]string, len(edits))
	for i, e := range edits {
		cells[i] = []string{
			e.CreatedAt.Local().Format(time.DateTime),
			e.Operation,
			e.Section,
			strconv.FormatUint(uint64(e.GUID), 10),
			e.Label,
			e.Position,
			e.BackupID,
		}
	}
	return writeTable(w, []string{"TIME", "OPERATION", "SECTION", "GUID", "LABEL", "POSITION", "BACKUP"}, cells)
}

func (a *app) renderBackups(w io.Writer, backups []backup.Backup) error {
	if a.flags.jsonMode {
		if backups == nil {
			backups = []backup.Backup{}
		}
		return writeJSON(w, backups)
	}
	cells := make([][]string, len(backups))
	for i, b := range backups {
		cells[i] = []string{b.ID, b.CreatedAt.Local().Format(time.DateTime), strconv.FormatInt(b.Size, 10)}
	}
	return writeTable(w, []string{"ID", "CREATED", "BYTES"}, cells)
}
