package types

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Tile and file reference tags written by NewFileEntry.
const (
	TileTypeFile         = "file-tile"
	FileTypeFileTile     = 32
	URLStringTypeFileURL = 15
)

// LabelSuffixLen is the number of trailing bytes NewFileEntry strips from the
// last path component to derive a label (".app").
const LabelSuffixLen = 4

// newGUID draws entry identifiers. Tests may replace it.
var newGUID = rand.Uint32

// FileReference locates a file by URL string and encoding kind.
// URLString is passed through verbatim and never validated.
type FileReference struct {
	URLStringType uint32
	URLString     string

	// Extra holds keys this model does not declare.
	Extra map[string]any
}

// TileDescriptor describes how an entry renders in the Dock.
// Nil optional fields are absent from the document, which is not the same as
// false or zero.
type TileDescriptor struct {
	FileType    uint32
	File        FileReference
	Label       string
	Directory   *bool
	DisplayAs   *uint32
	Arrangement *uint32

	Extra map[string]any
}

// Entry is one tile stored in a section.
type Entry struct {
	// GUID is a random 32-bit identifier. Uniqueness across a document is
	// best effort only.
	GUID     uint32
	TileType string
	Tile     TileDescriptor

	Extra map[string]any
}

// NewEntry wraps tile in an Entry with a freshly drawn GUID.
func NewEntry(tile TileDescriptor, tileType string) Entry {
	return Entry{
		GUID:     newGUID(),
		TileType: tileType,
		Tile:     tile,
	}
}

// NewFileEntry builds a file tile for path. The label is the last path
// component without its final LabelSuffixLen bytes, so "Google Chrome.app"
// becomes "Google Chrome". Returns ErrPrecondition when path is empty or
// its last component is too short to leave a label.
func NewFileEntry(path string) (Entry, error) {
	label, err := labelFromPath(path)
	if err != nil {
		return Entry{}, err
	}

	tile := TileDescriptor{
		FileType: FileTypeFileTile,
		File: FileReference{
			URLStringType: URLStringTypeFileURL,
			URLString:     path,
		},
		Label: label,
	}
	return NewEntry(tile, TileTypeFile), nil
}

func labelFromPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrPrecondition)
	}
	trimmed := strings.TrimRight(path, "/")
	base := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if len(base) <= LabelSuffixLen {
		return "", fmt.Errorf("%w: last component of %q is too short for a label", ErrPrecondition, path)
	}
	return base[:len(base)-LabelSuffixLen], nil
}

// Bool returns a pointer to v, for setting optional tile fields.
func Bool(v bool) *bool { return &v }

// Uint32 returns a pointer to v, for setting optional tile fields.
func Uint32(v uint32) *uint32 { return &v }
