package dockplist

import (
	"fmt"
	"io"
	"slices"

	"howett.net/plist"

	"github.com/mesh-intelligence/dockm/pkg/types"
)

// Save encodes doc and writes it to w.
func Save(doc *types.Document, w io.Writer) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing dock document: %w", err)
	}
	return nil
}

// Encode serializes doc in doc.Format, or binary when the format is unset,
// and records the format used on doc. Absent optional fields and absent
// sections are omitted. Failures wrap types.ErrEncode.
func Encode(doc *types.Document) ([]byte, error) {
	root, err := encodeDocument(doc)
	if err != nil {
		return nil, err
	}
	format := doc.Format
	if format == plist.InvalidFormat {
		format = plist.BinaryFormat
	}
	data, err := plist.Marshal(root, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEncode, err)
	}
	doc.Format = format
	return data, nil
}

func encodeDocument(doc *types.Document) (map[string]any, error) {
	known := append(slices.Clone(documentKeys), sectionKeys()...)
	root, err := withExtra("root", doc.Extra, known)
	if err != nil {
		return nil, err
	}

	if doc.StaticOnly != nil {
		root[keyStaticOnly] = *doc.StaticOnly
	}
	for s, entries := range doc.Sections {
		if _, err := types.ParseSection(string(s)); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrEncode, err)
		}
		items := make([]any, len(entries))
		for i, e := range entries {
			item, err := encodeEntry(fmt.Sprintf("%s[%d]", s, i), e)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		root[string(s)] = items
	}
	return root, nil
}

func encodeEntry(path string, e types.Entry) (map[string]any, error) {
	dict, err := withExtra(path, e.Extra, entryKeys)
	if err != nil {
		return nil, err
	}
	tile, err := encodeTile(path+"."+keyTileData, e.Tile)
	if err != nil {
		return nil, err
	}
	dict[keyGUID] = e.GUID
	dict[keyTileType] = e.TileType
	dict[keyTileData] = tile
	return dict, nil
}

func encodeTile(path string, t types.TileDescriptor) (map[string]any, error) {
	dict, err := withExtra(path, t.Extra, tileKeys)
	if err != nil {
		return nil, err
	}
	file, err := withExtra(path+"."+keyFileData, t.File.Extra, fileRefKeys)
	if err != nil {
		return nil, err
	}
	file[keyURLType] = t.File.URLStringType
	file[keyURLString] = t.File.URLString

	dict[keyFileType] = t.FileType
	dict[keyFileData] = file
	dict[keyFileLabel] = t.Label
	if t.Directory != nil {
		dict[keyDirectory] = *t.Directory
	}
	if t.DisplayAs != nil {
		dict[keyDisplayAs] = *t.DisplayAs
	}
	if t.Arrangement != nil {
		dict[keyArrangement] = *t.Arrangement
	}
	return dict, nil
}

// withExtra starts an output dictionary from extra. An extra key that
// shadows a declared key cannot be represented and fails with ErrEncode.
func withExtra(path string, extra map[string]any, known []string) (map[string]any, error) {
	dict := make(map[string]any, len(extra)+len(known))
	for k, v := range extra {
		if slices.Contains(known, k) {
			return nil, fmt.Errorf("%w: %s: extra key %q shadows a declared field", types.ErrEncode, path, k)
		}
		dict[k] = v
	}
	return dict, nil
}
