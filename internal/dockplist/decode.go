package dockplist

import (
	"fmt"
	"io"
	"math"
	"slices"

	"howett.net/plist"

	"github.com/mesh-intelligence/dockm/pkg/types"
)

// Load reads a whole document from r.
func Load(r io.Reader) (*types.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading dock document: %w", err)
	}
	return Decode(data)
}

// Decode parses a binary, XML, or OpenStep property list into a Document.
// Any shape or type mismatch fails with an error wrapping types.ErrDecode and
// no document is returned.
func Decode(data []byte) (*types.Document, error) {
	var root any
	format, err := plist.Unmarshal(data, &root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDecode, err)
	}

	dict, ok := root.(map[string]any)
	if !ok {
		return nil, mismatch("root", "dictionary", root)
	}

	doc := &types.Document{Format: format}

	if v, ok := dict[keyStaticOnly]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(keyStaticOnly, "boolean", v)
		}
		doc.StaticOnly = &b
	}

	for _, s := range types.AllSections {
		v, ok := dict[string(s)]
		if !ok {
			continue
		}
		entries, err := decodeSection(string(s), v)
		if err != nil {
			return nil, err
		}
		if doc.Sections == nil {
			doc.Sections = make(map[types.Section][]types.Entry)
		}
		doc.Sections[s] = entries
	}

	doc.Extra = extra(dict, documentKeys, sectionKeys())
	return doc, nil
}

func sectionKeys() []string {
	keys := make([]string, len(types.AllSections))
	for i, s := range types.AllSections {
		keys[i] = string(s)
	}
	return keys
}

func decodeSection(path string, v any) ([]types.Entry, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, mismatch(path, "array", v)
	}
	entries := make([]types.Entry, 0, len(items))
	for i, item := range items {
		e, err := decodeEntry(fmt.Sprintf("%s[%d]", path, i), item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeEntry(path string, v any) (types.Entry, error) {
	dict, ok := v.(map[string]any)
	if !ok {
		return types.Entry{}, mismatch(path, "dictionary", v)
	}

	var (
		e   types.Entry
		err error
	)
	if e.GUID, err = requireUint32(dict, path, keyGUID); err != nil {
		return types.Entry{}, err
	}
	if e.TileType, err = requireString(dict, path, keyTileType); err != nil {
		return types.Entry{}, err
	}
	raw, err := requireKey(dict, path, keyTileData)
	if err != nil {
		return types.Entry{}, err
	}
	if e.Tile, err = decodeTile(path+"."+keyTileData, raw); err != nil {
		return types.Entry{}, err
	}
	e.Extra = extra(dict, entryKeys)
	return e, nil
}

func decodeTile(path string, v any) (types.TileDescriptor, error) {
	dict, ok := v.(map[string]any)
	if !ok {
		return types.TileDescriptor{}, mismatch(path, "dictionary", v)
	}

	var (
		t   types.TileDescriptor
		err error
	)
	if t.FileType, err = requireUint32(dict, path, keyFileType); err != nil {
		return t, err
	}
	raw, err := requireKey(dict, path, keyFileData)
	if err != nil {
		return t, err
	}
	if t.File, err = decodeFileRef(path+"."+keyFileData, raw); err != nil {
		return t, err
	}
	if t.Label, err = requireString(dict, path, keyFileLabel); err != nil {
		return t, err
	}

	if v, ok := dict[keyDirectory]; ok {
		b, ok := v.(bool)
		if !ok {
			return t, mismatch(path+"."+keyDirectory, "boolean", v)
		}
		t.Directory = &b
	}
	if v, ok := dict[keyDisplayAs]; ok {
		n, err := toUint32(path+"."+keyDisplayAs, v)
		if err != nil {
			return t, err
		}
		t.DisplayAs = &n
	}
	if v, ok := dict[keyArrangement]; ok {
		n, err := toUint32(path+"."+keyArrangement, v)
		if err != nil {
			return t, err
		}
		t.Arrangement = &n
	}

	t.Extra = extra(dict, tileKeys)
	return t, nil
}

func decodeFileRef(path string, v any) (types.FileReference, error) {
	dict, ok := v.(map[string]any)
	if !ok {
		return types.FileReference{}, mismatch(path, "dictionary", v)
	}

	var (
		f   types.FileReference
		err error
	)
	if f.URLStringType, err = requireUint32(dict, path, keyURLType); err != nil {
		return f, err
	}
	if f.URLString, err = requireString(dict, path, keyURLString); err != nil {
		return f, err
	}
	f.Extra = extra(dict, fileRefKeys)
	return f, nil
}

func requireKey(dict map[string]any, path, key string) (any, error) {
	v, ok := dict[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing key %q", types.ErrDecode, path, key)
	}
	return v, nil
}

func requireString(dict map[string]any, path, key string) (string, error) {
	v, err := requireKey(dict, path, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", mismatch(path+"."+key, "string", v)
	}
	return s, nil
}

func requireUint32(dict map[string]any, path, key string) (uint32, error) {
	v, err := requireKey(dict, path, key)
	if err != nil {
		return 0, err
	}
	return toUint32(path+"."+key, v)
}

// toUint32 accepts any integer the codec produces, provided it fits.
func toUint32(path string, v any) (uint32, error) {
	var n int64
	switch x := v.(type) {
	case uint64:
		if x > math.MaxUint32 {
			return 0, outOfRange(path, x)
		}
		return uint32(x), nil
	case int64:
		n = x
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case uint32:
		return x, nil
	default:
		return 0, mismatch(path, "integer", v)
	}
	if n < 0 || n > math.MaxUint32 {
		return 0, outOfRange(path, n)
	}
	return uint32(n), nil
}

// extra returns the keys of dict not named in any of known, or nil if there
// are none.
func extra(dict map[string]any, known ...[]string) map[string]any {
	var out map[string]any
	for k, v := range dict {
		if isKnown(k, known) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

func isKnown(key string, known [][]string) bool {
	for _, set := range known {
		if slices.Contains(set, key) {
			return true
		}
	}
	return false
}

func mismatch(path, want string, got any) error {
	return fmt.Errorf("%w: %s: expected %s, got %T", types.ErrDecode, path, want, got)
}

func outOfRange(path string, v any) error {
	return fmt.Errorf("%w: %s: %v does not fit in 32 bits", types.ErrDecode, path, v)
}
