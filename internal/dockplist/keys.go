// Package dockplist maps the Dock property list onto the types.Document model.
// The byte-level codec is howett.net/plist; this package owns the key names,
// the strict type checks on decode, and the omission of absent fields on
// encode. Keys the model does not declare are preserved in Extra maps.
package dockplist

// Property list keys. These are fixed by the Dock and must not change.
const (
	keyGUID        = "GUID"
	keyTileType    = "tile-type"
	keyTileData    = "tile-data"
	keyFileType    = "file-type"
	keyFileData    = "file-data"
	keyFileLabel   = "file-label"
	keyDirectory   = "directory"
	keyDisplayAs   = "displayas"
	keyArrangement = "arrangement"
	keyURLType     = "_CFURLStringType"
	keyURLString   = "_CFURLString"
	keyStaticOnly  = "static-only"
)

var (
	documentKeys = []string{keyStaticOnly}
	entryKeys    = []string{keyGUID, keyTileType, keyTileData}
	tileKeys     = []string{keyFileType, keyFileData, keyFileLabel, keyDirectory, keyDisplayAs, keyArrangement}
	fileRefKeys  = []string{keyURLType, keyURLString}
)
