package types

import (
	"fmt"
	"slices"
)

// Document is the root of a Dock property list.
type Document struct {
	// StaticOnly maps to "static-only"; nil when absent.
	StaticOnly *bool

	// Sections holds the present sections. A section is present iff its key
	// is in the map; a present section may hold no entries.
	Sections map[Section][]Entry

	// Extra holds top-level keys outside the declared sections. They are
	// preserved on save.
	Extra map[string]any

	// Format is the howett.net/plist format the document was read from.
	// Zero means binary when saving.
	Format int
}

// Location identifies an entry within a document.
type Location struct {
	Section Section
	Index   int
	Entry   Entry
}

// Section returns the entries of s and whether s is present.
func (d *Document) Section(s Section) ([]Entry, bool) {
	entries, ok := d.Sections[s]
	return entries, ok
}

// HasSection reports whether s is present in the document.
func (d *Document) HasSection(s Section) bool {
	_, ok := d.Sections[s]
	return ok
}

// EnsureSection makes s present, empty if it was absent.
// Returns true if the section was created.
func (d *Document) EnsureSection(s Section) bool {
	if d.HasSection(s) {
		return false
	}
	if d.Sections == nil {
		d.Sections = make(map[Section][]Entry)
	}
	d.Sections[s] = []Entry{}
	return true
}

// Insert places e in section s at the index chosen by p and returns that
// index. The relative order of existing entries is kept. Returns an error
// wrapping ErrSectionMissing if s is absent; the document is not modified
// on error.
func (d *Document) Insert(s Section, e Entry, p Position) (int, error) {
	entries, ok := d.Sections[s]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSectionMissing, s)
	}
	idx, err := p.Index(len(entries))
	if err != nil {
		return 0, err
	}
	d.Sections[s] = slices.Insert(entries, idx, e)
	return idx, nil
}

// Remove deletes the first entry in s whose GUID matches and returns it.
func (d *Document) Remove(s Section, guid uint32) (Entry, error) {
	entries, ok := d.Sections[s]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrSectionMissing, s)
	}
	idx := slices.IndexFunc(entries, func(e Entry) bool { return e.GUID == guid })
	if idx < 0 {
		return Entry{}, fmt.Errorf("%w: GUID %d in %s", ErrEntryNotFound, guid, s)
	}
	removed := entries[idx]
	d.Sections[s] = slices.Delete(entries, idx, idx+1)
	return removed, nil
}

// Find returns every entry labelled label, walking sections in AllSections
// order.
func (d *Document) Find(label string) []Location {
	var found []Location
	for _, s := range AllSections {
		for i, e := range d.Sections[s] {
			if e.Tile.Label == label {
				found = append(found, Location{Section: s, Index: i, Entry: e})
			}
		}
	}
	return found
}

// Locate returns the entry with the given GUID from any present section.
func (d *Document) Locate(guid uint32) (Location, error) {
	for _, s := range AllSections {
		for i, e := range d.Sections[s] {
			if e.GUID == guid {
				return Location{Section: s, Index: i, Entry: e}, nil
			}
		}
	}
	return Location{}, fmt.Errorf("%w: GUID %d", ErrEntryNotFound, guid)
}
