// Package types defines the Dock document model, the section mutator, and
// the standard error types for dockm.
//
// A Document maps each named Section to an optional ordered list of
// Entries. Section presence is meaningful to the Dock: a section missing
// from the source file stays missing unless the caller asks for it with
// EnsureSection.
package types
