package types

import "errors"

// Document I/O errors.
var (
	ErrDecode = errors.New("malformed dock document")
	ErrEncode = errors.New("dock document cannot be encoded")
)

// Mutation and construction errors.
var (
	ErrSectionMissing  = errors.New("section missing from document")
	ErrUnknownSection  = errors.New("unknown section")
	ErrInvalidPosition = errors.New("invalid position")
	ErrEntryNotFound   = errors.New("entry not found")
	ErrPrecondition    = errors.New("precondition violated")
)
