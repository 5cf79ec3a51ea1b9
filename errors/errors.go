// Package errors defines all exported error sentinels for the packedtrie library.
//
// This is the single source of truth for error values. Both the top-level
// packedtrie package and internal packages import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Build errors
var (
	ErrBuilderClosed    = errors.New("packedtrie: builder is closed")
	ErrTooManyNodes     = errors.New("packedtrie: node array exceeds 24-bit address space")
	ErrTooManyChildren  = errors.New("packedtrie: node fan-out exceeds 255 children")
	ErrCursorDisposed   = errors.New("packedtrie: cursor is disposed or superseded")
	ErrUnknownReference = errors.New("packedtrie: reference to an unvisited node id")
	ErrBacktrackTooFar  = errors.New("packedtrie: backtrack beyond cursor depth")
	ErrReferenceAtRoot  = errors.New("packedtrie: reference requires a parent edge")
)

// String pool errors
var (
	ErrPoolFinalized = errors.New("packedtrie: string pool is finalized")
	ErrStringTooLong = errors.New("packedtrie: string exceeds configured pool width")
	ErrPoolOverflow  = errors.New("packedtrie: string pool exceeds packed reference width")
)

// Decode errors
var (
	ErrTruncatedFile  = errors.New("packedtrie: trie data is truncated")
	ErrInvalidMagic   = errors.New("packedtrie: invalid signature")
	ErrInvalidVersion = errors.New("packedtrie: unsupported version")
	ErrEndianMismatch = errors.New("packedtrie: endianness marker mismatch")
	ErrChecksumFailed = errors.New("packedtrie: checksum verification failed")
	ErrCorruptedTrie  = errors.New("packedtrie: trie data is corrupted")
)

// Schema errors (used by the container format)
var (
	ErrUnknownField = errors.New("packedtrie: unknown container field")
	ErrFieldKind    = errors.New("packedtrie: container field kind mismatch")
)
