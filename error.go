package webmcontainer

import (
	"errors"
	"io"
)

// ErrorCode is a stable integer classification of failures, kept
// compatible across releases so it can cross process or language
// boundaries unchanged.
type ErrorCode int

const (
	CodeSuccess ErrorCode = iota
	CodeInvalidFile
	CodeCorruptedData
	CodeUnsupportedFormat
	CodeIOError
	CodeOutOfMemory
	CodeInvalidArgument
)

func (c ErrorCode) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeInvalidFile:
		return "invalid file"
	case CodeCorruptedData:
		return "corrupted data"
	case CodeUnsupportedFormat:
		return "unsupported format"
	case CodeIOError:
		return "i/o error"
	case CodeOutOfMemory:
		return "out of memory"
	case CodeInvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// Sentinel errors wrapped by everything this package returns. Match
// with errors.Is, or classify with CodeOf.
var (
	// ErrInvalidFile reports a buffer that is not a WebM file at
	// all: no EBML header at offset zero, or no Segment after it.
	ErrInvalidFile = errors.New("invalid file")
	// ErrCorruptedData reports EBML framing damage: truncated
	// elements, sizes past parent bounds, or required children
	// missing.
	ErrCorruptedData = errors.New("corrupted data")
	// ErrUnsupportedFormat reports a well formed file outside the
	// WebM profile, e.g. an unrecognized doc type.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrIO reports a Reader or Writer failure.
	ErrIO = errors.New("i/o failure")
	// ErrOutOfMemory is reserved for ErrorCode compatibility and is
	// never produced; Go does not surface allocation failure.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrInvalidArgument reports API misuse: wrong-type queries,
	// writes after finalize, unknown track numbers and the like.
	ErrInvalidArgument = errors.New("invalid argument")
)

// CodeOf maps an error returned by this package onto its ErrorCode.
// nil and io.EOF map to CodeSuccess; io.EOF is the clean end of a
// frame stream, not a failure. Errors of unknown origin map to
// CodeIOError.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return CodeSuccess
	case errors.Is(err, ErrInvalidFile):
		return CodeInvalidFile
	case errors.Is(err, ErrCorruptedData):
		return CodeCorruptedData
	case errors.Is(err, ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrOutOfMemory):
		return CodeOutOfMemory
	case errors.Is(err, ErrIO):
		return CodeIOError
	default:
		return CodeIOError
	}
}
