package errcode

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Code is a portable error code surfaced to the host. The numeric values are
// part of the boundary contract and must stay stable.
type Code int

const (
	OK Code = iota
	Unknown
	InvalidParams
	NotFound
	CantRead
	UnsupportedEncoding
	CantWrite
	OutOfSpace
	NotFile
	NotDirectory
	FileExists
	BrowserNotInstalled
	Timeout
	Superseded
)

var codeNames = map[Code]string{
	OK:                  "OK",
	Unknown:             "UNKNOWN",
	InvalidParams:       "INVALID_PARAMS",
	NotFound:            "NOT_FOUND",
	CantRead:            "CANT_READ",
	UnsupportedEncoding: "UNSUPPORTED_ENCODING",
	CantWrite:           "CANT_WRITE",
	OutOfSpace:          "OUT_OF_SPACE",
	NotFile:             "NOT_FILE",
	NotDirectory:        "NOT_DIRECTORY",
	FileExists:          "FILE_EXISTS",
	BrowserNotInstalled: "BROWSER_NOT_INSTALLED",
	Timeout:             "TIMEOUT",
	Superseded:          "SUPERSEDED",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE_%d", int(c))
}

// Error is a typed error carrying a portable code for stable boundary mapping.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, msg string, cause error) error {
	return &Error{Code: code, Message: msg, Cause: cause}
}

// CodeOf extracts the portable code from err. A nil error is OK; an untyped
// error is Unknown.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return Unknown
}

// FromOS maps an OS-level failure from process creation or filesystem access
// into the portable taxonomy. This is the single local mapping point; callers
// never retry. reading selects whether a permission failure surfaces as
// CantRead or CantWrite.
func FromOS(err error, reading bool) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, fs.ErrNotExist):
		return NotFound
	case errors.Is(err, fs.ErrPermission):
		if reading {
			return CantRead
		}
		return CantWrite
	case errors.Is(err, fs.ErrExist), errors.Is(err, syscall.EEXIST):
		return FileExists
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EDQUOT):
		return OutOfSpace
	case errors.Is(err, syscall.EISDIR):
		return NotFile
	case errors.Is(err, syscall.ENOTDIR):
		return NotDirectory
	default:
		return Unknown
	}
}
