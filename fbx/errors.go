package fbx

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	KindInvalidMagic ErrorKind = iota + 1
	KindUnsupportedVersion
	KindIO
	KindTextEncoding
	KindUnexpectedEOF
	KindUnimplemented
	KindContractViolation
)

var errorKindNames = map[ErrorKind]string{
	KindInvalidMagic:       "invalid magic",
	KindUnsupportedVersion: "unsupported fbx version",
	KindIO:                 "i/o error",
	KindTextEncoding:       "invalid text encoding",
	KindUnexpectedEOF:      "unexpected end of input",
	KindUnimplemented:      "unimplemented",
	KindContractViolation:  "contract violation",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the error type returned by the emitters.
// Pos is the byte offset in the output where it happened, or -1 if unknown.
type Error struct {
	Pos     int64
	Kind    ErrorKind
	Version Version // KindUnsupportedVersion only
	Msg     string
	Err     error
}

// Sentinels for errors.Is. Any *Error matches the sentinel of the same kind.
var (
	ErrInvalidMagic       = &Error{Pos: -1, Kind: KindInvalidMagic}
	ErrUnsupportedVersion = &Error{Pos: -1, Kind: KindUnsupportedVersion}
	ErrIO                 = &Error{Pos: -1, Kind: KindIO}
	ErrTextEncoding       = &Error{Pos: -1, Kind: KindTextEncoding}
	ErrUnexpectedEOF      = &Error{Pos: -1, Kind: KindUnexpectedEOF}
	ErrUnimplemented      = &Error{Pos: -1, Kind: KindUnimplemented}
	ErrContractViolation  = &Error{Pos: -1, Kind: KindContractViolation}
)

func (e *Error) Error() string {
	s := "fbx: " + e.Kind.String()
	if e.Kind == KindUnsupportedVersion {
		s += fmt.Sprintf(" %d", uint32(e.Version))
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	if e.Pos >= 0 {
		s += fmt.Sprintf(" (offset %d)", e.Pos)
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func contractError(format string, a ...interface{}) *Error {
	return &Error{Pos: -1, Kind: KindContractViolation, Msg: fmt.Sprintf(format, a...)}
}

func unimplementedError(format string, a ...interface{}) *Error {
	return &Error{Pos: -1, Kind: KindUnimplemented, Msg: fmt.Sprintf(format, a...)}
}

func ioError(pos int64, err error, msg string) *Error {
	return &Error{Pos: pos, Kind: KindIO, Err: errors.Wrap(err, msg)}
}
