package id3

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidVersion    = errors.New("invalid ID3v2 version, expected 3 or 4")
	ErrUnknownMember     = errors.New("unknown tag member")
	ErrNotCallable       = errors.New("tag member is not callable")
	ErrBadArguments      = errors.New("bad arguments for tag member")
	ErrNoFrame           = errors.New("frame not present in tag")
	ErrNotTextFrame      = errors.New("frame is not a text frame")
	ErrAmbiguousUniqueID = errors.New("multiple unique file identifiers, use UniqueIDByOwner")
	ErrUnknownCharset    = errors.New("unknown charset")
	ErrDecode            = errors.New("invalid byte sequence")
)

// MemberError reports a failed member lookup or call.
type MemberError struct {
	Name string
	Err  error
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *MemberError) Unwrap() error { return e.Err }

// DecodeError is returned when a stored text value is not valid in the
// charset it is decoded with. Offset is the index of the first invalid
// byte, or -1 when the decoder can't tell.
type DecodeError struct {
	Charset string
	Offset  int
}

func (e *DecodeError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("%s: %v", e.Charset, ErrDecode)
	}
	return fmt.Sprintf("%s: %v at byte %d", e.Charset, ErrDecode, e.Offset)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
