package codec

import "fmt"

// ErrMalformedHeader indicates a message header that cannot be decoded:
// wrong version, or a declared length that does not match the buffer.
type ErrMalformedHeader struct {
	Reason string
}

func (e ErrMalformedHeader) Error() string {
	return fmt.Sprintf("malformed message header: %s", e.Reason)
}

// ErrMalformedAVP indicates an AVP that cannot be decoded. Offset is the
// absolute byte offset of the AVP header within the decoded buffer.
type ErrMalformedAVP struct {
	Offset int
	Code   uint32
	Reason string
	Err    error
}

func (e ErrMalformedAVP) Error() string {
	msg := fmt.Sprintf("malformed AVP at offset %d", e.Offset)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e ErrMalformedAVP) Unwrap() error {
	return e.Err
}
