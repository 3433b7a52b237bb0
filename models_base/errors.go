package models_base

import "fmt"

// ErrEncoding indicates a value whose bytes do not match its declared type:
// invalid UTF-8, a wrong fixed width, or a number out of range.
type ErrEncoding struct {
	Type   string
	Reason string
}

func (e ErrEncoding) Error() string {
	return fmt.Sprintf("encoding error in %s value: %s", e.Type, e.Reason)
}

// ErrUnknownAddressFamily indicates an Address value with a family tag other
// than IPv4 (1) or IPv6 (2).
type ErrUnknownAddressFamily struct {
	Family uint16
}

func (e ErrUnknownAddressFamily) Error() string {
	return fmt.Sprintf("unknown address family %d", e.Family)
}

func widthReason(want, have int) string {
	return fmt.Sprintf("expected %d bytes, got %d", want, have)
}
