package dictionary

import "fmt"

// ErrInvalidDefinition indicates an AVP definition that cannot be registered
type ErrInvalidDefinition struct {
	Name   string
	Code   uint32
	Reason string
}

func (e ErrInvalidDefinition) Error() string {
	return fmt.Sprintf("invalid AVP definition %q (code %d): %s", e.Name, e.Code, e.Reason)
}

// ErrParse indicates a malformed dictionary source
type ErrParse struct {
	Source string
	Line   int
	Reason string
}

func (e ErrParse) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}
