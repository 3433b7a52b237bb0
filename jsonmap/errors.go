package jsonmap

import "fmt"

// ErrJSONShape reports JSON input that cannot be turned into AVPs. Path
// locates the offending record, e.g. "$[2].value[0]".
type ErrJSONShape struct {
	Path   string
	Code   uint32
	Reason string
	Err    error
}

func (e ErrJSONShape) Error() string {
	msg := "invalid JSON at " + e.Path
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e ErrJSONShape) Unwrap() error {
	return e.Err
}
