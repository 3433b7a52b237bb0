package dictionary

import (
	"bytes"
	_ "embed"
)

//go:embed dict/base.proto
var baseProto []byte

// Base returns a new dictionary holding the base protocol, credit control
// and common 3GPP Gx/Gy definitions. Each call returns an independent copy
// that may be extended before use.
func Base() *Dictionary {
	d := New()
	if err := d.LoadProto(bytes.NewReader(baseProto), "dict/base.proto"); err != nil {
		// The embedded file is covered by tests; failing here is a build defect.
		panic(err)
	}
	return d
}
