package codec

import (
	"fmt"
	"strings"

	"github.com/hsdfat8/diam2json/models_base"
)

// Grouped is the value of a Grouped AVP: an ordered sequence of child AVPs.
// It implements models_base.Type so that Grouped AVPs carry their children
// in Data like any other value.
type Grouped []*AVP

// Serialize implements the Type interface.
func (g Grouped) Serialize() []byte {
	return g.appendTo(make([]byte, 0, g.Len()))
}

func (g Grouped) appendTo(b []byte) []byte {
	for _, child := range g {
		b = child.appendTo(b)
	}
	return b
}

// Len implements the Type interface. Children are padded individually, so
// the total is always a multiple of 4.
func (g Grouped) Len() int {
	n := 0
	for _, child := range g {
		n += child.Len()
	}
	return n
}

// Padding implements the Type interface.
func (g Grouped) Padding() int {
	return 0
}

// Type implements the Type interface.
func (g Grouped) Type() models_base.TypeID {
	return models_base.GroupedType
}

// String implements the Type interface.
func (g Grouped) String() string {
	parts := make([]string, len(g))
	for i, child := range g {
		parts[i] = child.String()
	}
	return fmt.Sprintf("Grouped{%s}", strings.Join(parts, ","))
}

// Find returns the first child with the given code and vendor.
func (g Grouped) Find(code, vendorID uint32) *AVP {
	return findAVP(g, code, vendorID)
}

func findAVP(avps []*AVP, code, vendorID uint32) *AVP {
	for _, a := range avps {
		if a.Header.Code == code && a.Header.VendorID == vendorID {
			return a
		}
	}
	return nil
}
