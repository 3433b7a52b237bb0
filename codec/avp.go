package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/hsdfat8/diam2json/dictionary"
	"github.com/hsdfat8/diam2json/models_base"
)

const (
	avpHeaderLength       = 8
	avpVendorHeaderLength = 12
	maxLength             = 1<<24 - 1

	// MaxNestingDepth bounds Grouped recursion on decode and encode.
	MaxNestingDepth = 64
)

// AVP header flag bits, numbered from the most significant bit.
const (
	flagVendor    = 0x80
	flagMandatory = 0x40
	flagProtected = 0x20
)

// AVPFlags represents AVP header flags
type AVPFlags struct {
	Vendor    bool // V-bit
	Mandatory bool // M-bit
	Protected bool // P-bit
}

func parseAVPFlags(b byte) AVPFlags {
	return AVPFlags{
		Vendor:    b&flagVendor != 0,
		Mandatory: b&flagMandatory != 0,
		Protected: b&flagProtected != 0,
	}
}

func (f AVPFlags) serialize() byte {
	var b byte
	if f.Vendor {
		b |= flagVendor
	}
	if f.Mandatory {
		b |= flagMandatory
	}
	if f.Protected {
		b |= flagProtected
	}
	return b
}

// AVPHeader represents the AVP header structure
type AVPHeader struct {
	Code     uint32
	Flags    AVPFlags
	Length   uint32 // header + value, padding excluded
	VendorID uint32 // Only present if V-bit is set
}

// Size returns the encoded header size: 12 bytes with a vendor id, 8 without.
func (h AVPHeader) Size() int {
	if h.Flags.Vendor {
		return avpVendorHeaderLength
	}
	return avpHeaderLength
}

// AVP represents a complete AVP with header and data. AVPs produced by the
// decoder carry the exact value bytes in Raw; AVPs built in code leave it nil.
type AVP struct {
	Header AVPHeader
	Name   string
	Data   models_base.Type
	Raw    []byte
}

// NewAVP builds an AVP. The vendor flag is set iff vendorID is non-zero.
func NewAVP(code, vendorID uint32, mandatory bool, data models_base.Type) *AVP {
	a := &AVP{
		Header: AVPHeader{
			Code:     code,
			Flags:    AVPFlags{Vendor: vendorID != 0, Mandatory: mandatory},
			VendorID: vendorID,
		},
		Data: data,
	}
	a.Header.Length = uint32(a.Length())
	return a
}

// NewAVPFromDefinition builds an AVP using the code, vendor and flags of a
// dictionary definition.
func NewAVPFromDefinition(def *dictionary.AVPDefinition, data models_base.Type) *AVP {
	a := NewAVP(def.Code, def.VendorID, def.Must, data)
	a.Header.Flags.Protected = def.MayEncrypt
	a.Name = def.Name
	return a
}

// Length returns the length field value: header plus value, without padding.
func (a *AVP) Length() int {
	n := a.Header.Size()
	if a.Data != nil {
		n += a.Data.Len()
	}
	return n
}

// Padding returns padding bytes needed
func (a *AVP) Padding() int {
	return (4 - (a.Length() % 4)) % 4
}

// Len returns total AVP length including header and padding
func (a *AVP) Len() int {
	return a.Length() + a.Padding()
}

// Value returns the raw value bytes: those seen on the wire for decoded
// AVPs, the serialized Data otherwise.
func (a *AVP) Value() []byte {
	if a.Raw != nil {
		return a.Raw
	}
	if a.Data == nil {
		return nil
	}
	return a.Data.Serialize()
}

// Children returns the child AVPs of a Grouped AVP, nil otherwise.
func (a *AVP) Children() []*AVP {
	if g, ok := a.Data.(Grouped); ok {
		return g
	}
	return nil
}

// Encode serializes the AVP. The length field is computed from the value and
// padding is always zero.
func (a *AVP) Encode() ([]byte, error) {
	if err := a.validate(0); err != nil {
		return nil, err
	}
	return a.appendTo(make([]byte, 0, a.Len())), nil
}

func (a *AVP) validate(depth int) error {
	if depth > MaxNestingDepth {
		return models_base.ErrEncoding{Type: "Grouped", Reason: fmt.Sprintf("nesting deeper than %d", MaxNestingDepth)}
	}
	if a.Data == nil {
		return models_base.ErrEncoding{Type: a.typeName(), Reason: fmt.Sprintf("AVP %d has no value", a.Header.Code)}
	}
	if a.Length() > maxLength {
		return models_base.ErrEncoding{Type: a.typeName(), Reason: fmt.Sprintf("AVP %d length %d exceeds 24 bits", a.Header.Code, a.Length())}
	}
	for _, child := range a.Children() {
		if child == nil {
			return models_base.ErrEncoding{Type: "Grouped", Reason: fmt.Sprintf("AVP %d has a nil child", a.Header.Code)}
		}
		if err := child.validate(depth + 1); err != nil {
			return err
		}
	}
	return nil
}

func (a *AVP) typeName() string {
	if a.Data == nil {
		return "AVP"
	}
	return a.Data.Type().String()
}

func (a *AVP) appendTo(b []byte) []byte {
	length := a.Length()
	b = binary.BigEndian.AppendUint32(b, a.Header.Code)
	b = append(b, a.Header.Flags.serialize(), byte(length>>16), byte(length>>8), byte(length))
	if a.Header.Flags.Vendor {
		b = binary.BigEndian.AppendUint32(b, a.Header.VendorID)
	}
	if g, ok := a.Data.(Grouped); ok {
		b = g.appendTo(b)
	} else {
		b = append(b, a.Data.Serialize()...)
	}
	for i := a.Padding(); i > 0; i-- {
		b = append(b, 0)
	}
	return b
}

func (a *AVP) String() string {
	name := a.Name
	if name == "" {
		name = dictionary.UnknownName(a.Header.Code)
	}
	return fmt.Sprintf("AVP{%s code=%d vendor=%d len=%d %v}", name, a.Header.Code, a.Header.VendorID, a.Length(), a.Data)
}
