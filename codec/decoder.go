package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/hsdfat8/diam2json/dictionary"
	"github.com/hsdfat8/diam2json/models_base"
	"github.com/hsdfat8/diam2json/pkg/logger"
)

// Decoder decodes AVPs and messages using a dictionary to resolve names and
// data types. A Decoder holds no mutable state and is safe for concurrent use
// as long as its dictionary is not modified.
type Decoder struct {
	dict dictionary.Provider
}

// NewDecoder creates a decoder. A nil dictionary decodes every AVP as an
// unknown OctetString.
func NewDecoder(dict dictionary.Provider) *Decoder {
	if dict == nil {
		dict = dictionary.New()
	}
	return &Decoder{dict: dict}
}

// DecodeAVP decodes a single AVP from b with the given dictionary.
func DecodeAVP(b []byte, dict dictionary.Provider) (*AVP, int, error) {
	return NewDecoder(dict).DecodeAVP(b)
}

// DecodeMessage decodes a complete message from b with the given dictionary.
func DecodeMessage(b []byte, dict dictionary.Provider) (*Message, error) {
	return NewDecoder(dict).DecodeMessage(b)
}

// DecodeAVP decodes the AVP at the start of b and returns it together with
// the number of bytes consumed, padding included.
func (d *Decoder) DecodeAVP(b []byte) (*AVP, int, error) {
	return d.decodeAVP(b, 0, 0)
}

// decodeAVP decodes the AVP at the start of b. base is the absolute offset of
// b[0] in the caller's buffer and is used only for error reporting.
func (d *Decoder) decodeAVP(b []byte, base, depth int) (*AVP, int, error) {
	if len(b) < avpHeaderLength {
		return nil, 0, ErrMalformedAVP{Offset: base, Reason: fmt.Sprintf("truncated header: %d bytes remaining", len(b))}
	}

	hdr := AVPHeader{
		Code:   binary.BigEndian.Uint32(b[0:4]),
		Flags:  parseAVPFlags(b[4]),
		Length: uint32(b[5])<<16 | uint32(b[6])<<8 | uint32(b[7]),
	}
	headerLen := avpHeaderLength
	if hdr.Flags.Vendor {
		if len(b) < avpVendorHeaderLength {
			return nil, 0, ErrMalformedAVP{Offset: base, Code: hdr.Code, Reason: fmt.Sprintf("truncated vendor header: %d bytes remaining", len(b))}
		}
		hdr.VendorID = binary.BigEndian.Uint32(b[8:12])
		headerLen = avpVendorHeaderLength
	}

	length := int(hdr.Length)
	if length < headerLen {
		return nil, 0, ErrMalformedAVP{Offset: base, Code: hdr.Code, Reason: fmt.Sprintf("length %d shorter than header size %d", length, headerLen)}
	}
	if length > len(b) {
		return nil, 0, ErrMalformedAVP{Offset: base, Code: hdr.Code, Reason: fmt.Sprintf("length %d exceeds %d remaining bytes", length, len(b))}
	}

	// Padding is not validated; a final AVP whose padding was cut off by the
	// end of the buffer is accepted.
	consumed := length + (4-length%4)%4
	if consumed > len(b) {
		consumed = len(b)
	}

	value := b[headerLen:length]
	a := &AVP{Header: hdr, Raw: make([]byte, len(value))}
	copy(a.Raw, value)

	typeID := models_base.OctetStringType
	if def, ok := d.dict.Lookup(hdr.Code, hdr.VendorID); ok {
		a.Name = def.Name
		typeID = def.Type
	} else {
		a.Name = dictionary.UnknownName(hdr.Code)
		logger.Log.Debugw("AVP not in dictionary, decoding as OctetString", "code", hdr.Code, "vendor_id", hdr.VendorID, "offset", base)
	}

	if typeID == models_base.GroupedType {
		if depth >= MaxNestingDepth {
			return nil, 0, ErrMalformedAVP{Offset: base, Code: hdr.Code, Reason: fmt.Sprintf("grouped nesting deeper than %d", MaxNestingDepth)}
		}
		children, err := d.decodeGroup(value, base+headerLen, depth+1)
		if err != nil {
			return nil, 0, err
		}
		a.Data = children
		return a, consumed, nil
	}

	data, err := models_base.Decode(typeID, value)
	if err != nil {
		return nil, 0, ErrMalformedAVP{Offset: base, Code: hdr.Code, Reason: fmt.Sprintf("invalid %s value", typeID), Err: err}
	}
	a.Data = data
	return a, consumed, nil
}

// decodeGroup decodes the AVPs filling b exactly.
func (d *Decoder) decodeGroup(b []byte, base, depth int) (Grouped, error) {
	children := make(Grouped, 0, 4)
	for offset := 0; offset < len(b); {
		child, n, err := d.decodeAVP(b[offset:], base+offset, depth)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		offset += n
	}
	return children, nil
}

// DecodeGroup decodes b as the value of a Grouped AVP: a sequence of AVPs
// filling it exactly.
func (d *Decoder) DecodeGroup(b []byte) (Grouped, error) {
	return d.decodeGroup(b, 0, 1)
}
