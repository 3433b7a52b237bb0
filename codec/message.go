package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/hsdfat8/diam2json/models_base"
)

const (
	// HeaderLength is the fixed size of the message header.
	HeaderLength = 20
	// Version is the only protocol version accepted.
	Version = 1
)

// Command flag bits.
const (
	flagRequest       = 0x80
	flagProxiable     = 0x40
	flagError         = 0x20
	flagRetransmitted = 0x10
)

// CommandFlags represents Diameter command header flags
type CommandFlags struct {
	Request       bool // R-bit
	Proxiable     bool // P-bit
	Error         bool // E-bit
	Retransmitted bool // T-bit
}

func parseCommandFlags(b byte) CommandFlags {
	return CommandFlags{
		Request:       b&flagRequest != 0,
		Proxiable:     b&flagProxiable != 0,
		Error:         b&flagError != 0,
		Retransmitted: b&flagRetransmitted != 0,
	}
}

func (f CommandFlags) serialize() byte {
	var b byte
	if f.Request {
		b |= flagRequest
	}
	if f.Proxiable {
		b |= flagProxiable
	}
	if f.Error {
		b |= flagError
	}
	if f.Retransmitted {
		b |= flagRetransmitted
	}
	return b
}

// Header represents the Diameter message header (20 bytes)
type Header struct {
	Version       uint8        // 1 byte - Must be 1
	Length        uint32       // 3 bytes - Total message length
	Flags         CommandFlags // 1 byte
	CommandCode   uint32       // 3 bytes
	ApplicationID uint32       // 4 bytes
	HopByHopID    uint32       // 4 bytes
	EndToEndID    uint32       // 4 bytes
}

// Message represents a complete Diameter message
type Message struct {
	Header Header
	AVPs   []*AVP
}

// Len returns the total message length
func (m *Message) Len() int {
	length := HeaderLength
	for _, avp := range m.AVPs {
		length += avp.Len()
	}
	return length
}

// FindAVP returns the first top-level AVP with the given code and vendor.
func (m *Message) FindAVP(code, vendorID uint32) *AVP {
	return findAVP(m.AVPs, code, vendorID)
}

// DecodeMessage decodes a complete message. The buffer must hold exactly the
// number of bytes declared in the header.
func (d *Decoder) DecodeMessage(b []byte) (*Message, error) {
	if len(b) < HeaderLength {
		return nil, ErrMalformedHeader{Reason: fmt.Sprintf("message too short for header: %d bytes", len(b))}
	}

	hdr := Header{
		Version:       b[0],
		Length:        uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]),
		Flags:         parseCommandFlags(b[4]),
		CommandCode:   uint32(b[5])<<16 | uint32(b[6])<<8 | uint32(b[7]),
		ApplicationID: binary.BigEndian.Uint32(b[8:12]),
		HopByHopID:    binary.BigEndian.Uint32(b[12:16]),
		EndToEndID:    binary.BigEndian.Uint32(b[16:20]),
	}
	if hdr.Version != Version {
		return nil, ErrMalformedHeader{Reason: fmt.Sprintf("unsupported version: %d", hdr.Version)}
	}
	if int(hdr.Length) != len(b) {
		return nil, ErrMalformedHeader{Reason: fmt.Sprintf("declared length %d does not match buffer length %d", hdr.Length, len(b))}
	}

	m := &Message{Header: hdr, AVPs: make([]*AVP, 0, 8)}
	for offset := HeaderLength; offset < len(b); {
		a, n, err := d.decodeAVP(b[offset:], offset, 0)
		if err != nil {
			return nil, err
		}
		m.AVPs = append(m.AVPs, a)
		offset += n
	}
	return m, nil
}

// Encode serializes the message. Version defaults to 1 and the length field
// is computed from the encoded AVPs.
func (m *Message) Encode() ([]byte, error) {
	if m.Header.CommandCode > maxLength {
		return nil, models_base.ErrEncoding{Type: "Header", Reason: fmt.Sprintf("command code %d exceeds 24 bits", m.Header.CommandCode)}
	}
	for _, a := range m.AVPs {
		if a == nil {
			return nil, models_base.ErrEncoding{Type: "Header", Reason: "nil AVP"}
		}
		if err := a.validate(0); err != nil {
			return nil, err
		}
	}
	length := m.Len()
	if length > maxLength {
		return nil, models_base.ErrEncoding{Type: "Header", Reason: fmt.Sprintf("message length %d exceeds 24 bits", length)}
	}

	version := m.Header.Version
	if version == 0 {
		version = Version
	}

	b := make([]byte, HeaderLength, length)
	b[0] = version
	b[1], b[2], b[3] = byte(length>>16), byte(length>>8), byte(length)
	b[4] = m.Header.Flags.serialize()
	b[5], b[6], b[7] = byte(m.Header.CommandCode>>16), byte(m.Header.CommandCode>>8), byte(m.Header.CommandCode)
	binary.BigEndian.PutUint32(b[8:12], m.Header.ApplicationID)
	binary.BigEndian.PutUint32(b[12:16], m.Header.HopByHopID)
	binary.BigEndian.PutUint32(b[16:20], m.Header.EndToEndID)
	for _, a := range m.AVPs {
		b = a.appendTo(b)
	}
	return b, nil
}
