package jsonmap

import (
	"encoding/json"

	"github.com/hsdfat8/diam2json/codec"
)

// Record is the JSON form of one AVP.
//
// Value holds the typed value (see the package documentation for the form
// used by each data type) and ValueHex the exact value bytes. On input Code
// 0 means "look the AVP up by Name", Length is ignored, and ValueHex is used
// only when Value is absent.
type Record struct {
	Code      uint32          `json:"code"`
	Name      string          `json:"name,omitempty"`
	Length    uint32          `json:"length,omitempty"`
	VendorID  uint32          `json:"vendor_id,omitempty"`
	Mandatory *bool           `json:"mandatory,omitempty"`
	Protected *bool           `json:"protected,omitempty"`
	Enum      string          `json:"enum,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	ValueHex  string          `json:"value_hex,omitempty"`
}

// HeaderFlags is the JSON form of the command flags.
type HeaderFlags struct {
	Request    bool `json:"request"`
	Proxiable  bool `json:"proxiable"`
	Error      bool `json:"error"`
	Retransmit bool `json:"retransmit"`
}

// HeaderRecord is the JSON form of a message header.
type HeaderRecord struct {
	Version       uint8       `json:"version"`
	Length        uint32      `json:"length,omitempty"`
	Flags         HeaderFlags `json:"flags"`
	CommandCode   uint32      `json:"command_code"`
	CommandName   string      `json:"command_name,omitempty"`
	ApplicationID uint32      `json:"application_id"`
	HopByHopID    uint32      `json:"hop_by_hop_id"`
	EndToEndID    uint32      `json:"end_to_end_id"`
}

// Document is a whole message: header metadata plus the AVP records. Bare
// AVP arrays parse into a Document with a nil Header.
type Document struct {
	Header *HeaderRecord `json:"header,omitempty"`
	AVPs   []Record      `json:"avps"`
}

func headerRecord(h codec.Header) *HeaderRecord {
	return &HeaderRecord{
		Version: h.Version,
		Length:  h.Length,
		Flags: HeaderFlags{
			Request:    h.Flags.Request,
			Proxiable:  h.Flags.Proxiable,
			Error:      h.Flags.Error,
			Retransmit: h.Flags.Retransmitted,
		},
		CommandCode:   h.CommandCode,
		ApplicationID: h.ApplicationID,
		HopByHopID:    h.HopByHopID,
		EndToEndID:    h.EndToEndID,
	}
}

func (h *HeaderRecord) header() codec.Header {
	return codec.Header{
		Version: h.Version,
		Flags: codec.CommandFlags{
			Request:       h.Flags.Request,
			Proxiable:     h.Flags.Proxiable,
			Error:         h.Flags.Error,
			Retransmitted: h.Flags.Retransmit,
		},
		CommandCode:   h.CommandCode,
		ApplicationID: h.ApplicationID,
		HopByHopID:    h.HopByHopID,
		EndToEndID:    h.EndToEndID,
	}
}

func boolPtr(b bool) *bool {
	return &b
}
