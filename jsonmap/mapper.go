// Package jsonmap converts decoded Diameter trees to JSON records and back.
//
// Every AVP becomes a Record. The "value" member depends on the data type:
//
//	OctetString                      lowercase hex string
//	UTF8String, DiameterIdentity,
//	DiameterURI, IPFilterRule,
//	QoSFilterRule                    string
//	Integer32, Unsigned32,
//	Enumerated                       number
//	Integer64, Unsigned64            number, or decimal string beyond ±(2^53-1)
//	Float32, Float64                 number ("NaN", "+Inf", "-Inf" as strings)
//	Address                          textual IP address
//	Time                             RFC 3339 UTC string
//	Grouped                          array of records
//
// "value_hex" always carries the exact value bytes.
package jsonmap

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hsdfat8/diam2json/codec"
	"github.com/hsdfat8/diam2json/dictionary"
	"github.com/hsdfat8/diam2json/models_base"
	"github.com/hsdfat8/diam2json/pkg/logger"
)

// commandNamer is implemented by dictionaries that also know commands.
type commandNamer interface {
	CommandName(code uint32, request bool) string
}

// Mapper converts between codec trees and JSON records. It is safe for
// concurrent use.
type Mapper struct {
	dict          dictionary.Provider
	decoder       *codec.Decoder
	includeHeader bool
	indent        string
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithHeader makes Marshal emit a {"header", "avps"} document instead of a
// bare AVP array.
func WithHeader(include bool) Option {
	return func(m *Mapper) {
		m.includeHeader = include
	}
}

// WithIndent makes Marshal indent its output.
func WithIndent(indent string) Option {
	return func(m *Mapper) {
		m.indent = indent
	}
}

// New creates a Mapper. A nil dictionary is treated as empty.
func New(dict dictionary.Provider, opts ...Option) *Mapper {
	if dict == nil {
		dict = dictionary.New()
	}
	m := &Mapper{dict: dict, decoder: codec.NewDecoder(dict)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MessageToJSON converts the AVPs of msg to records.
func (m *Mapper) MessageToJSON(msg *codec.Message) ([]Record, error) {
	return m.records(msg.AVPs, 0)
}

// AVPToJSON converts a single AVP.
func (m *Mapper) AVPToJSON(a *codec.AVP) (Record, error) {
	return m.record(a, 0)
}

// MessageToDocument converts msg including its header.
func (m *Mapper) MessageToDocument(msg *codec.Message) (*Document, error) {
	avps, err := m.MessageToJSON(msg)
	if err != nil {
		return nil, err
	}
	hdr := headerRecord(msg.Header)
	if namer, ok := m.dict.(commandNamer); ok {
		hdr.CommandName = namer.CommandName(msg.Header.CommandCode, msg.Header.Flags.Request)
	}
	return &Document{Header: hdr, AVPs: avps}, nil
}

// Marshal renders msg as JSON: a document when the mapper was built
// WithHeader(true), the AVP array otherwise.
func (m *Mapper) Marshal(msg *codec.Message) ([]byte, error) {
	if m.includeHeader {
		doc, err := m.MessageToDocument(msg)
		if err != nil {
			return nil, err
		}
		return m.encode(doc)
	}
	records, err := m.MessageToJSON(msg)
	if err != nil {
		return nil, err
	}
	return m.encode(records)
}

// MarshalAVP renders a single AVP record.
func (m *Mapper) MarshalAVP(a *codec.AVP) ([]byte, error) {
	rec, err := m.AVPToJSON(a)
	if err != nil {
		return nil, err
	}
	return m.encode(rec)
}

func (m *Mapper) encode(v any) ([]byte, error) {
	if m.indent != "" {
		return json.MarshalIndent(v, "", m.indent)
	}
	return json.Marshal(v)
}

func (m *Mapper) records(avps []*codec.AVP, depth int) ([]Record, error) {
	out := make([]Record, 0, len(avps))
	for _, a := range avps {
		rec, err := m.record(a, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *Mapper) record(a *codec.AVP, depth int) (Record, error) {
	if a == nil || a.Data == nil {
		return Record{}, fmt.Errorf("AVP has no value")
	}
	if depth > codec.MaxNestingDepth {
		return Record{}, fmt.Errorf("grouped nesting deeper than %d", codec.MaxNestingDepth)
	}

	def, known := m.dict.Lookup(a.Header.Code, a.Header.VendorID)
	rec := Record{
		Code:      a.Header.Code,
		Name:      a.Name,
		Length:    a.Header.Length,
		Mandatory: boolPtr(a.Header.Flags.Mandatory),
		ValueHex:  hex.EncodeToString(a.Value()),
	}
	if a.Raw == nil {
		rec.Length = uint32(a.Length())
	}
	if a.Header.Flags.Vendor {
		rec.VendorID = a.Header.VendorID
	}
	if rec.Name == "" {
		rec.Name = dictionary.UnknownName(a.Header.Code)
		if known {
			rec.Name = def.Name
		}
	}
	if a.Header.Flags.Protected || (known && def.MayEncrypt) {
		rec.Protected = boolPtr(a.Header.Flags.Protected)
	}

	if g, ok := a.Data.(codec.Grouped); ok {
		children, err := m.records(g, depth+1)
		if err != nil {
			return Record{}, err
		}
		if rec.Value, err = json.Marshal(children); err != nil {
			return Record{}, err
		}
		return rec, nil
	}

	value, err := leafJSON(a.Data)
	if err != nil {
		return Record{}, fmt.Errorf("AVP %d: %w", a.Header.Code, err)
	}
	rec.Value = value
	if e, ok := a.Data.(models_base.Enumerated); ok && known {
		rec.Enum, _ = def.EnumName(int32(e))
	}
	return rec, nil
}

// JSONToTree rebuilds AVPs from records. The AVP is resolved by code (and
// vendor_id), or by name when code is 0. Vendor and mandatory flag default
// to the dictionary entry. Codes missing from the dictionary are rebuilt as
// OctetString.
func (m *Mapper) JSONToTree(records []Record) ([]*codec.AVP, error) {
	return m.tree(records, "$", 0)
}

// JSONToMessage rebuilds a message from a document. The header length is
// recomputed on encode.
func (m *Mapper) JSONToMessage(doc *Document) (*codec.Message, error) {
	if doc == nil || doc.Header == nil {
		return nil, ErrJSONShape{Path: "$.header", Reason: "missing message header"}
	}
	avps, err := m.tree(doc.AVPs, "$.avps", 0)
	if err != nil {
		return nil, err
	}
	return &codec.Message{Header: doc.Header.header(), AVPs: avps}, nil
}

// ParseJSON parses either a bare AVP array or a {"header", "avps"} document.
func ParseJSON(b []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil, ErrJSONShape{Path: "$", Reason: "empty input"}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	doc := &Document{}
	var err error
	switch trimmed[0] {
	case '[':
		err = dec.Decode(&doc.AVPs)
	case '{':
		err = dec.Decode(doc)
	default:
		return nil, ErrJSONShape{Path: "$", Reason: "expected an array of AVPs or a message document"}
	}
	if err != nil {
		return nil, ErrJSONShape{Path: "$", Reason: "malformed JSON", Err: err}
	}
	if dec.InputOffset() != int64(len(trimmed)) {
		return nil, ErrJSONShape{Path: "$", Reason: "trailing data after JSON value"}
	}
	return doc, nil
}

func (m *Mapper) tree(records []Record, path string, depth int) ([]*codec.AVP, error) {
	if depth > codec.MaxNestingDepth {
		return nil, ErrJSONShape{Path: path, Reason: fmt.Sprintf("grouped nesting deeper than %d", codec.MaxNestingDepth)}
	}
	avps := make([]*codec.AVP, 0, len(records))
	for i := range records {
		a, err := m.avp(&records[i], fmt.Sprintf("%s[%d]", path, i), depth)
		if err != nil {
			return nil, err
		}
		avps = append(avps, a)
	}
	return avps, nil
}

func (m *Mapper) avp(rec *Record, path string, depth int) (*codec.AVP, error) {
	def, err := m.resolve(rec, path)
	if err != nil {
		return nil, err
	}

	code, vendorID := rec.Code, rec.VendorID
	typeID := models_base.OctetStringType
	name := dictionary.UnknownName(code)
	mandatory := false
	protected := false
	if def != nil {
		code, typeID, name = def.Code, def.Type, def.Name
		if vendorID == 0 {
			vendorID = def.VendorID
		}
		mandatory, protected = def.Must, def.MayEncrypt
	} else {
		logger.Log.Debugw("AVP not in dictionary, rebuilding as OctetString", "code", code, "vendor_id", vendorID, "path", path)
	}
	if rec.Mandatory != nil {
		mandatory = *rec.Mandatory
	}
	if rec.Protected != nil {
		protected = *rec.Protected
	}

	data, err := m.value(rec, def, typeID, path, depth)
	if err != nil {
		return nil, err
	}

	a := codec.NewAVP(code, vendorID, mandatory, data)
	a.Header.Flags.Protected = protected
	a.Name = name
	return a, nil
}

// resolve finds the dictionary entry for a record. A nil definition with a
// nil error means an unknown code.
func (m *Mapper) resolve(rec *Record, path string) (*dictionary.AVPDefinition, error) {
	var byName *dictionary.AVPDefinition
	if rec.Name != "" {
		byName, _ = m.dict.LookupByName(rec.Name)
	}

	if rec.Code == 0 {
		if rec.Name == "" {
			return nil, ErrJSONShape{Path: path, Reason: "record has neither code nor name"}
		}
		if byName == nil {
			return nil, ErrJSONShape{Path: path, Reason: fmt.Sprintf("unknown AVP name %q", rec.Name)}
		}
		if rec.VendorID != 0 && rec.VendorID != byName.VendorID {
			return nil, ErrJSONShape{Path: path, Code: byName.Code, Reason: fmt.Sprintf("vendor_id %d does not match %s", rec.VendorID, byName.Name)}
		}
		return byName, nil
	}

	if byName != nil && byName.Code != rec.Code {
		return nil, ErrJSONShape{Path: path, Code: rec.Code, Reason: fmt.Sprintf("name %q belongs to code %d", rec.Name, byName.Code)}
	}
	if def, ok := m.dict.Lookup(rec.Code, rec.VendorID); ok {
		return def, nil
	}
	if rec.VendorID == 0 && byName != nil {
		return byName, nil
	}
	return nil, nil
}

func (m *Mapper) value(rec *Record, def *dictionary.AVPDefinition, typeID models_base.TypeID, path string, depth int) (models_base.Type, error) {
	hasValue := len(rec.Value) > 0 && !bytes.Equal(bytes.TrimSpace(rec.Value), []byte("null"))

	if !hasValue {
		if rec.ValueHex == "" {
			return nil, ErrJSONShape{Path: path, Code: rec.Code, Reason: "record has neither value nor value_hex"}
		}
		raw, err := hex.DecodeString(strings.TrimPrefix(rec.ValueHex, "0x"))
		if err != nil {
			return nil, ErrJSONShape{Path: path + ".value_hex", Code: rec.Code, Reason: "invalid hex", Err: err}
		}
		if typeID == models_base.GroupedType {
			children, err := m.decoder.DecodeGroup(raw)
			if err != nil {
				return nil, ErrJSONShape{Path: path + ".value_hex", Code: rec.Code, Reason: "invalid grouped value", Err: err}
			}
			return children, nil
		}
		data, err := models_base.Decode(typeID, raw)
		if err != nil {
			return nil, ErrJSONShape{Path: path + ".value_hex", Code: rec.Code, Reason: "invalid " + typeID.String() + " value", Err: err}
		}
		return data, nil
	}

	if typeID == models_base.GroupedType {
		var children []Record
		if err := json.Unmarshal(rec.Value, &children); err != nil {
			return nil, ErrJSONShape{Path: path + ".value", Code: rec.Code, Reason: "grouped value must be an array of records", Err: err}
		}
		avps, err := m.tree(children, path+".value", depth+1)
		if err != nil {
			return nil, err
		}
		return codec.Grouped(avps), nil
	}

	data, err := parseLeaf(typeID, def, rec.Value)
	if err != nil {
		return nil, ErrJSONShape{Path: path + ".value", Code: rec.Code, Reason: "invalid " + typeID.String() + " value", Err: err}
	}
	return data, nil
}
