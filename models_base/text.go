package models_base

import (
	"fmt"
	"unicode/utf8"
)

// UTF8String data type.
type UTF8String OctetString

// DiameterIdentity data type. FQDN or realm, carried as UTF-8 text.
type DiameterIdentity OctetString

// DiameterURI data type.
type DiameterURI OctetString

// IPFilterRule data type.
type IPFilterRule OctetString

// QoSFilterRule data type.
type QoSFilterRule OctetString

func decodeText(name string, b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrEncoding{Type: name, Reason: "invalid UTF-8 sequence"}
	}
	return string(b), nil
}

// DecodeUTF8String decodes a UTF8String from byte array.
func DecodeUTF8String(b []byte) (Type, error) {
	s, err := decodeText("UTF8String", b)
	if err != nil {
		return nil, err
	}
	return UTF8String(s), nil
}

// DecodeDiameterIdentity decodes a DiameterIdentity from byte array.
func DecodeDiameterIdentity(b []byte) (Type, error) {
	s, err := decodeText("DiameterIdentity", b)
	if err != nil {
		return nil, err
	}
	return DiameterIdentity(s), nil
}

// DecodeDiameterURI decodes a DiameterURI from byte array.
func DecodeDiameterURI(b []byte) (Type, error) {
	s, err := decodeText("DiameterURI", b)
	if err != nil {
		return nil, err
	}
	return DiameterURI(s), nil
}

// DecodeIPFilterRule decodes an IPFilterRule data type from byte array.
func DecodeIPFilterRule(b []byte) (Type, error) {
	s, err := decodeText("IPFilterRule", b)
	if err != nil {
		return nil, err
	}
	return IPFilterRule(s), nil
}

// DecodeQoSFilterRule decodes an QoSFilterRule data type from byte array.
func DecodeQoSFilterRule(b []byte) (Type, error) {
	s, err := decodeText("QoSFilterRule", b)
	if err != nil {
		return nil, err
	}
	return QoSFilterRule(s), nil
}

func (s UTF8String) Serialize() []byte { return []byte(s) }
func (s UTF8String) Len() int          { return len(s) }
func (s UTF8String) Padding() int      { return pad4(len(s)) - len(s) }
func (s UTF8String) Type() TypeID      { return UTF8StringType }
func (s UTF8String) String() string {
	return fmt.Sprintf("UTF8String{%s},Padding:%d", string(s), s.Padding())
}

func (s DiameterIdentity) Serialize() []byte { return []byte(s) }
func (s DiameterIdentity) Len() int          { return len(s) }
func (s DiameterIdentity) Padding() int      { return pad4(len(s)) - len(s) }
func (s DiameterIdentity) Type() TypeID      { return DiameterIdentityType }
func (s DiameterIdentity) String() string {
	return fmt.Sprintf("DiameterIdentity{%s},Padding:%d", string(s), s.Padding())
}

func (s DiameterURI) Serialize() []byte { return []byte(s) }
func (s DiameterURI) Len() int          { return len(s) }
func (s DiameterURI) Padding() int      { return pad4(len(s)) - len(s) }
func (s DiameterURI) Type() TypeID      { return DiameterURIType }
func (s DiameterURI) String() string {
	return fmt.Sprintf("DiameterURI{%s},Padding:%d", string(s), s.Padding())
}

func (s IPFilterRule) Serialize() []byte { return []byte(s) }
func (s IPFilterRule) Len() int          { return len(s) }
func (s IPFilterRule) Padding() int      { return pad4(len(s)) - len(s) }
func (s IPFilterRule) Type() TypeID      { return IPFilterRuleType }
func (s IPFilterRule) String() string {
	return fmt.Sprintf("IPFilterRule{%s},Padding:%d", string(s), s.Padding())
}

func (s QoSFilterRule) Serialize() []byte { return []byte(s) }
func (s QoSFilterRule) Len() int          { return len(s) }
func (s QoSFilterRule) Padding() int      { return pad4(len(s)) - len(s) }
func (s QoSFilterRule) Type() TypeID      { return QoSFilterRuleType }
func (s QoSFilterRule) String() string {
	return fmt.Sprintf("QoSFilterRule{%s},Padding:%d", string(s), s.Padding())
}
