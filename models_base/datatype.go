package models_base

// Type is the typed value carried by an AVP. The set of implementations is
// closed: one per TypeID, plus the Grouped value owned by the codec package.
type Type interface {
	Serialize() []byte
	Len() int
	Padding() int
	Type() TypeID
	String() string
}

type TypeID int

const (
	UnknownType TypeID = iota
	AddressType
	DiameterIdentityType
	DiameterURIType
	EnumeratedType
	Float32Type
	Float64Type
	GroupedType
	IPFilterRuleType
	Integer32Type
	Integer64Type
	OctetStringType
	QoSFilterRuleType
	TimeType
	UTF8StringType
	Unsigned32Type
	Unsigned64Type
)

var Available = map[string]TypeID{
	"Address":          AddressType,
	"DiameterIdentity": DiameterIdentityType,
	"DiameterURI":      DiameterURIType,
	"Enumerated":       EnumeratedType,
	"Float32":          Float32Type,
	"Float64":          Float64Type,
	"Grouped":          GroupedType,
	"IPFilterRule":     IPFilterRuleType,
	"Integer32":        Integer32Type,
	"Integer64":        Integer64Type,
	"OctetString":      OctetStringType,
	"QoSFilterRule":    QoSFilterRuleType,
	"Time":             TimeType,
	"UTF8String":       UTF8StringType,
	"Unsigned32":       Unsigned32Type,
	"Unsigned64":       Unsigned64Type,
}

// String returns the dictionary name of the type.
func (id TypeID) String() string {
	for name, v := range Available {
		if v == id {
			return name
		}
	}
	return "Unknown"
}

// IsText reports whether values of the type are UTF-8 text on the wire.
func (id TypeID) IsText() bool {
	switch id {
	case UTF8StringType, DiameterIdentityType, DiameterURIType, IPFilterRuleType, QoSFilterRuleType:
		return true
	}
	return false
}

// Decode decodes b as a value of the given type. Grouped values are not
// handled here; the AVP codec decodes them by recursion. Unknown type ids
// fall back to OctetString.
func Decode(id TypeID, b []byte) (Type, error) {
	switch id {
	case OctetStringType, UnknownType:
		return DecodeOctetString(b)
	case UTF8StringType:
		return DecodeUTF8String(b)
	case DiameterIdentityType:
		return DecodeDiameterIdentity(b)
	case DiameterURIType:
		return DecodeDiameterURI(b)
	case IPFilterRuleType:
		return DecodeIPFilterRule(b)
	case QoSFilterRuleType:
		return DecodeQoSFilterRule(b)
	case Integer32Type:
		return DecodeInteger32(b)
	case Integer64Type:
		return DecodeInteger64(b)
	case Unsigned32Type:
		return DecodeUnsigned32(b)
	case Unsigned64Type:
		return DecodeUnsigned64(b)
	case Float32Type:
		return DecodeFloat32(b)
	case Float64Type:
		return DecodeFloat64(b)
	case EnumeratedType:
		return DecodeEnumerated(b)
	case AddressType:
		return DecodeAddress(b)
	case TimeType:
		return DecodeTime(b)
	case GroupedType:
		return nil, ErrEncoding{Type: "Grouped", Reason: "grouped values are decoded by the AVP codec"}
	}
	return DecodeOctetString(b)
}

// Text builds a text value of the given type from s. The caller is expected
// to pass a type for which IsText is true.
func Text(id TypeID, s string) Type {
	switch id {
	case DiameterIdentityType:
		return DiameterIdentity(s)
	case DiameterURIType:
		return DiameterURI(s)
	case IPFilterRuleType:
		return IPFilterRule(s)
	case QoSFilterRuleType:
		return QoSFilterRule(s)
	}
	return UTF8String(s)
}

func pad4(n int) int {
	return n + ((4 - n) & 3)
}

func checkWidth(name string, b []byte, width int) error {
	if len(b) != width {
		return ErrEncoding{Type: name, Reason: widthReason(width, len(b))}
	}
	return nil
}
