package models_base

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Address family numbers from the IANA registry used by the Address type.
const (
	AddressFamilyIPv4 uint16 = 1
	AddressFamilyIPv6 uint16 = 2
)

// Address data type. Serialized as a 2-byte family tag followed by the
// 4 or 16 address bytes.
type Address net.IP

// DecodeAddress decodes an Address from byte array.
func DecodeAddress(b []byte) (Type, error) {
	if len(b) < 2 {
		return nil, ErrEncoding{Type: "Address", Reason: "missing address family"}
	}
	family := binary.BigEndian.Uint16(b[:2])
	var size int
	switch family {
	case AddressFamilyIPv4:
		size = net.IPv4len
	case AddressFamilyIPv6:
		size = net.IPv6len
	default:
		return nil, ErrUnknownAddressFamily{Family: family}
	}
	if len(b)-2 != size {
		return nil, ErrEncoding{Type: "Address", Reason: widthReason(size+2, len(b))}
	}
	ip := make(net.IP, size)
	copy(ip, b[2:])
	return Address(ip), nil
}

// Family returns the address family tag used on the wire.
func (addr Address) Family() uint16 {
	if net.IP(addr).To4() != nil {
		return AddressFamilyIPv4
	}
	return AddressFamilyIPv6
}

func (addr Address) ip() net.IP {
	if v4 := net.IP(addr).To4(); v4 != nil {
		return v4
	}
	return net.IP(addr).To16()
}

// Serialize implements the Type interface.
func (addr Address) Serialize() []byte {
	ip := addr.ip()
	b := make([]byte, 2+len(ip))
	binary.BigEndian.PutUint16(b, addr.Family())
	copy(b[2:], ip)
	return b
}

// Len implements the Type interface.
func (addr Address) Len() int {
	return 2 + len(addr.ip())
}

// Padding implements the Type interface.
func (addr Address) Padding() int {
	l := addr.Len()
	return pad4(l) - l
}

// Type implements the Type interface.
func (addr Address) Type() TypeID {
	return AddressType
}

// String implements the Type interface.
func (addr Address) String() string {
	return fmt.Sprintf("Address{%s},Padding:%d", net.IP(addr), addr.Padding())
}
