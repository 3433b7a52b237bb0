package models_base

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"
)

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		id    TypeID
		value Type
	}{
		{"octets", OctetStringType, OctetString([]byte{0x00, 0xff, 0x10})},
		{"utf8", UTF8StringType, UTF8String("héllo wörld")},
		{"identity", DiameterIdentityType, DiameterIdentity("pcrf.example.com")},
		{"uri", DiameterURIType, DiameterURI("aaa://host.example.com:3868;transport=tcp")},
		{"ipfilter", IPFilterRuleType, IPFilterRule("permit out ip from any to any")},
		{"qosfilter", QoSFilterRuleType, QoSFilterRule("meter")},
		{"int32", Integer32Type, Integer32(-42)},
		{"int64", Integer64Type, Integer64(-1 << 60)},
		{"uint32", Unsigned32Type, Unsigned32(1410781750)},
		{"uint64", Unsigned64Type, Unsigned64(1<<64 - 1)},
		{"float32", Float32Type, Float32(1.5)},
		{"float64", Float64Type, Float64(-2.25)},
		{"enum", EnumeratedType, Enumerated(3)},
		{"ipv4", AddressType, Address(net.ParseIP("10.1.2.3"))},
		{"ipv6", AddressType, Address(net.ParseIP("2001:db8::1"))},
		{"time", TimeType, Time(time.Date(2014, 9, 15, 11, 49, 10, 0, time.UTC))},
		{"time after 2036", TimeType, Time(time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.value.Serialize()
			if len(b) != tt.value.Len() {
				t.Fatalf("Len() = %d, serialized %d bytes", tt.value.Len(), len(b))
			}
			got, err := Decode(tt.id, b)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got.Type() != tt.id {
				t.Errorf("Type() = %v, want %v", got.Type(), tt.id)
			}
			if !bytes.Equal(got.Serialize(), b) {
				t.Errorf("re-serialized %x, want %x", got.Serialize(), b)
			}
		})
	}
}

func TestDecodeAddressFamilies(t *testing.T) {
	v, err := DecodeAddress([]byte{0x00, 0x01, 192, 168, 1, 1})
	if err != nil {
		t.Fatalf("DecodeAddress failed: %v", err)
	}
	if ip := net.IP(v.(Address)); !ip.Equal(net.ParseIP("192.168.1.1")) {
		t.Errorf("got %s, want 192.168.1.1", ip)
	}
	if v.Len() != 6 || v.Padding() != 2 {
		t.Errorf("Len/Padding = %d/%d, want 6/2", v.Len(), v.Padding())
	}

	_, err = DecodeAddress([]byte{0x00, 0x08, 1, 2, 3, 4})
	var famErr ErrUnknownAddressFamily
	if !errors.As(err, &famErr) {
		t.Fatalf("expected ErrUnknownAddressFamily, got %v", err)
	}
	if famErr.Family != 8 {
		t.Errorf("Family = %d, want 8", famErr.Family)
	}

	_, err = DecodeAddress([]byte{0x00, 0x02, 1, 2, 3, 4})
	var encErr ErrEncoding
	if !errors.As(err, &encErr) {
		t.Fatalf("expected ErrEncoding for short IPv6, got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		id   TypeID
		b    []byte
	}{
		{"invalid utf8", UTF8StringType, []byte{0xff, 0xfe, 0xfd}},
		{"invalid identity", DiameterIdentityType, []byte{'a', 0xc3}},
		{"short uint32", Unsigned32Type, []byte{0, 0, 1}},
		{"long int32", Integer32Type, []byte{0, 0, 0, 0, 1}},
		{"short uint64", Unsigned64Type, []byte{0, 0, 0, 1}},
		{"short enum", EnumeratedType, []byte{1}},
		{"short time", TimeType, []byte{1, 2}},
		{"empty address", AddressType, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.id, tt.b)
			var encErr ErrEncoding
			if !errors.As(err, &encErr) {
				t.Fatalf("expected ErrEncoding, got %v", err)
			}
		})
	}
}

func TestDecodeUnknownTypeIsOctetString(t *testing.T) {
	v, err := Decode(UnknownType, []byte{0xde, 0xad})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v.Type() != OctetStringType {
		t.Errorf("Type() = %v, want OctetString", v.Type())
	}
}

func TestTimeEpoch(t *testing.T) {
	// 0x83aa7e80 is 1970-01-01 in the 1900 epoch.
	v, err := DecodeTime([]byte{0x83, 0xaa, 0x7e, 0x80})
	if err != nil {
		t.Fatalf("DecodeTime failed: %v", err)
	}
	if got := time.Time(v.(Time)).Unix(); got != 0 {
		t.Errorf("Unix() = %d, want 0", got)
	}
}

func TestTypeIDString(t *testing.T) {
	for name, id := range Available {
		if id.String() != name {
			t.Errorf("%d.String() = %q, want %q", id, id.String(), name)
		}
	}
}

func TestNewTimeRange(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		ok   bool
	}{
		{"unix epoch", time.Unix(0, 0), true},
		{"era 1", time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"before 1968", time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"after 2104", time.Date(2105, 1, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewTime(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("NewTime(%v) error = %v", tt.in, err)
			}
			if !tt.ok {
				return
			}
			got, err := DecodeTime(v.Serialize())
			if err != nil {
				t.Fatalf("DecodeTime failed: %v", err)
			}
			if !time.Time(got.(Time)).Equal(tt.in) {
				t.Errorf("round trip = %v, want %v", time.Time(got.(Time)), tt.in)
			}
		})
	}
}
