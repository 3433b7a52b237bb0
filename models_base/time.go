package models_base

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Time is carried as an Unsigned32 count of seconds since 1900-01-01 UTC.
type Time time.Time

const (
	rfc868offset  = 2208988800
	rfc2030offset = 2085978496

	// Unix seconds covered by the two eras the decoder distinguishes.
	minTimeUnix = 1<<31 - rfc868offset
	maxTimeUnix = 1<<31 + rfc2030offset - 1
)

// NewTime converts t, truncated to whole seconds, and rejects instants the
// 32-bit wire format cannot carry.
func NewTime(t time.Time) (Time, error) {
	sec := t.Unix()
	if sec < minTimeUnix || sec > maxTimeUnix {
		return Time{}, ErrEncoding{Type: "Time", Reason: fmt.Sprintf("%s outside the representable range", t.UTC().Format(time.RFC3339))}
	}
	return Time(time.Unix(sec, 0).UTC()), nil
}

// DecodeTime decodes a Time value. Values with the most significant bit
// clear are read as post-2036 timestamps (RFC 2030 era 1).
func DecodeTime(b []byte) (Type, error) {
	if err := checkWidth("Time", b, 4); err != nil {
		return nil, err
	}
	ts := int64(binary.BigEndian.Uint32(b))
	if (b[0] >> 7) == 0 {
		ts += rfc2030offset
	} else {
		ts -= rfc868offset
	}
	return Time(time.Unix(ts, 0).UTC()), nil
}

func (t Time) Serialize() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(time.Time(t).Unix()+rfc868offset))
	return b
}

func (t Time) Len() int {
	return 4
}

func (t Time) Padding() int {
	return 0
}

func (t Time) Type() TypeID {
	return TimeType
}

func (t Time) String() string {
	return fmt.Sprintf("Time{%s}", time.Time(t))
}
