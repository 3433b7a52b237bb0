package codec

import (
	"errors"
	"fmt"
	"io"
)

// ReadMessage reads one message off a byte stream, using the header length
// to find its end, and returns a copy of its bytes. io.EOF is returned only
// when the stream ends cleanly between messages.
func ReadMessage(r io.Reader) ([]byte, error) {
	var hdr [HeaderLength]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrMalformedHeader{Reason: "stream ended inside a message header"}
		}
		return nil, err
	}
	if hdr[0] != Version {
		return nil, ErrMalformedHeader{Reason: fmt.Sprintf("unsupported version: %d", hdr[0])}
	}
	length := int(uint32(hdr[1])<<16 | uint32(hdr[2])<<8 | uint32(hdr[3]))
	if length < HeaderLength {
		return nil, ErrMalformedHeader{Reason: fmt.Sprintf("message length %d less than header size", length)}
	}

	msg := make([]byte, length)
	copy(msg, hdr[:])
	if n, err := io.ReadFull(r, msg[HeaderLength:]); err != nil {
		return nil, ErrMalformedHeader{Reason: fmt.Sprintf("message body truncated: %d of %d bytes read", n, length-HeaderLength)}
	}
	return msg, nil
}

// ReadMessages splits a stream of back-to-back messages.
func ReadMessages(r io.Reader) ([][]byte, error) {
	var msgs [][]byte
	for {
		msg, err := ReadMessage(r)
		if err == io.EOF {
			return msgs, nil
		}
		if err != nil {
			return msgs, err
		}
		msgs = append(msgs, msg)
	}
}
