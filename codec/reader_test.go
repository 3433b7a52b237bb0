package codec

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReadMessage(t *testing.T) {
	msg := readHexFixture(t, "gx.diameter.message.txt")
	r := bytes.NewReader(msg)

	got, err := ReadMessage(r)
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("ReadMessage returned %x", got)
	}
	if _, err := ReadMessage(r); err != io.EOF {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestReadMessages(t *testing.T) {
	msg := readHexFixture(t, "gx.diameter.message.txt")
	stream := bytes.Join([][]byte{msg, msg, msg}, nil)

	msgs, err := ReadMessages(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("ReadMessages failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	for i, m := range msgs {
		if !bytes.Equal(m, msg) {
			t.Errorf("message %d differs", i)
		}
	}
}

func TestReadMessageErrors(t *testing.T) {
	msg := readHexFixture(t, "gx.diameter.message.txt")

	badVersion := append([]byte(nil), msg...)
	badVersion[0] = 0
	shortLength := append([]byte(nil), msg...)
	shortLength[1], shortLength[2], shortLength[3] = 0, 0, 8

	tests := []struct {
		name string
		b    []byte
	}{
		{"partial header", msg[:10]},
		{"bad version", badVersion},
		{"length below header", shortLength},
		{"truncated body", msg[:60]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMessage(bytes.NewReader(tt.b))
			var hdrErr ErrMalformedHeader
			if !errors.As(err, &hdrErr) {
				t.Errorf("expected ErrMalformedHeader, got %v", err)
			}
		})
	}
}

func TestReadMessagesReturnsPrefixOnError(t *testing.T) {
	msg := readHexFixture(t, "gx.diameter.message.txt")
	stream := append(append([]byte(nil), msg...), msg[:30]...)

	msgs, err := ReadMessages(bytes.NewReader(stream))
	if err == nil {
		t.Fatal("expected an error for the truncated second message")
	}
	if len(msgs) != 1 {
		t.Errorf("got %d complete messages, want 1", len(msgs))
	}
}
