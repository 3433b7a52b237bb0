package models_base

import "testing"

func TestPad4(t *testing.T) {
	tests := []struct{ in, want int }{{0, 0}, {1, 4}, {2, 4}, {4, 4}, {41, 44}, {49, 52}}
	for _, tt := range tests {
		if n := pad4(tt.in); n != tt.want {
			t.Fatalf("pad4(%d): want %d, have %d", tt.in, tt.want, n)
		}
	}
}
