package smf

import (
	"bytes"
	"testing"
)

func TestAppendVLQ(t *testing.T) {
	tests := []struct {
		value uint32
		want  []byte
	}{
		{0x00, []byte{0x00}},
		{0x40, []byte{0x40}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x81, 0x00}},
		{0x2000, []byte{0xC0, 0x00}},
		{0x3FFF, []byte{0xFF, 0x7F}},
		{0x4000, []byte{0x81, 0x80, 0x00}},
		{0x100000, []byte{0xC0, 0x80, 0x00}},
		{0x1FFFFF, []byte{0xFF, 0xFF, 0x7F}},
		{0x200000, []byte{0x81, 0x80, 0x80, 0x00}},
		{0x8000000, []byte{0xC0, 0x80, 0x80, 0x00}},
		{MaxDelta, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
	}

	for _, tt := range tests {
		got := appendVLQ(nil, tt.value)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("appendVLQ(%#x) = % X, want % X", tt.value, got, tt.want)
		}

		value, n, ok, tooLong := readVLQ(tt.want, 0)
		if !ok || tooLong || n != len(tt.want) || value != tt.value {
			t.Errorf("readVLQ(% X) = %#x, %d, %v, %v", tt.want, value, n, ok, tooLong)
		}
	}
}

func TestReadVLQ_Errors(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantOK      bool
		wantTooLong bool
	}{
		{"empty", nil, false, false},
		{"cut after continuation", []byte{0x81}, false, false},
		{"cut after three bytes", []byte{0x81, 0x80, 0x80}, false, false},
		{"fifth byte needed", []byte{0x81, 0x80, 0x80, 0x80, 0x00}, false, true},
		{"non-minimal but four bytes", []byte{0x80, 0x80, 0x80, 0x00}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok, tooLong := readVLQ(tt.data, 0)
			if ok != tt.wantOK || tooLong != tt.wantTooLong {
				t.Errorf("readVLQ(% X) ok=%v tooLong=%v, want ok=%v tooLong=%v", tt.data, ok, tooLong, tt.wantOK, tt.wantTooLong)
			}
		})
	}
}
