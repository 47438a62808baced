package decode

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildNGSP assembles a minimal valid NGSP buffer with n identity-rotation,
// origin-positioned points, for shape/count testing.
func buildNGSP(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString(ngspMagic)
	buf.WriteByte(1) // version
	buf.Write([]byte{0, 0, 0})
	binary.Write(&buf, binary.LittleEndian, uint32(n))
	buf.WriteByte(12) // fractional bits
	buf.Write([]byte{0, 0, 0})

	for i := 0; i < n; i++ {
		buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0}) // position
		buf.Write([]byte{127, 0, 0, 0})              // w=1 quaternion
		buf.Write([]byte{160, 160, 160})             // log-scale
		buf.WriteByte(128)                           // opacity logit
	}
	return buf.Bytes()
}

func TestDecodePackedCount(t *testing.T) {
	data := buildNGSP(500)
	samples, err := DecodePacked(data)
	if err != nil {
		t.Fatalf("DecodePacked: unexpected error: %v", err)
	}
	if len(samples) != 500 {
		t.Fatalf("DecodePacked: have %d samples, want 500", len(samples))
	}
	for i, s := range samples {
		if s.Position != (samples[0].Position) {
			t.Fatalf("sample %d: position drifted: %v", i, s.Position)
		}
	}
}

func TestDecodePackedTruncated(t *testing.T) {
	data := buildNGSP(10)
	_, err := DecodePacked(data[:len(data)-5])
	if err == nil {
		t.Fatal("DecodePacked: expected error on truncated payload, got nil")
	}
	var derr *Error
	if !asDecodeError(err, &derr) || derr.Kind != PackedDecodeFailed {
		t.Fatalf("DecodePacked: have %v, want PackedDecodeFailed", err)
	}
}

func TestDecodeDispatchesOnMagic(t *testing.T) {
	data := buildNGSP(5)
	samples, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if len(samples) != 5 {
		t.Fatalf("Decode: have %d samples, want 5", len(samples))
	}
}
