package decode

import (
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ngspMagic is the four-byte tag identifying a packed-Gaussian container.
const ngspMagic = "NGSP"

// ngspHeader is the fixed-size prefix of an NGSP payload, immediately
// following the four magic bytes.
type ngspHeader struct {
	Version         uint8
	_               [3]byte // padding to a 4-byte boundary
	NumPoints       uint32
	FractionalBits  uint8
	_               [3]byte
}

const ngspHeaderSize = 1 + 3 + 4 + 1 + 3

// Per-point quantized record sizes: position is a 24-bit fixed-point triple
// (3 bytes/axis), rotation and opacity are signed/unsigned byte quantities.
const (
	ngspPosBytesPerAxis = 3
	ngspRotBytesPerAxis = 1
)

// isPacked reports whether data begins with the NGSP magic.
func isPacked(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == ngspMagic
}

// DecodePacked unpacks a quantized packed-Gaussian ("NGSP") buffer into
// Samples. Positions are stored as fixed-point fractions of FractionalBits;
// scale is stored as a log-scale byte and exponentiated on unpack; opacity
// is stored as a logit byte and passed through a sigmoid on unpack, mirroring
// how the companion packed-Gaussian codec represents these quantities.
//
// Parameters:
//   - data: the full NGSP buffer, magic bytes included
//
// Returns:
//   - []Sample: one sample per point in the container
//   - error: *Error with Kind PackedDecodeFailed if the buffer is truncated
//     or declares an unsupported version
func DecodePacked(data []byte) ([]Sample, error) {
	if !isPacked(data) {
		return nil, newError(PackedDecodeFailed, fmt.Errorf("missing %q magic", ngspMagic))
	}
	body := data[4:]
	if len(body) < ngspHeaderSize {
		return nil, newError(PackedDecodeFailed, fmt.Errorf("truncated header: need %d bytes, have %d", ngspHeaderSize, len(body)))
	}

	header := ngspHeader{
		Version:        body[0],
		NumPoints:      binary.LittleEndian.Uint32(body[4:8]),
		FractionalBits: body[8],
	}
	if header.Version != 1 {
		return nil, newError(PackedDecodeFailed, fmt.Errorf("unsupported NGSP version %d", header.Version))
	}

	n := int(header.NumPoints)
	recordSize := 3*ngspPosBytesPerAxis + 4*ngspRotBytesPerAxis + 3 + 1 // pos + quat + scale + opacity
	payload := body[ngspHeaderSize:]
	needed := n * recordSize
	if len(payload) < needed {
		return nil, newError(PackedDecodeFailed, fmt.Errorf("truncated payload: need %d bytes for %d points, have %d", needed, n, len(payload)))
	}

	scaleFactor := 1.0 / float64(int(1)<<header.FractionalBits)
	samples := make([]Sample, 0, n)

	for i := 0; i < n; i++ {
		rec := payload[i*recordSize : (i+1)*recordSize]
		off := 0

		pos := r3.Vec{
			X: decodeFixedPoint24(rec[off:off+3]) * scaleFactor,
			Y: decodeFixedPoint24(rec[off+3:off+6]) * scaleFactor,
			Z: decodeFixedPoint24(rec[off+6:off+9]) * scaleFactor,
		}
		off += 9

		w := decodeQuantizedUnit(rec[off])
		x := decodeQuantizedUnit(rec[off+1])
		y := decodeQuantizedUnit(rec[off+2])
		z := decodeQuantizedUnit(rec[off+3])
		off += 4

		logScale := r3.Vec{
			X: decodeLogScaleByte(rec[off]),
			Y: decodeLogScaleByte(rec[off+1]),
			Z: decodeLogScaleByte(rec[off+2]),
		}
		off += 3

		opacity := sigmoid(decodeLogitByte(rec[off]))

		if isNaNVec(pos) {
			continue
		}
		nw, nx, ny, nz := normalizeQuaternion(w, x, y, z)
		samples = append(samples, Sample{
			Position: pos,
			Normal:   deriveNormal(nw, nx, ny, nz),
			Scale:    r3.Vec{X: math.Exp(logScale.X), Y: math.Exp(logScale.Y), Z: math.Exp(logScale.Z)},
			Opacity:  opacity,
		})
	}

	return samples, nil
}

// decodeFixedPoint24 reinterprets 3 little-endian bytes as a signed 24-bit
// integer and widens it to float64.
func decodeFixedPoint24(b []byte) float64 {
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if v&0x800000 != 0 {
		v |= -0x1000000 // sign-extend bit 23
	}
	return float64(v)
}

// decodeQuantizedUnit maps a signed byte in [-127,127] to a float in
// [-1,1], used for quaternion components.
func decodeQuantizedUnit(b byte) float64 {
	return float64(int8(b)) / 127.0
}

// decodeLogScaleByte recovers the stored natural-log scale exponent from a
// single byte, spread over a [-10, 6] range to cover typical splat extents.
func decodeLogScaleByte(b byte) float64 {
	return float64(b)/16.0 - 10.0
}

// decodeLogitByte recovers the stored opacity logit from a single byte.
func decodeLogitByte(b byte) float64 {
	return float64(b)/16.0 - 8.0
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
