package decode

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// plyProperty describes one declared property of the "vertex" element, in
// the order it appears in the header. Only scalar properties are
// supported, which covers every field this decoder needs (x,y,z,
// rot_0..rot_3).
type plyProperty struct {
	name string
	typ  string // ply type token, e.g. "float", "float32", "uchar"
}

// plyHeader holds the subset of a parsed PLY header this decoder needs:
// the encoding (ascii vs. one of the binary variants), the vertex count,
// and the ordered property list of the vertex element.
type plyHeader struct {
	binary     bool
	bigEndian  bool
	vertexN    int
	properties []plyProperty
	sawVertex  bool
}

// ply property sizes, by declared type token. PLY allows several spellings
// for the same width (e.g. "float"/"float32", "uchar"/"uint8"); we only need
// to skip unknown properties correctly, so every numeric width is covered.
var plyTypeSize = map[string]int{
	"char": 1, "uchar": 1, "int8": 1, "uint8": 1,
	"short": 2, "ushort": 2, "int16": 2, "uint16": 2,
	"int": 4, "uint": 4, "int32": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

// DecodePLY parses an ASCII or binary PLY file and returns one Sample per
// vertex record. It reads only the x,y,z,rot_0..rot_3 properties; any other
// declared property is skipped over but not otherwise interpreted. Missing
// x/y/z/rot_1/rot_2/rot_3 default to 0; missing rot_0 defaults to 1
// (identity quaternion, i.e. normal = +Z). Vertices with a NaN position are
// dropped silently.
//
// PLY carries no scale or opacity fields, so every returned Sample has
// Scale=(1,1,1) and Opacity=1.
//
// Parameters:
//   - data: the full contents of the PLY file
//
// Returns:
//   - []Sample: one sample per surviving vertex
//   - error: *Error with Kind MalformedHeader or MissingVertexElement
func DecodePLY(data []byte) ([]Sample, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	header, err := parsePLYHeader(r)
	if err != nil {
		return nil, newError(MalformedHeader, err)
	}
	if !header.sawVertex {
		return nil, newError(MissingVertexElement, nil)
	}

	var rows [][7]float64 // x,y,z,rot_0,rot_1,rot_2,rot_3
	if header.binary {
		rows, err = readPLYBinaryVertices(r, header)
	} else {
		rows, err = readPLYASCIIVertices(r, header)
	}
	if err != nil {
		return nil, newError(MalformedHeader, err)
	}

	samples := make([]Sample, 0, len(rows))
	for _, row := range rows {
		pos := r3.Vec{X: row[0], Y: row[1], Z: row[2]}
		if isNaNVec(pos) {
			continue
		}
		w, x, y, z := normalizeQuaternion(row[3], row[4], row[5], row[6])
		samples = append(samples, Sample{
			Position: pos,
			Normal:   deriveNormal(w, x, y, z),
			Scale:    r3.Vec{X: 1, Y: 1, Z: 1},
			Opacity:  1,
		})
	}
	return samples, nil
}

// parsePLYHeader reads header lines up to "end_header", recording the
// vertex element's declared properties and the overall encoding.
func parsePLYHeader(r *bufio.Reader) (*plyHeader, error) {
	line, err := r.ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "ply" {
		return nil, fmt.Errorf("expected 'ply' magic line, got %q", strings.TrimSpace(line))
	}

	h := &plyHeader{}
	inVertex := false

	for {
		line, err = r.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("unexpected EOF before end_header: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			if err == io.EOF {
				return nil, fmt.Errorf("unexpected EOF before end_header")
			}
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return nil, fmt.Errorf("malformed format line %q", line)
			}
			switch fields[1] {
			case "ascii":
				h.binary = false
			case "binary_little_endian":
				h.binary, h.bigEndian = true, false
			case "binary_big_endian":
				h.binary, h.bigEndian = true, true
			default:
				return nil, fmt.Errorf("unknown format %q", fields[1])
			}
		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("malformed element line %q", line)
			}
			n, convErr := strconv.Atoi(fields[2])
			if convErr != nil {
				return nil, fmt.Errorf("malformed element count %q: %w", fields[2], convErr)
			}
			inVertex = fields[1] == "vertex"
			if inVertex {
				h.sawVertex = true
				h.vertexN = n
			}
		case "property":
			if !inVertex {
				continue
			}
			if len(fields) < 3 {
				return nil, fmt.Errorf("malformed property line %q", line)
			}
			if fields[1] == "list" {
				// Vertex elements in this format never carry list
				// properties; skip defensively rather than fail the
				// whole file over an unrecognized extension.
				continue
			}
			h.properties = append(h.properties, plyProperty{name: fields[2], typ: fields[1]})
		case "comment", "obj_info":
			// ignored
		case "end_header":
			return h, nil
		default:
			// Unknown declarations (e.g. other elements) are ignored;
			// only the vertex element is required.
			inVertex = false
		}
		if err == io.EOF {
			return nil, fmt.Errorf("unexpected EOF before end_header")
		}
	}
}

// vertexFieldIndex maps the seven property names this decoder cares about to
// their slot in the [7]float64 row; rot_0 occupies index 3 and so on.
func vertexFieldIndex(name string) (int, bool) {
	switch name {
	case "x":
		return 0, true
	case "y":
		return 1, true
	case "z":
		return 2, true
	case "rot_0":
		return 3, true
	case "rot_1":
		return 4, true
	case "rot_2":
		return 5, true
	case "rot_3":
		return 6, true
	default:
		return 0, false
	}
}

func readPLYASCIIVertices(r *bufio.Reader, h *plyHeader) ([][7]float64, error) {
	rows := make([][7]float64, 0, h.vertexN)
	for i := 0; i < h.vertexN; i++ {
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("unexpected EOF at vertex %d: %w", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) < len(h.properties) {
			return nil, fmt.Errorf("vertex %d has %d fields, want %d", i, len(fields), len(h.properties))
		}
		var row [7]float64
		row[3] = 1 // rot_0 defaults to identity quaternion
		for pi, prop := range h.properties {
			idx, ok := vertexFieldIndex(prop.name)
			if !ok {
				continue
			}
			v, convErr := strconv.ParseFloat(fields[pi], 64)
			if convErr != nil {
				return nil, fmt.Errorf("vertex %d property %s: %w", i, prop.name, convErr)
			}
			row[idx] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readPLYBinaryVertices(r *bufio.Reader, h *plyHeader) ([][7]float64, error) {
	order := binary.ByteOrder(binary.LittleEndian)
	if h.bigEndian {
		order = binary.BigEndian
	}

	rows := make([][7]float64, 0, h.vertexN)
	for i := 0; i < h.vertexN; i++ {
		var row [7]float64
		row[3] = 1
		for _, prop := range h.properties {
			size, ok := plyTypeSize[prop.typ]
			if !ok {
				return nil, fmt.Errorf("vertex %d: unsupported property type %q", i, prop.typ)
			}
			buf := make([]byte, size)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("vertex %d property %s: %w", i, prop.name, err)
			}
			idx, wanted := vertexFieldIndex(prop.name)
			if !wanted {
				continue
			}
			row[idx] = decodePLYScalar(order, prop.typ, buf)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// decodePLYScalar interprets buf as the named PLY type and returns it widened
// to float64. Only types that can plausibly hold x/y/z/rot_N values are
// exercised; unsupported widths are caught earlier in the caller.
func decodePLYScalar(order binary.ByteOrder, typ string, buf []byte) float64 {
	switch typ {
	case "float", "float32":
		return float64(math.Float32frombits(order.Uint32(buf)))
	case "double", "float64":
		return math.Float64frombits(order.Uint64(buf))
	case "char", "int8":
		return float64(int8(buf[0]))
	case "uchar", "uint8":
		return float64(buf[0])
	case "short", "int16":
		return float64(int16(order.Uint16(buf)))
	case "ushort", "uint16":
		return float64(order.Uint16(buf))
	case "int", "int32":
		return float64(int32(order.Uint32(buf)))
	case "uint", "uint32":
		return float64(order.Uint32(buf))
	default:
		return 0
	}
}
