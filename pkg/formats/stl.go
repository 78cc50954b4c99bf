package formats

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"strconv"
	"strings"

	"github.com/Faultbox/partmesh/pkg/math"
	"github.com/Faultbox/partmesh/pkg/scene"
)

// STLPrecision is the number of decimals written per coordinate.
const STLPrecision = 6

// DefaultSolidName is used when no solid name is given.
const DefaultSolidName = "mesh"

const stlHeaderLen = 80

// BinaryHeaderPrefix starts every binary STL header. Readers treat files
// that begin with "solid" as text STL.
const BinaryHeaderPrefix = "partmesh binary STL: "

// ErrInvalidSTL is returned by ReadSTL for text that does not follow the
// facet grammar.
var ErrInvalidSTL = errors.New("invalid STL document")

// Solid is a parsed STL document.
type Solid struct {
	Name   string
	Facets []scene.Triangle
}

// SolidName turns an arbitrary label into a single whitespace-free token.
func SolidName(name string) string {
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		return DefaultSolidName
	}
	return name
}

// WriteSTL writes triangles as a text STL document.
func WriteSTL(w io.Writer, name string, tris []scene.Triangle) error {
	name = SolidName(name)
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 128)

	bw.WriteString("solid " + name + "\n")
	for i := range tris {
		t := &tris[i]
		buf = append(buf[:0], "  facet normal "...)
		buf = appendVec(buf, t.Normal)
		buf = append(buf, "\n    outer loop\n"...)
		for _, v := range t.Vertices {
			buf = append(buf, "      vertex "...)
			buf = appendVec(buf, v)
			buf = append(buf, '\n')
		}
		buf = append(buf, "    endloop\n  endfacet\n"...)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	bw.WriteString("endsolid " + name + "\n")
	return bw.Flush()
}

func appendVec(buf []byte, v math.Vec3) []byte {
	buf = appendCoord(buf, v.X)
	buf = append(buf, ' ')
	buf = appendCoord(buf, v.Y)
	buf = append(buf, ' ')
	return appendCoord(buf, v.Z)
}

// appendCoord formats with fixed precision and never prints negative zero.
func appendCoord(buf []byte, v float64) []byte {
	if gomath.Abs(v) < 0.5e-6 {
		v = 0
	}
	return strconv.AppendFloat(buf, v, 'f', STLPrecision, 64)
}

// WriteBinarySTL writes triangles in the binary STL layout: an 80-byte
// header, a uint32 facet count and 50 bytes per facet.
func WriteBinarySTL(w io.Writer, name string, tris []scene.Triangle) error {
	bw := bufio.NewWriter(w)

	var header [stlHeaderLen]byte
	copy(header[:], BinaryHeaderPrefix+SolidName(name))
	bw.Write(header[:])
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(tris))); err != nil {
		return err
	}

	var rec struct {
		N, V1, V2, V3 [3]float32
		Attr          uint16
	}
	for i := range tris {
		t := &tris[i]
		rec.N = toFloat32(t.Normal)
		rec.V1 = toFloat32(t.Vertices[0])
		rec.V2 = toFloat32(t.Vertices[1])
		rec.V3 = toFloat32(t.Vertices[2])
		if err := binary.Write(bw, binary.LittleEndian, &rec); err != nil {
			return fmt.Errorf("write facet %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func toFloat32(v math.Vec3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// ReadSTL parses a text STL document.
func ReadSTL(r io.Reader) (*Solid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		solid   Solid
		line    int
		facet   scene.Triangle
		nverts  int
		started bool
		ended   bool
	)
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: line %d: %s", ErrInvalidSTL, line, fmt.Sprintf(format, args...))
	}

	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if started {
				return nil, fail("nested solid")
			}
			started = true
			solid.Name = strings.Join(fields[1:], " ")
		case "facet":
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, fail("malformed facet line")
			}
			n, err := parseVec(fields[2:])
			if err != nil {
				return nil, fail("%v", err)
			}
			facet = scene.Triangle{Normal: n}
			nverts = 0
		case "vertex":
			if len(fields) != 4 || nverts >= 3 {
				return nil, fail("malformed vertex line")
			}
			v, err := parseVec(fields[1:])
			if err != nil {
				return nil, fail("%v", err)
			}
			facet.Vertices[nverts] = v
			nverts++
		case "endfacet":
			if nverts != 3 {
				return nil, fail("facet has %d vertices", nverts)
			}
			solid.Facets = append(solid.Facets, facet)
		case "outer", "endloop":
		case "endsolid":
			ended = true
		default:
			return nil, fail("unexpected keyword %q", fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !started || !ended {
		return nil, fmt.Errorf("%w: missing solid or endsolid", ErrInvalidSTL)
	}
	return &solid, nil
}

func parseVec(fields []string) (math.Vec3, error) {
	var c [3]float64
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return math.Vec3{}, err
		}
		c[i] = f
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}
