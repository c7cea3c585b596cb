package halo

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// WriteSTL writes c as a binary STL file.
func (c *Crystal) WriteSTL(w io.Writer, header string) error {
	bw := bufio.NewWriter(w)

	var h [80]byte
	copy(h[:], header)
	for i := len(header); i < len(h); i++ {
		h[i] = ' '
	}
	bw.Write(h[:])
	binary.Write(bw, binary.LittleEndian, uint32(len(c.Tris)))

	triBuf := make([]byte, 4*3*4+2)
	put := func(off int, v r3.Vec) {
		for i, x := range [3]float64{v.X, v.Y, v.Z} {
			binary.LittleEndian.PutUint32(triBuf[off+4*i:], math.Float32bits(float32(x)))
		}
	}
	for i := range c.Tris {
		var n r3.Vec
		if i < len(c.Normals) {
			n = c.Normals[i]
		}
		put(0, n)
		// STL wants counter-clockwise vertexes seen from outside, which
		// is the reverse of our winding.
		tri := c.Triangle(i)
		put(12, tri[0])
		put(24, tri[2])
		put(36, tri[1])
		if _, err := bw.Write(triBuf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadSTL reads a binary STL file written by WriteSTL. The returned
// crystal has vertexes, triangles, and normals, but no areas.
func ReadSTL(r io.Reader) (c *Crystal, header string, err error) {
	c = new(Crystal)

	var hdr struct {
		H    [80]byte
		NTri uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, "", err
	}
	header = strings.TrimRight(string(hdr.H[:]), " ")

	vertMap := make(map[r3.Vec]int)

	get := func(buf []byte) r3.Vec {
		var x [3]float64
		for i := range x {
			x[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:])))
		}
		return r3.Vec{X: x[0], Y: x[1], Z: x[2]}
	}
	triBuf := make([]byte, 4*3*4+2)
	for i := 0; i < int(hdr.NTri); i++ {
		// Read a triangle
		if _, err := io.ReadFull(r, triBuf); err != nil {
			return nil, "", err
		}
		c.Normals = append(c.Normals, get(triBuf))
		var tri [3]int
		// Undo the winding swap from WriteSTL.
		for v, off := range [3]int{12, 36, 24} {
			vert := get(triBuf[off:])
			// Add the vertex to the vertex set.
			vertIndex, ok := vertMap[vert]
			if !ok {
				vertIndex = len(c.Verts)
				c.Verts = append(c.Verts, vert)
				vertMap[vert] = vertIndex
			}
			tri[v] = vertIndex
		}
		// Add the triangle.
		c.Tris = append(c.Tris, tri)
	}

	return c, header, nil
}
