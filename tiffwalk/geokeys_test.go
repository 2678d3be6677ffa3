// SPDX-License-Identifier: MIT

package tiffwalk

import (
	"bytes"
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

// buildGeoKeyDirAndAscii lays out [dirBytes][asciiBytes] contiguously so
// decodeGeoTiffKeys's file-relative offset reads exercise the real code
// path, along with the ClassicEntry headers pointing into it the way
// DecodeClassicIFD would have produced them.
func buildGeoKeyDirAndAscii() (b []byte, geoDir, geoAscii *ClassicEntry) {
	var dir bytes.Buffer
	binary.Write(&dir, binary.LittleEndian, uint16(1)) // version
	binary.Write(&dir, binary.LittleEndian, uint16(1)) // key revision
	binary.Write(&dir, binary.LittleEndian, uint16(0)) // minor revision
	binary.Write(&dir, binary.LittleEndian, uint16(2)) // number of keys

	// Key 1: literal value, location=0.
	binary.Write(&dir, binary.LittleEndian, uint16(1024))
	binary.Write(&dir, binary.LittleEndian, uint16(0))
	binary.Write(&dir, binary.LittleEndian, uint16(1))
	binary.Write(&dir, binary.LittleEndian, uint16(2))

	// Key 2: ASCII value, location=GeoAsciiParams; count spans "WGS 84|".
	binary.Write(&dir, binary.LittleEndian, uint16(2049))
	binary.Write(&dir, binary.LittleEndian, uint16(TagGeoAsciiParams))
	binary.Write(&dir, binary.LittleEndian, uint16(7))
	binary.Write(&dir, binary.LittleEndian, uint16(0))

	ascii := []byte("WGS 84|\x00")

	var buf bytes.Buffer
	buf.Write(dir.Bytes())
	asciiOff := buf.Len()
	buf.Write(ascii)

	geoDir = &ClassicEntry{Tag: TagGeoKeyDir, ValueOffset: 0, Count: uint32(dir.Len() / 2)}
	geoAscii = &ClassicEntry{Tag: TagGeoAsciiParams, ValueOffset: int64(asciiOff), Count: uint32(len(ascii))}
	return buf.Bytes(), geoDir, geoAscii
}

func TestDecodeGeoTiffKeysLiteralAndAscii(t *testing.T) {
	c := qt.New(t)

	b, geoDir, geoAscii := buildGeoKeyDirAndAscii()
	st := store.New()
	status := decodeGeoTiffKeys(b, binread.TiffConfig{LE: true}, st, geoDir, nil, geoAscii)
	c.Assert(status, qt.Equals, store.Ok)

	var literalFound, asciiFound bool
	for _, e := range st.Entries() {
		if e.Key.Kind != store.KeyGeoTiffKey {
			continue
		}
		switch e.Key.GeoID {
		case 1024:
			literalFound = true
			c.Assert(e.Value.Scalar, qt.Equals, uint64(2))
		case 2049:
			asciiFound = true
			c.Assert(string(st.Arena().Span(e.Value.Data)), qt.Equals, "WGS 84")
		}
	}
	c.Assert(literalFound, qt.IsTrue)
	c.Assert(asciiFound, qt.IsTrue)
}
