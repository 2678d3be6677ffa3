// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/store"
)

func buildClassicTIFFWithTag(tag uint16, typ uint16, value []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("II")
	binary.Write(&buf, binary.LittleEndian, uint16(42))
	binary.Write(&buf, binary.LittleEndian, uint32(8)) // IFD0 at offset 8

	binary.Write(&buf, binary.LittleEndian, uint16(1)) // one entry
	binary.Write(&buf, binary.LittleEndian, tag)
	binary.Write(&buf, binary.LittleEndian, typ)
	binary.Write(&buf, binary.LittleEndian, uint32(len(value)))

	valueField := make([]byte, 4)
	if len(value) <= 4 {
		copy(valueField, value)
		buf.Write(valueField)
		binary.Write(&buf, binary.LittleEndian, uint32(0)) // next IFD
	} else {
		outOfLine := uint32(buf.Len() + 4 + 4)
		binary.Write(&buf, binary.LittleEndian, outOfLine)
		binary.Write(&buf, binary.LittleEndian, uint32(0)) // next IFD
		buf.Write(value)
	}
	return buf.Bytes()
}

func TestScanTIFFWholeStreamIsExif(t *testing.T) {
	c := qt.New(t)
	data := buildClassicTIFFWithTag(0x010f, 2, []byte("Make\x00"))

	out := make([]BlockRef, 4)
	res := ScanTIFF(data, out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 1)
	c.Assert(out[0].Kind, qt.Equals, KindExif)
	c.Assert(out[0].DataSize, qt.Equals, uint64(len(data)))
}

func TestScanTIFFFindsXMPTag(t *testing.T) {
	c := qt.New(t)
	xmp := []byte("<x:xmpmeta>" + string(make([]byte, 10)))
	data := buildClassicTIFFWithTag(tiffTagXMLPacket, 1, xmp)

	out := make([]BlockRef, 4)
	res := ScanTIFF(data, out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 2)
	c.Assert(out[1].Kind, qt.Equals, KindXmp)
	c.Assert(out[1].DataSize, qt.Equals, uint64(len(xmp)))
}

func TestScanTIFFRejectsBadMagic(t *testing.T) {
	c := qt.New(t)
	out := make([]BlockRef, 4)
	res := ScanTIFF([]byte("not a tiff file........."), out)
	c.Assert(res.Status, qt.Equals, store.Unsupported)
}
