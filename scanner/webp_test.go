// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/store"
)

func writeRIFFChunk(buf *bytes.Buffer, fourcc string, data []byte) {
	buf.WriteString(fourcc)
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	if len(data)%2 != 0 {
		buf.WriteByte(0)
	}
}

func TestScanWebPChunks(t *testing.T) {
	c := qt.New(t)

	var body bytes.Buffer
	writeRIFFChunk(&body, "VP8 ", []byte{1, 2, 3}) // odd length, exercises padding
	writeRIFFChunk(&body, "EXIF", []byte("II*\x00\x08\x00\x00\x00\x00\x00"))
	writeRIFFChunk(&body, "XMP ", []byte("<x:xmpmeta/>"))
	writeRIFFChunk(&body, "ICCP", []byte("profilebytes"))

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(4+body.Len()))
	buf.WriteString("WEBP")
	buf.Write(body.Bytes())

	out := make([]BlockRef, 8)
	res := ScanWebP(buf.Bytes(), out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 3)
	c.Assert(out[0].Kind, qt.Equals, KindExif)
	c.Assert(out[1].Kind, qt.Equals, KindXmp)
	c.Assert(out[2].Kind, qt.Equals, KindIcc)
}

func TestScanWebPRejectsNonRIFF(t *testing.T) {
	c := qt.New(t)
	out := make([]BlockRef, 4)
	res := ScanWebP([]byte("not riff at all........."), out)
	c.Assert(res.Status, qt.Equals, store.Unsupported)
}
