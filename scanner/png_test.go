// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/store"
)

func writePNGChunk(buf *bytes.Buffer, tag string, data []byte) {
	binary.Write(buf, binary.BigEndian, uint32(len(data)))
	body := append([]byte(tag), data...)
	buf.Write(body)
	binary.Write(buf, binary.BigEndian, crc32.ChecksumIEEE(body))
}

func TestScanPNGChunks(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	buf.Write(pngSignature)
	writePNGChunk(&buf, "IHDR", make([]byte, 13))
	writePNGChunk(&buf, "eXIf", []byte("II*\x00\x08\x00\x00\x00\x00\x00"))

	iccData := append([]byte("sRGB\x00"), 0, 'd', 'e', 'f', 'l')
	writePNGChunk(&buf, "iCCP", iccData)

	var itxt bytes.Buffer
	itxt.Write(pngXMPNamespace)
	itxt.WriteByte(0)
	itxt.WriteByte(0) // compression flag
	itxt.WriteByte(0) // compression method
	itxt.WriteByte(0) // language tag (empty)
	itxt.WriteByte(0) // translated keyword (empty)
	itxt.WriteString("<x:xmpmeta/>")
	writePNGChunk(&buf, "iTXt", itxt.Bytes())

	writePNGChunk(&buf, "IEND", nil)

	out := make([]BlockRef, 8)
	res := ScanPNG(buf.Bytes(), out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 3)
	c.Assert(out[0].Kind, qt.Equals, KindExif)
	c.Assert(out[1].Kind, qt.Equals, KindIcc)
	c.Assert(out[2].Kind, qt.Equals, KindXmp)
}

func TestScanPNGRejectsBadSignature(t *testing.T) {
	c := qt.New(t)
	out := make([]BlockRef, 4)
	res := ScanPNG([]byte("GIF89a"), out)
	c.Assert(res.Status, qt.Equals, store.Unsupported)
}
