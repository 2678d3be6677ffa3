// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/store"
)

func TestScanAutoDetectsJPEG(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(jpegSOI))
	exifPayload := append(append([]byte{}, exifHeader6...), []byte("II*\x00\x08\x00\x00\x00\x00\x00")...)
	buildJPEGSegment(&buf, jpegAPP1, exifPayload)
	binary.Write(&buf, binary.BigEndian, uint16(jpegSOS))
	buf.WriteByte(0)

	out := make([]BlockRef, 4)
	res := ScanAuto(buf.Bytes(), out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 1)
	c.Assert(out[0].Format, qt.Equals, FormatJPEG)
}

func TestScanAutoDetectsPNG(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	buf.Write(pngSignature)
	writePNGChunk(&buf, "eXIf", []byte("II*\x00\x08\x00\x00\x00\x00\x00"))
	writePNGChunk(&buf, "IEND", nil)

	out := make([]BlockRef, 4)
	res := ScanAuto(buf.Bytes(), out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 1)
	c.Assert(out[0].Format, qt.Equals, FormatPNG)
}

func TestScanAutoDetectsWebP(t *testing.T) {
	c := qt.New(t)

	var body bytes.Buffer
	writeRIFFChunk(&body, "EXIF", []byte("II*\x00\x08\x00\x00\x00\x00\x00"))

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(4+body.Len()))
	buf.WriteString("WEBP")
	buf.Write(body.Bytes())

	out := make([]BlockRef, 4)
	res := ScanAuto(buf.Bytes(), out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 1)
	c.Assert(out[0].Format, qt.Equals, FormatWebP)
}

func TestScanAutoDetectsGIF(t *testing.T) {
	c := qt.New(t)
	data := buildGIF([]byte("<x:xmpmeta/>"))
	out := make([]BlockRef, 4)
	res := ScanAuto(data, out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 1)
	c.Assert(out[0].Format, qt.Equals, FormatGIF)
}

func TestScanAutoDetectsTIFF(t *testing.T) {
	c := qt.New(t)
	data := buildClassicTIFFWithTag(0x010f, 2, []byte("Make\x00"))
	out := make([]BlockRef, 4)
	res := ScanAuto(data, out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 1)
	c.Assert(out[0].Format, qt.Equals, FormatTIFF)
}

func TestScanAutoDetectsBMFFByBrand(t *testing.T) {
	c := qt.New(t)
	data := buildHEIFWithExifItem()
	out := make([]BlockRef, 4)
	res := ScanAuto(data, out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 1)
	c.Assert(out[0].Format, qt.Equals, FormatHEIF)
}

func TestScanAutoUnknownFormat(t *testing.T) {
	c := qt.New(t)
	out := make([]BlockRef, 4)
	res := ScanAuto([]byte("nothing recognisable here"), out)
	c.Assert(res.Status, qt.Equals, store.Unsupported)
}
