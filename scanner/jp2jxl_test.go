// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/store"
)

func TestScanJP2ColrAndUUID(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	writeBMFFBox(&buf, "ftyp", append([]byte("jp2 "), make([]byte, 4)...))

	var colr bytes.Buffer
	colr.WriteByte(2) // method = ICC
	colr.WriteByte(0) // precedence
	colr.WriteByte(0) // approx
	colr.WriteString("fakeiccprofile")

	var jp2h bytes.Buffer
	writeBMFFBox(&jp2h, "colr", colr.Bytes())
	writeBMFFBox(&buf, "jp2h", jp2h.Bytes())

	uuidPayload := append(append([]byte{}, uuidXMP[:]...), []byte("<x:xmpmeta/>")...)
	writeBMFFBox(&buf, "uuid", uuidPayload)

	out := make([]BlockRef, 4)
	res := ScanJP2(buf.Bytes(), out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 2)
	c.Assert(out[0].Kind, qt.Equals, KindIcc)
	c.Assert(out[1].Kind, qt.Equals, KindXmp)
}

func TestScanJXLBoxes(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	writeBMFFBox(&buf, "ftyp", append([]byte("jxl "), make([]byte, 4)...))

	exifPayload := append([]byte{0, 0, 0, 0}, []byte("II*\x00\x08\x00\x00\x00\x00\x00")...)
	writeBMFFBox(&buf, "Exif", exifPayload)
	writeBMFFBox(&buf, "xml ", []byte("<x:xmpmeta/>"))

	brobPayload := append([]byte("Exif"), exifPayload...)
	writeBMFFBox(&buf, "brob", brobPayload)

	out := make([]BlockRef, 4)
	res := ScanJXL(buf.Bytes(), out)
	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 3)
	c.Assert(out[0].Kind, qt.Equals, KindExif)
	c.Assert(out[1].Kind, qt.Equals, KindXmp)
	c.Assert(out[2].Kind, qt.Equals, KindExif)
	c.Assert(out[2].Compression, qt.Equals, CompressionBrotli)
}

func TestScanJP2RejectsWrongBrand(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	writeBMFFBox(&buf, "ftyp", append([]byte("jxl "), make([]byte, 4)...))
	out := make([]BlockRef, 4)
	res := ScanJP2(buf.Bytes(), out)
	c.Assert(res.Status, qt.Equals, store.Unsupported)
}
