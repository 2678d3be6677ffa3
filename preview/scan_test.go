// SPDX-License-Identifier: MIT

package preview

import (
	"bytes"
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/scanner"
	"github.com/openmeta-go/openmeta/store"
)

// buildJPEGWithThumbnail assembles a minimal JPEG: SOI, one APP1 segment
// carrying "Exif\0\0" + a hand-built little-endian TIFF with a single IFD0
// holding a JPEGInterchangeFormat/Length pair, then SOS and an embedded
// 4-byte JPEG thumbnail appended right after the IFD's data area.
func buildJPEGWithThumbnail() (fileBytes []byte, jpegOffsetInTIFF uint32, jpegLen uint32) {
	thumb := []byte{0xff, 0xd8, 0xff, 0xd9}
	jpegLen = uint32(len(thumb))

	var tiff bytes.Buffer
	tiff.WriteString("II")
	binary.Write(&tiff, binary.LittleEndian, uint16(42))
	binary.Write(&tiff, binary.LittleEndian, uint32(8)) // IFD0 offset

	const ifd0Off = 8
	const entryCount = 2
	const headerSize = 2
	const entrySize = 12
	jpegOffsetInTIFF = uint32(ifd0Off + headerSize + entryCount*entrySize + 4) // + next-IFD pointer

	binary.Write(&tiff, binary.LittleEndian, uint16(entryCount))

	// tag 0x0201 JPEGInterchangeFormat, type LONG(4), count 1, inline value
	binary.Write(&tiff, binary.LittleEndian, uint16(0x0201))
	binary.Write(&tiff, binary.LittleEndian, uint16(4))
	binary.Write(&tiff, binary.LittleEndian, uint32(1))
	binary.Write(&tiff, binary.LittleEndian, jpegOffsetInTIFF)

	// tag 0x0202 JPEGInterchangeFormatLength, type LONG(4), count 1
	binary.Write(&tiff, binary.LittleEndian, uint16(0x0202))
	binary.Write(&tiff, binary.LittleEndian, uint16(4))
	binary.Write(&tiff, binary.LittleEndian, uint32(1))
	binary.Write(&tiff, binary.LittleEndian, jpegLen)

	binary.Write(&tiff, binary.LittleEndian, uint32(0)) // next IFD

	tiff.Write(thumb)

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(0xffd8)) // SOI

	app1Payload := append(append([]byte{}, []byte("Exif\x00\x00")...), tiff.Bytes()...)
	binary.Write(&buf, binary.BigEndian, uint16(0xffe1))
	binary.Write(&buf, binary.BigEndian, uint16(len(app1Payload)+2))
	buf.Write(app1Payload)

	binary.Write(&buf, binary.BigEndian, uint16(0xffda)) // SOS
	buf.WriteByte(0)

	return buf.Bytes(), jpegOffsetInTIFF, jpegLen
}

func TestScanPreviewCandidatesFindsJpegInterchange(t *testing.T) {
	c := qt.New(t)

	fileBytes, jpegOffsetInTIFF, jpegLen := buildJPEGWithThumbnail()

	blocks := make([]scanner.BlockRef, 8)
	candidates := make([]Candidate, 8)
	res := ScanPreviewCandidates(fileBytes, blocks, candidates, DefaultScanOptions())

	c.Assert(res.Status, qt.Equals, store.Ok)
	c.Assert(res.Written, qt.Equals, 1)
	c.Assert(candidates[0].Kind, qt.Equals, KindExifJpegInterchange)
	c.Assert(candidates[0].Size, qt.Equals, int64(jpegLen))

	// The EXIF APP1 payload starts right after "Exif\x00\x00" within the
	// segment; rather than recompute that absolute offset, just check the
	// candidate lands on the embedded thumbnail's real SOI bytes.
	soi, ok := candidate2Bytes(fileBytes, candidates[0])
	c.Assert(ok, qt.IsTrue)
	c.Assert(soi, qt.DeepEquals, []byte{0xff, 0xd8})
	_ = jpegOffsetInTIFF
}

func candidate2Bytes(fileBytes []byte, cand Candidate) ([]byte, bool) {
	if cand.FileOffset < 0 || cand.FileOffset+2 > int64(len(fileBytes)) {
		return nil, false
	}
	return fileBytes[cand.FileOffset : cand.FileOffset+2], true
}

func TestScanPreviewCandidatesExtract(t *testing.T) {
	c := qt.New(t)

	fileBytes, _, jpegLen := buildJPEGWithThumbnail()

	blocks := make([]scanner.BlockRef, 8)
	candidates := make([]Candidate, 8)
	res := ScanPreviewCandidates(fileBytes, blocks, candidates, DefaultScanOptions())
	c.Assert(res.Written, qt.Equals, 1)

	out := make([]byte, jpegLen)
	extractRes := ExtractPreviewCandidate(fileBytes, candidates[0], out, ExtractOptions{RequireJpegSOI: true})
	c.Assert(extractRes.Status, qt.Equals, store.Ok)
	c.Assert(extractRes.Written, qt.Equals, int(jpegLen))
	c.Assert(out, qt.DeepEquals, []byte{0xff, 0xd8, 0xff, 0xd9})
}

func TestScanPreviewCandidatesNoMatch(t *testing.T) {
	c := qt.New(t)

	blocks := make([]scanner.BlockRef, 4)
	candidates := make([]Candidate, 4)
	res := ScanPreviewCandidates([]byte("not an image"), blocks, candidates, DefaultScanOptions())
	c.Assert(res.Written, qt.Equals, 0)
}
