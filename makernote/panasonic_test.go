// SPDX-License-Identifier: MIT

package makernote

import (
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/store"
)

func TestDecodePanasonicFaceDetInfo(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_panasonic_root", store.InvalidBlockID)

	raw := make([]byte, 2+int(panasonicFaceDetTagOffsets[1])*2+8)
	binary.LittleEndian.PutUint16(raw[0:], 2) // two faces
	for i := 0; i < 2; i++ {
		off := int(panasonicFaceDetTagOffsets[i]) * 2
		for j := 0; j < 4; j++ {
			binary.LittleEndian.PutUint16(raw[off+j*2:], uint16(i*10+j))
		}
	}

	status := decodePanasonicFaceDetInfo(st, blockID, raw, true)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()) >= 3, qt.IsTrue)
}

func TestDecodePanasonicFaceDetInfoShortBufferIsMalformed(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_panasonic_root", store.InvalidBlockID)

	status := decodePanasonicFaceDetInfo(st, blockID, []byte{0x01}, true)
	c.Assert(status, qt.Equals, store.Malformed)
}

func TestDecodePanasonicFaceRecInfo(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_panasonic_root", store.InvalidBlockID)

	raw := make([]byte, 4+48)
	binary.LittleEndian.PutUint16(raw[0:], 1)
	copy(raw[4:24], "Alice\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")
	binary.LittleEndian.PutUint16(raw[24:], 10)
	binary.LittleEndian.PutUint16(raw[26:], 20)
	binary.LittleEndian.PutUint16(raw[28:], 30)
	binary.LittleEndian.PutUint16(raw[30:], 40)
	copy(raw[32:52], "30\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")

	status := decodePanasonicFaceRecInfo(st, blockID, raw, true)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()) >= 2, qt.IsTrue)
}

func TestDecodePanasonicTimeInfoBCD(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_panasonic_root", store.InvalidBlockID)

	raw := []byte{0x20, 0x24, 0x07, 0x15, 0x13, 0x45, 0x30, 0x05}
	status := decodePanasonicTimeInfo(st, blockID, raw)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()), qt.Equals, 1)
}

func TestDecodePanasonicTimeInfoInvalidBCDFallsBackToBytes(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_panasonic_root", store.InvalidBlockID)

	raw := []byte{0xff, 0x24, 0x07, 0x15, 0x13, 0x45, 0x30, 0x05}
	status := decodePanasonicTimeInfo(st, blockID, raw)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()), qt.Equals, 1)
}

func TestDecodePanasonicTimeInfoTooShortIsUnsupported(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_panasonic_root", store.InvalidBlockID)

	status := decodePanasonicTimeInfo(st, blockID, []byte{0x01, 0x02})
	c.Assert(status, qt.Equals, store.Unsupported)
}
