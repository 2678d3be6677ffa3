// SPDX-License-Identifier: MIT

package makernote

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

func buildReconyxHyperfire(serial string) []byte {
	buf := make([]byte, 80)
	buf[0], buf[1] = 0x01, 0xf1
	copy(buf[42:], utf16LEBytes(serial))
	return buf
}

func TestDecodeReconyxHyperfireMagic(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	buf := buildReconyxHyperfire("X12345")

	ctx := tiffwalk.MakerNoteContext{
		Bytes:  buf,
		Cfg:    binread.TiffConfig{LE: true},
		Offset: 0,
		Length: int64(len(buf)),
		Store:  st,
		Limits: tiffwalk.DefaultLimits(),
	}
	status := decodeReconyx(ctx)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()) > 0, qt.IsTrue)
}

func TestDecodeReconyxUnrecognisedMagicIsUnsupported(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	buf := []byte("NOPE NOPE")

	ctx := tiffwalk.MakerNoteContext{
		Bytes:  buf,
		Cfg:    binread.TiffConfig{LE: true},
		Offset: 0,
		Length: int64(len(buf)),
		Store:  st,
		Limits: tiffwalk.DefaultLimits(),
	}
	status := decodeReconyx(ctx)
	c.Assert(status, qt.Equals, store.Unsupported)
}

func TestReconyxSerialOffset(t *testing.T) {
	c := qt.New(t)
	c.Assert(reconyxSerialOffset("hyperfire"), qt.Equals, int64(0x2a))
	c.Assert(reconyxSerialOffset("hyperfire2"), qt.Equals, int64(0x7e))
	c.Assert(reconyxSerialOffset("ultrafire"), qt.Equals, int64(-1))
}

func TestDecodeReconyxSerialDecodesUTF16(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_reconyx_hyperfire_0", store.InvalidBlockID)

	raw := make([]byte, 0x2a+30)
	copy(raw[0x2a:], utf16LEBytes("HF12345"))

	status := decodeReconyxSerial(st, blockID, "hyperfire", raw, 0x2a)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()), qt.Equals, 1)
}

func TestDecodeReconyxSerialTooShortIsUnsupported(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_reconyx_hyperfire_0", store.InvalidBlockID)

	status := decodeReconyxSerial(st, blockID, "hyperfire", []byte{0x01}, 0x2a)
	c.Assert(status, qt.Equals, store.Unsupported)
}
