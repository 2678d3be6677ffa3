// SPDX-License-Identifier: MIT

package makernote

import (
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

func buildKodakKDK() []byte {
	buf := make([]byte, 0x70)
	copy(buf[0:3], "KDK")
	copy(buf[0x08:0x18], "KODAK DC4800\x00\x00\x00\x00")
	buf[0x11] = 2                                     // quality
	buf[0x12] = 1                                      // burst mode / color mode byte
	binary.LittleEndian.PutUint16(buf[0x14:], 1600)    // width
	binary.LittleEndian.PutUint16(buf[0x16:], 1200)    // height
	binary.LittleEndian.PutUint16(buf[0x18:], 2024)    // year
	buf[0x1a], buf[0x1b] = 7, 15                       // month, day
	buf[0x1c], buf[0x1d], buf[0x1e], buf[0x1f] = 13, 45, 30, 5
	binary.LittleEndian.PutUint16(buf[0x26:], 280)     // fnumber*100 = f/2.8
	binary.LittleEndian.PutUint32(buf[0x28:], 1000000) // exposure time *1e5 seconds-ish
	binary.LittleEndian.PutUint16(buf[0x68:], 0)
	buf[0x68] = 100 // iso
	return buf
}

func TestDecodeKodakKDKFixedLayout(t *testing.T) {
	c := qt.New(t)
	st := store.New()

	buf := buildKodakKDK()
	ctx := tiffwalk.MakerNoteContext{
		Bytes:  buf,
		Cfg:    binread.TiffConfig{LE: true},
		Offset: 0,
		Length: int64(len(buf)),
		Store:  st,
		Limits: tiffwalk.DefaultLimits(),
	}

	status := decodeKodak(ctx)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()) > 10, qt.IsTrue)
}

func TestDecodeKodakKDKTooShortIsUnsupported(t *testing.T) {
	c := qt.New(t)
	st := store.New()

	buf := make([]byte, 0x10)
	copy(buf[0:3], "KDK")
	ctx := tiffwalk.MakerNoteContext{
		Bytes:  buf,
		Cfg:    binread.TiffConfig{LE: true},
		Offset: 0,
		Length: int64(len(buf)),
		Store:  st,
		Limits: tiffwalk.DefaultLimits(),
	}

	status := decodeKodak(ctx)
	c.Assert(status, qt.Equals, store.Unsupported)
}

func TestKodakModelString(t *testing.T) {
	c := qt.New(t)
	c.Assert(kodakModelString([]byte("KODAKDC4800\x00\x00\x00\x00\x00")), qt.Equals, "KODAKDC4800")
	c.Assert(kodakModelString([]byte("KODAK DC4800\x00\x00\x00\x00")), qt.Equals, "KODAK")
	c.Assert(kodakModelString([]byte{0x00, 0x01}), qt.Equals, "")
}
