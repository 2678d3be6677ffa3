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

func TestDecodeHPNotIIIIIsUnsupported(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	ctx := tiffwalk.MakerNoteContext{
		Bytes: []byte("XXXXnope"), Cfg: binread.TiffConfig{LE: true},
		Store: st, Limits: tiffwalk.DefaultLimits(),
	}
	c.Assert(decodeHP(ctx), qt.Equals, store.Unsupported)
}

// buildHPType6 lays out a minimal HP Type6 fixed-layout MakerNote: the
// "IIII" + kind-byte + zero-byte header, then FNumber, ExposureTime,
// CameraDateTime and ISO at their fixed offsets, plus a serial field
// carrying the "SERIAL NUMBER:" prefix HP prepends.
func buildHPType6(fnum10 uint16, expUs uint32, dateTime string, iso uint16, serial string) []byte {
	const serialOff = hpSerialOffType6
	size := serialOff + hpSerialFieldLen
	buf := make([]byte, size)
	copy(buf[0:4], "IIII")
	buf[4] = 0x06
	buf[5] = 0x00

	binary.LittleEndian.PutUint16(buf[hpTagAperture:], fnum10)
	binary.LittleEndian.PutUint32(buf[hpTagExposureTime:], expUs)
	copy(buf[hpTagDateTime:hpTagDateTime+20], dateTime)
	binary.LittleEndian.PutUint16(buf[hpTagISO:], iso)

	copy(buf[serialOff:], "SERIAL NUMBER:"+serial)

	return buf
}

func TestDecodeHPType6FixedLayout(t *testing.T) {
	c := qt.New(t)

	buf := buildHPType6(28, 8000, "2024:01:02 03:04:05", 200, "HP12345")

	st := store.New()
	ctx := tiffwalk.MakerNoteContext{
		Bytes:  buf,
		Cfg:    binread.TiffConfig{LE: true},
		Offset: 0,
		Length: int64(len(buf)),
		Store:  st,
		Limits: tiffwalk.DefaultLimits(),
	}
	status := decodeHP(ctx)
	c.Assert(status, qt.Equals, store.Ok)

	var gotISO uint64
	var gotSerial, gotDateTime string
	var gotFNumNum, gotFNumDen int64
	for _, e := range st.Entries() {
		switch {
		case e.Key.Tag == hpTagISO && e.Value.Kind == store.KindScalar:
			gotISO = e.Value.Scalar
		case e.Key.Tag == hpTagAperture && e.Value.Kind == store.KindRational:
			gotFNumNum, gotFNumDen, _ = e.Value.Rational(st.Arena(), 0)
		case e.Key.Tag == hpTagDateTime && e.Value.Kind == store.KindText:
			gotDateTime = string(st.Arena().Span(e.Value.Data))
		case e.Key.Tag == hpSerialOffType6 && e.Value.Kind == store.KindText:
			gotSerial = string(st.Arena().Span(e.Value.Data))
		}
	}

	c.Assert(gotISO, qt.Equals, uint64(200))
	c.Assert(gotFNumNum, qt.Equals, int64(28))
	c.Assert(gotFNumDen, qt.Equals, int64(10))
	c.Assert(gotDateTime, qt.Equals, "2024:01:02 03:04:05")
	c.Assert(gotSerial, qt.Equals, "HP12345")
}
