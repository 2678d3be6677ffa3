// SPDX-License-Identifier: MIT

package makernote

import (
	"encoding/binary"
	"math"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/store"
)

func TestDecodeFLIRGPSInfo(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_flir_root", store.InvalidBlockID)

	rec := make([]byte, 0x68)
	binary.LittleEndian.PutUint32(rec[0x00:], 100)
	copy(rec[0x08:], "N ")
	copy(rec[0x0a:], "E ")
	binary.LittleEndian.PutUint64(rec[0x10:], math.Float64bits(37.5))
	binary.LittleEndian.PutUint64(rec[0x18:], math.Float64bits(-122.3))
	binary.LittleEndian.PutUint32(rec[0x20:], math.Float32bits(10.5))

	status := decodeFLIRGPSInfo(st, blockID, rec, 0)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()) > 0, qt.IsTrue)
}

func TestDecodeFLIRGPSInfoEmptyIsUnsupported(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_flir_root", store.InvalidBlockID)

	status := decodeFLIRGPSInfo(st, blockID, []byte{}, 0)
	c.Assert(status, qt.Equals, store.Unsupported)
}

func TestDecodeFLIRMeterLink(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_flir_root", store.InvalidBlockID)

	rec := make([]byte, 0xd0)
	binary.LittleEndian.PutUint16(rec[0x1a:], 1)
	binary.LittleEndian.PutUint16(rec[0x1c:], 2)
	copy(rec[0x20:], "probe-a")
	binary.LittleEndian.PutUint64(rec[0x60:], math.Float64bits(36.6))

	status := decodeFLIRMeterLink(st, blockID, rec, 0)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()) > 0, qt.IsTrue)
}

func TestDecodeFLIRCameraInfo(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_flir_root", store.InvalidBlockID)

	rec := make([]byte, 0x320)
	binary.LittleEndian.PutUint16(rec[0:], 0x0002)
	binary.LittleEndian.PutUint32(rec[0x20:], math.Float32bits(1.2))
	copy(rec[0xd4:], "SN12345")
	copy(rec[0xf4:], "FLIR E8")

	status := decodeFLIRCameraInfo(st, blockID, rec, true, 0)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()) > 0, qt.IsTrue)
}

func TestDecodeFLIRPaletteInfo(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_flir_root", store.InvalidBlockID)

	rec := make([]byte, 0x70+3*2)
	binary.LittleEndian.PutUint16(rec[0x00:], 2)
	rec[0x06], rec[0x07], rec[0x08] = 255, 0, 0
	rec[0x1a], rec[0x1b] = 1, 2
	copy(rec[0x30:], "IronBow")

	status := decodeFLIRPaletteInfo(st, blockID, rec, true, 0)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()) > 0, qt.IsTrue)
}

func TestDecodeFLIRPaletteInfoEmptyIsUnsupported(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_flir_root", store.InvalidBlockID)

	status := decodeFLIRPaletteInfo(st, blockID, []byte{}, true, 0)
	c.Assert(status, qt.Equals, store.Unsupported)
}

func TestFlirProbeEndian(t *testing.T) {
	c := qt.New(t)
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b, 12)
	c.Assert(flirProbeEndian(b, 0), qt.IsTrue)
}
