// SPDX-License-Identifier: MIT

package binread

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestScalarReads(t *testing.T) {
	c := qt.New(t)
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	v16, ok := U16LE(b, 0)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v16, qt.Equals, uint16(0x0201))

	v16be, ok := U16BE(b, 0)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v16be, qt.Equals, uint16(0x0102))

	v32, ok := U32LE(b, 0)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v32, qt.Equals, uint32(0x04030201))

	v64, ok := U64BE(b, 0)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v64, qt.Equals, uint64(0x0102030405060708))
}

func TestBoundedReadsNeverPanic(t *testing.T) {
	c := qt.New(t)
	b := []byte{0x01, 0x02}

	_, ok := U32LE(b, 0)
	c.Assert(ok, qt.IsFalse)

	_, ok = U16LE(b, -1)
	c.Assert(ok, qt.IsFalse)

	_, ok = U16LE(b, 1)
	c.Assert(ok, qt.IsFalse)

	_, ok = Bytes(b, 0, 100)
	c.Assert(ok, qt.IsFalse)
}

func TestFuzzNoPanic(t *testing.T) {
	data := make([]byte, 37)
	for i := range data {
		data[i] = byte(i * 31)
	}
	for off := int64(-2); off < 40; off++ {
		U8(data, off)
		U16LE(data, off)
		U16BE(data, off)
		U32LE(data, off)
		U32BE(data, off)
		U64LE(data, off)
		U64BE(data, off)
		Bytes(data, off, 5)
	}
}
