// SPDX-License-Identifier: MIT

package makernote

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/store"
)

func sonyEncipherByte(plain byte) byte {
	return byte(sonyModPow249(uint64(plain), 3))
}

func TestSonyCipherRoundTrip(t *testing.T) {
	c := qt.New(t)

	for _, b := range []byte{0x00, 0x01, 0x42, 0x7f, 0x80, 0xc8 /* 200 */, 0xf8 /* 248 */} {
		enciphered := byte(sonyModPow249(uint64(b), 3))
		deciphered := sonyDecipherOnce(enciphered)
		c.Assert(deciphered, qt.Equals, b, qt.Commentf("byte %d did not round-trip", b))
	}
}

func TestSonyDecipherPassesThroughHighBytes(t *testing.T) {
	c := qt.New(t)
	// Bytes >= 249 are outside the cipher's domain and pass through.
	in := []byte{249, 250, 255}
	out := sonyDecipher(in, 1)
	c.Assert(out, qt.DeepEquals, in)
}

func TestSonyDecipherMultiRound(t *testing.T) {
	c := qt.New(t)
	in := []byte{10, 20, 30}
	once := sonyDecipher(in, 1)
	twice := sonyDecipher(in, 2)
	c.Assert(twice, qt.DeepEquals, sonyDecipher(once, 1))
}

func TestSonyIsEncryptedTag(t *testing.T) {
	c := qt.New(t)
	c.Assert(sonyIsEncryptedTag(0x9050), qt.IsTrue)
	c.Assert(sonyIsEncryptedTag(0x2020), qt.IsTrue)
	c.Assert(sonyIsEncryptedTag(0x2010), qt.IsTrue)
	c.Assert(sonyIsEncryptedTag(0x2050), qt.IsTrue)
	c.Assert(sonyIsEncryptedTag(0x2051), qt.IsFalse)
	c.Assert(sonyIsEncryptedTag(0x0001), qt.IsFalse)
	c.Assert(sonyIsEncryptedTag(0x200f), qt.IsFalse)
}

func TestSonyHeaderLength(t *testing.T) {
	c := qt.New(t)

	b := append([]byte("SONY DSC \x00\x00\x00"), 0x01, 0x00)
	c.Assert(sonyHeaderLength(b, 0), qt.Equals, len("SONY DSC \x00\x00\x00"))

	c.Assert(sonyHeaderLength([]byte("garbage!"), 0), qt.Equals, 0)
}

func TestSonyFieldTableFor(t *testing.T) {
	c := qt.New(t)

	table, name := sonyFieldTableFor(0x9402)
	c.Assert(name, qt.Equals, "tag9402")
	c.Assert(table, qt.DeepEquals, sonyTag9402Fields)

	table, name = sonyFieldTableFor(0x2020)
	c.Assert(name, qt.Equals, "tag2010")
	c.Assert(table, qt.DeepEquals, sonyTag2010Fields)

	table, name = sonyFieldTableFor(0x0001)
	c.Assert(table, qt.IsNil)
	c.Assert(name, qt.Equals, "")
}

func TestDecodeSonyCipherTableDeciphersFields(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_sony_root", store.InvalidBlockID)

	raw := make([]byte, 0x2e)
	raw[0x0002] = sonyEncipherByte(7)
	raw[0x0004] = sonyEncipherByte(42)

	status := decodeSonyCipherTable(st, blockID, "mk_sony_tag9402_0", raw, 1, sonyTag9402Fields)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()) > 0, qt.IsTrue)
}

func TestDecodeSonyCipherTableEmptyTableIsMalformed(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_sony_root", store.InvalidBlockID)

	status := decodeSonyCipherTable(st, blockID, "mk_sony_empty_0", []byte{0x01}, 1, sonyTag9402Fields)
	c.Assert(status, qt.Equals, store.Malformed)
}

func TestSonyLooksLikeClassicIFD(t *testing.T) {
	c := qt.New(t)

	// 2 entries: header(2) + 2*12 + next(4) = 30 bytes, must fit window.
	b := []byte{0x02, 0x00}
	c.Assert(sonyLooksLikeClassicIFD(b, 0, true, 30), qt.IsTrue)
	c.Assert(sonyLooksLikeClassicIFD(b, 0, true, 10), qt.IsFalse)

	zero := []byte{0x00, 0x00}
	c.Assert(sonyLooksLikeClassicIFD(zero, 0, true, 100), qt.IsFalse)
}
