// SPDX-License-Identifier: MIT

package makernote

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/store"
)

func TestNikonDescrambleIsSelfInverse(t *testing.T) {
	c := qt.New(t)

	data := []byte("some nikon lens data blob of arbitrary length....")
	scrambled := nikonDescramble(data, 1234567, 98765)
	roundTrip := nikonDescramble(scrambled, 1234567, 98765)
	c.Assert(roundTrip, qt.DeepEquals, data)
}

func TestNikonDescrambleDifferentKeysDiffer(t *testing.T) {
	c := qt.New(t)

	data := []byte("identical plaintext, different camera keys")
	a := nikonDescramble(data, 111, 222)
	b := nikonDescramble(data, 333, 444)
	c.Assert(a, qt.Not(qt.DeepEquals), b)
}

func TestDecodeNikonColorBalanceKnownVersion(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_nikon_root", store.InvalidBlockID)

	var serial, shutterCount uint32 = 123456, 7890
	plain := []byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04, 0x00}
	enciphered := nikonDescramble(plain, serial, shutterCount)

	raw := append([]byte("0102"), enciphered...)
	status := decodeNikonColorBalance(st, blockID, raw, true, serial, shutterCount, 0)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()) > 0, qt.IsTrue)
}

func TestDecodeNikonColorBalanceUnknownVersionOnlyVersion(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_nikon_root", store.InvalidBlockID)

	raw := append([]byte("9999"), make([]byte, 8)...)
	status := decodeNikonColorBalance(st, blockID, raw, true, 1, 2, 0)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()), qt.Equals, 1)
}

func TestDecodeNikonLensData0204(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("mk_nikon_root", store.InvalidBlockID)

	var serial, shutterCount uint32 = 55, 66
	plain := make([]byte, 16)
	for i := range plain {
		plain[i] = byte(i + 1)
	}
	enciphered := nikonDescramble(plain, serial, shutterCount)
	raw := append([]byte("0204"), enciphered...)

	status := decodeNikonLensData(st, blockID, raw, true, serial, shutterCount, 0)
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()), qt.Equals, len(nikonLensData0204Tags)+1)
}

func TestParseDecimalUint32(t *testing.T) {
	c := qt.New(t)
	c.Assert(parseDecimalUint32("1234567"), qt.Equals, uint32(1234567))
	c.Assert(parseDecimalUint32("007"), qt.Equals, uint32(7))
	c.Assert(parseDecimalUint32("42abc"), qt.Equals, uint32(42))
	c.Assert(parseDecimalUint32(""), qt.Equals, uint32(0))
	c.Assert(parseDecimalUint32("abc"), qt.Equals, uint32(0))
}
