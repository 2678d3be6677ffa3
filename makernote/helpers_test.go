// SPDX-License-Identifier: MIT

package makernote

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openmeta-go/openmeta/store"
)

func utf16LEBytes(s string) []byte {
	out := make([]byte, 0, len(s)*2+2)
	for _, r := range s {
		out = append(out, byte(r), 0)
	}
	out = append(out, 0, 0)
	return out
}

func TestDecodeUTF16LEText(t *testing.T) {
	c := qt.New(t)

	raw := utf16LEBytes("D850")
	text, ok := decodeUTF16LEText(raw)
	c.Assert(ok, qt.IsTrue)
	c.Assert(text, qt.Equals, "D850")
}

func TestLooksUTF16LE(t *testing.T) {
	c := qt.New(t)

	c.Assert(looksUTF16LE(utf16LEBytes("NX300")), qt.IsTrue)
	c.Assert(looksUTF16LE([]byte("NX300\x00")), qt.IsFalse)
	c.Assert(looksUTF16LE([]byte{1, 2}), qt.IsFalse)
}

func TestSubtableToken(t *testing.T) {
	c := qt.New(t)
	c.Assert(subtableToken("canon", "camerasettings", 3), qt.Equals, "mk_canon_camerasettings_3")
}

func TestEmitBinDirEntriesScalarWidth(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("root", store.InvalidBlockID)

	raw := []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03}
	status := emitBinDirEntries(st, blockID, "mk_test_table_0", raw, false, 2, store.ElemU16, false)
	c.Assert(status, qt.Equals, store.Ok)
}

func TestEmitBinDirEntriesShortBuffer(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("root", store.InvalidBlockID)

	status := emitBinDirEntries(st, blockID, "mk_test_table_0", []byte{0x01}, false, 2, store.ElemU16, false)
	c.Assert(status, qt.Equals, store.Unsupported)
}

func TestEmitBinDirEntriesSignedSignExtends(t *testing.T) {
	c := qt.New(t)
	st := store.New()
	blockID := st.AddBlockNamed("root", store.InvalidBlockID)

	// 0xfffe as i16 is -2; as plain u16 it would be 65534.
	raw := []byte{0xfe, 0xff}
	status := emitBinDirEntries(st, blockID, "mk_test_signed_0", raw, true, 2, store.ElemI16, true)
	c.Assert(status, qt.Equals, store.Ok)

	var scalar uint64
	for _, e := range st.Entries() {
		if e.Value.ElemType == store.ElemI16 {
			scalar = e.Value.Scalar
		}
	}
	c.Assert(int64(int16(scalar)), qt.Equals, int64(-2))
	c.Assert(scalar, qt.Equals, uint64(0xfffffffffffffffe))
}

func TestEmitFixedFieldsBuildsNamedBlock(t *testing.T) {
	c := qt.New(t)
	st := store.New()

	status := emitFixedFields(st, store.InvalidBlockID, "mk_test_fixed_0", []fixedField{
		u16Field(0x0001, 42),
		u8Field(0x0002, 7),
	})
	c.Assert(status, qt.Equals, store.Ok)
	c.Assert(len(st.Entries()), qt.Equals, 2)
}

func TestTrimASCIIField(t *testing.T) {
	c := qt.New(t)
	c.Assert(trimASCIIField([]byte("  hello \x00\x00")), qt.Equals, "hello")
	c.Assert(trimASCIIField([]byte("\x00\x00\x00")), qt.Equals, "")
}
