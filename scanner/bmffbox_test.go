// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"
	"encoding/binary"
)

// writeBMFFBox appends a standard 8-byte-header ISOBMFF box to buf.
func writeBMFFBox(buf *bytes.Buffer, fourcc string, payload []byte) {
	binary.Write(buf, binary.BigEndian, uint32(8+len(payload)))
	buf.WriteString(fourcc)
	buf.Write(payload)
}

func fullBoxHeader(version uint8, flags uint32) []byte {
	v := uint32(version)<<24 | flags&0x00ffffff
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}
