// SPDX-License-Identifier: MIT

package tiffwalk

import (
	"bytes"
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestFindBestClassicIFDCandidatePrefersValidLayout(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	buf.Write([]byte{0xde, 0xad, 0xbe, 0xef, 0xff, 0xff}) // garbage prefix, offset 0

	validOff := int64(buf.Len())
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // 1 entry
	binary.Write(&buf, binary.LittleEndian, uint16(0x0001))
	binary.Write(&buf, binary.LittleEndian, uint16(TypeShort))
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	binary.Write(&buf, binary.LittleEndian, uint32(7))

	cand, ok := FindBestClassicIFDCandidate(buf.Bytes(), []int64{0, validOff}, int64(buf.Len()))
	c.Assert(ok, qt.IsTrue)
	c.Assert(cand.Offset, qt.Equals, validOff)
	c.Assert(cand.LE, qt.IsTrue)
}

func TestScoreClassicIFDRejectsUnreadableCount(t *testing.T) {
	c := qt.New(t)
	score := ScoreClassicIFD([]byte{1}, 0, true, 100)
	c.Assert(score, qt.Equals, -1)
}
