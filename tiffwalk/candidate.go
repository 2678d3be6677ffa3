// SPDX-License-Identifier: MIT

package tiffwalk

import "github.com/openmeta-go/openmeta/binread"

// Candidate is one scored guess at where a classic IFD starts and which
// endianness it uses — the shared search vendor MakerNote decoders run when
// the vendor doesn't pin down the layout by magic alone (spec.md §4.7
// "find_best_classic_ifd_candidate", "Scoring a classic IFD candidate").
type Candidate struct {
	Offset int64
	LE     bool
	Score  int
}

// ScoreClassicIFD reads the candidate entry count at (offset, le) and
// counts entries whose type is known, whose count is plausible (doesn't
// overflow, doesn't claim more bytes than scanBytes has), and whose
// out-of-line extent (if any) fits within [0, scanBytes). It returns -1 if
// the entry count itself can't be read or is absurd.
func ScoreClassicIFD(b []byte, offset int64, le bool, scanBytes int64) int {
	count, ok := binread.U16(b, offset, le)
	if !ok || count == 0 || int64(count) > scanBytes/12 {
		return -1
	}
	score := 0
	for i := uint16(0); i < count; i++ {
		entryOff := offset + 2 + int64(i)*12
		typ, ok := binread.U16(b, entryOff+2, le)
		if !ok {
			continue
		}
		size := typeSize(typ)
		if size == 0 {
			continue
		}
		cnt, ok := binread.U32(b, entryOff+4, le)
		if !ok {
			continue
		}
		valueBytes := int64(cnt) * int64(size)
		if valueBytes < 0 || valueBytes > scanBytes {
			continue
		}
		if valueBytes <= 4 {
			score++
			continue
		}
		valOff, ok := binread.U32(b, entryOff+8, le)
		if !ok {
			continue
		}
		if binread.InBounds(b, offset+int64(valOff), valueBytes) || int64(valOff)+valueBytes <= scanBytes {
			score++
		}
	}
	return score
}

// FindBestClassicIFDCandidate tries offset in candidateOffsets under both
// endiannesses and returns the highest-scoring one. Ties break in favor of
// the earlier offset and, within the same offset, little-endian — callers
// needing a different tie-break (e.g. Canon's absolute > MakerNote-relative
// > auto-adjusted base preference, spec.md §9) should score the candidates
// themselves in their preferred enumeration order instead of using this
// helper directly.
func FindBestClassicIFDCandidate(b []byte, candidateOffsets []int64, scanBytes int64) (Candidate, bool) {
	best := Candidate{Score: -1}
	for _, off := range candidateOffsets {
		for _, le := range [2]bool{true, false} {
			score := ScoreClassicIFD(b, off, le, scanBytes)
			if score > best.Score {
				best = Candidate{Offset: off, LE: le, Score: score}
			}
		}
	}
	if best.Score < 0 {
		return Candidate{}, false
	}
	return best, true
}
