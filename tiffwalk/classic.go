// SPDX-License-Identifier: MIT

package tiffwalk

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

// ClassicEntry is one decoded-but-not-yet-stored IFD entry, returned by
// DecodeClassicIFD so callers (the recursive walker, and vendor MakerNote
// decoders inspecting well-known tags) can act on specific tags without a
// second store lookup.
type ClassicEntry struct {
	Tag          uint16
	Type         uint16
	Count        uint32
	ValueOffset  int64 // absolute file offset of the value bytes (post valueBase)
	Inline       bool
	Value        store.MetaValue
}

// DecodeClassicIFD is the shared classic-IFD primitive (spec.md §4.7's
// `decode_classic_ifd_no_header`): it reads one flat IFD's entries — no
// SubIFD/MakerNote/GeoTIFF dispatch, no next_ifd chaining — into a single
// new block, honoring cfg's endianness and classic/BigTIFF entry shape.
// valueBase is added to every out-of-line value offset before resolving it
// against b, letting vendor decoders apply their own offset policy.
func DecodeClassicIFD(b []byte, cfg binread.TiffConfig, ifdOff, valueBase int64, ifdName string, st *store.Store, parent store.BlockID, limits Limits, extraFlags store.EntryFlags) (store.BlockID, []ClassicEntry, store.Status) {
	status := store.Ok

	entryCount, headerSize, entrySize, ok := readIFDHeader(b, cfg, ifdOff)
	if !ok {
		return store.InvalidBlockID, nil, store.Malformed
	}
	if int(entryCount) > limits.MaxEntriesPerIFD {
		entryCount = uint64(limits.MaxEntriesPerIFD)
		status = store.Merge(status, store.LimitExceeded)
	}

	ifdSpan, ok := st.Arena().AppendString(ifdName)
	if !ok {
		return store.InvalidBlockID, nil, store.Merge(status, store.LimitExceeded)
	}
	blockID := st.AddBlockNamed(ifdName, parent)
	if blockID == store.InvalidBlockID {
		return store.InvalidBlockID, nil, store.Merge(status, store.LimitExceeded)
	}

	var entries []ClassicEntry
	for i := uint64(0); i < entryCount; i++ {
		entryOff := ifdOff + headerSize + int64(i)*entrySize
		tag, typ, count, ok := readEntryHeader(b, cfg, entryOff)
		if !ok {
			status = store.Merge(status, store.Malformed)
			continue
		}

		size := typeSize(typ)
		if size == 0 {
			status = store.Merge(status, store.Unsupported)
			continue
		}
		valueBytes := int64(count) * int64(size)
		if valueBytes < 0 || (limits.MaxValueBytes > 0 && valueBytes > int64(limits.MaxValueBytes)) {
			status = store.Merge(status, store.LimitExceeded)
			continue
		}

		inlineThreshold := int64(4)
		fieldOff := entryOff + 8
		if cfg.BigTIFF {
			inlineThreshold = 8
			fieldOff = entryOff + 12
		}

		var raw []byte
		var absOff int64
		var inline bool
		if valueBytes <= inlineThreshold {
			fieldLen := inlineThreshold
			fb, ok := binread.Bytes(b, fieldOff, fieldLen)
			if !ok {
				status = store.Merge(status, store.Malformed)
				continue
			}
			raw = fb[:valueBytes]
			absOff = fieldOff
			inline = true
		} else {
			var rawOff int64
			if cfg.BigTIFF {
				v, ok := binread.U64(b, fieldOff, cfg.LE)
				if !ok {
					status = store.Merge(status, store.Malformed)
					continue
				}
				rawOff = int64(v)
			} else {
				v, ok := binread.U32(b, fieldOff, cfg.LE)
				if !ok {
					status = store.Merge(status, store.Malformed)
					continue
				}
				rawOff = int64(v)
			}
			absOff = valueBase + rawOff
			fb, ok := binread.Bytes(b, absOff, valueBytes)
			if !ok {
				status = store.Merge(status, store.Malformed)
				continue
			}
			raw = fb
		}

		val, ok := decodeValue(raw, cfg, typ, count, st.Arena())
		if !ok {
			status = store.Merge(status, store.Unsupported)
			continue
		}

		family := store.WireFamilyTIFF
		if cfg.BigTIFF {
			family = store.WireFamilyBigTIFF
		}
		st.AddEntry(store.Entry{
			Key:   store.ExifTagKey(ifdSpan, tag),
			Value: val,
			Origin: store.Origin{
				Block:        blockID,
				OrderInBlock: uint32(i),
				Wire:         store.WireType{Family: family, Code: typ},
				WireCount:    count,
			},
			Flags: extraFlags,
		})
		entries = append(entries, ClassicEntry{Tag: tag, Type: typ, Count: count, ValueOffset: absOff, Inline: inline, Value: val})
	}

	return blockID, entries, status
}

// readIFDHeader returns the entry count and the IFD's header/entry sizes
// (classic: 2-byte count, 12-byte entries; BigTIFF: 8-byte count, 20-byte
// entries).
func readIFDHeader(b []byte, cfg binread.TiffConfig, ifdOff int64) (count uint64, headerSize, entrySize int64, ok bool) {
	if cfg.BigTIFF {
		c, ok := binread.U64(b, ifdOff, cfg.LE)
		return c, 8, 20, ok
	}
	c, ok := binread.U16(b, ifdOff, cfg.LE)
	return uint64(c), 2, 12, ok
}

func readEntryHeader(b []byte, cfg binread.TiffConfig, entryOff int64) (tag, typ uint16, count uint32, ok bool) {
	tag, ok = binread.U16(b, entryOff, cfg.LE)
	if !ok {
		return
	}
	typ, ok = binread.U16(b, entryOff+2, cfg.LE)
	if !ok {
		return
	}
	if cfg.BigTIFF {
		c, ok2 := binread.U64(b, entryOff+4, cfg.LE)
		ok = ok2
		count = uint32(c)
		return
	}
	count, ok = binread.U32(b, entryOff+4, cfg.LE)
	return
}

// nextIFDOffset reads the trailing `next IFD` pointer after entryCount
// entries, returning 0 (meaning "no more IFDs") if it can't be read.
func nextIFDOffset(b []byte, cfg binread.TiffConfig, ifdOff int64, entryCount uint64) int64 {
	headerSize, entrySize := int64(2), int64(12)
	if cfg.BigTIFF {
		headerSize, entrySize = 8, 20
		v, ok := binread.U64(b, ifdOff+headerSize+int64(entryCount)*entrySize, cfg.LE)
		if !ok {
			return 0
		}
		return int64(v)
	}
	v, ok := binread.U32(b, ifdOff+headerSize+int64(entryCount)*entrySize, cfg.LE)
	if !ok {
		return 0
	}
	return int64(v)
}
