// bitpack.go -- generic bit-packed array support and varint stream glue
//
// (c) Sudhi Herle 2018, adapted 2026
//
// License GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package mphash

import (
	"github.com/multiformats/go-varint"
)

// bitWriter packs fixed-width unsigned values LSB-first into a byte
// buffer, one field at a time. Used by deltaEncode for the delta-packed
// lists of the lookup encoding (Mode 0 per-key hash lists and Mode 1
// collision-map key-index lists); valueToKeyIndexes and fingerprints are
// written at random-access offsets with putFingerprintAt instead.
type bitWriter struct {
	buf    []byte
	bitpos uint64 // next free bit, LSB-first within each byte
}

func newBitWriter() *bitWriter {
	return &bitWriter{}
}

// put appends the low 'width' bits of v.
func (w *bitWriter) put(v uint64, width uint) {
	for i := uint(0); i < width; i++ {
		bit := (v >> i) & 1
		byteIdx := w.bitpos / 8
		for uint64(len(w.buf)) <= byteIdx {
			w.buf = append(w.buf, 0)
		}
		if bit != 0 {
			w.buf[byteIdx] |= 1 << (w.bitpos % 8)
		}
		w.bitpos++
	}
}

func (w *bitWriter) bytes() []byte {
	return w.buf
}

// bitsLen returns the number of bits written so far.
func (w *bitWriter) bitsLen() uint64 {
	return w.bitpos
}

// bitReader reads fixed-width unsigned values LSB-first out of a byte
// slice at arbitrary bit offsets. Immutable; safe for concurrent reads.
type bitReader struct {
	buf []byte
}

func newBitReader(buf []byte) *bitReader {
	return &bitReader{buf: buf}
}

// get reads 'width' bits starting at bit offset 'bitoff'.
func (r *bitReader) get(bitoff uint64, width uint) uint64 {
	var v uint64
	for i := uint(0); i < width; i++ {
		pos := bitoff + uint64(i)
		byteIdx := pos / 8
		if byteIdx >= uint64(len(r.buf)) {
			continue
		}
		bit := (r.buf[byteIdx] >> (pos % 8)) & 1
		v |= uint64(bit) << i
	}
	return v
}

// bitsForCount returns ceil(log2(n+1)), the number of bits needed to
// represent every value in [0, n] inclusive, but never less than 1 (so
// n == 0 yields 1). Used for the Mode-1
// valueToKeyIndexes field width, where the sentinel value K itself must
// be representable).
func bitsForCount(n uint64) uint {
	var bits uint
	for (uint64(1) << bits) <= n {
		bits++
	}
	if bits == 0 {
		bits = 1
	}
	return bits
}

// nibbleBucketSizes packs one 4-bit counter per bucket: bucket i occupies
// the low nibble of byte i/2 when i is even, the high nibble otherwise.
// Every counter must be in [0,15]; this is enforced by the builder before
// packing.
func nibbleBucketSizes(sizes []byte) []byte {
	out := make([]byte, (len(sizes)+1)/2)
	for i, s := range sizes {
		if s > 15 {
			panic("mphash: bucket size exceeds nibble range")
		}
		if i%2 == 0 {
			out[i/2] |= s & 0x0f
		} else {
			out[i/2] |= (s & 0x0f) << 4
		}
	}
	return out
}

// unpackNibbleBucketSizes is the inverse of nibbleBucketSizes for 'm'
// buckets.
func unpackNibbleBucketSizes(packed []byte, m int) []byte {
	out := make([]byte, m)
	for i := 0; i < m; i++ {
		b := packed[i/2]
		if i%2 == 0 {
			out[i] = b & 0x0f
		} else {
			out[i] = (b >> 4) & 0x0f
		}
	}
	return out
}

// encodeVarintStream appends the unsigned LEB128 encoding of each value
// in 'vals' to a single byte slice, in order. This is the seedStream
// representation: the concatenation of nonzero per-bucket displacement
// seeds, bucket order ascending.
func encodeVarintStream(vals []uint32) []byte {
	var out []byte
	for _, v := range vals {
		out = append(out, varint.ToUvarint(uint64(v))...)
	}
	return out
}

// decodeVarintStream decodes exactly 'count' varints from 'buf' in
// order and returns them alongside the number of bytes consumed.
func decodeVarintStream(buf []byte, count int) ([]uint32, int, error) {
	out := make([]uint32, count)
	off := 0
	for i := 0; i < count; i++ {
		v, n, err := varint.FromUvarint(buf[off:])
		if err != nil {
			return nil, 0, &DecodeError{Field: "seedStream", Err: err}
		}
		out[i] = uint32(v)
		off += n
	}
	return out, off, nil
}
