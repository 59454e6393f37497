// deltapack.go -- sorted-list delta encoding shared by the lookup codec
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

// deltaEncode packs a sorted-ascending list of uint32s as fixed-width
// deltas from the previous element (the first element is a delta from
// 0), LSB-first. The bit width is the minimum needed to hold the
// largest delta. Per spec.md section 4.3: "Delta encoding resets to 0 at
// the start of each per-key list; per-list bit width b is
// ceil(log2(maxDelta+1))".
func deltaEncode(vals []uint32) (bits uint8, packed []byte) {
	if len(vals) == 0 {
		return 0, nil
	}

	var maxDelta uint32
	prev := uint32(0)
	deltas := make([]uint32, len(vals))
	for i, v := range vals {
		d := v - prev
		deltas[i] = d
		if d > maxDelta {
			maxDelta = d
		}
		prev = v
	}

	width := bitsForCount(uint64(maxDelta))
	if maxDelta == 0 {
		width = 0
	}
	w := newBitWriter()
	for _, d := range deltas {
		w.put(uint64(d), width)
	}
	return uint8(width), w.bytes()
}

// deltaDecode is the inverse of deltaEncode, given the element count and
// bit width.
func deltaDecode(bits uint8, packed []byte, count int) []uint32 {
	out := make([]uint32, count)
	r := newBitReader(packed)
	prev := uint32(0)
	for i := 0; i < count; i++ {
		d := uint32(r.get(uint64(i)*uint64(bits), uint(bits)))
		prev += d
		out[i] = prev
	}
	return out
}
