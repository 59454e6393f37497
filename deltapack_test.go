// deltapack_test.go - sorted-list delta encoding tests
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

import "testing"

func TestDeltaRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	cases := [][]uint32{
		nil,
		{0},
		{5},
		{0, 1, 2, 3, 4},
		{10, 20, 30, 1000},
		{1, 1, 1, 1},
	}

	for _, vals := range cases {
		bits, packed := deltaEncode(vals)
		got := deltaDecode(bits, packed, len(vals))
		assert(len(got) == len(vals), "length mismatch: %d != %d", len(got), len(vals))
		for i := range vals {
			assert(got[i] == vals[i], "element %d mismatch: %d != %d", i, got[i], vals[i])
		}
	}
}
