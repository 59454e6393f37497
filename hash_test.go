// hash_test.go - hash kernel tests
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

func TestHashDeterministic(t *testing.T) {
	assert := newAsserter(t)
	for _, k := range keyw {
		a := H(k, 0)
		b := H(k, 0)
		assert(a == b, "H(%q) not deterministic: %#x != %#x", k, a, b)
	}
}

func TestHashSeedSensitivity(t *testing.T) {
	assert := newAsserter(t)
	for _, k := range keyw {
		a := H(k, 0)
		b := H(k, 1)
		assert(a != b, "H(%q, 0) == H(%q, 1): hash ignores seed", k, k)
	}
}

func TestScrambleDeterministic(t *testing.T) {
	assert := newAsserter(t)
	for i := uint32(0); i < 50; i++ {
		a := scramble(i, 7)
		b := scramble(i, 7)
		assert(a == b, "scramble(%d,7) not deterministic", i)
	}
}

func TestPreHashInRange(t *testing.T) {
	assert := newAsserter(t)
	p := computePreHash("expectoration", 0)

	b := p.bucketOf(1, 997)
	assert(b < 997, "bucketOf out of range: %d", b)

	s := p.inBucketSlot(0, 7)
	assert(s < 7, "inBucketSlot out of range: %d", s)
}
