// hash.go - the hash kernel: deterministic string hash and scramble
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
	"unicode/utf16"

	"github.com/spaolacci/murmur3"
)

// fpSeed is the seed used to derive per-key fingerprints for both the
// validation layer on the MPHF and the membership filter.
const fpSeed uint32 = 0x1234ABCD

// H computes the MurmurHash3 x86_32 body over the UTF-16 code unit
// sequence of s, seeded with 'seed'. Cross implementations must hash the
// same code-unit sequence bit-for-bit, so every string is re-encoded from
// Go's native UTF-8 representation before hashing; surrogates are not
// validated, matching the reference algorithm's contract.
func H(s string, seed uint32) uint32 {
	units := utf16.Encode([]rune(s))
	b := make([]byte, 2*len(units))
	for i, u := range units {
		b[2*i] = byte(u)
		b[2*i+1] = byte(u >> 8)
	}
	return murmur3.Sum32WithSeed(b, seed)
}

// scramble cheaply derives an additional independent-looking 32-bit value
// from a precomputed hash 'x', re-seeded with 'seed', without rehashing
// the original string. This is the finalization mixer from MurmurHash3,
// applied to x^seed.
func scramble(x, seed uint32) uint32 {
	k := x ^ seed
	k *= 0x85EBCA6B
	k ^= k >> 13
	k *= 0xC2B2AE35
	k ^= k >> 16
	return k
}

// preHash is the pair (h1, h2) = (H(k, hashSeed), H(k, ^hashSeed)) used
// throughout the builder and evaluator as the 64-bit logical hash of a
// key. It is computed once per key and never rehashed from the string
// again; every subsequent derived value comes from scramble(h1, s) ^ h2.
type preHash struct {
	h1, h2 uint32
}

func computePreHash(s string, hashSeed uint32) preHash {
	return preHash{
		h1: H(s, hashSeed),
		h2: H(s, ^hashSeed),
	}
}

// bucketOf maps a pre-hash to a bucket index in [0, m) using the
// multiplicative range-reduction mapping floor(h * m / 2^32), where h is
// derived by scrambling h1 with the bucket-distribution seed and
// combining it with h2.
func (p preHash) bucketOf(seed0 uint32, m uint32) uint32 {
	h := scramble(p.h1, seed0) ^ p.h2
	return uint32((uint64(h) * uint64(m)) >> 32)
}

// inBucketSlot maps a pre-hash to a slot in [0, k) within a bucket of
// size k, given the bucket's displacement seed s. k <= 15 so a plain
// modulus is used rather than the multiplicative mapping used for bucket
// placement.
func (p preHash) inBucketSlot(s uint32, k uint32) uint32 {
	h := scramble(p.h1, s) ^ p.h2
	return h % k
}
