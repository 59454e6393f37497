// builder.go - MPHF construction: pre-hash, best-fit bucketing, displacement
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
	"fmt"
	"math/rand/v2"
)

const (
	_MaxHashSeedAttempts = 101 // seeds 0..100
	_MaxBucketAttempts   = 2000
	_BucketEarlyExitAt   = 50
	_BucketGreatMax      = 13

	_DisplaceTrialsSmall = 5_000_000  // bucket size <= 14
	_DisplaceTrialsLarge = 50_000_000 // bucket size > 14

	_LargeKeySetThreshold = 500_000
)

// Builder accumulates keys and, on Freeze, runs the three build phases
// (pre-hash, bucketing, displacement) described in spec.md section 4.2.
// A Builder is single-use: once frozen it cannot be reused.
type Builder struct {
	keys       []string
	level      int
	validation ValidationMode
	frozen     bool
}

// NewBuilder creates a Builder with the given bucket-distribution level
// (n/m target ratio in [1,10], default 5 if 0 is passed; any other value
// outside [1,10] is rejected with an error) and fingerprint validation
// mode (ValidationNone disables it).
func NewBuilder(level int, validation ValidationMode) (*Builder, error) {
	if level == 0 {
		level = 5
	}
	if level < 1 || level > 10 {
		return nil, fmt.Errorf("mphash: level %d out of range [1,10]", level)
	}
	return &Builder{level: level, validation: validation}, nil
}

// Add adds a key to the builder. Duplicate keys are the caller's
// responsibility to avoid; Freeze will fail with
// BuildHashSeedExhausted if duplicates make every pre-hash seed
// collide.
func (b *Builder) Add(key string) error {
	if b.frozen {
		return ErrFrozen
	}
	b.keys = append(b.keys, key)
	return nil
}

// Freeze builds the minimal perfect hash function over the accumulated
// keys and returns an immutable, evaluable MPHF. The keys are consumed:
// Builder retains no reference to them after Freeze returns.
func (b *Builder) Freeze() (*MPHF, error) {
	if b.frozen {
		return nil, ErrFrozen
	}
	b.frozen = true

	keys := b.keys
	b.keys = nil
	n := len(keys)

	if n == 0 {
		return &MPHF{
			n: 0, m: 0,
			bucketSizesRaw: nil,
			seedStreamRaw:  nil,
			seedZeroBitmap: nil,
			validationMode: b.validation,
			offsets:        []uint32{0},
			seeds:          nil,
		}, nil
	}

	hashSeed, pre, err := findHashSeed(keys)
	if err != nil {
		return nil, err
	}

	seed0, assign, sizes, m, err := bestFitBucketing(pre, n, b.level)
	if err != nil {
		return nil, err
	}

	offsets := make([]uint32, m+1)
	var total uint32
	for i, s := range sizes {
		offsets[i] = total
		total += uint32(s)
	}
	offsets[m] = total

	finalIndex := make([]uint32, n)
	seedZeroBitmap := newBitmap(m)
	var nonZeroSeeds []uint32

	buckets := make([][]int, m)
	for i, bk := range assign {
		buckets[bk] = append(buckets[bk], i)
	}

	for bk := 0; bk < m; bk++ {
		members := buckets[bk]
		k := len(members)
		if k <= 1 {
			setBitmap(seedZeroBitmap, bk)
			if k == 1 {
				finalIndex[members[0]] = offsets[bk]
			}
			continue
		}

		s, slots, err := findDisplacement(pre, members, uint32(k), bk)
		if err != nil {
			return nil, err
		}
		if s == 0 {
			setBitmap(seedZeroBitmap, bk)
		} else {
			nonZeroSeeds = append(nonZeroSeeds, s)
		}
		for idx, keyIdx := range members {
			finalIndex[keyIdx] = offsets[bk] + slots[idx]
		}
	}

	bucketSizesRaw := nibbleBucketSizes(sizes)
	seedStreamRaw := encodeVarintStream(nonZeroSeeds)

	d := &MPHF{
		n:              uint32(n),
		m:              uint32(m),
		seed0:          seed0,
		hashSeed:       hashSeed,
		validationMode: b.validation,
		bucketSizesRaw: bucketSizesRaw,
		seedStreamRaw:  seedStreamRaw,
		seedZeroBitmap: seedZeroBitmap,
	}
	if err := d.expandOffsetsAndSeeds(); err != nil {
		return nil, err
	}

	if b.validation != ValidationNone {
		// Break the cyclic dependency between the MPHF and the
		// fingerprint payload: the fingerprint for key i lives at
		// slot finalIndex[i], a value only the (now fully built)
		// MPHF knows. d is already evaluable at this point (it just
		// doesn't carry fingerprints yet), so we fill the array
		// directly from finalIndex rather than re-hashing through
		// d.Hash.
		width := uint(b.validation)
		// The fingerprint for key i lives at slot finalIndex[i], a
		// location that depends on the bucket/displacement layout
		// above, so we can't append sequentially with bitWriter; we
		// size the buffer up front and write each fingerprint at its
		// final random-access bit offset instead.
		buf := make([]byte, (n*int(width)+7)/8)
		for i, key := range keys {
			fp := H(key, fpSeed) & fingerprintMask(width)
			putFingerprintAt(buf, uint64(finalIndex[i]), width, fp)
		}
		d.fingerprints = buf
	}

	return d, nil
}

// putFingerprintAt writes a width-bit value at bit offset slot*width in
// buf, LSB-first, supporting true random access (unlike bitWriter, which
// only appends sequentially).
func putFingerprintAt(buf []byte, slot uint64, width uint, v uint32) {
	bitoff := slot * uint64(width)
	for i := uint(0); i < width; i++ {
		bit := (v >> i) & 1
		pos := bitoff + uint64(i)
		byteIdx := pos / 8
		if bit != 0 {
			buf[byteIdx] |= 1 << (pos % 8)
		}
	}
}

// findHashSeed implements Phase 0: find the smallest non-negative
// hashSeed for which the pre-hash pair (h1,h2) is unique across all
// keys.
func findHashSeed(keys []string) (uint32, []preHash, error) {
	for seed := uint32(0); seed < _MaxHashSeedAttempts; seed++ {
		pre := make([]preHash, len(keys))
		seen := make(map[uint64]struct{}, len(keys))
		collision := false
		for i, k := range keys {
			p := computePreHash(k, seed)
			pre[i] = p
			key := uint64(p.h1)<<32 | uint64(p.h2)
			if _, ok := seen[key]; ok {
				collision = true
				break
			}
			seen[key] = struct{}{}
		}
		if !collision {
			return seed, pre, nil
		}
	}
	return 0, nil, &BuildHashSeedExhausted{Attempts: _MaxHashSeedAttempts}
}

// bestFitBucketing implements Phase 1: draw random seed0 candidates and
// keep the distribution with the smallest maximum bucket occupancy,
// subject to the hard cap of 15.
func bestFitBucketing(pre []preHash, n, level int) (seed0 uint32, assign []uint32, sizes []byte, m int, err error) {
	if n > _LargeKeySetThreshold {
		level = int(float64(level) * 0.9)
		if level < 1 {
			level = 1
		}
	}

	mm := n / level
	if n%level != 0 {
		mm++
	}
	if mm < 1 {
		mm = 1
	}
	m = mm

	bestMax := 1 << 30
	bestObserved := 1 << 30 // smallest max seen, overflowing candidates included
	var bestSeed0 uint32
	var bestSizes []byte
	var bestAssign []uint32

	for attempt := 0; attempt < _MaxBucketAttempts; attempt++ {
		seed := rand.Uint32()
		sizes := make([]byte, m)
		assign := make([]uint32, n)
		overflow := false
		for i, p := range pre {
			bk := p.bucketOf(seed, uint32(m))
			assign[i] = bk
			if sizes[bk] < 255 {
				sizes[bk]++
			}
			if sizes[bk] > 15 {
				overflow = true
			}
		}

		localMax := 0
		for _, s := range sizes {
			if int(s) > localMax {
				localMax = int(s)
			}
		}
		if localMax < bestObserved {
			bestObserved = localMax
		}

		if !overflow && localMax < bestMax {
			bestMax = localMax
			bestSeed0 = seed
			bestSizes = sizes
			bestAssign = assign
		}

		if bestMax < _BucketGreatMax {
			break
		}
		if bestMax <= 15 && attempt+1 >= _BucketEarlyExitAt {
			break
		}
	}

	if bestSizes == nil || bestMax > 15 {
		return 0, nil, nil, 0, &BuildBucketOverflow{Attempts: _MaxBucketAttempts, BestMaxSize: bestObserved}
	}

	return bestSeed0, bestAssign, bestSizes, m, nil
}

// findDisplacement implements Phase 2 for a single bucket of size k >= 2:
// search s = 0, 1, 2, ... until the in-bucket hash permutes [0,k).
func findDisplacement(pre []preHash, members []int, k uint32, bucket int) (uint32, []uint32, error) {
	trialCap := uint64(_DisplaceTrialsSmall)
	if k > 14 {
		trialCap = _DisplaceTrialsLarge
	}

	slots := make([]uint32, len(members))
	visited := make([]bool, k)

	for s := uint32(0); uint64(s) < trialCap; s++ {
		for i := range visited {
			visited[i] = false
		}
		ok := true
		for idx, keyIdx := range members {
			slot := pre[keyIdx].inBucketSlot(s, k)
			if visited[slot] {
				ok = false
				break
			}
			visited[slot] = true
			slots[idx] = slot
		}
		if ok {
			return s, slots, nil
		}
	}

	return 0, nil, &BuildDisplacementExhausted{Bucket: bucket, Size: len(members), Trials: trialCap}
}
