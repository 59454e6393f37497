// lookup.go -- reverse-lookup dictionary built on top of the MPHF
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
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	arc "github.com/hashicorp/golang-lru/arc/v2"
)

// lookupMode1SentinelMarker discriminates the Mode-1 framing from Mode
// 0's plain hashBytesLen field in the serialized form (spec.md section
// 4.3): a real hashBytesLen can never legitimately equal 0xFFFFFFFF for
// any realistic key set, so it doubles as a marker.
const lookupMode1SentinelMarker = 0xFFFFFFFF

// Lookup is a reverse-lookup dictionary: given a value, it recovers the
// key(s) of the caller's original multi-map that own it, using only an
// MPHF over the value universe plus a compact key-assignment table.
type Lookup struct {
	mphf *MPHF
	keys []string

	mode1     bool
	bitsPerKey uint

	valueToKeyIndexes []byte
	collisionMap      map[uint32][]uint32

	keyToHashes   [][]uint32
	invertedIndex map[uint32][]uint32

	cache *arc.ARCCache[string, []string]
}

// BuildLookup builds a Lookup dictionary from keys (in caller order) and
// their associated values. Values appearing under more than one key are
// "collisions"; if fewer than 10% of the distinct value universe
// collides, a hybrid direct-addressed representation (Mode 1) is chosen,
// otherwise a sorted-hash-per-key representation (Mode 0).
func BuildLookup(keys []string, values map[string][]string, level int) (*Lookup, error) {
	var universe []string
	seenValue := make(map[string]int) // value -> index into universe
	owners := make(map[string][]int)  // value -> key indices that own it

	for ki, k := range keys {
		for _, v := range values[k] {
			idx, ok := seenValue[v]
			if !ok {
				idx = len(universe)
				seenValue[v] = idx
				universe = append(universe, v)
			}
			owners[v] = append(owners[v], ki)
		}
	}

	b, err := NewBuilder(level, Validation8)
	if err != nil {
		return nil, err
	}
	for _, v := range universe {
		if err := b.Add(v); err != nil {
			return nil, err
		}
	}
	mphf, err := b.Freeze()
	if err != nil {
		return nil, err
	}

	collisionCount := 0
	for _, v := range universe {
		if len(owners[v]) > 1 {
			collisionCount++
		}
	}

	l := &Lookup{mphf: mphf, keys: append([]string(nil), keys...)}
	useMode1 := float64(collisionCount) < 0.1*float64(len(universe))

	if useMode1 {
		l.mode1 = true
		l.bitsPerKey = bitsForCount(uint64(len(keys)))
		sentinel := uint32(len(keys))
		buf := make([]byte, (len(universe)*int(l.bitsPerKey)+7)/8)
		collisionMap := make(map[uint32][]uint32)

		for _, v := range universe {
			h := mphf.Hash(v)
			if h < 0 {
				continue
			}
			own := owners[v]
			if len(own) == 1 {
				putFingerprintAt(buf, uint64(h), l.bitsPerKey, uint32(own[0]))
			} else {
				putFingerprintAt(buf, uint64(h), l.bitsPerKey, sentinel)
				ids := make([]uint32, len(own))
				for i, o := range own {
					ids[i] = uint32(o)
				}
				sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
				collisionMap[uint32(h)] = ids
			}
		}

		l.valueToKeyIndexes = buf
		l.collisionMap = collisionMap
	} else {
		l.keyToHashes = make([][]uint32, len(keys))
		for ki, k := range keys {
			var hashes []uint32
			for _, v := range values[k] {
				h := mphf.Hash(v)
				if h >= 0 {
					hashes = append(hashes, uint32(h))
				}
			}
			sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
			l.keyToHashes[ki] = hashes
		}
		l.buildInvertedIndex()
	}

	return l, nil
}

// buildInvertedIndex constructs the runtime-only hash -> key-indices
// index for Mode 0, in O(sum |M[k_i]|), once per load.
func (l *Lookup) buildInvertedIndex() {
	idx := make(map[uint32][]uint32)
	for ki, hashes := range l.keyToHashes {
		for _, h := range hashes {
			idx[h] = append(idx[h], uint32(ki))
		}
	}
	l.invertedIndex = idx
}

// Keys returns the original ordered key list the Lookup was built from.
func (l *Lookup) Keys() []string {
	return l.keys
}

// Query returns the (a) key owning 'value', or ("", false) if value is
// not present in the value universe. When more than one key owns value,
// an unspecified (but deterministic for a given dictionary) one among
// them is returned; use QueryAll to get the full owner set.
func (l *Lookup) Query(value string) (string, bool) {
	if l.cache != nil {
		if cached, ok := l.cache.Get(value); ok {
			if len(cached) == 0 {
				return "", false
			}
			return cached[0], true
		}
	}

	all := l.queryAllUncached(value)
	if l.cache != nil {
		l.cache.Add(value, all)
	}
	if len(all) == 0 {
		return "", false
	}
	return all[0], true
}

// QueryAll returns every key owning 'value', or nil if none.
func (l *Lookup) QueryAll(value string) []string {
	if l.cache != nil {
		if cached, ok := l.cache.Get(value); ok {
			return cached
		}
	}
	all := l.queryAllUncached(value)
	if l.cache != nil {
		l.cache.Add(value, all)
	}
	return all
}

func (l *Lookup) queryAllUncached(value string) []string {
	h := l.mphf.Hash(value)
	if h < 0 {
		return nil
	}

	if l.mode1 {
		keyIdx := uint32(readFingerprint(l.valueToKeyIndexes, uint64(h), l.bitsPerKey))
		sentinel := uint32(len(l.keys))
		if keyIdx == sentinel {
			ids, ok := l.collisionMap[uint32(h)]
			if !ok {
				return nil
			}
			out := make([]string, len(ids))
			for i, id := range ids {
				out[i] = l.keys[id]
			}
			return out
		}
		if int(keyIdx) >= len(l.keys) {
			return nil
		}
		return []string{l.keys[keyIdx]}
	}

	ids, ok := l.invertedIndex[uint32(h)]
	if !ok || len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = l.keys[id]
	}
	return out
}

// EnableCache turns on opportunistic ARC caching of Query/QueryAll
// results, sized for up to 'n' distinct recently-queried values.
func (l *Lookup) EnableCache(n int) error {
	c, err := arc.NewARC[string, []string](n)
	if err != nil {
		return err
	}
	l.cache = c
	return nil
}

// DumpMeta writes a short human-readable report of the lookup dictionary
// to w.
func (l *Lookup) DumpMeta(w io.Writer) {
	mode := "Mode 0 (sparse)"
	if l.mode1 {
		mode = "Mode 1 (hybrid direct)"
	}
	fmt.Fprintf(w, "Lookup: %d keys, %d values, %s\n", len(l.keys), l.mphf.Len(), mode)
	l.mphf.DumpMeta(w)
}

// Encode serializes the Lookup dictionary using the hand-rolled framing
// in spec.md section 4.3.
func (l *Lookup) Encode() ([]byte, error) {
	mphfBytes, err := l.mphf.Encode()
	if err != nil {
		return nil, err
	}

	var buf []byte
	buf = appendU32(buf, uint32(len(mphfBytes)))
	buf = append(buf, mphfBytes...)

	buf = appendU32(buf, uint32(len(l.keys)))
	for _, k := range l.keys {
		kb := []byte(k)
		buf = appendU32(buf, uint32(len(kb)))
		buf = append(buf, kb...)
	}

	if l.mode1 {
		buf = appendU32(buf, lookupMode1SentinelMarker)
		buf = appendU32(buf, uint32(l.bitsPerKey))
		buf = appendU32(buf, uint32(len(l.valueToKeyIndexes)))
		buf = append(buf, l.valueToKeyIndexes...)

		collisionBytes := encodeCollisionMap(l.collisionMap)
		buf = appendU32(buf, uint32(len(collisionBytes)))
		buf = append(buf, collisionBytes...)
	} else {
		hashBytes := encodeKeyToHashes(l.keyToHashes)
		buf = appendU32(buf, uint32(len(hashBytes)))
		buf = append(buf, hashBytes...)
	}

	return buf, nil
}

// ConstructLookup decodes a Lookup dictionary previously produced by
// Encode.
func ConstructLookup(data []byte) (*Lookup, error) {
	r := &byteReader{buf: data}

	mphfLen, err := r.u32()
	if err != nil {
		return nil, err
	}
	mphfBytes, err := r.take(int(mphfLen))
	if err != nil {
		return nil, err
	}
	mphf, err := Construct(mphfBytes)
	if err != nil {
		return nil, err
	}

	keyCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	keys := make([]string, keyCount)
	for i := range keys {
		klen, err := r.u32()
		if err != nil {
			return nil, err
		}
		kb, err := r.take(int(klen))
		if err != nil {
			return nil, err
		}
		keys[i] = string(kb)
	}

	l := &Lookup{mphf: mphf, keys: keys}

	marker, err := r.u32()
	if err != nil {
		return nil, err
	}

	if marker == lookupMode1SentinelMarker {
		l.mode1 = true
		bitsPerKey, err := r.u32()
		if err != nil {
			return nil, err
		}
		l.bitsPerKey = uint(bitsPerKey)

		dataLen, err := r.u32()
		if err != nil {
			return nil, err
		}
		packed, err := r.take(int(dataLen))
		if err != nil {
			return nil, err
		}
		l.valueToKeyIndexes = packed

		collisionLen, err := r.u32()
		if err != nil {
			return nil, err
		}
		collisionBytes, err := r.take(int(collisionLen))
		if err != nil {
			return nil, err
		}
		cm, err := decodeCollisionMap(collisionBytes)
		if err != nil {
			return nil, err
		}
		l.collisionMap = cm
	} else {
		hashBytesLen := marker
		hashBytes, err := r.take(int(hashBytesLen))
		if err != nil {
			return nil, err
		}
		kth, err := decodeKeyToHashes(hashBytes, int(keyCount))
		if err != nil {
			return nil, err
		}
		l.keyToHashes = kth
		l.buildInvertedIndex()
	}

	return l, nil
}

// encodeCollisionMap serializes hash -> sorted key-index list entries,
// sorted ascending by hash: varint entryCount, then per entry a varint
// hash-delta (from the previous hash, first delta is absolute), a
// varint key-index count, and a delta-packed (bits,payload) pair for
// the key-index list itself. The payload is ceil(count*bits/8) bytes
// and carries no length prefix of its own.
func encodeCollisionMap(m map[uint32][]uint32) []byte {
	hashes := make([]uint32, 0, len(m))
	for h := range m {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	var out []byte
	out = append(out, encodeVarintStream([]uint32{uint32(len(hashes))})...)

	prev := uint32(0)
	for _, h := range hashes {
		out = append(out, encodeVarintStream([]uint32{h - prev})...)
		prev = h

		ids := m[h]
		out = append(out, encodeVarintStream([]uint32{uint32(len(ids))})...)
		bits, packed := deltaEncode(ids)
		out = append(out, byte(bits))
		out = append(out, packed...)
	}
	return out
}

func decodeCollisionMap(data []byte) (map[uint32][]uint32, error) {
	r := &byteReader{buf: data}
	count, err := r.varint()
	if err != nil {
		return nil, err
	}

	m := make(map[uint32][]uint32, count)
	prev := uint32(0)
	for i := uint64(0); i < count; i++ {
		delta, err := r.varint()
		if err != nil {
			return nil, err
		}
		h := prev + uint32(delta)
		prev = h

		n, err := r.varint()
		if err != nil {
			return nil, err
		}
		bits, err := r.u8()
		if err != nil {
			return nil, err
		}
		packed, err := r.take((int(n)*int(bits) + 7) / 8)
		if err != nil {
			return nil, err
		}
		m[h] = deltaDecode(bits, packed, int(n))
	}
	return m, nil
}

// encodeKeyToHashes serializes, per key in order: varint count, a u8 bit
// width, and the delta-packed hash list (ceil(count*width/8) bytes, no
// length prefix).
func encodeKeyToHashes(kth [][]uint32) []byte {
	var out []byte
	for _, hashes := range kth {
		out = append(out, encodeVarintStream([]uint32{uint32(len(hashes))})...)
		bits, packed := deltaEncode(hashes)
		out = append(out, byte(bits))
		out = append(out, packed...)
	}
	return out
}

func decodeKeyToHashes(data []byte, keyCount int) ([][]uint32, error) {
	r := &byteReader{buf: data}
	kth := make([][]uint32, keyCount)
	for i := 0; i < keyCount; i++ {
		n, err := r.varint()
		if err != nil {
			return nil, err
		}
		bits, err := r.u8()
		if err != nil {
			return nil, err
		}
		packed, err := r.take((int(n)*int(bits) + 7) / 8)
		if err != nil {
			return nil, err
		}
		kth[i] = deltaDecode(bits, packed, int(n))
	}
	return kth, nil
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

// byteReader is a small cursor over a byte slice used by the hand-rolled
// framing decoders; it never panics on truncated input, returning
// DecodeError instead.
type byteReader struct {
	buf []byte
	off int
}

func (r *byteReader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.buf) {
		return nil, &DecodeError{Field: "framing", Err: fmt.Errorf("truncated: need %d bytes, have %d", n, len(r.buf)-r.off)}
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *byteReader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *byteReader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *byteReader) varint() (uint64, error) {
	v, n, err := decodeVarintStream(r.buf[r.off:], 1)
	if err != nil {
		return 0, err
	}
	r.off += n
	return uint64(v[0]), nil
}
