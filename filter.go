// filter.go -- MPHF-addressed membership filter with tunable false-positive rate
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
	"io"

	arc "github.com/hashicorp/golang-lru/arc/v2"
)

// filterCheckpointStride is the slot interval at which a future
// variable-width fingerprint stream would record a cumulative byte
// offset checkpoint (spec.md section 4). This implementation's
// fingerprint array is fixed-width and so every slot is already
// directly addressable; the constant is kept as a visible marker of
// that design choice rather than wired into any decode path.
const filterCheckpointStride = 128

// Filter is a probabilistic membership set addressed by an MPHF over
// the key set (built with no validation layer of its own): Has never
// returns a false negative for a key added at build time, and returns a
// false positive for a non-member with probability approximately
// 2^-width.
type Filter struct {
	mphf  *MPHF
	width uint
	fp    []byte // bit-packed, width bits/slot, length n

	cache *arc.ARCCache[string, bool]
}

// filterFPRTable maps the caller's desired false-positive rate to the
// smallest fingerprint width (bits) that satisfies it, one of
// {6,8,10,12,14,16} per spec.md section 4.
var filterFPRTable = []struct {
	maxFPR float64
	width  uint
}{
	{1.0 / (1 << 6), 6},
	{1.0 / (1 << 8), 8},
	{1.0 / (1 << 10), 10},
	{1.0 / (1 << 12), 12},
	{1.0 / (1 << 14), 14},
	{1.0 / (1 << 16), 16},
}

// widthForFPR returns the narrowest fingerprint width whose false
// positive rate (2^-width) is at or below targetFPR; a targetFPR
// smaller than every tabulated rate saturates at the widest entry (16
// bits).
func widthForFPR(targetFPR float64) uint {
	for _, e := range filterFPRTable {
		if e.maxFPR <= targetFPR {
			return e.width
		}
	}
	return filterFPRTable[len(filterFPRTable)-1].width
}

// BuildFilter builds a membership filter over keys, sized to the
// smallest standard fingerprint width that satisfies targetFPR.
func BuildFilter(keys []string, level int, targetFPR float64) (*Filter, error) {
	return BuildFilterWithWidth(keys, level, widthForFPR(targetFPR))
}

// BuildFilterWithWidth builds a membership filter using an explicit
// fingerprint width (one of 6,8,10,12,14,16) rather than deriving one
// from a target false-positive rate.
func BuildFilterWithWidth(keys []string, level int, width uint) (*Filter, error) {
	switch width {
	case 6, 8, 10, 12, 14, 16:
	default:
		return nil, fmt.Errorf("mphash: filter fingerprint width %d not in {6,8,10,12,14,16}", width)
	}

	b, err := NewBuilder(level, ValidationNone)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if err := b.Add(k); err != nil {
			return nil, err
		}
	}
	mphf, err := b.Freeze()
	if err != nil {
		return nil, err
	}

	mask := fingerprintMask(width)
	fp := make([]byte, (mphf.Len()*int(width)+7)/8)
	for _, k := range keys {
		slot := mphf.Hash(k)
		if slot < 0 {
			continue
		}
		v := H(k, fpSeed) & mask
		putFingerprintAt(fp, uint64(slot), width, v)
	}

	return &Filter{mphf: mphf, width: width, fp: fp}, nil
}

// Has reports whether x was a member of the key set the filter was
// built from. False negatives never occur; false positives occur with
// probability approximately 2^-width.
func (f *Filter) Has(x string) bool {
	if f.cache != nil {
		if v, ok := f.cache.Get(x); ok {
			return v
		}
	}

	got := f.hasUncached(x)

	if f.cache != nil {
		f.cache.Add(x, got)
	}
	return got
}

func (f *Filter) hasUncached(x string) bool {
	i := f.mphf.Hash(x)
	if i < 0 {
		return false
	}
	fp := readFingerprint(f.fp, uint64(i), f.width)
	want := H(x, fpSeed) & fingerprintMask(f.width)
	return fp == want
}

// EnableCache turns on opportunistic ARC caching of Has results, sized
// for up to 'n' distinct recently-queried values.
func (f *Filter) EnableCache(n int) error {
	c, err := arc.NewARC[string, bool](n)
	if err != nil {
		return err
	}
	f.cache = c
	return nil
}

// Len returns the number of keys the filter was built over.
func (f *Filter) Len() int {
	return f.mphf.Len()
}

// FalsePositiveRate returns the filter's nominal false-positive rate,
// 2^-width.
func (f *Filter) FalsePositiveRate() float64 {
	return 1.0 / float64(uint64(1)<<f.width)
}

// DumpMeta writes a short human-readable report of the filter to w.
func (f *Filter) DumpMeta(w io.Writer) {
	fmt.Fprintf(w, "Filter: width %d, nominal FPR %.6g\n", f.width, f.FalsePositiveRate())
	f.mphf.DumpMeta(w)
}

// Encode serializes the filter: the underlying MPHF's own encoded
// bytes, framed alongside the filter's own fingerprint width and array
// (which the MPHF itself, built with ValidationNone, does not carry).
func (f *Filter) Encode() ([]byte, error) {
	mphfBytes, err := f.mphf.Encode()
	if err != nil {
		return nil, err
	}

	var buf []byte
	buf = appendU32(buf, uint32(len(mphfBytes)))
	buf = append(buf, mphfBytes...)
	buf = append(buf, byte(f.width))
	buf = appendU32(buf, uint32(len(f.fp)))
	buf = append(buf, f.fp...)
	return buf, nil
}

// ConstructFilter decodes a Filter previously produced by Encode.
func ConstructFilter(data []byte) (*Filter, error) {
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

	width, err := r.u8()
	if err != nil {
		return nil, err
	}
	fpLen, err := r.u32()
	if err != nil {
		return nil, err
	}
	fp, err := r.take(int(fpLen))
	if err != nil {
		return nil, err
	}

	return &Filter{mphf: mphf, width: uint(width), fp: fp}, nil
}
