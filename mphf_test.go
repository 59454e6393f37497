// mphf_test.go - builder and evaluator tests
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
	"testing"
)

func buildMPHFOrFatal(t *testing.T, keys []string, validation ValidationMode) *MPHF {
	t.Helper()
	b, err := NewBuilder(5, validation)
	if err != nil {
		t.Fatalf("NewBuilder: %s", err)
	}
	for _, k := range keys {
		if err := b.Add(k); err != nil {
			t.Fatalf("Add(%q): %s", k, err)
		}
	}
	d, err := b.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %s", err)
	}
	return d
}

func TestMPHFBijection(t *testing.T) {
	assert := newAsserter(t)

	d := buildMPHFOrFatal(t, keyw, ValidationNone)
	assert(d.Len() == len(keyw), "expected %d keys, saw %d", len(keyw), d.Len())

	seen := make(map[int]bool, len(keyw))
	for _, k := range keyw {
		i := d.Hash(k)
		assert(i >= 0 && i < len(keyw), "hash(%q) = %d out of range", k, i)
		assert(!seen[i], "hash(%q) collides with a previous key at slot %d", k, i)
		seen[i] = true
	}
	assert(len(seen) == len(keyw), "expected %d distinct slots, saw %d", len(keyw), len(seen))
}

func TestMPHFEmptySet(t *testing.T) {
	assert := newAsserter(t)

	d := buildMPHFOrFatal(t, nil, ValidationNone)
	assert(d.Len() == 0, "expected empty MPHF, saw %d keys", d.Len())
	assert(d.Hash("anything") == -1, "expected -1 from empty MPHF")
}

func TestMPHFValidation(t *testing.T) {
	assert := newAsserter(t)

	d := buildMPHFOrFatal(t, keyw, Validation16)
	for _, k := range keyw {
		assert(d.Hash(k) >= 0, "member %q rejected by validation layer", k)
	}

	miss := 0
	probes := []string{"fig", "kumquat", "nectarine", "rambutan", "starfruit"}
	for _, p := range probes {
		if d.Hash(p) != -1 {
			miss++
		}
	}
	assert(miss <= 1, "too many false positives at 16-bit validation: %d/%d", miss, len(probes))
}

func TestMPHFRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	d := buildMPHFOrFatal(t, keyw, Validation8)
	orig := make(map[string]int, len(keyw))
	for _, k := range keyw {
		orig[k] = d.Hash(k)
	}

	enc, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %s", err)
	}

	d2, err := Construct(enc)
	if err != nil {
		t.Fatalf("Construct: %s", err)
	}
	assert(d2.Len() == d.Len(), "round trip changed key count")
	for _, k := range keyw {
		assert(d2.Hash(k) == orig[k], "round trip changed hash(%q): %d != %d", k, d2.Hash(k), orig[k])
	}
}

func TestMPHFCompressedRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	d := buildMPHFOrFatal(t, keyw, ValidationNone)
	enc, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %s", err)
	}

	comp, err := Compress(enc)
	if err != nil {
		t.Fatalf("Compress: %s", err)
	}

	d2, err := FromCompressed(comp)
	if err != nil {
		t.Fatalf("FromCompressed: %s", err)
	}
	for _, k := range keyw {
		assert(d2.Hash(k) == d.Hash(k), "compressed round trip changed hash(%q)", k)
	}

	corrupt := append([]byte(nil), comp...)
	corrupt[len(corrupt)-1] ^= 0xff
	if _, err := FromCompressed(corrupt); err == nil {
		t.Fatalf("expected integrity failure on corrupted compressed payload")
	}
}

func TestMPHFDuplicateKeys(t *testing.T) {
	b, err := NewBuilder(5, ValidationNone)
	if err != nil {
		t.Fatalf("NewBuilder: %s", err)
	}
	for i := 0; i < 200; i++ {
		if err := b.Add("dup"); err != nil {
			t.Fatalf("Add: %s", err)
		}
	}
	if _, err := b.Freeze(); err == nil {
		t.Fatalf("expected hash-seed exhaustion error for all-duplicate key set")
	}
}

func TestBuilderFrozenReuse(t *testing.T) {
	b, err := NewBuilder(5, ValidationNone)
	if err != nil {
		t.Fatalf("NewBuilder: %s", err)
	}
	for _, k := range keyw {
		_ = b.Add(k)
	}
	if _, err := b.Freeze(); err != nil {
		t.Fatalf("Freeze: %s", err)
	}
	if err := b.Add("late"); err != ErrFrozen {
		t.Fatalf("expected ErrFrozen adding to frozen builder, saw %v", err)
	}
	if _, err := b.Freeze(); err != ErrFrozen {
		t.Fatalf("expected ErrFrozen re-freezing, saw %v", err)
	}
}
