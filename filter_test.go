// filter_test.go - membership filter tests
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
	"testing"
)

func TestFilterNoFalseNegatives(t *testing.T) {
	assert := newAsserter(t)

	f, err := BuildFilterWithWidth(keyw, 5, 8)
	if err != nil {
		t.Fatalf("BuildFilterWithWidth: %s", err)
	}
	for _, k := range keyw {
		assert(f.Has(k), "false negative for member %q", k)
	}
}

func TestFilterFalsePositiveRate(t *testing.T) {
	members := make([]string, 2000)
	present := make(map[string]bool, 2000)
	for i := range members {
		s := fmt.Sprintf("member-%05d", i)
		members[i] = s
		present[s] = true
	}

	f, err := BuildFilterWithWidth(members, 5, 8)
	if err != nil {
		t.Fatalf("BuildFilterWithWidth: %s", err)
	}
	for _, k := range members {
		if !f.Has(k) {
			t.Fatalf("false negative for member %q", k)
		}
	}

	falsePositives := 0
	probes := 5000
	for i := 0; i < probes; i++ {
		s := fmt.Sprintf("probe-%05d", i)
		if present[s] {
			continue
		}
		if f.Has(s) {
			falsePositives++
		}
	}

	rate := float64(falsePositives) / float64(probes)
	if rate >= 0.01 {
		t.Fatalf("measured FPR %.4f exceeds 1%% bound (theoretical ~0.39%%)", rate)
	}
}

func TestFilterTargetFPR(t *testing.T) {
	assert := newAsserter(t)

	cases := []struct {
		target float64
		width  uint
	}{
		{1.0 / 64, 6},
		{1.0 / 1000, 10},
		{1.0 / 70000, 16},
	}
	for _, c := range cases {
		f, err := BuildFilter(keyw, 5, c.target)
		if err != nil {
			t.Fatalf("BuildFilter: %s", err)
		}
		assert(f.width == c.width, "target FPR %.6g picked width %d, expected %d", c.target, f.width, c.width)
	}
}

func TestFilterRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	f, err := BuildFilterWithWidth(keyw, 5, 8)
	if err != nil {
		t.Fatalf("BuildFilterWithWidth: %s", err)
	}

	enc, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode: %s", err)
	}

	f2, err := ConstructFilter(enc)
	if err != nil {
		t.Fatalf("ConstructFilter: %s", err)
	}
	for _, k := range keyw {
		assert(f2.Has(k), "round trip lost member %q", k)
	}
}
