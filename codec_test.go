// codec_test.go - binary codec error-path tests
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
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestConstructTruncated(t *testing.T) {
	if _, err := Construct([]byte{0x01, 0x02}); err == nil {
		t.Fatalf("expected decode error for truncated/garbage bytes")
	}
}

// TestConstructShortBucketSizes feeds Construct a well-formed 9-element
// CBOR array whose BucketSizes byte string is too short for the claimed
// bucket count M. This must surface as a DecodeError, not a panic from
// unpackNibbleBucketSizes indexing past the end of the slice.
func TestConstructShortBucketSizes(t *testing.T) {
	r := rawMPHF{
		N:           50,
		M:           50,
		BucketSizes: []byte{}, // needs ceil(50/2) = 25 bytes, has 0
		SeedStream:  []byte{},
		ModeInt:     0,
	}
	data, err := cbor.Marshal(r)
	if err != nil {
		t.Fatalf("cbor.Marshal: %s", err)
	}

	_, err = Construct(data)
	if err == nil {
		t.Fatalf("expected decode error for short BucketSizes")
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, saw %T: %v", err, err)
	}
	if de.Field != "bucketSizes" {
		t.Fatalf("expected DecodeError on field bucketSizes, saw %q", de.Field)
	}
}

// TestConstructShortFingerprints feeds Construct a well-formed array
// with a validation mode but a Fingerprints byte string too short to
// hold n fingerprints of that width.
func TestConstructShortFingerprints(t *testing.T) {
	n := 50
	m := 50
	sizes := make([]byte, m)
	for i := range sizes {
		sizes[i] = 1
	}
	bucketSizes := nibbleBucketSizes(sizes)

	shortFP := []byte{0x00, 0x01} // needs ceil(50*8/8) = 50 bytes, has 2
	r := rawMPHF{
		N:            uint64(n),
		M:            uint64(m),
		BucketSizes:  bucketSizes,
		SeedStream:   []byte{},
		ModeInt:      2, // Validation8
		Fingerprints: &shortFP,
	}
	data, err := cbor.Marshal(r)
	if err != nil {
		t.Fatalf("cbor.Marshal: %s", err)
	}

	_, err = Construct(data)
	if err == nil {
		t.Fatalf("expected decode error for short Fingerprints")
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, saw %T: %v", err, err)
	}
	if de.Field != "fingerprints" {
		t.Fatalf("expected DecodeError on field fingerprints, saw %q", de.Field)
	}
}

func TestFromCompressedTooSmall(t *testing.T) {
	if _, err := FromCompressed([]byte{0x4d, 0x50, 0x48, 0x01}); err != ErrTooSmall {
		t.Fatalf("expected ErrTooSmall, saw %v", err)
	}
}

func TestFromCompressedBadMagic(t *testing.T) {
	bogus := make([]byte, 4+16+8+4)
	if _, err := FromCompressed(bogus); err == nil {
		t.Fatalf("expected decode error for bad magic")
	}
}
