// doc.go - top level documentation
//
// (c) Sudhi Herle 2018
//
// License GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package mphash implements a minimal perfect hash function (MPHF) over a
// finite set of distinct strings, using a two-level bucketed
// Compress-Hash-Displace scheme with bit-packed metadata.
//
// Two composite structures are built directly on top of the MPHF:
//
//   - Lookup: a reverse-lookup dictionary that compresses a multi-map
//     key -> value[] so a consumer can recover the owning key(s) of any
//     value using only an MPHF over the value universe plus a compact
//     key-assignment table.
//   - Filter: an MPHF-addressed fingerprint table answering approximate
//     set membership with zero false negatives and a tunable false
//     positive rate.
//
// Construction (Builder.Freeze, BuildLookup, BuildFilter) is
// single-threaded, blocking and CPU-bound. Once built or decoded, every
// type in this package is immutable and safe for concurrent read-only
// use.
package mphash
