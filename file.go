// file.go -- zero-copy file-backed construction via mmap
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
	"os"

	"github.com/opencoff/go-mmap"
)

// mappedFile holds the open file descriptor and mapping backing a
// zero-copy *FromFile construction; Close() must be called once the
// decoded value is no longer needed, or the mapping and descriptor
// leak.
type mappedFile struct {
	mm *mmap.Mapping
	fd *os.File
}

func openMapped(fn string) ([]byte, *mappedFile, error) {
	fd, err := os.Open(fn)
	if err != nil {
		return nil, nil, err
	}

	st, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, nil, fmt.Errorf("%s: can't stat: %w", fn, err)
	}
	if st.Size() == 0 {
		fd.Close()
		return nil, nil, fmt.Errorf("%s: empty file", fn)
	}

	m := mmap.New(fd)
	mapping, err := m.Map(st.Size(), 0, mmap.PROT_READ, mmap.F_READAHEAD)
	if err != nil {
		fd.Close()
		return nil, nil, fmt.Errorf("%s: can't mmap %d bytes: %w", fn, st.Size(), err)
	}

	return mapping.Bytes(), &mappedFile{mm: mapping, fd: fd}, nil
}

func (m *mappedFile) Close() error {
	m.mm.Unmap()
	return m.fd.Close()
}

// MappedMPHF is an MPHF decoded directly from a memory-mapped file: its
// offsets/seeds tables are built at open time, and the CBOR decoder
// copies bucketSizes, seedStream, seedZeroBitmap and fingerprints onto
// the heap, so the decoded MPHF does not reference the mapped pages.
// Call Close when done querying.
type MappedMPHF struct {
	*MPHF
	file *mappedFile
}

// MPHFFromFile memory-maps fn (produced by MPHF.Encode, uncompressed)
// and decodes it. The packed metadata arrays are copied out of the
// mapping by the CBOR decoder.
func MPHFFromFile(fn string) (*MappedMPHF, error) {
	data, file, err := openMapped(fn)
	if err != nil {
		return nil, err
	}
	d, err := Construct(data)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &MappedMPHF{MPHF: d, file: file}, nil
}

// Close unmaps the backing file. The MappedMPHF must not be used
// afterwards.
func (m *MappedMPHF) Close() error {
	return m.file.Close()
}

// MappedLookup is a Lookup decoded directly from a memory-mapped file.
type MappedLookup struct {
	*Lookup
	file *mappedFile
}

// LookupFromFile memory-maps fn (produced by Lookup.Encode) and decodes
// it without copying the packed key-assignment tables off the mapping.
func LookupFromFile(fn string) (*MappedLookup, error) {
	data, file, err := openMapped(fn)
	if err != nil {
		return nil, err
	}
	l, err := ConstructLookup(data)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &MappedLookup{Lookup: l, file: file}, nil
}

// Close unmaps the backing file. The MappedLookup must not be used
// afterwards.
func (m *MappedLookup) Close() error {
	return m.file.Close()
}

// MappedFilter is a Filter decoded directly from a memory-mapped file.
type MappedFilter struct {
	*Filter
	file *mappedFile
}

// FilterFromFile memory-maps fn (produced by Filter.Encode) and decodes
// it without copying the fingerprint array off the mapping.
func FilterFromFile(fn string) (*MappedFilter, error) {
	data, file, err := openMapped(fn)
	if err != nil {
		return nil, err
	}
	f, err := ConstructFilter(data)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &MappedFilter{Filter: f, file: file}, nil
}

// Close unmaps the backing file. The MappedFilter must not be used
// afterwards.
func (m *MappedFilter) Close() error {
	return m.file.Close()
}
