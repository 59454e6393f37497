// textio.go -- read keys (and optional values) from text input
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

package main

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// record is a key and its (possibly empty) list of tab/space-separated
// values, one line of input.
type record struct {
	key  string
	vals []string
}

// ReadTextFile reads lines of the form "key value1 value2 ..." (fields
// separated by any rune in delim), skipping blank lines and lines
// starting with '#'. A line with no values yields a record with a nil
// value list (useful for filter/plain-MPHF builds).
func ReadTextFile(fn string, delim string) ([]record, error) {
	fd, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return ReadTextStream(fd, delim)
}

// ReadTextStream is the io.Reader-based counterpart of ReadTextFile.
func ReadTextStream(fd io.Reader, delim string) ([]record, error) {
	if len(delim) == 0 {
		delim = " \t"
	}

	var out []record
	sc := bufio.NewScanner(fd)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if len(s) == 0 || s[0] == '#' {
			continue
		}

		fields := strings.FieldsFunc(s, func(r rune) bool {
			return strings.ContainsRune(delim, r)
		})
		if len(fields) == 0 {
			continue
		}

		r := record{key: fields[0]}
		if len(fields) > 1 {
			r.vals = append([]string(nil), fields[1:]...)
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
