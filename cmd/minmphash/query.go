// query.go -- 'query' command implementation
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
	"fmt"
	"os"
	"strings"

	flag "github.com/opencoff/pflag"
	"github.com/qzrzz/MinMPHash"
)

type queryCommand struct{}

func init() {
	registerCommand("query", &queryCommand{})
}

func (c *queryCommand) run(args []string, opt *Option) error {
	var kind string

	fs := flag.NewFlagSet("query", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.StringVarP(&kind, "kind", "k", "mphf", "Dictionary kind: 'mphf', 'lookup', or 'filter'")
	fs.Usage = func() {
		fmt.Printf(`Usage: query [options] DB VALUE

options:
`)
		fs.PrintDefaults()
		os.Exit(0)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("query: %w", err)
	}

	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("query: insufficient args")
	}
	fn, value := rest[0], rest[1]

	data, err := os.ReadFile(fn)
	if err != nil {
		return fmt.Errorf("query: can't read %s: %w", fn, err)
	}
	if looksCompressed(data) {
		data, err = mphash.FromCompressedBytes(data)
		if err != nil {
			return fmt.Errorf("query: can't decompress %s: %w", fn, err)
		}
	}

	switch kind {
	case "mphf":
		d, err := mphash.Construct(data)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		i := d.Hash(value)
		if i < 0 {
			fmt.Println("not found")
		} else {
			fmt.Println(i)
		}

	case "lookup":
		l, err := mphash.ConstructLookup(data)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		owners := l.QueryAll(value)
		if len(owners) == 0 {
			fmt.Println("not found")
		} else {
			fmt.Println(strings.Join(owners, ", "))
		}

	case "filter":
		f, err := mphash.ConstructFilter(data)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		fmt.Println(f.Has(value))

	default:
		return fmt.Errorf("query: unknown kind %q", kind)
	}

	return nil
}

func looksCompressed(data []byte) bool {
	return len(data) >= 4 && data[0] == 'M' && data[1] == 'P' && data[2] == 'H' && data[3] == 1
}
