// build.go -- 'build' command implementation
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
	"time"

	flag "github.com/opencoff/pflag"
	"github.com/qzrzz/MinMPHash"
)

type buildCommand struct{}

func init() {
	registerCommand("build", &buildCommand{})
}

func (c *buildCommand) run(args []string, opt *Option) error {
	var level int
	var onlySet string
	var bitKey string
	var fpr float64
	var compress bool

	fs := flag.NewFlagSet("build", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.IntVarP(&level, "level", "l", 5, "Use `L` as the bucket-distribution level [1,10]")
	fs.StringVarP(&onlySet, "validate", "s", "", "Fingerprint validation width for mphf/lookup builds: absent, \"2\",\"4\",\"8\",\"16\",\"32\"")
	fs.StringVarP(&bitKey, "bits", "b", "8", "Filter fingerprint width: one of 6,8,10,12,14,16")
	fs.Float64VarP(&fpr, "fpr", "f", 0, "Filter target false-positive rate (overrides --bits if set)")
	fs.BoolVarP(&compress, "compress", "z", false, "Write the compressed (gzip + integrity tag) envelope")
	fs.Usage = func() {
		fmt.Printf(`Usage: build [options] KIND DB INPUT

where:
   KIND     is one of 'mphf', 'lookup', or 'filter'
   DB       is the name of the output dictionary file
   INPUT    is a text file: one key per line, or "key value..." for lookup

options:
`)
		fs.PrintDefaults()
		os.Exit(0)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("build: %w", err)
	}

	rest := fs.Args()
	if len(rest) < 3 {
		return fmt.Errorf("build: insufficient args")
	}
	kind, fn, input := rest[0], rest[1], rest[2]

	recs, err := ReadTextFile(input, " \t")
	if err != nil {
		return fmt.Errorf("build: can't read %s: %w", input, err)
	}

	start := time.Now()

	var out []byte
	switch kind {
	case "mphf":
		out, err = buildMPHF(recs, level, onlySet)

	case "lookup":
		out, err = buildLookup(recs, level)

	case "filter":
		out, err = buildFilter(recs, level, bitKey, fpr)

	default:
		return fmt.Errorf("build: unknown kind %q", kind)
	}
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	if compress {
		out, err = mphash.Compress(out)
		if err != nil {
			return fmt.Errorf("build: can't compress: %w", err)
		}
	}

	if err := os.WriteFile(fn, out, 0644); err != nil {
		return fmt.Errorf("build: can't write %s: %w", fn, err)
	}

	delta := time.Since(start)
	opt.Printf("%s: %d records, %s\n", fn, len(recs), delta.Truncate(time.Millisecond).String())
	return nil
}

func buildMPHF(recs []record, level int, onlySet string) ([]byte, error) {
	mode := mphash.ValidationNone
	if onlySet != "" {
		m, err := mphash.ParseOnlySet(onlySet)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	b, err := mphash.NewBuilder(level, mode)
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		if err := b.Add(r.key); err != nil {
			return nil, err
		}
	}
	d, err := b.Freeze()
	if err != nil {
		return nil, err
	}
	return d.Encode()
}

func buildLookup(recs []record, level int) ([]byte, error) {
	keys := make([]string, len(recs))
	values := make(map[string][]string, len(recs))
	for i, r := range recs {
		keys[i] = r.key
		values[r.key] = r.vals
	}

	l, err := mphash.BuildLookup(keys, values, level)
	if err != nil {
		return nil, err
	}
	return l.Encode()
}

func buildFilter(recs []record, level int, bitKey string, fpr float64) ([]byte, error) {
	keys := make([]string, len(recs))
	for i, r := range recs {
		keys[i] = r.key
	}

	var f *mphash.Filter
	var err error
	if fpr > 0 {
		f, err = mphash.BuildFilter(keys, level, fpr)
	} else {
		var width uint
		_, err = fmt.Sscanf(bitKey, "%d", &width)
		if err != nil {
			return nil, fmt.Errorf("bad --bits value %q", bitKey)
		}
		f, err = mphash.BuildFilterWithWidth(keys, level, width)
	}
	if err != nil {
		return nil, err
	}
	return f.Encode()
}
