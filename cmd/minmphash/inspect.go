// inspect.go -- 'inspect' command implementation
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

	flag "github.com/opencoff/pflag"
	"github.com/qzrzz/MinMPHash"
)

type inspectCommand struct{}

func init() {
	registerCommand("inspect", &inspectCommand{})
}

func (c *inspectCommand) run(args []string, opt *Option) error {
	var kind string

	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.StringVarP(&kind, "kind", "k", "mphf", "Dictionary kind: 'mphf', 'lookup', or 'filter'")
	fs.Usage = func() {
		fmt.Printf(`Usage: inspect [options] DB

options:
`)
		fs.PrintDefaults()
		os.Exit(0)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("inspect: insufficient args")
	}
	fn := rest[0]

	data, err := os.ReadFile(fn)
	if err != nil {
		return fmt.Errorf("inspect: can't read %s: %w", fn, err)
	}
	if looksCompressed(data) {
		data, err = mphash.FromCompressedBytes(data)
		if err != nil {
			return fmt.Errorf("inspect: can't decompress %s: %w", fn, err)
		}
	}

	switch kind {
	case "mphf":
		d, err := mphash.Construct(data)
		if err != nil {
			return fmt.Errorf("inspect: %w", err)
		}
		d.DumpMeta(os.Stdout)

	case "lookup":
		l, err := mphash.ConstructLookup(data)
		if err != nil {
			return fmt.Errorf("inspect: %w", err)
		}
		l.DumpMeta(os.Stdout)

	case "filter":
		f, err := mphash.ConstructFilter(data)
		if err != nil {
			return fmt.Errorf("inspect: %w", err)
		}
		f.DumpMeta(os.Stdout)

	default:
		return fmt.Errorf("inspect: unknown kind %q", kind)
	}

	return nil
}
