// main.go -- CLI entry point for minmphash
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
)

// command is one of the build/query/inspect subcommands registered by
// this package's init() functions.
type command interface {
	run(args []string, opt *Option) error
}

// registry holds the known subcommands. init()s run before main(), all
// from this single package, so there is no concurrent registration to
// guard against -- a plain map suffices.
var registry = make(map[string]command)

func registerCommand(nm string, cmd command) {
	if _, ok := registry[nm]; ok {
		die("duplicate command registration for %q", nm)
	}
	registry[nm] = cmd
}

func runCommand(args []string, o *Option) error {
	nm := args[0]
	cmd, ok := registry[nm]
	if !ok {
		return fmt.Errorf("unknown command %s", nm)
	}
	return cmd.run(args, o)
}

type Option struct {
	verbose bool
}

func (o *Option) Printf(s string, v ...interface{}) {
	if o.verbose {
		fmt.Printf(s, v...)
	}
}

func main() {
	var opt Option

	usage := fmt.Sprintf(
		`%s - build and query minimal perfect hash dictionaries

Usage: %s [global-options] CMD CMD-ARGS...

CMD is an operation to be performed and CMD-ARGS are operation specific
arguments. The list of supported operations are:

  build  [options] KIND DB INPUT   -- Build a dictionary from a text input
  query  [options] DB VALUE        -- Query a previously built dictionary
  inspect [options] DB             -- Dump a dictionary's metadata

KIND is one of 'mphf', 'lookup', or 'filter'.

Options:
`, os.Args[0], os.Args[0])

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(os.Stdout)
	fs.BoolVarP(&opt.verbose, "verbose", "V", false, "Show verbose output")
	fs.Usage = func() {
		fmt.Printf(usage)
		fs.PrintDefaults()
		os.Exit(0)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		die("%s", err)
	}

	args := fs.Args()
	if len(args) < 2 {
		fmt.Printf(usage)
		fs.PrintDefaults()
		os.Exit(0)
	}

	if err := runCommand(args, &opt); err != nil {
		die("%s", err)
	}
}

func die(f string, v ...interface{}) {
	warn(f, v...)
	os.Exit(1)
}

func warn(f string, v ...interface{}) {
	z := fmt.Sprintf("%s: %s", os.Args[0], f)
	s := fmt.Sprintf(z, v...)
	if n := len(s); s[n-1] != '\n' {
		s += "\n"
	}
	os.Stderr.WriteString(s)
	os.Stderr.Sync()
}
