// Command arcc compiles a single Arcana template and writes the result to
// stdout, per spec.md §6's CLI interface.
//
// Its flag surface is grounded on the teacher's pkg/prog: a Flags struct
// plus a newFlagSet constructor and an explicit usage function, using the
// standard library's flag package rather than a third-party CLI library —
// the teacher itself reaches for flag, not cobra or a flag-parsing
// dependency, so that is the grounded choice here.
package main

import (
	"flag"
	"fmt"
	"io"
)

// Flags keeps command-line flags.
type Flags struct {
	Help, Interactive, LicenseNotice, License, Version bool
	FromString                                          string
}

func newFlagSet(f *Flags) *flag.FlagSet {
	fs := flag.NewFlagSet("arcc", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // error and usage are printed explicitly

	fs.BoolVar(&f.Help, "h", false, "show usage help and quit")
	fs.BoolVar(&f.Help, "help", false, "show usage help and quit")
	fs.BoolVar(&f.Interactive, "i", false, "read stdin to EOF, compile as template")
	fs.BoolVar(&f.Interactive, "interactive", false, "read stdin to EOF, compile as template")
	fs.BoolVar(&f.LicenseNotice, "l", false, "print the license notice and quit")
	fs.BoolVar(&f.LicenseNotice, "license-notice", false, "print the license notice and quit")
	fs.BoolVar(&f.License, "L", false, "print the full license text and quit")
	fs.BoolVar(&f.License, "license", false, "print the full license text and quit")
	fs.StringVar(&f.FromString, "s", "", "compile the literal string given as argument")
	fs.StringVar(&f.FromString, "from-string", "", "compile the literal string given as argument")
	fs.BoolVar(&f.Version, "V", false, "print version and quit")
	fs.BoolVar(&f.Version, "version", false, "print version and quit")

	return fs
}

func usage(out io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(out, "Usage: arcc [flags] [PATH]")
	fmt.Fprintln(out, "Supported flags:")
	fs.SetOutput(out)
	fs.PrintDefaults()
}
