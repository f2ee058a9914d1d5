package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/frankiebaffa/arcana/pkg/diag"
	"github.com/frankiebaffa/arcana/pkg/eval"
	"github.com/frankiebaffa/arcana/pkg/logutil"
	"github.com/frankiebaffa/arcana/pkg/value"
)

// version is stamped at release time; arcc carries no build-info package
// of its own since it has no daemon/RPC surface that would need one.
const version = "0.1.0"

const licenseNotice = `arcc is free software; see the full license text with -L/--license.`

const licenseText = `Copyright (c) the arcana contributors.

Permission is granted to use, copy, modify, and distribute this software
for any purpose, with or without fee, provided this notice is preserved.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND.`

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if err := logutil.UseEnv(); err != nil {
		fmt.Fprintf(stderr, "arcc: ARCC_LOG: %v (logging to stderr instead)\n", err)
	}

	f := &Flags{}
	fs := newFlagSet(f)
	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(stderr, err)
		usage(stderr, fs)
		return 2
	}

	switch {
	case f.Help:
		usage(stdout, fs)
		return 0
	case f.Version:
		fmt.Fprintln(stdout, "arcc", version)
		return 0
	case f.LicenseNotice:
		fmt.Fprintln(stdout, licenseNotice)
		return 0
	case f.License:
		fmt.Fprintln(stdout, licenseText)
		return 0
	}

	out, err := compile(f, fs.Args(), stdin, stderr)
	if err != nil {
		report(stderr, err)
		return 1
	}
	fmt.Fprint(stdout, out)
	return 0
}

// compile dispatches to the literal-string, interactive-stdin, or
// file-path compile path, per spec.md §6.
func compile(f *Flags, args []string, stdin io.Reader, stderr io.Writer) (string, error) {
	e := eval.New(value.EmptyObject())
	ctx := context.Background()

	switch {
	case f.FromString != "":
		return e.EvalString(ctx, "<string>", f.FromString)
	case f.Interactive:
		src, err := readStdin(stdin, stderr)
		if err != nil {
			return "", err
		}
		return e.EvalString(ctx, "<stdin>", src)
	case len(args) == 1:
		return e.EvalFile(ctx, args[0])
	case len(args) == 0 && !isatty.IsTerminal(stdinFd(stdin)):
		// Piped input with no flags: behave as -i, per the teacher's own
		// isatty-driven fallback in cmd/elvish for non-interactive stdin.
		src, err := readStdin(stdin, stderr)
		if err != nil {
			return "", err
		}
		return e.EvalString(ctx, "<stdin>", src)
	default:
		return "", fmt.Errorf("arcc: expected exactly one PATH, -i, or -s")
	}
}

func readStdin(stdin io.Reader, stderr io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(stderr, "arcc: reading template from stdin, end with EOF (Ctrl-D)")
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("arcc: reading stdin: %w", err)
	}
	return string(b), nil
}

func stdinFd(stdin io.Reader) uintptr {
	if f, ok := stdin.(*os.File); ok {
		return f.Fd()
	}
	return ^uintptr(0) // not a *os.File: isatty reports false for this
}

// report renders a *diag.Error with its source context; any other error
// (flag misuse, stdin I/O) is printed as a single line.
func report(stderr io.Writer, err error) {
	if de, ok := err.(*diag.Error); ok {
		fmt.Fprint(stderr, de.Show(""))
		return
	}
	fmt.Fprintln(stderr, err)
}
