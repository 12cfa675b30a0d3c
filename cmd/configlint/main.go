// configlint checks a hand-edited booth configuration file.
//
// It decodes the CONFIG literal and reports the first problem with its line
// and column. On success it can print the canonical encoding (--canonical),
// the JSON form (--json), or fail when the file is not already canonical
// (--check). With --json-in the input is a JSON or JSONC snapshot, and the
// output is the literal the admin console would write for it.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eursukkul/booth-festa/internal/literal"
	"github.com/Eursukkul/booth-festa/internal/snapshotfile"
	"github.com/spf13/pflag"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	canonical bool
	json      bool
	check     bool
	jsonIn    bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	flagSet := pflag.NewFlagSet("configlint", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&opts.canonical, "canonical", false, "print the canonical encoding of the file")
	flagSet.BoolVar(&opts.json, "json", false, "print the decoded configuration as JSON")
	flagSet.BoolVar(&opts.check, "check", false, "fail if the file is not in canonical form")
	flagSet.BoolVar(&opts.jsonIn, "json-in", false, "read a JSON/JSONC snapshot and print it as a literal")
	flagSet.Usage = func() {
		fmt.Fprintln(stderr, "Usage: configlint [flags] <file|->")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return exitUsage
	}
	if opts.canonical && opts.json {
		fmt.Fprintln(stderr, "configlint: --canonical and --json are mutually exclusive")
		return exitUsage
	}

	name := flagSet.Arg(0)
	data, err := readInput(name, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "configlint: %v\n", err)
		return exitInvalid
	}

	if opts.jsonIn {
		snap, err := snapshotfile.Parse(data)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
			return exitInvalid
		}
		fmt.Fprint(stdout, literal.Encode(snap.Config))
		return exitOK
	}

	cfg, err := literal.Decode(string(data))
	if err != nil {
		var derr *literal.DecodeError
		if errors.As(err, &derr) && derr.Pos.Line > 0 {
			fmt.Fprintf(stderr, "%s:%d:%d: %s\n", name, derr.Pos.Line, derr.Pos.Column, derr.Msg)
		} else {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
		}
		return exitInvalid
	}

	code := exitOK
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		code = exitInvalid
	}

	canonical := literal.Encode(cfg)
	if opts.check && canonical != string(data) {
		fmt.Fprintf(stderr, "%s: not in canonical form (run configlint --canonical)\n", name)
		code = exitInvalid
	}

	switch {
	case opts.canonical:
		fmt.Fprint(stdout, canonical)
	case opts.json:
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, "configlint: %v\n", err)
			return exitInvalid
		}
		fmt.Fprintf(stdout, "%s\n", out)
	case code == exitOK:
		fmt.Fprintf(stdout, "%s: ok (%d booths, %d categories)\n", name, len(cfg.Booths), len(cfg.Categories))
	}
	return code
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}
