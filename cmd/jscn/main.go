// Command jscn compiles JSON Schema Compact Notation source into a JSON
// Schema draft-07 document.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/fab13n/jsonschema-cn"
	"github.com/fab13n/jsonschema-cn/jsonschema"
)

const version = "0.1.0"

func main() {
	var (
		outPath string
		verbose bool
		showVer bool
		noColor bool
	)
	fs := flag.NewFlagSet("jscn", flag.ContinueOnError)
	fs.StringVar(&outPath, "o", "-", "output file, or \"-\" for stdout")
	fs.BoolVar(&verbose, "v", false, "report the number of source bytes parsed to stderr")
	fs.BoolVar(&showVer, "version", false, "print the version and exit")
	fs.BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: jscn [-o out.json] [-v] [-no-color] [file|-]")
		fmt.Fprintln(os.Stderr, "\nCompiles JSON Schema Compact Notation source into JSON Schema draft-07.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if showVer {
		fmt.Println("jscn version " + version)
		return
	}

	diag := newDiagnostics(noColor)

	inPath := "-"
	if fs.NArg() > 0 {
		inPath = fs.Arg(0)
	}
	source, err := readInput(inPath)
	if err != nil {
		diag.fatalf("reading input: %v", err)
	}

	schema, err := jscn.ParseSchema(string(source))
	if err != nil {
		diag.fatalf("%v", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "parsed %d byte(s) of JSCN source\n", len(source))
	}

	doc, err := schema.JSONSchema()
	if err != nil {
		diag.fatalf("%v", err)
	}

	if err := writeOutput(outPath, doc); err != nil {
		diag.fatalf("writing output: %v", err)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, doc *jsonschema.Value) error {
	b, err := jsonschema.Marshal(doc)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if path == "-" {
		_, err := os.Stdout.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// diagnostics colorizes error output to stderr when it is a terminal, the
// way this codebase's CLI tooling distinguishes severity by color rather
// than by prefix text.
type diagnostics struct {
	errorColor *color.Color
}

func newDiagnostics(forceOff bool) *diagnostics {
	d := &diagnostics{errorColor: color.New(color.FgRed, color.Bold)}
	if forceOff || !isatty.IsTerminal(os.Stderr.Fd()) {
		d.errorColor.DisableColor()
	}
	return d
}

func (d *diagnostics) fatalf(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	d.errorColor.Fprintf(os.Stderr, "jscn: %s\n", msg)
	os.Exit(1)
}
