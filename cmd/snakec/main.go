// Command snakec compiles a JSON-encoded surface program into NASM
// assembly. The surface parser is out of scope (spec.md §6.5); input
// is the JSON tree shape decoded by ast_json.go, in the same spirit as
// the teacher's own tree.go serialization of a parsed grammar.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/clarete/snakec"
)

type args struct {
	inputPath  *string
	outputPath *string
	astOnly    *bool
	optimize   *int
	regalloc   *bool
}

func readArgs() *args {
	a := &args{
		inputPath:  flag.String("input", "", "path to the JSON AST to compile"),
		outputPath: flag.String("output", "", "path to write the generated NASM source to (default: stdout)"),
		astOnly:    flag.Bool("ast-only", false, "print the decoded AST and exit without generating code"),
		optimize:   flag.Int("optimize", 0, "sets compiler.optimize (0 or 1); code generation does not read it"),
		regalloc:   flag.Bool("regalloc", false, "sets compiler.regalloc; code generation does not read it and always uses stack slots"),
	}
	flag.Parse()
	return a
}

func main() {
	a := readArgs()
	if *a.inputPath == "" {
		log.Fatal("snakec: -input is required")
	}

	data, err := os.ReadFile(*a.inputPath)
	if err != nil {
		log.Fatalf("snakec: reading input: %v", err)
	}

	prog, err := snakec.DecodeAST(data)
	if err != nil {
		log.Fatalf("snakec: decoding AST: %v", err)
	}

	if *a.astOnly {
		writeOutput(a.outputPath, snakec.PrettyString(prog))
		return
	}

	cfg := snakec.NewConfig()
	cfg.SetInt("compiler.optimize", *a.optimize)
	cfg.SetBool("compiler.regalloc", *a.regalloc)

	asm, err := snakec.Compile(prog, cfg)
	if err != nil {
		log.Fatalf("snakec: compile error: %v", err)
	}

	writeOutput(a.outputPath, asm)
}

func writeOutput(path *string, content string) {
	if path == nil || *path == "" {
		if _, err := os.Stdout.WriteString(content); err != nil {
			log.Fatalf("snakec: writing stdout: %v", err)
		}
		return
	}
	if err := os.WriteFile(*path, []byte(content), 0644); err != nil {
		log.Fatalf("snakec: writing %s: %v", *path, err)
	}
}
