// Flux CLI - the main entry point for running FluxScript programs
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/flux-lang/flux/compiler"
	"github.com/flux-lang/flux/image"
	"github.com/flux-lang/flux/manifest"
	"github.com/flux-lang/flux/server"
	"github.com/flux-lang/flux/vm"
)

func main() {
	interactive := flag.Bool("i", false, "Start interactive REPL")
	lspMode := flag.Bool("lsp", false, "Start LSP server on stdio")
	buildMode := flag.Bool("build", false, "Compile to a program image instead of running")
	output := flag.String("o", "", "Image output path (used with -build)")
	dump := flag.Bool("dump", false, "Print the compiled instruction listing and exit")
	trace := flag.Bool("trace", false, "Trace each instruction to stderr during execution")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: flux [options] [file.fs | file.fxi]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a FluxScript source file or a compiled .fxi image.\n")
		fmt.Fprintf(os.Stderr, "Without a file, runs the flux.toml entry script, or the REPL.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  flux main.fs               # Compile and run\n")
		fmt.Fprintf(os.Stderr, "  flux -build -o app.fxi main.fs\n")
		fmt.Fprintf(os.Stderr, "  flux app.fxi               # Run a compiled image\n")
		fmt.Fprintf(os.Stderr, "  flux -i                    # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  flux -lsp                  # Language server for editors\n")
	}
	flag.Parse()

	if *lspMode {
		if err := server.NewLSP().Run(); err != nil {
			fmt.Fprintf(os.Stderr, "LSP server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *interactive {
		runREPL(*trace)
		return
	}

	path := flag.Arg(0)
	if path == "" {
		// No file: fall back to the project manifest, then the REPL.
		m, err := manifest.FindAndLoad(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if m == nil {
			runREPL(*trace)
			return
		}
		path = m.EntryPath()
		if *buildMode && *output == "" {
			*output = m.OutputPath()
		}
	}

	prog, err := loadProgram(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *dump {
		fmt.Print(vm.Disassemble(prog))
		return
	}

	if *buildMode {
		out := *output
		if out == "" {
			out = strings.TrimSuffix(path, ".fs") + ".fxi"
		}
		if err := image.WriteFile(out, prog); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := []vm.Option{}
	if *trace {
		opts = append(opts, vm.WithTrace(os.Stderr))
	}
	if _, err := vm.New(opts...).Run(prog); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadProgram compiles a .fs source file or reads a .fxi image.
func loadProgram(path string) (*vm.Program, error) {
	if strings.HasSuffix(path, ".fxi") {
		return image.ReadFile(path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return compiler.CompileSource(string(src))
}
