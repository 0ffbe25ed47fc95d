package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/flux-lang/flux/compiler"
	"github.com/flux-lang/flux/vm"
)

const historyFile = ".flux_history"

// runREPL reads, compiles and executes one input at a time, keeping
// global bindings alive across inputs.
func runREPL(trace bool) {
	fmt.Println("FluxScript REPL. Ctrl+C cancels input, Ctrl+D exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	opts := []vm.Option{}
	if trace {
		opts = append(opts, vm.WithTrace(os.Stderr))
	}
	machine := vm.New(opts...)

	for {
		input, err := ln.Prompt("flux> ")
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		ln.AppendHistory(input)

		prog, err := compiler.CompileSource(input)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		result, err := machine.Eval(prog)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if !result.IsNone() {
			fmt.Println(vm.FormatValue(result))
		}
	}
}
