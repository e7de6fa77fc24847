package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/exprkit/expr"
)

const (
	historyFile = ".expr_history"
	prompt      = "> "
	banner      = "expr - Ctrl+C to cancel input, Ctrl+D to exit. \"let name = expr\" defines a variable."
)

func runREPL(env *environment) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(prompt)
		switch err {
		case nil:
		case liner.ErrPromptAborted:
			continue
		case io.EOF:
			fmt.Println()
			saveHistory(ln, histPath)
			return 0
		default:
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		switch line {
		case ":quit", ":exit":
			saveHistory(ln, histPath)
			return 0
		case ":symbols":
			for name, v := range env.constants {
				fmt.Printf("%s = %g\n", name, v)
			}
			for name, a := range env.arrays {
				fmt.Printf("%s = %v\n", name, a)
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, "let "); ok {
			if err := define(env, rest); err != nil {
				fmt.Println(err)
			}
			continue
		}
		r, err := env.eval(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Printf("%g\n", r)
	}
}

// define handles "let name = expr", evaluating the right-hand side in the
// current environment and storing the result as a constant.
func define(env *environment, rest string) error {
	name, value, ok := strings.Cut(rest, "=")
	if !ok {
		return fmt.Errorf(`definitions must be "let name = expr"`)
	}
	name = strings.TrimSpace(name)
	if !expr.IsValidIdentifier(name) {
		return fmt.Errorf("%q is not a valid name", name)
	}
	r, err := env.eval(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	env.constants[name] = r
	return nil
}

func saveHistory(ln *liner.State, path string) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	_, _ = ln.WriteHistory(f)
	_ = f.Close()
}
