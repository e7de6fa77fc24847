// Command expr evaluates arithmetic and boolean expressions.
//
// With arguments, each argument is evaluated as one expression. With no
// arguments, expressions are read from stdin one per line. The -i flag
// starts an interactive session instead, and -listen serves the evaluator
// over HTTP.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/exprkit/expr"
)

// environment is the evaluation setup shared by the one-shot, REPL, and
// server modes.
type environment struct {
	constants map[string]float64
	arrays    map[string][]float64
	boolean   bool
	fold      bool
}

func newEnvironment() *environment {
	return &environment{
		constants: make(map[string]float64),
		arrays:    make(map[string][]float64),
		fold:      true,
	}
}

func (e *environment) options(extra map[string]float64) []expr.Option {
	opts := []expr.Option{expr.Constants(e.constants), expr.Arrays(e.arrays)}
	if len(extra) > 0 {
		opts = append(opts, expr.Constants(extra))
	}
	if e.boolean {
		opts = append(opts, expr.BooleanSymbols())
	}
	if !e.fold {
		opts = append(opts, expr.DisableOptimizations())
	}
	return opts
}

func (e *environment) eval(source string) (float64, error) {
	return expr.NewExpression(source, e.options(nil)...).Evaluate()
}

// configFile is the YAML shape accepted by -config.
type configFile struct {
	Constants map[string]float64   `yaml:"constants"`
	Arrays    map[string][]float64 `yaml:"arrays"`
}

func (e *environment) loadConfig(name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	for k, v := range cfg.Constants {
		e.constants[k] = v
	}
	for k, v := range cfg.Arrays {
		e.arrays[k] = v
	}
	return nil
}

func main() {
	log.SetFlags(0)
	var (
		inname, verb   string
		cfgname        string
		listen         string
		with           [][2]string
		interact, echo bool
		useBool, slow  bool
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.StringVar(&verb, "fmt", "%g", "result formatting string")
	flag.StringVar(&cfgname, "config", "", "YAML file defining constants and arrays")
	flag.StringVar(&listen, "listen", "", "serve the evaluator over HTTP on this address")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.BoolVar(&interact, "i", false, "interactive session")
	flag.BoolVar(&echo, "echo", false, "print parse trees")
	flag.BoolVar(&useBool, "bool", false, "enable boolean operators and true/false")
	flag.BoolVar(&slow, "no-fold", false, "disable constant folding")
	flag.Parse()

	env := newEnvironment()
	env.boolean = useBool
	env.fold = !slow
	if cfgname != "" {
		if err := env.loadConfig(cfgname); err != nil {
			log.Fatal(err)
		}
	}
	for _, d := range with {
		nm, vl := d[0], d[1]
		r, err := env.eval(vl)
		if err != nil {
			log.Fatalf("setting %s: %v", nm, err)
		}
		env.constants[nm] = r
	}

	switch {
	case listen != "":
		if err := runServer(listen, env); err != nil {
			log.Fatal(err)
		}
		return
	case interact:
		os.Exit(runREPL(env))
	}

	sources, err := gather(inname, flag.Args())
	if err != nil {
		log.Fatal(err)
	}
	verb += "\n"
	code := 0
	for _, src := range sources {
		if echo {
			fmt.Printf("%v : ", expr.Parse(src))
		}
		r, err := env.eval(src)
		if err != nil {
			fmt.Println(err)
			code = 1
			continue
		}
		fmt.Printf(verb, r)
	}
	os.Exit(code)
}

// gather collects expression sources from arguments, a named input file,
// or stdin, one expression per line.
func gather(inname string, args []string) ([]string, error) {
	if len(args) > 0 && inname == "" {
		return args, nil
	}
	f := os.Stdin
	if inname != "" && inname != "-" {
		in, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		defer in.Close()
		f = in
	}
	var sources []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			sources = append(sources, line)
		}
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return append(sources, args...), nil
}
