// Package main provides the CLI entry point for typstcore.
//
// Usage:
//
//	typstcore eval input.typ
//	typstcore eval input.typ --root . --lock packages.lock.yaml
//	typstcore help
//	typstcore version
//
// Grounded on gotypst's cmd/gotypst/main.go: a single-subcommand-dispatch
// main, a flag.NewFlagSet per subcommand, and a root/output-path resolution
// shape. Layout and PDF export are out of scope (Non-goals: layout,
// typesetting, rendering), so "eval" replaces "compile" as the one real
// subcommand: it runs the core evaluator end to end and prints the
// resulting content tree instead of a rendered page.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/boergens/gotypst/internal/config"
	"github.com/boergens/gotypst/internal/eval"
	"github.com/boergens/gotypst/internal/refparser"
	"github.com/boergens/gotypst/internal/stdlib"
	"github.com/boergens/gotypst/internal/value"
	"github.com/boergens/gotypst/kit"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "eval", "e":
		if err := runEval(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		printVersion()
	default:
		// Assume single argument is input file for eval.
		if err := runEval(os.Args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

func printUsage() {
	fmt.Println(`typstcore - a Typst-dialect core evaluator

Usage:
  typstcore eval <input.typ> [--root <dir>] [--lock <packages.lock.yaml>]
  typstcore <input.typ>
  typstcore help
  typstcore version

Commands:
  eval, e       Evaluate a Typst-dialect source file to a content tree
  help          Show this help message
  version       Show version information

Options:
  --root        Project root directory (default: input file directory)
  --manifest    Path to a typst.toml project manifest (optional)
  --lock        Path to a packages.lock.yaml package lock (optional)
  --debug       Print the full content node tree instead of just its text`)
}

func printVersion() {
	fmt.Println("typstcore version 0.1.0")
}

type evalFlags struct {
	root     string
	manifest string
	lock     string
	debug    bool
}

func parseEvalFlags(args []string) (*evalFlags, string, error) {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	f := &evalFlags{}
	fs.StringVar(&f.root, "root", "", "Project root directory")
	fs.StringVar(&f.manifest, "manifest", "", "Path to typst.toml")
	fs.StringVar(&f.lock, "lock", "", "Path to packages.lock.yaml")
	fs.BoolVar(&f.debug, "debug", false, "Print the full content node tree")

	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if fs.NArg() < 1 {
		return nil, "", fmt.Errorf("missing input file")
	}
	input := fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return nil, "", err
	}
	return f, input, nil
}

// runEval wires refparser.ParseMarkup as the Parse value, a kit.FileWorld as
// the loadBytes/currentTime pair, and stdlib.Base() as the standard-library
// contract (spec §6), then drives internal/eval.Evaluator.Evaluate end to
// end and prints the resulting content.
func runEval(args []string) error {
	f, input, err := parseEvalFlags(args)
	if err != nil {
		return err
	}

	absInput, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("cannot resolve input path: %w", err)
	}

	projectRoot := f.root
	if projectRoot == "" {
		projectRoot = filepath.Dir(absInput)
	}

	world, err := kit.NewFileWorld(projectRoot)
	if err != nil {
		return err
	}

	mainPath, err := filepath.Rel(world.Root(), absInput)
	if err != nil {
		mainPath = absInput
	}

	if f.manifest != "" {
		m, err := config.LoadManifest(f.manifest)
		if err != nil {
			return err
		}
		mainPath = m.EntrypointPath(f.manifest)
	}

	var resolver eval.PackageResolver
	if f.lock != "" {
		lock, err := config.LoadLock(f.lock)
		if err != nil {
			return err
		}
		resolver = lock
	}

	source, err := world.LoadBytes(mainPath)
	if err != nil {
		return fmt.Errorf("cannot read source: %w", err)
	}

	markup, err := refparser.ParseMarkup(string(source))
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	e := eval.New(stdlib.Base(), world.LoadBytes, kit.CurrentTime, refparser.ParseMarkup, mainPath)
	e.Resolver = resolver

	content, err := e.Evaluate(markup)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if f.debug {
		printNodes(content.Nodes, 0)
		return nil
	}
	fmt.Println(content.TextOf())
	return nil
}

// printNodes dumps a content tree recursively, one line per node, indented
// by nesting depth - a plain-text debugging aid, not a spec-defined format.
func printNodes(nodes []value.Node, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	for _, n := range nodes {
		if n.IsText {
			fmt.Printf("%sText(%q)\n", indent, n.Text)
			continue
		}
		label := ""
		if n.Label != nil {
			label = fmt.Sprintf(" <%s>", *n.Label)
		}
		fmt.Printf("%s%s%s\n", indent, n.Name, label)
		pairs := n.Fields.Pairs()
		keyWidth := 0
		for _, kv := range pairs {
			if w := value.DisplayWidth(kv.Key); w > keyWidth {
				keyWidth = w
			}
		}
		for _, kv := range pairs {
			if body, ok := kv.Value.(value.Content); ok {
				fmt.Printf("%s  %s:\n", indent, kv.Key)
				printNodes(body.Nodes, depth+2)
				continue
			}
			fmt.Printf("%s  %s: %s\n", indent, padKey(kv.Key, keyWidth), value.Repr(kv.Value))
		}
	}
}

// padKey right-pads key to width display columns so a node's field table
// lines up under --debug even when a key's display width differs from its
// rune count (e.g. an East-Asian-wide dict key reaching a field name).
func padKey(key string, width int) string {
	if pad := width - value.DisplayWidth(key); pad > 0 {
		return key + strings.Repeat(" ", pad)
	}
	return key
}
