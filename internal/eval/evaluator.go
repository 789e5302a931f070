// Package eval implements the core tree-walking evaluator (spec §2-§9): the
// mutable evaluator state, the expression and content evaluators, the
// element dispatcher and style layer, the show-rule engine, the method
// dispatcher, and the module loader.
//
// Grounded on gotypst's eval/vm.go (Vm bundles engine/flow/scopes/context)
// and eval/world.go (the loadBytes/currentTime I/O boundary); trimmed to
// exactly the state spec §3.5 names (no font book, no IDE tracing, no
// diagnostic sink beyond internal/diag's logger).
package eval

import (
	"time"

	"github.com/boergens/gotypst/internal/ast"
	"github.com/boergens/gotypst/internal/diag"
	"github.com/boergens/gotypst/internal/env"
	"github.com/boergens/gotypst/internal/value"
)

// LoadBytes reads the contents of a file, named relative to the evaluator's
// current source (spec §6).
type LoadBytes func(path string) ([]byte, error)

// CurrentTime returns the wall-clock time (spec §6).
type CurrentTime func() time.Time

// Parse turns Typst source text into a markup stream. This is the external
// parser contract (spec §1, §6); the evaluator only calls it when resolving
// `import`/`include` paths and inside the `eval` builtin, since module
// source text must be parsed to be evaluated.
type Parse func(source string) (ast.Markup, error)

// PackageResolver resolves an `@preview/name:version`-style import path to a
// local path loadBytes can read (spec §1.3). It widens what loadModule's
// pathLiteral may mean; bare relative paths never consult it.
type PackageResolver interface {
	Resolve(spec string) (string, error)
}

// Flow is the control-flow directive threaded through expression evaluation
// (spec §3.5, §9).
type Flow interface{ isFlow() }

type FlowNormal struct{}
type FlowContinue struct{}
type FlowBreak struct{}
type FlowReturn struct {
	HasValue bool
	Value    value.Value
}

func (FlowNormal) isFlow()   {}
func (FlowContinue) isFlow() {}
func (FlowBreak) isFlow()    {}
func (FlowReturn) isFlow()   {}

// ShowRule is a (selector, transformer) pair pushed by `show` (spec §3.5,
// §4.4).
type ShowRule struct {
	Selector    value.Selector
	Transformer func(node value.Node) (value.Content, error)
}

// Evaluator holds the mutable state threaded through a single evaluation
// (spec §3.5).
type Evaluator struct {
	Identifiers *env.Environment
	Styles      map[string]*value.Dict // element name -> default argument record
	ShowRules   []ShowRule             // most recent first
	Counters    map[string]int64
	Math        bool

	LoadBytes   LoadBytes
	CurrentTime CurrentTime
	Parse       Parse
	Resolver    PackageResolver // optional; see internal/config

	SourceName string
	Logger     *diag.Logger

	Flow Flow
}

// New creates a fresh evaluator. base is the standard-library contract
// (spec §6): a map of base identifiers pre-populated into the root scope,
// expected to already include "math" and "sym" modules.
func New(base map[string]value.Value, loadBytes LoadBytes, currentTime CurrentTime, parse Parse, sourceName string) *Evaluator {
	e := &Evaluator{
		Identifiers: env.New(base),
		Styles:      make(map[string]*value.Dict),
		Counters:    make(map[string]int64),
		LoadBytes:   loadBytes,
		CurrentTime: currentTime,
		Parse:       parse,
		SourceName:  sourceName,
		Logger:      diag.NewLogger(nil),
		Flow:        FlowNormal{},
	}
	e.Identifiers.Define("eval", e.evalFunction())
	return e
}

// TakeFlow returns the current flow and resets it to Normal.
func (e *Evaluator) TakeFlow() Flow {
	f := e.Flow
	e.Flow = FlowNormal{}
	return f
}

// HasFlow reports whether a non-Normal flow is pending.
func (e *Evaluator) HasFlow() bool {
	_, normal := e.Flow.(FlowNormal)
	return !normal
}

// snapshot captures everything a scope block must restore on exit (spec
// §3.5, §5): the frame depth is managed separately by env.Push/Pop, but
// styles must be saved/restored around inBlock even on failure paths.
type stylesSnapshot map[string]*value.Dict

func (e *Evaluator) saveStyles() stylesSnapshot {
	snap := make(stylesSnapshot, len(e.Styles))
	for k, v := range e.Styles {
		snap[k] = v
	}
	return snap
}

func (e *Evaluator) restoreStyles(snap stylesSnapshot) {
	e.Styles = map[string]*value.Dict(snap)
}

// InBlock pushes a new scope of the given kind, runs fn, and restores the
// identifier stack and styles afterward - even if fn returns an error (spec
// §3.5: "pushed on entering a new scope block (inBlock) and restored on
// exit, even on failure paths").
func (e *Evaluator) InBlock(kind env.Kind, fn func() (value.Value, error)) (value.Value, error) {
	e.Identifiers.Push(kind)
	styles := e.saveStyles()
	defer func() {
		e.Identifiers.Pop()
		e.restoreStyles(styles)
	}()
	return fn()
}

// Evaluate runs markup through this evaluator's root scope, checking scope
// balance on return (spec §8's scope-discipline invariant). Exported so a
// caller that needs to configure fields New doesn't take as parameters (e.g.
// Resolver) can build the Evaluator itself and still reach the same
// top-level entry point EvaluateTypst uses internally.
func (e *Evaluator) Evaluate(markup ast.Markup) (value.Content, error) {
	startDepth := e.Identifiers.Depth()
	content, err := e.evalContentSeq(markup)
	if err != nil {
		return value.Content{}, err
	}
	if e.Identifiers.Depth() != startDepth {
		panic("eval: unbalanced scope stack after evaluateTypst")
	}
	return content, nil
}

// EvaluateTypst is the primary entry point (spec §6):
// evaluateTypst(loadBytes, currentTime, path, markup) -> Result<ContentSeq, ParseError>.
func EvaluateTypst(base map[string]value.Value, loadBytes LoadBytes, currentTime CurrentTime, parse Parse, path string, markup ast.Markup) (value.Content, error) {
	e := New(base, loadBytes, currentTime, parse, path)
	return e.Evaluate(markup)
}
