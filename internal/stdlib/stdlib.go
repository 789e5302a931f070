// Package stdlib builds the base identifier map spec §6 calls the standard
// library contract: "a map of base identifiers pre-populated into the root
// BlockScope... modules math and sym must be present in the standard map."
// internal/eval never constructs this map itself (§1: "the standard library
// of predefined functions and symbols" is an external collaborator); this
// package is the one cmd/typstcore wires in.
//
// Grounded on internal/eval/content.go's pElt mapping table, which names
// every element this map must supply (text, emph, strong, raw, heading,
// equation, frac, attach, alignpoint, ref, list, enum, terms, link,
// parbreak, linebreak) and internal/eval/expr.go's evalCall, which looks up
// "accent" by name when a math-mode symbol call targets an accent symbol.
// The teacher's own element catalogue (library/foundations/element.go) is a
// reflection-driven registry generating fields from Go struct tags; that
// machinery has no home here since our elements are the plain
// Elt(name, fields) shape spec §3.2 names, not reflected structs. Each
// constructor below is instead a small literal Callable closing over its
// element name, the shape internal/value/function.go already expects.
package stdlib

import "github.com/boergens/gotypst/internal/value"

// element builds the *value.Function for one element constructor: named
// arguments land directly in the result's field dict, and each entry in
// positional names the field a positional argument at that index fills
// (spec §4.1's mapping table gives each element's exact argument shape).
func element(name string, positional ...string) *value.Function {
	elemName := name
	return &value.Function{
		Name:        name,
		ElementName: &elemName,
		Captured:    value.NewDict(),
		Call: func(args *value.Arguments) (value.Value, error) {
			fields := value.NewDict()
			if args.Named != nil {
				for _, kv := range args.Named.Pairs() {
					fields.Set(kv.Key, kv.Value)
				}
			}
			for i, field := range positional {
				if i < len(args.Positional) {
					fields.Set(field, args.Positional[i])
				}
			}
			return value.NewContent(value.Elt(name, fields)), nil
		},
	}
}

// Base returns a fresh base identifier map, suitable for passing to
// eval.New/eval.EvaluateTypst. Fresh per call since internal/eval never
// mutates the map in place, but callers are free to reuse one instance
// across evaluations - New only reads from base, it never writes to it.
func Base() map[string]value.Value {
	m := map[string]value.Value{
		"text":       element("text", "text"),
		"parbreak":   element("parbreak"),
		"linebreak":  element("linebreak"),
		"emph":       element("emph"),
		"strong":     element("strong"),
		"raw":        element("raw", "text"),
		"heading":    element("heading", "body"),
		"frac":       element("frac", "num", "den"),
		"attach":     element("attach", "base"),
		"alignpoint": element("alignpoint"),
		"ref":        element("ref"),
		"list":       element("list"),
		"enum":       element("enum"),
		"terms":      element("terms"),
		"link":       element("link"),
		"equation":   element("equation", "body"),
		// accent(base, symbol) renders a math accent over base (spec §4.2's
		// math-mode symbol-accent call rule); expr.go's mathCallFallback
		// covers the plain non-accent symbol-call case, so this is the only
		// other math-call identifier the evaluator looks up by name.
		"accent": element("accent", "base", "accent"),
	}
	m["math"] = mathModule()
	m["sym"] = symModule()
	return m
}

// mathModule supplies the identifiers an Equation body imports via
// importModuleIdents("math") (spec §4.1's Equation mapping). math.lr itself
// is constructed directly by content.go's MGroup handling rather than looked
// up by name, so it has no entry here.
func mathModule() *value.Module {
	exports := value.NewDict()
	exports.Set("frac", element("frac", "num", "den"))
	exports.Set("attach", element("attach", "base"))
	exports.Set("alignpoint", element("alignpoint"))
	exports.Set("accent", element("accent", "base", "accent"))
	return &value.Module{Ident: "math", Exports: exports}
}

// symModule supplies a small catalogue of named symbols (spec §3.3's Symbol
// shape: Text, IsAccent, Variants). Combining accent marks are separate
// entries flagged IsAccent; no symbol here carries any Variants.
func symModule() *value.Module {
	exports := value.NewDict()
	plain := func(name, text string) {
		exports.Set(name, value.Symbol{Text: text})
	}
	accent := func(name, text string) {
		exports.Set(name, value.Symbol{Text: text, IsAccent: true})
	}

	plain("dot", "⋅")
	plain("times", "×")
	plain("plus.minus", "±")
	plain("arrow", "→")
	plain("arrow.l", "←")
	plain("infinity", "∞")
	plain("emptyset", "∅")
	plain("forall", "∀")
	plain("exists", "∃")
	plain("in", "∈")
	plain("subset", "⊂")
	plain("approx", "≈")
	plain("neq", "≠")
	plain("leq", "≤")
	plain("geq", "≥")
	plain("alpha", "α")
	plain("beta", "β")
	plain("gamma", "γ")
	plain("pi", "π")
	plain("sigma", "σ")
	plain("omega", "ω")

	accent("hat", "̂")
	accent("tilde", "̃")
	accent("acute", "́")
	accent("grave", "̀")
	accent("dot.accent", "̇")
	accent("bar", "̄")

	return &value.Module{Ident: "sym", Exports: exports}
}
