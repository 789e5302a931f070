// Show-rule engine (spec §4.4) and selector conversion (spec §4.2
// `toSelector`).
//
// Grounded on gotypst's eval/rules.go (Recipe holds a selector and a
// Transform, and eval/realize.go applies the active recipe list newest-first
// over a content sequence) and selector.go's own Matches. Selector *matching*
// is named an external collaborator by spec §1/§4.4 ("recursion rules for
// the matcher are the external collaborator's responsibility"); we still
// supply a concrete matcher here so the engine is runnable end to end, kept
// intentionally simple - see selectorMatches for the Before/After simplification.
package eval

import (
	"strings"

	"github.com/boergens/gotypst/internal/value"
)

// applyShowRules walks seq and, for each node, applies the newest rule whose
// selector matches it, substituting the transform's result in place (spec
// §4.4). Older matching rules are not applied to that node, and the result
// is not matched again.
func (e *Evaluator) applyShowRules(seq value.Content) (value.Content, error) {
	if len(e.ShowRules) == 0 {
		return seq, nil
	}
	var out []value.Node
	for _, node := range seq.Nodes {
		replaced, err := e.applyShowRulesToNode(node)
		if err != nil {
			return value.Content{}, err
		}
		out = append(out, replaced.Nodes...)
	}
	return value.Content{Nodes: out}, nil
}

func (e *Evaluator) applyShowRulesToNode(node value.Node) (value.Content, error) {
	for _, rule := range e.ShowRules {
		if !selectorMatches(rule.Selector, node) {
			continue
		}
		replaced, err := rule.Transformer(node)
		if err != nil {
			return value.Content{}, err
		}
		// A rule's own output is not re-run through the same (or older)
		// rules: matches spec's "substituted in place", not re-fed to
		// applyShowRules.
		return replaced, nil
	}
	return value.NewContent(node), nil
}

// selectorMatches implements the matcher contract spec §4.4 leaves external:
// Before/After only consult their left/right operand per-node, since real
// sequence-position matching needs whole-sequence context this per-node walk
// doesn't carry.
func selectorMatches(sel value.Selector, node value.Node) bool {
	switch s := sel.(type) {
	case value.ElementSelector:
		if node.IsText || node.Name != s.Name {
			return false
		}
		if s.Fields == nil {
			return true
		}
		for _, kv := range s.Fields.Pairs() {
			v, ok := node.Fields.Get(kv.Key)
			if !ok || !value.Equal(v, kv.Value) {
				return false
			}
		}
		return true
	case value.StringSelector:
		return node.IsText && strings.Contains(node.Text, string(s))
	case value.RegexSelector:
		return node.IsText && s.Regex.Re.MatchString(node.Text)
	case value.LabelSelector:
		return node.Label != nil && *node.Label == string(s)
	case value.OrSelector:
		return selectorMatches(s.A, node) || selectorMatches(s.B, node)
	case value.AndSelector:
		return selectorMatches(s.A, node) && selectorMatches(s.B, node)
	case value.BeforeSelector:
		return selectorMatches(s.A, node)
	case value.AfterSelector:
		return selectorMatches(s.B, node)
	}
	return false
}

// toSelector converts a value to a selector (spec §4.2 toSelector).
func toSelector(v value.Value) (value.Selector, error) {
	switch x := v.(type) {
	case value.Selector:
		return x, nil
	case *value.Function:
		if name, ok := x.IsElement(); ok {
			return value.ElementSelector{Name: name}, nil
		}
		return nil, errSelectorConversion(v)
	case value.String:
		return value.StringSelector(x), nil
	case value.Regex:
		return value.RegexSelector{Regex: x}, nil
	case value.Label:
		return value.LabelSelector(x), nil
	case value.Symbol:
		return value.StringSelector(x.Text), nil
	}
	return nil, errSelectorConversion(v)
}

func errSelectorConversion(v value.Value) error {
	return &selectorConversionError{kind: v.Kind()}
}

type selectorConversionError struct{ kind value.Kind }

func (e *selectorConversionError) Error() string {
	return "cannot convert " + e.kind.String() + " to a selector"
}
