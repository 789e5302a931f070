// Element dispatcher & style layer (spec §4.3).
//
// Grounded on gotypst's library/foundations/styles.go and element.go, where
// constructing an element looks up its Func in scope and folds the active
// StyleChain into its argument record before invoking the native
// constructor. We keep that two-step "resolve identifier, then merge styles
// as defaults" shape but drop the StyleChain's cascading-revision machinery,
// since spec §3.5 models styles as one flat `map[name]Dict` rather than a
// linked list of style blocks.
package eval

import (
	"fmt"

	"github.com/boergens/gotypst/internal/value"
)

// element resolves name in the environment and invokes it with the given
// positional arguments and named fields, merging the evaluator's recorded
// defaults for that element name underneath the named fields (spec §4.3:
// "styles are defaults; args override").
func (e *Evaluator) element(name string, named *value.Dict, positional ...value.Value) (value.Content, error) {
	v, ok := e.Identifiers.Get(name)
	if !ok {
		return value.Content{}, fmt.Errorf("unknown identifier %q", name)
	}
	fn, ok := v.(*value.Function)
	if !ok {
		return value.Content{}, fmt.Errorf("%q does not refer to a function", name)
	}

	callArgs := &value.Arguments{Positional: positional, Named: named}
	if elemName, isElement := fn.IsElement(); isElement {
		if defaults, ok := e.Styles[elemName]; ok {
			callArgs.Named = value.MergeLeftBiased(defaults, named, true)
		}
	}

	result, err := fn.Call(callArgs)
	if err != nil {
		return value.Content{}, err
	}
	return coerceElementResult(result)
}

// coerceElementResult normalizes an element constructor's return value to
// Content: most element functions return Content directly, but a native
// constructor may hand back a single Node-shaped value through valToContent.
func coerceElementResult(v value.Value) (value.Content, error) {
	if c, ok := v.(value.Content); ok {
		return c, nil
	}
	return valToContent(v), nil
}

// elementNode is a convenience for callers that need element()'s single
// produced Node rather than a whole Content (e.g. collapseAdjacentText's
// "text" constructor, which the spec describes as yielding one node per
// Txt atom).
func (e *Evaluator) elementNode(name string, named *value.Dict, positional ...value.Value) (value.Node, error) {
	c, err := e.element(name, named, positional...)
	if err != nil {
		return value.Node{}, err
	}
	if len(c.Nodes) == 1 {
		return c.Nodes[0], nil
	}
	// A multi-node (or empty) result still has to collapse into a single
	// Node slot; wrap it as an element of the requested name carrying the
	// sub-sequence as its body, so no information is lost.
	fields := value.NewDict()
	fields.Set("body", c)
	return value.Elt(name, fields), nil
}
