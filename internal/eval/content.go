// Content evaluator (spec §4.1): a token parser over the Markup stream,
// `many(pContent) then eof`, where `pContent = (pTxt | pElt) |>
// applyShowRules |> collapseAdjacentText`.
//
// Grounded on gotypst's eval/markup.go: evalMarkup walks an expression slice
// with an explicit index rather than recursive descent, since list/enum
// grouping and the Equation mode switch both need to look ahead and consume
// a variable number of following nodes. We keep that cursor-over-a-slice
// shape; the greedy list/enum grouping loops mirror
// eval/markup.go's own "peek next node, consume while it matches" pattern.
package eval

import (
	"fmt"

	"github.com/boergens/gotypst/internal/ast"
	"github.com/boergens/gotypst/internal/diag"
	"github.com/boergens/gotypst/internal/env"
	"github.com/boergens/gotypst/internal/value"
)

// evalContentSeq runs many(pContent) then eof over markup, concatenating
// results (spec §4.1's top-level production).
func (e *Evaluator) evalContentSeq(markup ast.Markup) (value.Content, error) {
	var out []value.Node
	i := 0
	for i < len(markup) {
		if e.HasFlow() {
			break
		}
		unit, consumed, err := e.pContent(markup, i)
		if err != nil {
			return value.Content{}, err
		}
		i += consumed
		out = append(out, unit.Nodes...)
	}
	return value.Content{Nodes: out}, nil
}

// pContent produces one content unit starting at markup[i] and reports how
// many nodes it consumed.
func (e *Evaluator) pContent(markup ast.Markup, i int) (value.Content, int, error) {
	var result value.Content
	var consumed int
	var err error
	if ast.IsTextAtom(markup[i]) {
		result, consumed, err = e.pTxt(markup, i)
	} else {
		result, consumed, err = e.pElt(markup, i)
	}
	if err != nil {
		return value.Content{}, 0, err
	}
	result, err = e.applyShowRules(result)
	if err != nil {
		return value.Content{}, 0, err
	}
	result, err = e.collapseAdjacentText(result)
	if err != nil {
		return value.Content{}, 0, err
	}
	return result, consumed, nil
}

// pTxt consumes a run of text-like atoms (one, in math mode) and produces a
// single Txt node after smart-quote rewriting (spec §4.1).
func (e *Evaluator) pTxt(markup ast.Markup, i int) (value.Content, int, error) {
	end := i + 1
	if !e.Math {
		for end < len(markup) && ast.IsTextAtom(markup[end]) {
			end++
		}
	}
	atoms := normalizeText(markup[i:end])
	text := rewriteSmartQuotes(atoms)
	return value.NewContent(value.Txt(text)), end - i, nil
}

// collapseAdjacentText implements spec §4.1's final fold: contiguous
// non-empty Txt nodes are each individually passed through the "text"
// element constructor, in source order; other nodes pass through unchanged.
func (e *Evaluator) collapseAdjacentText(c value.Content) (value.Content, error) {
	var callErr error
	out := value.CollapseAdjacentText(c, func(s string) value.Node {
		if callErr != nil {
			return value.Node{}
		}
		n, err := e.elementNode("text", nil, value.String(s))
		if err != nil {
			callErr = err
			return value.Node{}
		}
		return n
	})
	if callErr != nil {
		return value.Content{}, callErr
	}
	return out, nil
}

// importModuleIdents merges every export of the module bound under name
// into the innermost frame (used by the Equation mapping's "import math and
// sym modules" step, and shared with Import(AllIdentifiers) in expr.go).
func (e *Evaluator) importModuleIdents(name string) error {
	v, ok := e.Identifiers.Get(name)
	if !ok {
		return fmt.Errorf("unknown module %q", name)
	}
	mod, ok := v.(*value.Module)
	if !ok {
		return fmt.Errorf("%q is not a module", name)
	}
	for _, kv := range mod.Exports.Pairs() {
		e.Identifiers.Define(kv.Key, kv.Value)
	}
	return nil
}

// named builds a *value.Dict from alternating string-key/value.Value pairs;
// a small literal-friendly constructor for the named-argument records the
// mapping table in spec §4.1 calls for at each element() call site.
func named(kvs ...interface{}) *value.Dict {
	d := value.NewDict()
	for i := 0; i+1 < len(kvs); i += 2 {
		k := kvs[i].(string)
		d.Set(k, kvs[i+1].(value.Value))
	}
	return d
}

// pElt consumes one non-text markup node and produces content per spec
// §4.1's mapping table.
func (e *Evaluator) pElt(markup ast.Markup, i int) (value.Content, int, error) {
	switch n := markup[i].(type) {
	case ast.ParBreak:
		c, err := e.element("parbreak", nil)
		return c, 1, err
	case ast.HardBreak:
		c, err := e.element("linebreak", nil)
		return c, 1, err
	case ast.Comment:
		return value.Empty, 1, nil

	case ast.Code:
		if show, ok := n.Expr.(ast.ShowExpr); ok && show.Selector == nil {
			return e.evalShowEverything(markup, i, show, n.Pos)
		}
		v, err := e.evalExpr(n.Expr)
		if err != nil {
			pos := n.Pos
			if pos.Source == "" {
				pos.Source = e.SourceName
			}
			return value.Content{}, 0, fmt.Errorf("%s: %w", pos, err)
		}
		return valToContent(v), 1, nil

	case ast.Emph:
		body, err := e.evalContentSeq(n.Body)
		if err != nil {
			return value.Content{}, 0, err
		}
		c, err := e.element("emph", named("body", body))
		return c, 1, err

	case ast.Strong:
		body, err := e.evalContentSeq(n.Body)
		if err != nil {
			return value.Content{}, 0, err
		}
		c, err := e.element("strong", named("body", body))
		return c, 1, err

	case ast.Bracketed:
		body, err := e.evalContentSeq(n.Body)
		if err != nil {
			return value.Content{}, 0, err
		}
		return value.Concat(value.NewContent(value.Txt("[")), body, value.NewContent(value.Txt("]"))), 1, nil

	case ast.RawBlock:
		var lang value.Value = value.None{}
		if n.Lang != "" {
			lang = value.String(n.Lang)
		}
		c, err := e.element("raw", named("block", value.Boolean(true), "lang", lang), value.String(n.Text))
		return c, 1, err

	case ast.RawInline:
		c, err := e.element("raw", named("block", value.Boolean(false), "lang", value.None{}), value.String(n.Text))
		return c, 1, err

	case ast.Heading:
		body, err := e.evalContentSeq(n.Body)
		if err != nil {
			return value.Content{}, 0, err
		}
		c, err := e.element("heading", named("level", value.Integer(n.Level)), body)
		return c, 1, err

	case ast.Equation:
		c, err := e.evalEquation(n)
		return c, 1, err

	case ast.MFrac:
		num, err := e.evalMathGroup(n.Num)
		if err != nil {
			return value.Content{}, 0, err
		}
		den, err := e.evalMathGroup(n.Den)
		if err != nil {
			return value.Content{}, 0, err
		}
		c, err := e.element("frac", nil, num, den)
		return c, 1, err

	case ast.MAttach:
		base, err := e.evalContentSeq(n.Base)
		if err != nil {
			return value.Content{}, 0, err
		}
		var bottom, top value.Value = value.None{}, value.None{}
		if n.Bottom != nil {
			bc, err := e.evalContentSeq(*n.Bottom)
			if err != nil {
				return value.Content{}, 0, err
			}
			bottom = bc
		}
		if n.Top != nil {
			tc, err := e.evalContentSeq(*n.Top)
			if err != nil {
				return value.Content{}, 0, err
			}
			top = tc
		}
		c, err := e.element("attach", named("b", bottom, "t", top), base)
		return c, 1, err

	case ast.MGroup:
		body, err := e.evalContentSeq(n.Body)
		if err != nil {
			return value.Content{}, 0, err
		}
		if n.Open != nil && n.Close != nil {
			full := value.Concat(value.NewContent(value.Txt(*n.Open)), body, value.NewContent(value.Txt(*n.Close)))
			fields := value.NewDict()
			fields.Set("body", full)
			return value.NewContent(value.Elt("math.lr", fields)), 1, nil
		}
		var parts []value.Content
		if n.Open != nil {
			parts = append(parts, value.NewContent(value.Txt(*n.Open)))
		}
		parts = append(parts, body)
		if n.Close != nil {
			parts = append(parts, value.NewContent(value.Txt(*n.Close)))
		}
		return value.Concat(parts...), 1, nil

	case ast.MAlignPoint:
		c, err := e.element("alignpoint", nil)
		return c, 1, err

	case ast.Ref:
		var supp value.Value = value.None{}
		if n.Supplement != nil {
			v, err := e.evalExpr(n.Supplement)
			if err != nil {
				return value.Content{}, 0, err
			}
			supp = v
		}
		c, err := e.element("ref", named("label", value.Label(n.Ident), "supplement", supp))
		return c, 1, err

	case ast.BulletListItem:
		return e.evalBulletList(markup, i)

	case ast.EnumListItem:
		return e.evalEnumList(markup, i)

	case ast.DescListItem:
		return e.evalDescList(markup, i)

	case ast.Url:
		c, err := e.element("link", named("target", value.String(n.Text), "body", value.NewContent(value.Txt(n.Text))))
		return c, 1, err
	}
	return value.Content{}, 0, fmt.Errorf("eval: unhandled markup node %T", markup[i])
}

// evalShowEverything implements the selector-less `show: body` directive
// (spec §4.2): "consume all remaining content via many(pContent) eof, then
// either pass it to body... or replace content with valToContent(body)".
// Unlike a selector rule, this runs once over the whole remainder of the
// enclosing markup rather than per node, so it is handled directly in the
// pContent loop instead of through the ShowRules machinery.
func (e *Evaluator) evalShowEverything(markup ast.Markup, i int, show ast.ShowExpr, pos diag.Position) (value.Content, int, error) {
	bodyVal, err := e.evalExpr(show.Body)
	if err != nil {
		if pos.Source == "" {
			pos.Source = e.SourceName
		}
		return value.Content{}, 0, fmt.Errorf("%s: %w", pos, err)
	}
	rest, err := e.evalContentSeq(markup[i+1:])
	if err != nil {
		return value.Content{}, 0, err
	}
	consumed := len(markup) - i

	if fn, ok := bodyVal.(*value.Function); ok {
		result, err := fn.Call(&value.Arguments{Positional: []value.Value{rest}, Named: value.NewDict()})
		if err != nil {
			return value.Content{}, 0, err
		}
		return valToContent(result), consumed, nil
	}
	return valToContent(bodyVal), consumed, nil
}

// evalMathGroup evaluates an MFrac operand, stripping one outer
// paren-delimited MGroup if the operand is exactly one (spec §4.1: "strip
// one outer paren-group if present").
func (e *Evaluator) evalMathGroup(ms ast.Markup) (value.Content, error) {
	if len(ms) == 1 {
		if g, ok := ms[0].(ast.MGroup); ok && g.Open != nil && g.Close != nil {
			return e.evalContentSeq(g.Body)
		}
	}
	return e.evalContentSeq(ms)
}

// evalEquation implements the Equation mapping: new block scope, math and
// sym imported, math=true, restore on exit (spec §4.1).
func (e *Evaluator) evalEquation(n ast.Equation) (value.Content, error) {
	prevMath := e.Math
	var body value.Content
	_, err := e.InBlock(env.BlockScope, func() (value.Value, error) {
		if err := e.importModuleIdents("math"); err != nil {
			return nil, err
		}
		if err := e.importModuleIdents("sym"); err != nil {
			return nil, err
		}
		e.Math = true
		b, err := e.evalContentSeq(n.Body)
		if err != nil {
			return nil, err
		}
		body = b
		return value.Empty, nil
	})
	e.Math = prevMath
	if err != nil {
		return value.Content{}, err
	}
	return e.element("equation", named("block", value.Boolean(n.Display), "numbering", value.Value(value.None{})), body)
}

func (e *Evaluator) evalBulletList(markup ast.Markup, i int) (value.Content, int, error) {
	var items []value.Content
	j := i
	for j < len(markup) {
		item, ok := markup[j].(ast.BulletListItem)
		if !ok {
			break
		}
		body, err := e.evalContentSeq(item.Body)
		if err != nil {
			return value.Content{}, 0, err
		}
		items = append(items, body)
		j++
		for j < len(markup) {
			if _, isBreak := markup[j].(ast.SoftBreak); !isBreak {
				break
			}
			j++
		}
	}
	arr := make([]value.Value, len(items))
	for k, it := range items {
		arr[k] = it
	}
	c, err := e.element("list", named("items", value.NewArray(arr...)))
	return c, j - i, err
}

func (e *Evaluator) evalEnumList(markup ast.Markup, i int) (value.Content, int, error) {
	var items []value.Content
	var start *int
	j := i
	for j < len(markup) {
		item, ok := markup[j].(ast.EnumListItem)
		if !ok {
			break
		}
		if j == i && item.Start != nil {
			start = item.Start
		}
		body, err := e.evalContentSeq(item.Body)
		if err != nil {
			return value.Content{}, 0, err
		}
		items = append(items, body)
		j++
		for j < len(markup) {
			if _, isBreak := markup[j].(ast.SoftBreak); !isBreak {
				break
			}
			j++
		}
	}
	arr := make([]value.Value, len(items))
	for k, it := range items {
		arr[k] = it
	}
	fields := value.NewDict()
	fields.Set("items", value.NewArray(arr...))
	if start != nil {
		fields.Set("start", value.Integer(*start))
	}
	c, err := e.element("enum", fields)
	return c, j - i, err
}

func (e *Evaluator) evalDescList(markup ast.Markup, i int) (value.Content, int, error) {
	var pairs []value.Value
	j := i
	for j < len(markup) {
		item, ok := markup[j].(ast.DescListItem)
		if !ok {
			break
		}
		term, err := e.evalContentSeq(item.Term)
		if err != nil {
			return value.Content{}, 0, err
		}
		descr, err := e.evalContentSeq(item.Descr)
		if err != nil {
			return value.Content{}, 0, err
		}
		pairs = append(pairs, value.NewArray(term, descr))
		j++
	}
	c, err := e.element("terms", named("items", value.NewArray(pairs...)))
	return c, j - i, err
}
