// Content node and content sequences (spec §3.2).
//
// Grounded on gotypst's library/foundations/content.go, which represents
// content as a packed element with a reflection-derived field table; that
// machinery is out of scope here (Non-goals: layout/typesetting) since our
// elements never need to be laid out, only constructed, shown, and
// round-tripped through field access. Content is instead the plain
// ordered-fields shape spec §3.2 names directly: Txt(text) or
// Elt(name, label?, fields).
package value

import "strings"

// Node is a single content node: either text or a constructed element.
type Node struct {
	// Text holds the literal text when IsText is true.
	Text string
	// IsText discriminates Txt from Elt.
	IsText bool

	// Name is the element's function name (e.g. "strong", "heading").
	Name string
	// Label is the attached label text, if any.
	Label *string
	// Fields is the element's ordered identifier->value mapping.
	Fields *Dict
}

// Txt constructs a text node.
func Txt(s string) Node {
	return Node{IsText: true, Text: s}
}

// Elt constructs an element node with the given ordered fields.
func Elt(name string, fields *Dict) Node {
	if fields == nil {
		fields = NewDict()
	}
	return Node{Name: name, Fields: fields}
}

// Labelled returns a copy of the node with the given label attached.
func (n Node) Labelled(label string) Node {
	n.Label = &label
	return n
}

func (n Node) clone() Node {
	n2 := n
	if n.Fields != nil {
		n2.Fields = n.Fields.Clone().(*Dict)
	}
	return n2
}

// Content is an ordered sequence of content nodes.
type Content struct {
	Nodes []Node
}

func (Content) Kind() Kind { return KindContent }
func (c Content) Clone() Value {
	nodes := make([]Node, len(c.Nodes))
	for i, n := range c.Nodes {
		nodes[i] = n.clone()
	}
	return Content{Nodes: nodes}
}
func (Content) isValue() {}

// Empty is the empty content sequence.
var Empty = Content{}

// NewContent builds a content sequence from nodes, dropping empty Txt("")
// nodes per spec §3.2's invariant.
func NewContent(nodes ...Node) Content {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsText && n.Text == "" {
			continue
		}
		out = append(out, n)
	}
	return Content{Nodes: out}
}

// Concat concatenates content sequences, preserving the drop-empty-Txt
// invariant.
func Concat(parts ...Content) Content {
	total := 0
	for _, p := range parts {
		total += len(p.Nodes)
	}
	out := make([]Node, 0, total)
	for _, p := range parts {
		for _, n := range p.Nodes {
			if n.IsText && n.Text == "" {
				continue
			}
			out = append(out, n)
		}
	}
	return Content{Nodes: out}
}

// CollapseAdjacentText passes every individual non-empty Txt node through
// the supplied element constructor for the "text" element (spec §4.1's
// collapseAdjacentText); adjacent Txt nodes are not merged first, empty Txt
// nodes are dropped, and non-text nodes pass through unchanged.
//
// The constructor is injected rather than imported, since element
// construction requires the evaluator's style layer (§4.3) which would
// otherwise create an import cycle between value and eval.
func CollapseAdjacentText(c Content, textElem func(s string) Node) Content {
	out := make([]Node, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		if n.IsText {
			if n.Text == "" {
				continue
			}
			out = append(out, textElem(n.Text))
			continue
		}
		out = append(out, n)
	}
	return Content{Nodes: out}
}

// TextOf returns the concatenated text of this content tree, matching the
// Content.text() method (spec §4.7): a "text" element's literal "text"
// field is used verbatim, every other element descends into its "body"
// field recursively, and Txt nodes are used as-is.
func (c Content) TextOf() string {
	var sb strings.Builder
	for _, n := range c.Nodes {
		if n.IsText {
			sb.WriteString(n.Text)
			continue
		}
		if n.Fields == nil {
			continue
		}
		if n.Name == "text" {
			if text, ok := n.Fields.Get("text"); ok {
				if s, ok := text.(String); ok {
					sb.WriteString(string(s))
					continue
				}
			}
		}
		if body, ok := n.Fields.Get("body"); ok {
			if bc, ok := body.(Content); ok {
				sb.WriteString(bc.TextOf())
				continue
			}
		}
	}
	return sb.String()
}
