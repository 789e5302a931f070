// String methods (spec §4.7): len, first, last, at(n), slice, clusters,
// codepoints, contains/starts-with/ends-with/find/position/match/matches,
// replace, trim, split.
//
// Grounded on gotypst's eval/str.go, which implements each method as a free
// function of (StrValue, *Args); we keep the per-method shape but operate on
// Go rune slices directly since spec §9's Open Question keeps grapheme
// clustering as a known per-codepoint-fallback limitation (clusters() does
// not pull in real Unicode segmentation - see DESIGN.md).
package eval

import (
	"fmt"
	"strings"

	"github.com/boergens/gotypst/internal/value"
)

// patternMatcher abstracts over a String or Regex pattern argument, the
// shape every string search method takes (spec §4.7).
type patternMatcher struct {
	literal string
	isRegex bool
	re      *value.Regex
}

func parsePattern(v value.Value) (patternMatcher, error) {
	switch p := v.(type) {
	case value.String:
		return patternMatcher{literal: string(p)}, nil
	case value.Regex:
		return patternMatcher{isRegex: true, re: &p}, nil
	}
	return patternMatcher{}, fmt.Errorf("expected a string or regex pattern, found %s", v.Kind())
}

func (p patternMatcher) find(s string) (start, end int, ok bool) {
	if p.isRegex {
		loc := p.re.Re.FindStringIndex(s)
		if loc == nil {
			return 0, 0, false
		}
		return loc[0], loc[1], true
	}
	idx := strings.Index(s, p.literal)
	if idx < 0 {
		return 0, 0, false
	}
	return idx, idx + len(p.literal), true
}

func (p patternMatcher) findAll(s string) [][2]int {
	if p.isRegex {
		return p.re.Re.FindAllStringIndex(s, -1)
	}
	if p.literal == "" {
		out := make([][2]int, 0, len(s)+1)
		for i := 0; i <= len(s); i++ {
			out = append(out, [2]int{i, i})
		}
		return out
	}
	var out [][2]int
	i := 0
	for {
		idx := strings.Index(s[i:], p.literal)
		if idx < 0 {
			break
		}
		start := i + idx
		end := start + len(p.literal)
		out = append(out, [2]int{start, end})
		i = end
	}
	return out
}

func matchDict(s string, start, end int) *value.Dict {
	d := value.NewDict()
	d.Set("start", value.Integer(start))
	d.Set("end", value.Integer(end))
	d.Set("text", value.String(s[start:end]))
	d.Set("captures", value.NewArray())
	return d
}

// normalizeStrIndex wraps a negative index, matching spec §4.7's rule for
// positional string methods.
func normalizeStrIndex(i, n int) int {
	if i < 0 {
		return n + i
	}
	return i
}

func (e *Evaluator) stringMethod(s string, field string) *value.Function {
	runes := []rune(s)
	n := len(runes)

	switch field {
	case "len":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			return value.Integer(n), nil
		})

	case "first":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			if n == 0 {
				if def, ok := namedOrDefault(args, "default"); ok {
					return def, nil
				}
				return nil, fmt.Errorf("string is empty")
			}
			return value.String(string(runes[0])), nil
		})

	case "last":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			if n == 0 {
				if def, ok := namedOrDefault(args, "default"); ok {
					return def, nil
				}
				return nil, fmt.Errorf("string is empty")
			}
			return value.String(string(runes[n-1])), nil
		})

	case "at":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			idxVal, err := expectPositional(args, "at")
			if err != nil {
				return nil, err
			}
			idx, ok := value.AsInt(idxVal)
			if !ok {
				return nil, fmt.Errorf("at: index must be an integer")
			}
			i := normalizeStrIndex(int(idx), n)
			if i < 0 || i >= n {
				if def, ok := namedOrDefault(args, "default"); ok {
					return def, nil
				}
				return nil, fmt.Errorf("string index out of bounds (index: %d, len: %d)", idx, n)
			}
			return value.String(string(runes[i])), nil
		})

	case "slice":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			startVal, err := expectPositional(args, "slice")
			if err != nil {
				return nil, err
			}
			start, ok := value.AsInt(startVal)
			if !ok {
				return nil, fmt.Errorf("slice: start must be an integer")
			}
			startIdx := normalizeStrIndex(int(start), n)
			endIdx := n
			if endVal, ok := popPositional(args); ok {
				end, ok := value.AsInt(endVal)
				if !ok {
					return nil, fmt.Errorf("slice: end must be an integer")
				}
				endIdx = normalizeStrIndex(int(end), n)
			} else if countVal, ok := namedOrDefault(args, "count"); ok {
				count, ok := value.AsInt(countVal)
				if !ok {
					return nil, fmt.Errorf("slice: count must be an integer")
				}
				endIdx = startIdx + int(count)
			}
			if startIdx < 0 {
				startIdx = 0
			}
			if endIdx > n {
				endIdx = n
			}
			if endIdx < startIdx {
				return value.String(""), nil
			}
			return value.String(string(runes[startIdx:endIdx])), nil
		})

	case "clusters", "codepoints":
		// Grapheme clustering falls back to per-codepoint chunking (spec §9
		// Open Question: a known, decided limitation - see DESIGN.md).
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			items := make([]value.Value, n)
			for i, r := range runes {
				items[i] = value.String(string(r))
			}
			return value.NewArray(items...), nil
		})

	case "contains":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pv, err := expectPositional(args, "contains")
			if err != nil {
				return nil, err
			}
			p, err := parsePattern(pv)
			if err != nil {
				return nil, err
			}
			_, _, ok := p.find(s)
			if p.isRegex {
				return value.Boolean(p.re.Re.MatchString(s)), nil
			}
			return value.Boolean(ok || p.literal == ""), nil
		})

	case "starts-with":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pv, err := expectPositional(args, "starts-with")
			if err != nil {
				return nil, err
			}
			p, err := parsePattern(pv)
			if err != nil {
				return nil, err
			}
			if p.isRegex {
				loc := p.re.Re.FindStringIndex(s)
				return value.Boolean(loc != nil && loc[0] == 0), nil
			}
			return value.Boolean(strings.HasPrefix(s, p.literal)), nil
		})

	case "ends-with":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pv, err := expectPositional(args, "ends-with")
			if err != nil {
				return nil, err
			}
			p, err := parsePattern(pv)
			if err != nil {
				return nil, err
			}
			if p.isRegex {
				locs := p.re.Re.FindAllStringIndex(s, -1)
				return value.Boolean(len(locs) > 0 && locs[len(locs)-1][1] == len(s)), nil
			}
			return value.Boolean(strings.HasSuffix(s, p.literal)), nil
		})

	case "find":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pv, err := expectPositional(args, "find")
			if err != nil {
				return nil, err
			}
			p, err := parsePattern(pv)
			if err != nil {
				return nil, err
			}
			start, end, ok := p.find(s)
			if !ok {
				return value.None{}, nil
			}
			return value.String(s[start:end]), nil
		})

	case "position":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pv, err := expectPositional(args, "position")
			if err != nil {
				return nil, err
			}
			p, err := parsePattern(pv)
			if err != nil {
				return nil, err
			}
			start, _, ok := p.find(s)
			if !ok {
				return value.None{}, nil
			}
			return value.Integer(start), nil
		})

	case "match":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pv, err := expectPositional(args, "match")
			if err != nil {
				return nil, err
			}
			p, err := parsePattern(pv)
			if err != nil {
				return nil, err
			}
			start, end, ok := p.find(s)
			if !ok {
				return value.None{}, nil
			}
			return matchDict(s, start, end), nil
		})

	case "matches":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pv, err := expectPositional(args, "matches")
			if err != nil {
				return nil, err
			}
			p, err := parsePattern(pv)
			if err != nil {
				return nil, err
			}
			locs := p.findAll(s)
			items := make([]value.Value, len(locs))
			for i, loc := range locs {
				items[i] = matchDict(s, loc[0], loc[1])
			}
			return value.NewArray(items...), nil
		})

	case "replace":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pv, err := expectPositional(args, "replace")
			if err != nil {
				return nil, err
			}
			p, err := parsePattern(pv)
			if err != nil {
				return nil, err
			}
			withVal, err := expectPositional(args, "replace")
			if err != nil {
				return nil, err
			}
			count := -1
			if countVal, ok := namedOrDefault(args, "count"); ok {
				c, ok := value.AsInt(countVal)
				if !ok {
					return nil, fmt.Errorf("replace: count must be an integer")
				}
				count = int(c)
			}
			return replacePattern(s, p, withVal, count)
		})

	case "trim":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			var pattern *patternMatcher
			if pv, ok := popPositional(args); ok {
				p, err := parsePattern(pv)
				if err != nil {
					return nil, err
				}
				pattern = &p
			}
			at := "both"
			if atVal, ok := namedOrDefault(args, "at"); ok {
				if av, ok := value.AsString(atVal); ok {
					at = av
				}
			}
			repeat := true
			if repVal, ok := namedOrDefault(args, "repeat"); ok {
				if rb, ok := value.AsBool(repVal); ok {
					repeat = rb
				}
			}
			return value.String(trimString(s, pattern, at, repeat)), nil
		})

	case "split":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			sepVal, ok := popPositional(args)
			if !ok || value.IsNone(sepVal) {
				words := strings.Fields(s)
				items := make([]value.Value, len(words))
				for i, w := range words {
					items[i] = value.String(w)
				}
				return value.NewArray(items...), nil
			}
			p, err := parsePattern(sepVal)
			if err != nil {
				return nil, err
			}
			var parts []string
			if p.isRegex {
				parts = p.re.Re.Split(s, -1)
			} else if p.literal == "" {
				rs := []rune(s)
				parts = make([]string, 0, len(rs)+2)
				parts = append(parts, "")
				for _, r := range rs {
					parts = append(parts, string(r))
				}
				parts = append(parts, "")
			} else {
				parts = strings.Split(s, p.literal)
			}
			items := make([]value.Value, len(parts))
			for i, part := range parts {
				items[i] = value.String(part)
			}
			return value.NewArray(items...), nil
		})
	}
	return nil
}

// replacePattern implements replace(pattern, string|fn, count?).
func replacePattern(s string, p patternMatcher, with value.Value, count int) (value.Value, error) {
	locs := p.findAll(s)
	if count >= 0 && count < len(locs) {
		locs = locs[:count]
	}
	if len(locs) == 0 {
		return value.String(s), nil
	}
	fn, isFunc := with.(*value.Function)
	var sb strings.Builder
	prev := 0
	for _, loc := range locs {
		sb.WriteString(s[prev:loc[0]])
		if isFunc {
			result, err := fn.Call(&value.Arguments{
				Positional: []value.Value{matchDict(s, loc[0], loc[1])},
				Named:      value.NewDict(),
			})
			if err != nil {
				return nil, err
			}
			rs, ok := value.AsString(result)
			if !ok {
				return nil, fmt.Errorf("replace: replacement function must return a string")
			}
			sb.WriteString(rs)
		} else {
			rs, ok := value.AsString(with)
			if !ok {
				return nil, fmt.Errorf("replace: replacement must be a string or function")
			}
			sb.WriteString(rs)
		}
		prev = loc[1]
	}
	sb.WriteString(s[prev:])
	return value.String(sb.String()), nil
}

// trimString implements trim(pattern?, repeat?, at?) - defaults to
// whitespace, "at" restricts to "start" or "end" (spec §4.7).
func trimString(s string, pattern *patternMatcher, at string, repeat bool) string {
	cutset := func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }
	trimLeft := func(str string) string {
		if pattern == nil {
			if repeat {
				return strings.TrimLeftFunc(str, cutset)
			}
			if len(str) > 0 && cutset(rune(str[0])) {
				return str[1:]
			}
			return str
		}
		for {
			start, end, ok := pattern.find(str)
			if !ok || start != 0 {
				return str
			}
			str = str[end:]
			if !repeat {
				return str
			}
			if end == start {
				return str
			}
		}
	}
	trimRight := func(str string) string {
		if pattern == nil {
			if repeat {
				return strings.TrimRightFunc(str, cutset)
			}
			if len(str) > 0 && cutset(rune(str[len(str)-1])) {
				return str[:len(str)-1]
			}
			return str
		}
		for {
			locs := pattern.findAll(str)
			if len(locs) == 0 {
				return str
			}
			last := locs[len(locs)-1]
			if last[1] != len(str) {
				return str
			}
			str = str[:last[0]]
			if !repeat {
				return str
			}
			if last[0] == last[1] {
				return str
			}
		}
	}
	switch at {
	case "start":
		return trimLeft(s)
	case "end":
		return trimRight(s)
	default:
		return trimRight(trimLeft(s))
	}
}
