// Array methods (spec §4.7): len, first, last, at, push, pop, insert,
// remove, slice, split, contains, find, position, filter, map, flatten,
// enumerate, fold, any, all, rev, join, sorted, zip, sum, product.
//
// Grounded on gotypst's eval/array.go, which builds one free function per
// method name (ArrayLen, ArrayAt, ArrayFind, ...) taking the target array
// plus *Args; mutating methods there return "requires mutable access"
// errors because that evaluator's method values aren't bound to an lvalue.
// Ours are, via updateVal (spec §4.7), so push/pop/insert/remove do real
// work here instead of erroring.
package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/boergens/gotypst/internal/value"
)

func normalizeArrIndex(i, n int) int {
	if i < 0 {
		return n + i
	}
	return i
}

func (e *Evaluator) arrayMethod(arr *value.Array, field string, updateVal func(value.Value)) *value.Function {
	switch field {
	case "len":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			return value.Integer(arr.Len()), nil
		})

	case "first":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			v, ok := arr.At(0)
			if !ok {
				if def, ok := namedOrDefault(args, "default"); ok {
					return def, nil
				}
				return nil, fmt.Errorf("array is empty")
			}
			return v, nil
		})

	case "last":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			v, ok := arr.At(-1)
			if !ok {
				if def, ok := namedOrDefault(args, "default"); ok {
					return def, nil
				}
				return nil, fmt.Errorf("array is empty")
			}
			return v, nil
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
			v, ok := arr.At(int(idx))
			if !ok {
				if def, ok := namedOrDefault(args, "default"); ok {
					return def, nil
				}
				return nil, fmt.Errorf("array index out of bounds (index: %d, len: %d)", idx, arr.Len())
			}
			return v, nil
		})

	case "push":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			v, err := expectPositional(args, "push")
			if err != nil {
				return nil, err
			}
			arr.Push(v)
			updateVal(arr)
			return value.None{}, nil
		})

	case "pop":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			v, ok := arr.Pop()
			if !ok {
				return nil, fmt.Errorf("array is empty")
			}
			updateVal(arr)
			return v, nil
		})

	case "insert":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			idxVal, err := expectPositional(args, "insert")
			if err != nil {
				return nil, err
			}
			v, err := expectPositional(args, "insert")
			if err != nil {
				return nil, err
			}
			idx, ok := value.AsInt(idxVal)
			if !ok {
				return nil, fmt.Errorf("insert: index must be an integer")
			}
			if !arr.Insert(int(idx), v) {
				return nil, fmt.Errorf("array index out of bounds")
			}
			updateVal(arr)
			return value.None{}, nil
		})

	case "remove":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			idxVal, err := expectPositional(args, "remove")
			if err != nil {
				return nil, err
			}
			idx, ok := value.AsInt(idxVal)
			if !ok {
				return nil, fmt.Errorf("remove: index must be an integer")
			}
			v, ok := arr.Remove(int(idx))
			if !ok {
				return nil, fmt.Errorf("array index out of bounds")
			}
			updateVal(arr)
			return v, nil
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
			n := arr.Len()
			startIdx := normalizeArrIndex(int(start), n)
			endIdx := n
			if endVal, ok := popPositional(args); ok {
				end, ok := value.AsInt(endVal)
				if !ok {
					return nil, fmt.Errorf("slice: end must be an integer")
				}
				endIdx = normalizeArrIndex(int(end), n)
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
				return value.NewArray(), nil
			}
			return value.NewArray(arr.Items()[startIdx:endIdx]...), nil
		})

	case "split":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			sepVal, err := expectPositional(args, "split")
			if err != nil {
				return nil, err
			}
			items := arr.Items()
			var chunks []value.Value
			start := 0
			for i, it := range items {
				if value.Equal(it, sepVal) {
					chunks = append(chunks, value.NewArray(items[start:i]...))
					start = i + 1
				}
			}
			chunks = append(chunks, value.NewArray(items[start:]...))
			return value.NewArray(chunks...), nil
		})

	case "contains":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			needle, err := expectPositional(args, "contains")
			if err != nil {
				return nil, err
			}
			for _, it := range arr.Items() {
				if value.Equal(it, needle) {
					return value.Boolean(true), nil
				}
			}
			return value.Boolean(false), nil
		})

	case "find":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pred, err := expectFunc(args, "find")
			if err != nil {
				return nil, err
			}
			for _, it := range arr.Items() {
				ok, err := callPredicate(pred, it)
				if err != nil {
					return nil, err
				}
				if ok {
					return it, nil
				}
			}
			return value.None{}, nil
		})

	case "position":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pred, err := expectFunc(args, "position")
			if err != nil {
				return nil, err
			}
			for i, it := range arr.Items() {
				ok, err := callPredicate(pred, it)
				if err != nil {
					return nil, err
				}
				if ok {
					return value.Integer(i), nil
				}
			}
			return value.None{}, nil
		})

	case "filter":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pred, err := expectFunc(args, "filter")
			if err != nil {
				return nil, err
			}
			var out []value.Value
			for _, it := range arr.Items() {
				ok, err := callPredicate(pred, it)
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, it)
				}
			}
			return value.NewArray(out...), nil
		})

	case "map":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			fn, err := expectFunc(args, "map")
			if err != nil {
				return nil, err
			}
			items := arr.Items()
			out := make([]value.Value, len(items))
			for i, it := range items {
				v, err := fn.Call(&value.Arguments{Positional: []value.Value{it}, Named: value.NewDict()})
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return value.NewArray(out...), nil
		})

	case "flatten":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			var out []value.Value
			flattenInto(arr, &out)
			return value.NewArray(out...), nil
		})

	case "enumerate":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			items := arr.Items()
			out := make([]value.Value, len(items))
			for i, it := range items {
				out[i] = value.NewArray(value.Integer(i), it)
			}
			return value.NewArray(out...), nil
		})

	case "fold":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			acc, err := expectPositional(args, "fold")
			if err != nil {
				return nil, err
			}
			fn, err := expectFunc(args, "fold")
			if err != nil {
				return nil, err
			}
			for _, it := range arr.Items() {
				v, err := fn.Call(&value.Arguments{Positional: []value.Value{acc, it}, Named: value.NewDict()})
				if err != nil {
					return nil, err
				}
				acc = v
			}
			return acc, nil
		})

	case "any":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pred, err := expectFunc(args, "any")
			if err != nil {
				return nil, err
			}
			for _, it := range arr.Items() {
				ok, err := callPredicate(pred, it)
				if err != nil {
					return nil, err
				}
				if ok {
					return value.Boolean(true), nil
				}
			}
			return value.Boolean(false), nil
		})

	case "all":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			pred, err := expectFunc(args, "all")
			if err != nil {
				return nil, err
			}
			for _, it := range arr.Items() {
				ok, err := callPredicate(pred, it)
				if err != nil {
					return nil, err
				}
				if !ok {
					return value.Boolean(false), nil
				}
			}
			return value.Boolean(true), nil
		})

	case "rev":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			items := arr.Items()
			out := make([]value.Value, len(items))
			for i, it := range items {
				out[len(items)-1-i] = it
			}
			return value.NewArray(out...), nil
		})

	case "join":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			sepVal, hasSep := popPositional(args)
			lastVal, hasLast := namedOrDefault(args, "last")
			items := arr.Items()
			if len(items) == 0 {
				return value.String(""), nil
			}
			parts := make([]string, len(items))
			for i, it := range items {
				s, ok := value.AsString(it)
				if !ok {
					s = value.Repr(it)
				}
				parts[i] = s
			}
			sep := ""
			if hasSep {
				sep, _ = value.AsString(sepVal)
			}
			if hasLast && len(parts) > 1 {
				lastSep, _ := value.AsString(lastVal)
				return value.String(strings.Join(parts[:len(parts)-1], sep) + lastSep + parts[len(parts)-1]), nil
			}
			return value.String(strings.Join(parts, sep)), nil
		})

	case "sorted":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			keyFn, hasKey := namedOrDefault(args, "key")
			items := append([]value.Value(nil), arr.Items()...)
			var sortErr error
			keyOf := func(v value.Value) value.Value { return v }
			if hasKey {
				fn, ok := keyFn.(*value.Function)
				if !ok {
					return nil, fmt.Errorf("sorted: key must be a function")
				}
				keyOf = func(v value.Value) value.Value {
					r, err := fn.Call(&value.Arguments{Positional: []value.Value{v}, Named: value.NewDict()})
					if err != nil {
						sortErr = err
						return v
					}
					return r
				}
			}
			sort.SliceStable(items, func(i, j int) bool {
				return value.Compare(keyOf(items[i]), keyOf(items[j])) == value.LT
			})
			if sortErr != nil {
				return nil, sortErr
			}
			return value.NewArray(items...), nil
		})

	case "zip":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			otherVal, err := expectPositional(args, "zip")
			if err != nil {
				return nil, err
			}
			other, ok := otherVal.(*value.Array)
			if !ok {
				return nil, fmt.Errorf("zip: expected an array")
			}
			a := arr.Items()
			b := other.Items()
			n := len(a)
			if len(b) < n {
				n = len(b)
			}
			out := make([]value.Value, n)
			for i := 0; i < n; i++ {
				out[i] = value.NewArray(a[i], b[i])
			}
			return value.NewArray(out...), nil
		})

	case "sum":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			items := arr.Items()
			if len(items) == 0 {
				if def, ok := namedOrDefault(args, "default"); ok {
					return def, nil
				}
				return nil, fmt.Errorf("cannot sum an empty array without a default")
			}
			acc := items[0]
			var err error
			for _, it := range items[1:] {
				acc, err = value.Add(acc, it)
				if err != nil {
					return nil, err
				}
			}
			return acc, nil
		})

	case "product":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			items := arr.Items()
			if len(items) == 0 {
				if def, ok := namedOrDefault(args, "default"); ok {
					return def, nil
				}
				return nil, fmt.Errorf("cannot take the product of an empty array without a default")
			}
			acc := items[0]
			var err error
			for _, it := range items[1:] {
				acc, err = value.Mul(acc, it)
				if err != nil {
					return nil, err
				}
			}
			return acc, nil
		})
	}
	return nil
}

func expectFunc(args *value.Arguments, method string) (*value.Function, error) {
	v, err := expectPositional(args, method)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(*value.Function)
	if !ok {
		return nil, fmt.Errorf("%s: expected a function", method)
	}
	return fn, nil
}

func callPredicate(fn *value.Function, v value.Value) (bool, error) {
	result, err := fn.Call(&value.Arguments{Positional: []value.Value{v}, Named: value.NewDict()})
	if err != nil {
		return false, err
	}
	b, ok := value.AsBool(result)
	if !ok {
		return false, fmt.Errorf("predicate must return a boolean")
	}
	return b, nil
}

func flattenInto(arr *value.Array, out *[]value.Value) {
	for _, it := range arr.Items() {
		if nested, ok := it.(*value.Array); ok {
			flattenInto(nested, out)
			continue
		}
		*out = append(*out, it)
	}
}
