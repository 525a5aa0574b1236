package extraction

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/jonathan/hiring-pipeline/internal/llm"
)

// ErrUnexpectedShape is returned when a response holds JSON of the wrong shape.
var ErrUnexpectedShape = errors.New("unexpected JSON shape")

// shape is the decoded form of a category response.
type shape int

const (
	shapeArray shape = iota
	shapeWrapped
	shapeFlattened
	shapeObject
)

func (s shape) String() string {
	switch s {
	case shapeArray:
		return "array"
	case shapeWrapped:
		return "wrapped"
	case shapeFlattened:
		return "flattened"
	default:
		return "object"
	}
}

// decodeList decodes a list category. Accepted shapes, in order: a bare array,
// an object with the category key wrapping an array, and for skills only an
// object whose values are arrays or strings, flattened in key order.
func decodeList(cat Category, response string) (any, shape, error) {
	js, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, 0, err
	}

	res := gjson.Parse(js)
	switch {
	case res.IsArray():
		return res.Value(), shapeArray, nil
	case res.IsObject():
		if wrapped := res.Get(gjson.Escape(cat.Key())); wrapped.IsArray() {
			return wrapped.Value(), shapeWrapped, nil
		}
		if cat == CategorySkills {
			if flat := flattenStrings(res); len(flat) > 0 {
				return flat, shapeFlattened, nil
			}
		}
	}
	return nil, 0, fmt.Errorf("%w: %s response is neither an array nor an object with %q", ErrUnexpectedShape, cat, cat.Key())
}

// decodeObject decodes an object category, unwrapping a single level keyed by
// the category name when present.
func decodeObject(cat Category, response string) (map[string]any, error) {
	js, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	res := gjson.Parse(js)
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: %s response is not an object", ErrUnexpectedShape, cat)
	}
	if inner := res.Get(gjson.Escape(cat.Key())); inner.IsObject() {
		res = inner
	}
	m, ok := res.Value().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s response is not an object", ErrUnexpectedShape, cat)
	}
	return m, nil
}

func flattenStrings(obj gjson.Result) []any {
	var out []any
	obj.ForEach(func(_, value gjson.Result) bool {
		switch {
		case value.IsArray():
			value.ForEach(func(_, item gjson.Result) bool {
				if item.Type == gjson.String {
					out = append(out, item.String())
				}
				return true
			})
		case value.Type == gjson.String:
			out = append(out, value.String())
		}
		return true
	})
	return out
}
