package outfmt

import (
	"encoding/json"
	"reflect"
)

// normalizeJSONOutput wraps list values in an items object so commands that
// return slices and commands that return single resources share one JSON
// shape. Non-list values pass through untouched.
func normalizeJSONOutput(v any) any {
	items, ok := listElements(v)
	if !ok {
		return v
	}
	// Always an array, never null: jq callers rely on .items[] working for
	// empty listings, and a nil slice would serialize as null.
	return map[string]any{"items": items}
}

// listElements flattens a slice or array value into []any. Byte slices and
// raw JSON do not count as lists; they marshal as strings or verbatim JSON.
func listElements(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	switch v.(type) {
	case []byte, json.RawMessage:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}

	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
