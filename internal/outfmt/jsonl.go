package outfmt

import (
	"encoding/json"
	"io"

	"github.com/overviewdocs/overview-cli/internal/filter"
)

// WriteJSONL writes newline-delimited JSON: one compact line per element of
// a list, a single line for any other value. Lists are not wrapped in an
// items object; the line stream itself is the collection. A jq query, when
// present, runs against each line's value.
func WriteJSONL(w io.Writer, v any, query string) error {
	items, ok := listElements(v)
	if !ok {
		return writeJSONLValue(w, v, query)
	}
	for _, item := range items {
		if err := writeJSONLValue(w, item, query); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONLValue(w io.Writer, v any, query string) error {
	if query != "" {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		result, err := filter.ApplyFromJSON(data, query)
		if err != nil {
			return err
		}
		v = result
	}
	// Encoder without indent yields one compact line plus the newline.
	return json.NewEncoder(w).Encode(v)
}
