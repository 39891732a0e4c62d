package outfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriteJSONL_List(t *testing.T) {
	var buf bytes.Buffer
	items := []map[string]any{
		{"id": 1, "title": "first"},
		{"id": 2, "title": "second"},
	}

	if err := WriteJSONL(&buf, items, ""); err != nil {
		t.Fatalf("WriteJSONL error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2: %q", len(lines), buf.String())
	}
	for i, line := range lines {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if _, ok := m["items"]; ok {
			t.Errorf("line %d carries an items wrapper: %q", i, line)
		}
	}
	if strings.Contains(lines[0], " ") {
		t.Errorf("line not compact: %q", lines[0])
	}
}

func TestWriteJSONL_SingleValue(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, map[string]any{"cursor": 42}, ""); err != nil {
		t.Fatalf("WriteJSONL error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"cursor":42}` {
		t.Errorf("output = %q", got)
	}
}

func TestWriteJSONL_QueryPerLine(t *testing.T) {
	var buf bytes.Buffer
	items := []map[string]any{{"id": 1}, {"id": 2}}

	if err := WriteJSONL(&buf, items, ".id"); err != nil {
		t.Fatalf("WriteJSONL error: %v", err)
	}
	if got := buf.String(); got != "1\n2\n" {
		t.Errorf("output = %q, want query applied per line", got)
	}
}

func TestWriteJSONL_EmptyList(t *testing.T) {
	var buf bytes.Buffer
	var items []int
	if err := WriteJSONL(&buf, items, ""); err != nil {
		t.Fatalf("WriteJSONL error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("output = %q, want nothing for an empty list", buf.String())
	}
}
