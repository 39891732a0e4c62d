package outfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTemplateContext(t *testing.T) {
	ctx := context.Background()
	if GetTemplate(ctx) != "" {
		t.Error("Expected empty template by default")
	}

	ctx = WithTemplate(ctx, "{{.id}}")
	if GetTemplate(ctx) != "{{.id}}" {
		t.Errorf("GetTemplate = %q", GetTemplate(ctx))
	}
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"id": 5, "title": "Report"}
	if err := WriteTemplate(&buf, data, "{{.id}}: {{.title}}"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.String() != "5: Report" {
		t.Errorf("Output = %q", buf.String())
	}
}

func TestWriteTemplate_JSONFunc(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"meta": map[string]any{"k": "v"}}
	if err := WriteTemplate(&buf, data, "{{json .meta}}"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"k": "v"`) {
		t.Errorf("Output = %q", buf.String())
	}
}

func TestWriteTemplate_ParseError(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTemplate(&buf, nil, "{{.id")
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if !strings.Contains(err.Error(), "invalid template") {
		t.Errorf("Error = %v", err)
	}
}

func TestWriteTemplate_MissingKeyIsZero(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf, map[string]any{}, "{{.absent}}"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}
