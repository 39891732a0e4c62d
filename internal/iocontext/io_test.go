package iocontext

import (
	"bytes"
	"context"
	"os"
	"testing"
)

func TestGetIO_Default(t *testing.T) {
	streams := GetIO(context.Background())
	if streams.Out != os.Stdout || streams.ErrOut != os.Stderr || streams.In != os.Stdin {
		t.Error("expected standard streams by default")
	}
}

func TestWithIO(t *testing.T) {
	var out, errOut bytes.Buffer
	custom := &IO{Out: &out, ErrOut: &errOut, In: bytes.NewReader(nil)}

	ctx := WithIO(context.Background(), custom)
	got := GetIO(ctx)
	if got != custom {
		t.Error("expected injected streams")
	}
}

func TestWithIO_NilFallsBack(t *testing.T) {
	ctx := WithIO(context.Background(), nil)
	got := GetIO(ctx)
	if got.Out != os.Stdout {
		t.Error("nil IO should fall back to standard streams")
	}
}
