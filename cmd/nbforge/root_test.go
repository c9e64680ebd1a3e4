package main

// Notes:
// - formatValue: we test parse-time validation, normalization, and the
//   pflag.Value contract. Full command wiring runs through cobra and is
//   exercised end to end by the integration flow, not unit-tested here.

import (
	"errors"
	"testing"

	nbforge "github.com/littlemissdragon/nbforge"
)

// ---------------------------------------------------------------------------
// TestFormatValue - Parse-time --format validation
// ---------------------------------------------------------------------------

func TestFormatValue(t *testing.T) {
	t.Parallel()

	t.Run("accepts known formats", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{"markdown", "html", "MARKDOWN", " html "} {
			var target string
			v := newFormatValue(&target)
			if err := v.Set(raw); err != nil {
				t.Errorf("Set(%q) error = %v", raw, err)
			}
		}
	})

	t.Run("normalizes case and spacing", func(t *testing.T) {
		t.Parallel()
		var target string
		v := newFormatValue(&target)
		if err := v.Set(" Markdown "); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if target != "markdown" {
			t.Errorf("target = %q, want markdown", target)
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()
		var target string
		v := newFormatValue(&target)
		err := v.Set("docx")
		if !errors.Is(err, nbforge.ErrUnknownFormat) {
			t.Errorf("Set(docx) error = %v, want ErrUnknownFormat", err)
		}
		if target != "" {
			t.Errorf("target = %q, want unchanged on error", target)
		}
	})

	t.Run("pflag contract", func(t *testing.T) {
		t.Parallel()
		target := "markdown"
		v := newFormatValue(&target)
		if v.String() != "markdown" {
			t.Errorf("String() = %q, want markdown", v.String())
		}
		if v.Type() != "format" {
			t.Errorf("Type() = %q, want format", v.Type())
		}
	})
}
