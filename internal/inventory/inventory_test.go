package inventory

import (
	"testing"

	"github.com/clawsec/toolgate/internal/domain"
)

func TestCanonicalize_FieldMapping(t *testing.T) {
	raw := []domain.RawToolDescriptor{
		{Name: "exec", Description: "Run shell", Parameters: map[string]any{"type": "object"}},
		{Name: "read", Label: "Read File"},
	}

	steps := Canonicalize(raw)
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}

	exec := steps[0]
	if exec.Name != "exec" || exec.Description != "Run shell" {
		t.Fatalf("unexpected exec step: %+v", exec)
	}
	if exec.InputSchema["type"] != "object" {
		t.Fatalf("expected exec input schema to carry type=object, got %v", exec.InputSchema)
	}
	if exec.Metadata != nil {
		t.Fatalf("expected no metadata without a label, got %+v", exec.Metadata)
	}

	read := steps[1]
	if read.Description != "Read File" {
		t.Fatalf("expected label to fill description, got %q", read.Description)
	}
	if read.Metadata == nil || read.Metadata.Label != "Read File" {
		t.Fatalf("expected metadata label, got %+v", read.Metadata)
	}
	if read.InputSchema != nil {
		t.Fatalf("expected no input schema, got %v", read.InputSchema)
	}
}

func TestCanonicalize_DropsUnnamed(t *testing.T) {
	raw := []domain.RawToolDescriptor{
		{Name: ""},
		{Name: "exec"},
		{Label: "orphan"},
	}
	steps := Canonicalize(raw)
	if len(steps) != 1 || steps[0].Name != "exec" {
		t.Fatalf("expected only the named step, got %+v", steps)
	}
}

func TestCanonicalize_DescriptionPrecedence(t *testing.T) {
	steps := Canonicalize([]domain.RawToolDescriptor{
		{Name: "exec", Label: "Run", Description: "Run shell"},
	})
	if steps[0].Description != "Run shell" {
		t.Fatalf("description should win over label, got %q", steps[0].Description)
	}
}

func TestCanonicalize_NonObjectParametersDropped(t *testing.T) {
	for _, params := range []any{nil, "string", 42.0, []any{"a"}} {
		steps := Canonicalize([]domain.RawToolDescriptor{{Name: "exec", Parameters: params}})
		if steps[0].InputSchema != nil {
			t.Fatalf("expected no schema for parameters %v", params)
		}
	}
}

func TestCanonicalize_LastWriteWinsKeepsPosition(t *testing.T) {
	raw := []domain.RawToolDescriptor{
		{Name: "exec", Description: "first"},
		{Name: "read", Description: "middle"},
		{Name: "exec", Label: "Exec v2"},
	}

	steps := Canonicalize(raw)
	if len(steps) != 2 {
		t.Fatalf("expected duplicates folded, got %d steps", len(steps))
	}
	if steps[0].Name != "exec" || steps[1].Name != "read" {
		t.Fatalf("expected first-seen ordering, got %+v", steps)
	}
	// Full replacement: the first entry's description must be gone.
	if steps[0].Description != "Exec v2" || steps[0].Metadata == nil {
		t.Fatalf("expected later duplicate to replace earlier fully, got %+v", steps[0])
	}
}

func TestFingerprint_Idempotent(t *testing.T) {
	raw := []domain.RawToolDescriptor{
		{Name: "exec", Description: "Run shell", Parameters: map[string]any{"type": "object", "properties": map[string]any{"cmd": map[string]any{"type": "string"}}}},
		{Name: "read", Label: "Read File"},
	}

	a := Fingerprint(Canonicalize(raw))
	b := Fingerprint(Canonicalize(raw))
	if a != b {
		t.Fatalf("fingerprint not idempotent: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestFingerprint_SensitiveToOrderAndFields(t *testing.T) {
	ab := Fingerprint(Canonicalize([]domain.RawToolDescriptor{{Name: "a"}, {Name: "b"}}))
	ba := Fingerprint(Canonicalize([]domain.RawToolDescriptor{{Name: "b"}, {Name: "a"}}))
	if ab == ba {
		t.Fatal("expected ordering to change the fingerprint")
	}

	plain := Fingerprint(Canonicalize([]domain.RawToolDescriptor{{Name: "a"}}))
	described := Fingerprint(Canonicalize([]domain.RawToolDescriptor{{Name: "a", Description: "x"}}))
	if plain == described {
		t.Fatal("expected field change to change the fingerprint")
	}
}

func TestFingerprint_EmptyInventory(t *testing.T) {
	a := Fingerprint(Canonicalize(nil))
	b := Fingerprint(Canonicalize([]domain.RawToolDescriptor{}))
	if a != b {
		t.Fatalf("empty inventories should hash identically: %q vs %q", a, b)
	}
	if a == "" {
		t.Fatal("fingerprint must never be empty")
	}
}
