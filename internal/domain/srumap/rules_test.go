package srumap

import "testing"

func TestByVersion(t *testing.T) {
	m, ok := ByVersion("INK2-2024P4")
	if !ok {
		t.Fatal("expected INK2-2024P4 to exist")
	}
	if m.Year != 2024 || m.FormID != "INK2R" {
		t.Errorf("mapping = %+v", m)
	}

	if _, ok := ByVersion("INK2-1999P1"); ok {
		t.Error("unknown version must not resolve")
	}
}

func TestForYear(t *testing.T) {
	m, ok := ForYear(2025)
	if !ok {
		t.Fatal("expected a mapping for 2025")
	}
	if m.Version != "INK2-2025P4" {
		t.Errorf("version = %s, want INK2-2025P4", m.Version)
	}

	if _, ok := ForYear(1999); ok {
		t.Error("unsupported year must not resolve")
	}
}

func TestRange_Contains(t *testing.T) {
	r := Range{From: "3000", To: "3799"}

	if !r.Contains("3000") || !r.Contains("3799") {
		t.Error("range bounds are inclusive")
	}
	if !r.Contains("3001") {
		t.Error("expected 3001 inside 3000-3799")
	}
	if r.Contains("2999") || r.Contains("3800") {
		t.Error("codes outside the bounds must not match")
	}
}

func TestMapping_Covers(t *testing.T) {
	m, _ := ByVersion("INK2-2024P4")

	covered := []string{"1510", "1930", "3001", "5010", "7210", "8910", "2099"}
	for _, code := range covered {
		if !m.Covers(code) {
			t.Errorf("expected %s to be covered", code)
		}
	}

	// 1630 (tax account) has no field on the INK2 layout used here.
	if m.Covers("1630") {
		t.Error("1630 must not be covered")
	}
}

func TestMappingIsFrozen(t *testing.T) {
	first, _ := ByVersion("INK2-2024P4")
	second, _ := ByVersion("INK2-2024P4")

	if first != second {
		t.Error("a version must resolve to the same frozen mapping")
	}
	if len(first.Rules) == 0 {
		t.Fatal("mapping has no rules")
	}

	seen := make(map[string]bool, len(first.Rules))
	for _, rule := range first.Rules {
		if seen[rule.FieldCode] {
			t.Errorf("duplicate field code %s", rule.FieldCode)
		}
		seen[rule.FieldCode] = true
	}
}
