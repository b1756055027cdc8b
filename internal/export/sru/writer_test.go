package sru

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleFile() *File {
	return &File{
		OrgNumber:      "5561234567",
		FormID:         "INK2R",
		MappingVersion: "INK2-2024P4",
		GeneratedAt:    time.Date(2025, 5, 2, 14, 30, 0, 0, time.UTC),
		Fields: []Field{
			{Code: "7410", Value: decimal.RequireFromString("150000.00")},
			{Code: "7513", Value: decimal.RequireFromString("60000.75")},
			{Code: "7450", Value: decimal.RequireFromString("89999.25")},
		},
	}
}

func TestRender(t *testing.T) {
	data, err := Render(sampleFile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(data)
	lines := strings.Split(strings.TrimSuffix(text, "\r\n"), "\r\n")

	if lines[0] != "#BLANKETT INK2-2024P4" {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[1] != "#IDENTITET 5561234567 20250502 143000" {
		t.Errorf("identity line = %q", lines[1])
	}
	if lines[len(lines)-2] != "#BLANKETTSLUT" || lines[len(lines)-1] != "#FIL_SLUT" {
		t.Errorf("trailer = %q, %q", lines[len(lines)-2], lines[len(lines)-1])
	}

	// Öretal fall away: whole kronor, truncated.
	for _, want := range []string{
		"#UPPGIFT 7410 150000",
		"#UPPGIFT 7513 60000",
		"#UPPGIFT 7450 89999",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output", want)
		}
	}

	if !bytes.HasSuffix(data, []byte("\r\n")) {
		t.Error("file must end with CRLF")
	}
}

func TestRender_FieldOrderPreserved(t *testing.T) {
	data, err := Render(sampleFile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(data)
	if !(strings.Index(text, "7410") < strings.Index(text, "7513") && strings.Index(text, "7513") < strings.Index(text, "7450")) {
		t.Error("fields must render in mapping order")
	}
}

func TestRender_Deterministic(t *testing.T) {
	first, err := Render(sampleFile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Render(sampleFile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("same input must render identical bytes")
	}
}

func TestRenderInfo(t *testing.T) {
	data, err := RenderInfo(sampleFile(), "Anna Andersson", "anna@example.se")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(data)
	for _, want := range []string{
		"#DATABESKRIVNING_START",
		"#PRODUKT SRU",
		"#FILNAMN BLANKETTER.SRU",
		"#ORGNR 5561234567",
		"#KONTAKT Anna Andersson",
		"#EPOST anna@example.se",
		"#MEDIELEV_SLUT",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}
