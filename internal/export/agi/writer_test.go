package agi

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
)

func sampleDeclaration() *Declaration {
	return &Declaration{
		OrgNumber:   "556123-4567",
		Period:      "202501",
		GeneratedAt: time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC),
		Records: []domain.PayrollRecord{
			{
				PersonalNumber: "19850101-1234",
				Name:           "Anna Andersson",
				GrossSalary:    decimal.RequireFromString("35000.49"),
				TaxDeducted:    decimal.RequireFromString("8750.00"),
			},
			{
				PersonalNumber: "900230+5678",
				Name:           "Bo Berg",
				GrossSalary:    decimal.NewFromInt(28000),
				TaxDeducted:    decimal.NewFromInt(6400),
				Benefits:       decimal.NewFromInt(500),
			},
		},
	}
}

func TestRender(t *testing.T) {
	data, err := Render(sampleDeclaration())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(data)

	if !strings.HasPrefix(text, xml.Header) {
		t.Error("expected an XML declaration header")
	}
	if !strings.Contains(text, `xmlns:agd="http://xmls.skatteverket.se/se/skatteverket/da/instans/schema/1.1"`) {
		t.Error("expected the Skatteverket namespace")
	}
	if !strings.Contains(text, "<agd:Period>202501</agd:Period>") {
		t.Error("expected the filing period")
	}

	// Identification numbers are digits only.
	if !strings.Contains(text, "<agd:Organisationsnummer>5561234567</agd:Organisationsnummer>") {
		t.Error("orgnr must be stripped to digits")
	}
	if !strings.Contains(text, "<agd:BetalningsmottagareId>198501011234</agd:BetalningsmottagareId>") {
		t.Error("personal numbers must be stripped to digits")
	}
	if strings.Contains(text, "19850101-1234") || strings.Contains(text, "900230+5678") {
		t.Error("raw identification numbers must not leak into the output")
	}

	// Whole-krona amounts.
	if !strings.Contains(text, "<agd:KontantErsattningUlagAG>35000</agd:KontantErsattningUlagAG>") {
		t.Error("gross salary must round to whole kronor")
	}
	if !strings.Contains(text, "<agd:AvdrPrelSkatt>8750</agd:AvdrPrelSkatt>") {
		t.Error("expected tax deduction for the first record")
	}
	if !strings.Contains(text, "<agd:SkatteplFormanUlagAG>500</agd:SkatteplFormanUlagAG>") {
		t.Error("expected benefits for the second record")
	}

	// Employer sums cover gross plus benefits and all deducted tax.
	if !strings.Contains(text, "<agd:SummaArbAvgSlf>63500</agd:SummaArbAvgSlf>") {
		t.Error("expected employer gross sum 63500")
	}
	if !strings.Contains(text, "<agd:SummaSkatteavdr>15150</agd:SummaSkatteavdr>") {
		t.Error("expected employer tax sum 15150")
	}
}

func TestRender_OneIndividualPerRecord(t *testing.T) {
	data, err := Render(sampleDeclaration())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strings.Count(string(data), "<agd:Individuppgift>"); got != 2 {
		t.Errorf("individual elements = %d, want 2", got)
	}
}

func TestRender_ZeroBenefitsOmitted(t *testing.T) {
	d := sampleDeclaration()
	d.Records = d.Records[:1]

	data, err := Render(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(string(data), "SkatteplFormanUlagAG") {
		t.Error("zero benefits must not render an element")
	}
}

func TestRender_BadPeriod(t *testing.T) {
	d := sampleDeclaration()
	d.Period = "2025-01"

	if _, err := Render(d); err == nil {
		t.Error("expected an error for a malformed period")
	}
}
