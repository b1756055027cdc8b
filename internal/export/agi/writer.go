// Package agi renders the employer payroll-tax declaration
// (arbetsgivardeklaration på individnivå) as namespace-qualified XML, one
// individual element per employee record.
package agi

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
)

const namespace = "http://xmls.skatteverket.se/se/skatteverket/da/instans/schema/1.1"

// Declaration is one filing period for one employer.
type Declaration struct {
	OrgNumber   string
	Period      string // YYYYMM
	GeneratedAt time.Time
	Records     []domain.PayrollRecord
}

type xmlDeclaration struct {
	XMLName   xml.Name  `xml:"agd:Skatteverket"`
	Namespace string    `xml:"xmlns:agd,attr"`
	Sender    xmlSender `xml:"agd:Avsandare"`
	Form      xmlForm   `xml:"agd:Blankett"`
}

type xmlSender struct {
	OrgNumber string `xml:"agd:Organisationsnummer"`
	CreatedAt string `xml:"agd:Skapad"`
}

type xmlForm struct {
	Info    xmlFormInfo    `xml:"agd:Arendeinformation"`
	Content xmlFormContent `xml:"agd:Blankettinnehall"`
}

type xmlFormInfo struct {
	Owner  string `xml:"agd:Arendeagare"`
	Period string `xml:"agd:Period"`
}

type xmlFormContent struct {
	Employer    xmlEmployer     `xml:"agd:Arbetsgivare"`
	Individuals []xmlIndividual `xml:"agd:Individuppgift"`
}

type xmlEmployer struct {
	OrgNumber string `xml:"agd:AgRegistreradId"`
	SumGross  string `xml:"agd:SummaArbAvgSlf"`
	SumTax    string `xml:"agd:SummaSkatteavdr"`
}

type xmlIndividual struct {
	PayeeID     string `xml:"agd:BetalningsmottagareId"`
	Gross       string `xml:"agd:KontantErsattningUlagAG"`
	Benefits    string `xml:"agd:SkatteplFormanUlagAG,omitempty"`
	TaxDeducted string `xml:"agd:AvdrPrelSkatt"`
}

// Render serializes the declaration. Amounts are rounded to whole kronor;
// personal identification numbers are stripped of every non-digit character
// before embedding.
func Render(d *Declaration) ([]byte, error) {
	if len(d.Period) != 6 {
		return nil, fmt.Errorf("period must be YYYYMM, got %q", d.Period)
	}

	doc := xmlDeclaration{
		Namespace: namespace,
		Sender: xmlSender{
			OrgNumber: digitsOnly(d.OrgNumber),
			CreatedAt: d.GeneratedAt.Format(time.RFC3339),
		},
		Form: xmlForm{
			Info: xmlFormInfo{
				Owner:  digitsOnly(d.OrgNumber),
				Period: d.Period,
			},
		},
	}

	sumGross := decimal.Zero
	sumTax := decimal.Zero
	for _, r := range d.Records {
		gross := r.GrossSalary.Round(0)
		benefits := r.Benefits.Round(0)
		tax := r.TaxDeducted.Round(0)

		sumGross = sumGross.Add(gross).Add(benefits)
		sumTax = sumTax.Add(tax)

		individual := xmlIndividual{
			PayeeID:     digitsOnly(r.PersonalNumber),
			Gross:       gross.StringFixed(0),
			TaxDeducted: tax.StringFixed(0),
		}
		if !benefits.IsZero() {
			individual.Benefits = benefits.StringFixed(0)
		}

		doc.Form.Content.Individuals = append(doc.Form.Content.Individuals, individual)
	}

	doc.Form.Content.Employer = xmlEmployer{
		OrgNumber: digitsOnly(d.OrgNumber),
		SumGross:  sumGross.StringFixed(0),
		SumTax:    sumTax.StringFixed(0),
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling agi declaration: %w", err)
	}

	return append([]byte(xml.Header), body...), nil
}

// digitsOnly strips everything but 0-9, normalizing personal and
// organisation numbers written with century digits, dashes or plus signs.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
