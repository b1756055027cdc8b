// Package sru renders the fixed-format tax-filing files (SRU) consumed by
// Skatteverket: one field per line as "#UPPGIFT code value", ISO 8859-1,
// CRLF. Field order is fixed by the mapping version that computed the
// values.
package sru

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/shopspring/decimal"
)

// Field is one declaration field, already computed by the field mapper.
type Field struct {
	Code  string
	Value decimal.Decimal
}

// File is one declaration form for one company and filing period.
type File struct {
	OrgNumber      string
	FormID         string
	MappingVersion string
	GeneratedAt    time.Time
	Fields         []Field
}

// Render serializes the declaration. Amounts are whole kronor: öretal fall
// away before filing.
func Render(f *File) ([]byte, error) {
	var b strings.Builder

	writeLine(&b, fmt.Sprintf("#BLANKETT %s", f.MappingVersion))
	writeLine(&b, fmt.Sprintf("#IDENTITET %s %s %s",
		f.OrgNumber,
		f.GeneratedAt.Format("20060102"),
		f.GeneratedAt.Format("150405")))

	for _, field := range f.Fields {
		writeLine(&b, fmt.Sprintf("#UPPGIFT %s %s", field.Code, field.Value.RoundDown(0).StringFixed(0)))
	}

	writeLine(&b, "#BLANKETTSLUT")
	writeLine(&b, "#FIL_SLUT")

	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	out, err := enc.Bytes([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("encoding sru output: %w", err)
	}

	return out, nil
}

// RenderInfo produces the INFO.SRU envelope that accompanies a declaration
// delivery.
func RenderInfo(f *File, contact, email string) ([]byte, error) {
	var b strings.Builder

	writeLine(&b, "#DATABESKRIVNING_START")
	writeLine(&b, "#PRODUKT SRU")
	writeLine(&b, fmt.Sprintf("#SKAPAD %s %s", f.GeneratedAt.Format("20060102"), f.GeneratedAt.Format("150405")))
	writeLine(&b, "#FILNAMN BLANKETTER.SRU")
	writeLine(&b, "#DATABESKRIVNING_SLUT")
	writeLine(&b, "#MEDIELEV_START")
	writeLine(&b, fmt.Sprintf("#ORGNR %s", f.OrgNumber))
	if contact != "" {
		writeLine(&b, fmt.Sprintf("#KONTAKT %s", contact))
	}
	if email != "" {
		writeLine(&b, fmt.Sprintf("#EPOST %s", email))
	}
	writeLine(&b, "#MEDIELEV_SLUT")

	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	out, err := enc.Bytes([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("encoding sru info output: %w", err)
	}

	return out, nil
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}
