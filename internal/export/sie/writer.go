package sie

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/shopspring/decimal"
)

const dateLayout = "20060102"

// Render serializes the document to SIE type 4 bytes: ISO 8859-1, CRLF.
// Rendering is pure; the document is not modified.
func Render(doc *Document) ([]byte, error) {
	var b strings.Builder

	writeLine(&b, "#FLAGGA 0")
	writeLine(&b, fmt.Sprintf("#PROGRAM %s %s", quote(doc.ProgramName), quote(doc.ProgramVersion)))
	writeLine(&b, "#FORMAT PC8")
	writeLine(&b, fmt.Sprintf("#GEN %s", doc.GeneratedAt.Format(dateLayout)))
	writeLine(&b, "#SIETYP 4")
	writeLine(&b, fmt.Sprintf("#ORGNR %s", doc.OrgNumber))
	writeLine(&b, fmt.Sprintf("#FNAMN %s", quote(doc.CompanyName)))
	writeLine(&b, fmt.Sprintf("#RAR 0 %s %s", doc.FiscalYearStart.Format(dateLayout), doc.FiscalYearEnd.Format(dateLayout)))

	for _, a := range doc.Accounts {
		writeLine(&b, fmt.Sprintf("#KONTO %s %s", a.Code, quote(a.Name)))
	}

	for _, bal := range doc.OpeningBalances {
		writeLine(&b, fmt.Sprintf("#IB 0 %s %s", bal.AccountCode, amount(bal.Amount)))
	}
	for _, bal := range doc.ClosingBalances {
		writeLine(&b, fmt.Sprintf("#UB 0 %s %s", bal.AccountCode, amount(bal.Amount)))
	}
	for _, bal := range doc.ResultBalances {
		writeLine(&b, fmt.Sprintf("#RES 0 %s %s", bal.AccountCode, amount(bal.Amount)))
	}

	for _, v := range doc.Verifications {
		writeLine(&b, fmt.Sprintf("#VER %s %d %s %s", v.Series, v.Number, v.Date.Format(dateLayout), quote(v.Text)))
		writeLine(&b, "{")
		for _, t := range v.Rows {
			line := fmt.Sprintf("#TRANS %s {} %s", t.AccountCode, amount(t.Amount))
			if t.Text != "" {
				line += " " + quote(t.Text)
			}
			writeLine(&b, line)
		}
		writeLine(&b, "}")
	}

	return toLatin1(b.String())
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}

// quote wraps a string field per the SIE escaping rule: surrounding double
// quotes, embedded quotes escaped with a backslash.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)

	return `"` + s + `"`
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// toLatin1 encodes the assembled text as ISO 8859-1. Runes outside the
// charset degrade to '?' rather than failing the whole export.
func toLatin1(s string) ([]byte, error) {
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())

	out, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding sie output: %w", err)
	}

	return out, nil
}
