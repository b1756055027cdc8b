package sie

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/shopspring/decimal"
)

// Parse reads an SIE type 4 file back into a Document. It understands the
// records Render emits, which is what the round-trip checks need; unknown
// tags are skipped.
func Parse(data []byte) (*Document, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding sie input: %w", err)
	}

	doc := &Document{}

	var current *Verification
	for _, raw := range strings.Split(string(decoded), "\n") {
		line := strings.TrimRight(raw, "\r")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case line == "{":
			continue
		case line == "}":
			if current != nil {
				doc.Verifications = append(doc.Verifications, *current)
				current = nil
			}
			continue
		}

		fields, err := splitFields(line)
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "#PROGRAM":
			if len(fields) >= 3 {
				doc.ProgramName = fields[1]
				doc.ProgramVersion = fields[2]
			}
		case "#GEN":
			if len(fields) >= 2 {
				doc.GeneratedAt, _ = time.Parse(dateLayout, fields[1])
			}
		case "#ORGNR":
			if len(fields) >= 2 {
				doc.OrgNumber = fields[1]
			}
		case "#FNAMN":
			if len(fields) >= 2 {
				doc.CompanyName = fields[1]
			}
		case "#RAR":
			if len(fields) >= 4 && fields[1] == "0" {
				doc.FiscalYearStart, _ = time.Parse(dateLayout, fields[2])
				doc.FiscalYearEnd, _ = time.Parse(dateLayout, fields[3])
			}
		case "#KONTO":
			if len(fields) >= 3 {
				doc.Accounts = append(doc.Accounts, Account{Code: fields[1], Name: fields[2]})
			}
		case "#IB", "#UB", "#RES":
			if len(fields) >= 4 && fields[1] == "0" {
				amt, err := decimal.NewFromString(fields[3])
				if err != nil {
					return nil, fmt.Errorf("parsing %s amount %q: %w", fields[0], fields[3], err)
				}
				bal := Balance{AccountCode: fields[2], Amount: amt}
				switch fields[0] {
				case "#IB":
					doc.OpeningBalances = append(doc.OpeningBalances, bal)
				case "#UB":
					doc.ClosingBalances = append(doc.ClosingBalances, bal)
				default:
					doc.ResultBalances = append(doc.ResultBalances, bal)
				}
			}
		case "#VER":
			if len(fields) >= 4 {
				number, err := strconv.ParseInt(fields[2], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("parsing verification number %q: %w", fields[2], err)
				}
				date, err := time.Parse(dateLayout, fields[3])
				if err != nil {
					return nil, fmt.Errorf("parsing verification date %q: %w", fields[3], err)
				}
				current = &Verification{Series: fields[1], Number: number, Date: date}
				if len(fields) >= 5 {
					current.Text = fields[4]
				}
			}
		case "#TRANS":
			if current == nil {
				return nil, fmt.Errorf("#TRANS outside verification block")
			}
			// #TRANS account {objects} amount [text]
			if len(fields) >= 4 {
				amt, err := decimal.NewFromString(fields[3])
				if err != nil {
					return nil, fmt.Errorf("parsing trans amount %q: %w", fields[3], err)
				}
				trans := Trans{AccountCode: fields[1], Amount: amt}
				if len(fields) >= 5 {
					trans.Text = fields[4]
				}
				current.Rows = append(current.Rows, trans)
			}
		}
	}

	return doc, nil
}

// splitFields tokenizes one SIE record line: whitespace-separated fields,
// quoted strings with backslash escapes, {} object lists as single tokens.
func splitFields(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder

	inQuote := false
	inBrace := false
	escaped := false

	flush := func() {
		fields = append(fields, cur.String())
		cur.Reset()
	}

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case inQuote && r == '"':
			inQuote = false
			flush()
		case inQuote:
			cur.WriteRune(r)
		case inBrace && r == '}':
			inBrace = false
			flush()
		case inBrace:
			cur.WriteRune(r)
		case r == '"':
			inQuote = true
		case r == '{':
			inBrace = true
		case r == ' ' || r == '\t':
			if cur.Len() > 0 {
				flush()
			}
		default:
			cur.WriteRune(r)
		}
	}

	if inQuote {
		return nil, fmt.Errorf("unterminated quote in line %q", line)
	}
	if cur.Len() > 0 {
		flush()
	}

	return fields, nil
}
