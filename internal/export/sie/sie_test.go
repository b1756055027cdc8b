package sie

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleDocument() *Document {
	return &Document{
		ProgramName:     "Klarbok",
		ProgramVersion:  "1.0",
		GeneratedAt:     time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		CompanyName:     `Ängby Måleri "AB"`,
		OrgNumber:       "5561234567",
		FiscalYearStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		FiscalYearEnd:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Accounts: []Account{
			{Code: "1930", Name: "Företagskonto"},
			{Code: "3001", Name: "Försäljning inom Sverige, 25 % moms"},
			{Code: "5010", Name: "Lokalhyra"},
		},
		OpeningBalances: []Balance{{AccountCode: "1930", Amount: decimal.NewFromInt(5000)}},
		ClosingBalances: []Balance{{AccountCode: "1930", Amount: decimal.RequireFromString("8800.00")}},
		ResultBalances: []Balance{
			{AccountCode: "3001", Amount: decimal.NewFromInt(-5000)},
			{AccountCode: "5010", Amount: decimal.NewFromInt(1200)},
		},
		Verifications: []Verification{
			{
				Series: "A",
				Number: 1,
				Date:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Text:   "Försäljning",
				Rows: []Trans{
					{AccountCode: "1930", Amount: decimal.NewFromInt(5000), Text: "Inbetalning"},
					{AccountCode: "3001", Amount: decimal.NewFromInt(-5000)},
				},
			},
			{
				Series: "A",
				Number: 2,
				Date:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
				Text:   "Hyra",
				Rows: []Trans{
					{AccountCode: "5010", Amount: decimal.NewFromInt(1200)},
					{AccountCode: "1930", Amount: decimal.NewFromInt(-1200)},
				},
			},
		},
	}
}

func TestRender_FileStructure(t *testing.T) {
	data, err := Render(sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.HasSuffix(data, []byte("\r\n")) {
		t.Error("file must end with CRLF")
	}
	if bytes.Contains(bytes.ReplaceAll(data, []byte("\r\n"), nil), []byte("\n")) {
		t.Error("all line endings must be CRLF")
	}

	// ISO 8859-1: å/ä/ö are single high bytes, never UTF-8 pairs.
	if bytes.Contains(data, []byte{0xc3}) {
		t.Error("output must not contain UTF-8 multibyte sequences")
	}
	if !bytes.Contains(data, []byte{0xe4}) {
		t.Error("expected Latin-1 encoded 'ä' in company name")
	}

	text := string(data)
	for _, want := range []string{
		"#FLAGGA 0",
		"#SIETYP 4",
		"#FORMAT PC8",
		"#ORGNR 5561234567",
		"#RAR 0 20240101 20241231",
		"#IB 0 1930 5000.00",
		"#UB 0 1930 8800.00",
		"#RES 0 3001 -5000.00",
		"#VER A 1 20240301",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output", want)
		}
	}

	// Header precedes accounts, accounts precede verifications.
	if strings.Index(text, "#FLAGGA") > strings.Index(text, "#KONTO") {
		t.Error("#FLAGGA must precede #KONTO")
	}
	if strings.Index(text, "#KONTO") > strings.Index(text, "#VER") {
		t.Error("#KONTO must precede #VER")
	}
}

func TestRender_QuotesEscaped(t *testing.T) {
	data, err := Render(sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(string(data), `\"AB\"`) {
		t.Error("embedded quotes must be backslash escaped")
	}
}

func TestRoundTrip(t *testing.T) {
	doc := sampleDocument()

	data, err := Render(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.CompanyName != doc.CompanyName {
		t.Errorf("company name = %q, want %q", parsed.CompanyName, doc.CompanyName)
	}
	if parsed.OrgNumber != doc.OrgNumber {
		t.Errorf("orgnr = %q, want %q", parsed.OrgNumber, doc.OrgNumber)
	}
	if !parsed.FiscalYearStart.Equal(doc.FiscalYearStart) || !parsed.FiscalYearEnd.Equal(doc.FiscalYearEnd) {
		t.Error("fiscal year bounds must survive the round trip")
	}

	if len(parsed.Accounts) != len(doc.Accounts) {
		t.Fatalf("accounts = %d, want %d", len(parsed.Accounts), len(doc.Accounts))
	}
	for i, a := range parsed.Accounts {
		if a != doc.Accounts[i] {
			t.Errorf("account %d = %+v, want %+v", i, a, doc.Accounts[i])
		}
	}

	if len(parsed.Verifications) != len(doc.Verifications) {
		t.Fatalf("verifications = %d, want %d", len(parsed.Verifications), len(doc.Verifications))
	}
	for i, v := range parsed.Verifications {
		want := doc.Verifications[i]
		if v.Series != want.Series || v.Number != want.Number || v.Text != want.Text {
			t.Errorf("verification %d header = %+v", i, v)
		}
		if !v.Date.Equal(want.Date) {
			t.Errorf("verification %d date = %s, want %s", i, v.Date, want.Date)
		}
		if len(v.Rows) != len(want.Rows) {
			t.Fatalf("verification %d rows = %d, want %d", i, len(v.Rows), len(want.Rows))
		}
		for j, r := range v.Rows {
			if r.AccountCode != want.Rows[j].AccountCode || !r.Amount.Equal(want.Rows[j].Amount) || r.Text != want.Rows[j].Text {
				t.Errorf("verification %d row %d = %+v, want %+v", i, j, r, want.Rows[j])
			}
		}
	}

	// Every verification block still balances to zero.
	for i, v := range parsed.Verifications {
		sum := decimal.Zero
		for _, r := range v.Rows {
			sum = sum.Add(r.Amount)
		}
		if !sum.IsZero() {
			t.Errorf("verification %d does not balance: %s", i, sum)
		}
	}

	// Balances survive by account and amount.
	if len(parsed.OpeningBalances) != 1 || !parsed.OpeningBalances[0].Amount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("opening balances = %+v", parsed.OpeningBalances)
	}
	if len(parsed.ResultBalances) != 2 {
		t.Errorf("result balances = %+v", parsed.ResultBalances)
	}
}

func TestParse_SkipsUnknownTags(t *testing.T) {
	input := "#FLAGGA 0\r\n#SRU 1930 7281\r\n#ORGNR 5561234567\r\n"

	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.OrgNumber != "5561234567" {
		t.Errorf("orgnr = %q", doc.OrgNumber)
	}
}

func TestParse_UnterminatedQuote(t *testing.T) {
	if _, err := Parse([]byte("#FNAMN \"Trasig\r\n")); err == nil {
		t.Error("expected an error for an unterminated quote")
	}
}

func TestParse_TransOutsideBlock(t *testing.T) {
	if _, err := Parse([]byte("#TRANS 1930 {} 100.00\r\n")); err == nil {
		t.Error("expected an error for #TRANS outside a verification block")
	}
}
