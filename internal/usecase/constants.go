package usecase

// Program identity stamped into generated export files.
const (
	ProgramName    = "Klarbok"
	ProgramVersion = "1.0"
)

// DefaultSeries is the verification series for manual postings; engine
// generated postings use their own series.
const DefaultSeries = "A"
