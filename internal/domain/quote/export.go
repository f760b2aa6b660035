package quote

import "time"

// Export is the history entry kept for every exported quote.
type Export struct {
	ID           int64
	Client       string
	Vehicle      string
	Plate        string
	Grand        Money
	PDFPath      string
	EditablePath string
	CreatedAt    time.Time
}
