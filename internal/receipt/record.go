package receipt

// FileData holds the exact original bytes of an uploaded file, base64
// encoded, for export fidelity
type FileData struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
}

// Record is one extracted receipt held in the collection. Every field is
// populated; the extraction step falls back to "N/A"/0 sentinels.
type Record struct {
	Date             string   `json:"date"` // opaque text, expected YYYY-MM-DD
	CompanyName      string   `json:"companyName"`
	Category         string   `json:"category"`
	MealType         string   `json:"mealType"`
	Cost             float64  `json:"cost"`
	OriginalFileData FileData `json:"originalFileData"`
	OriginalFileName string   `json:"originalFileName"`
	ExtractionImage  string   `json:"extractionImage"` // base64 JPEG preview
}

// Summary is the blob-free listing view of a Record
type Summary struct {
	Index            int     `json:"index"`
	Date             string  `json:"date"`
	CompanyName      string  `json:"companyName"`
	Category         string  `json:"category"`
	MealType         string  `json:"mealType"`
	Cost             float64 `json:"cost"`
	OriginalFileName string  `json:"originalFileName"`
}

// EditSession is the single in-flight inline edit, alive between begin and
// commit/cancel
type EditSession struct {
	RecordIndex  int    `json:"recordIndex"`
	FieldName    string `json:"fieldName"`
	PendingValue string `json:"pendingValue"`
}

// State is a snapshot of the collection's shared mutable state
type State struct {
	Length    int    `json:"length"`
	Cursor    int    `json:"cursor"`
	Busy      bool   `json:"busy"`
	LastError string `json:"lastError"`
}
