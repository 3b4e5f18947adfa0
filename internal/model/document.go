package model

// Document is a block of cleaned plain text keyed by an identifier.
// Documents are produced by an ingestion source and never modified by the
// scoring engine.
type Document struct {
	ID     string `json:"id"`               // Identifier used as FILENAME in exports (e.g., "101")
	Text   string `json:"text"`             // Cleaned plain text
	Source string `json:"source,omitempty"` // File path or URL the text came from
}
