package vectorindex

// Document is a single indexable item: free text plus arbitrary metadata.
// Metadata["name"] identifies the document (category name or product title)
// and must not change once the document is indexed.
type Document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Name returns the document's metadata name, or an empty string.
func (d Document) Name() string {
	if v, ok := d.Metadata["name"].(string); ok {
		return v
	}
	return ""
}

// MetaString returns a string metadata field, or an empty string.
func (d Document) MetaString(key string) string {
	if v, ok := d.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// ScoredDocument pairs a document with its similarity score for a query.
type ScoredDocument struct {
	Document Document
	Score    float32
}
