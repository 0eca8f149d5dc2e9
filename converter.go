package opra

// Converter converts HTML to plain Markdown text suitable for chunking.
type Converter interface {
	// Convert transforms clean HTML (e.g., from an Extractor) into Markdown.
	Convert(html string) (string, error)
}
