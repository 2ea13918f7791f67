package variant

// Parser is the interface for readers of variant tables.
// Both the VCF and the delimited-table parser implement it.
type Parser interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}

// ReadAll drains a parser into a slice.
func ReadAll(p Parser) ([]Variant, error) {
	var out []Variant
	for {
		v, err := p.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return out, nil
		}
		out = append(out, *v)
	}
}
