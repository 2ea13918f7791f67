package variant

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Recognized column names, matched case-insensitively.
var (
	chromColumns = []string{"chrom", "chromosome", "chr"}
	posColumns   = []string{"pos", "position"}
	refColumns   = []string{"ref", "reference_allele"}
	altColumns   = []string{"alt", "alternate_allele"}
	idColumns    = []string{"id", "variant_id"}
)

// ColumnIndices holds the indices of the variant columns; ID is -1 if absent.
type ColumnIndices struct {
	Chrom int
	Pos   int
	Ref   int
	Alt   int
	ID    int
}

// TableParser reads variants from a delimited text table with a header row.
// Positions in the table are already 0-based.
type TableParser struct {
	src        *source
	sep        string
	lineNumber int
	columns    ColumnIndices
}

// NewTableParser opens a delimited table. sep is usually "\t" or ",".
func NewTableParser(path, sep string) (*TableParser, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, fmt.Errorf("open variant table: %w", err)
	}
	p := &TableParser{src: src, sep: sep}
	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// NewTableParserFromReader creates a table parser from an io.Reader.
func NewTableParserFromReader(r io.Reader, sep string) (*TableParser, error) {
	p := &TableParser{src: &source{reader: bufio.NewReader(r)}, sep: sep}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *TableParser) parseHeader() error {
	line, err := p.src.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return &ParseError{Line: 1, Message: "empty variant table"}
		}
		return fmt.Errorf("read header: %w", err)
	}
	p.lineNumber++

	line = strings.TrimLeft(strings.TrimRight(line, "\r\n"), "#")
	fields := strings.Split(line, p.sep)

	lookup := func(names []string) int {
		for i, f := range fields {
			f = strings.ToLower(strings.TrimSpace(f))
			for _, n := range names {
				if f == n {
					return i
				}
			}
		}
		return -1
	}

	p.columns = ColumnIndices{
		Chrom: lookup(chromColumns),
		Pos:   lookup(posColumns),
		Ref:   lookup(refColumns),
		Alt:   lookup(altColumns),
		ID:    lookup(idColumns),
	}

	var missing []string
	if p.columns.Chrom < 0 {
		missing = append(missing, "chrom")
	}
	if p.columns.Pos < 0 {
		missing = append(missing, "pos")
	}
	if p.columns.Ref < 0 {
		missing = append(missing, "ref")
	}
	if p.columns.Alt < 0 {
		missing = append(missing, "alt")
	}
	if len(missing) > 0 {
		return &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// Columns returns the resolved column indices.
func (p *TableParser) Columns() ColumnIndices {
	return p.columns
}

// Next reads the next variant. Returns nil, nil when there are no more variants.
func (p *TableParser) Next() (*Variant, error) {
	for {
		line, err := p.src.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return p.parseLine(line)
	}
}

func (p *TableParser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, p.sep)
	need := max(p.columns.Chrom, p.columns.Pos, p.columns.Ref, p.columns.Alt, p.columns.ID)
	if len(fields) <= need {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", need+1, len(fields)),
		}
	}

	posField := strings.TrimSpace(fields[p.columns.Pos])
	pos, err := strconv.Atoi(posField)
	if err != nil || pos < 0 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", posField),
		}
	}

	v := &Variant{
		Chrom: strings.TrimSpace(fields[p.columns.Chrom]),
		Pos:   pos,
		Ref:   strings.TrimSpace(fields[p.columns.Ref]),
		Alt:   strings.TrimSpace(fields[p.columns.Alt]),
	}
	if p.columns.ID >= 0 {
		v.ID = strings.TrimSpace(fields[p.columns.ID])
	}
	return v, nil
}

// LineNumber returns the current line number being processed.
func (p *TableParser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *TableParser) Close() error {
	return p.src.Close()
}
