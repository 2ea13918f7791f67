package variant

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// source is an opened, possibly gzip-decoded input file.
type source struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
}

// openSource opens path, or stdin for "-", and transparently decodes gzip.
func openSource(path string) (*source, error) {
	if path == "-" {
		return &source{reader: bufio.NewReader(os.Stdin)}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	s := &source{file: file}
	br := bufio.NewReader(file)

	// Check for gzip magic number (0x1f, 0x8b)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		s.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		s.reader = bufio.NewReader(s.gzipReader)
	} else {
		s.reader = br
	}
	return s, nil
}

func (s *source) Close() error {
	if s.gzipReader != nil {
		s.gzipReader.Close()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// VCFParser reads variants from a VCF file.
// VCF positions are 1-based; returned variants are 0-based.
type VCFParser struct {
	src        *source
	lineNumber int
	header     []string
	pending    []*Variant // remaining alleles of a multi-allelic record
}

// NewVCFParser creates a new VCF parser for the given file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files, and "-" for stdin.
func NewVCFParser(path string) (*VCFParser, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}
	p := &VCFParser{src: src}
	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// NewVCFParserFromReader creates a parser from an io.Reader.
func NewVCFParserFromReader(r io.Reader) (*VCFParser, error) {
	p := &VCFParser{src: &source{reader: bufio.NewReader(r)}}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// parseHeader reads and stores header lines up to and including #CHROM.
func (p *VCFParser) parseHeader() error {
	for {
		line, err := p.src.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			p.header = append(p.header, line)
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			p.header = append(p.header, line)
			return nil
		}

		return &ParseError{Line: p.lineNumber, Message: "expected #CHROM header line"}
	}

	return &ParseError{Line: p.lineNumber, Message: "no #CHROM header line found"}
}

// Next reads the next variant. Multi-allelic records yield one variant per
// alternate allele. Returns nil, nil when there are no more variants.
func (p *VCFParser) Next() (*Variant, error) {
	for len(p.pending) == 0 {
		line, err := p.src.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		v, err := p.parseLine(line)
		if err != nil {
			return nil, err
		}
		p.pending = SplitMultiAllelic(v)
	}

	v := p.pending[0]
	p.pending = p.pending[1:]
	return v, nil
}

// parseLine parses a single VCF data line.
func (p *VCFParser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 5 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.Atoi(fields[1])
	if err != nil || pos < 1 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	id := fields[2]
	if id == "." {
		id = ""
	}

	return &Variant{
		Chrom: fields[0],
		Pos:   pos - 1,
		ID:    id,
		Ref:   fields[3],
		Alt:   fields[4],
	}, nil
}

// SplitMultiAllelic splits a comma-separated ALT into separate variants.
func SplitMultiAllelic(v *Variant) []*Variant {
	alts := strings.Split(v.Alt, ",")
	if len(alts) == 1 {
		return []*Variant{v}
	}

	variants := make([]*Variant, len(alts))
	for i, alt := range alts {
		variants[i] = &Variant{
			Chrom: v.Chrom,
			Pos:   v.Pos,
			ID:    v.ID,
			Ref:   v.Ref,
			Alt:   alt,
		}
	}
	return variants
}

// Header returns the VCF header lines.
func (p *VCFParser) Header() []string {
	return p.header
}

// LineNumber returns the current line number being processed.
func (p *VCFParser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *VCFParser) Close() error {
	return p.src.Close()
}

// ParseError represents an error during variant parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("variant parse error at line %d: %s", e.Line, e.Message)
}
