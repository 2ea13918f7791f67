// Package genome provides an in-memory reference genome loaded from FASTA.
package genome

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Genome maps chromosome names to their full sequences, in FASTA record order.
// A Genome is never modified after Load and is safe for concurrent readers.
type Genome struct {
	names []string
	seqs  map[string]string
}

// New builds a genome from parallel name and sequence slices.
// Names must be unique.
func New(names, seqs []string) (*Genome, error) {
	if len(names) != len(seqs) {
		return nil, fmt.Errorf("genome: %d names but %d sequences", len(names), len(seqs))
	}
	g := &Genome{
		names: make([]string, 0, len(names)),
		seqs:  make(map[string]string, len(names)),
	}
	for i, name := range names {
		if _, dup := g.seqs[name]; dup {
			return nil, &FormatError{Message: fmt.Sprintf("duplicate chromosome %q", name)}
		}
		g.names = append(g.names, name)
		g.seqs[name] = seqs[i]
	}
	return g, nil
}

// LoadFile parses a FASTA file. Gzipped input is detected by its magic bytes.
func LoadFile(path string) (*Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 1<<20)
	var r io.Reader = br

	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	g, err := Load(r)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}

// Load parses FASTA content. The chromosome name is the first
// whitespace-delimited token of the header line.
func Load(r io.Reader) (*Genome, error) {
	reader := bufio.NewReaderSize(r, 1<<20)
	g := &Genome{seqs: make(map[string]string)}

	var (
		name    string
		inRec   bool
		seq     strings.Builder
		lineNum int
	)

	flush := func() {
		if inRec {
			g.names = append(g.names, name)
			g.seqs[name] = seq.String()
		}
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read FASTA: %w", err)
		}
		if line == "" && errors.Is(err, io.EOF) {
			break
		}
		lineNum++

		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case line[0] == '>':
			flush()
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, &FormatError{Line: lineNum, Message: "empty record name"}
			}
			name = fields[0]
			if _, dup := g.seqs[name]; dup {
				return nil, &FormatError{Line: lineNum, Message: fmt.Sprintf("duplicate chromosome %q", name)}
			}
			// Reserve the name so a later duplicate is caught before the flush.
			g.seqs[name] = ""
			inRec = true
			seq.Reset()
		default:
			if !inRec {
				return nil, &FormatError{Line: lineNum, Message: "sequence data before first header"}
			}
			seq.WriteString(line)
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}
	flush()

	return g, nil
}

// Names returns chromosome names in load order.
func (g *Genome) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Count returns the number of chromosomes.
func (g *Genome) Count() int {
	return len(g.names)
}

// Has reports whether the chromosome is present.
func (g *Genome) Has(chrom string) bool {
	_, ok := g.seqs[chrom]
	return ok
}

// Sequence returns the full sequence of a chromosome.
func (g *Genome) Sequence(chrom string) (string, bool) {
	s, ok := g.seqs[chrom]
	return s, ok
}

// Len returns the length of a chromosome, or -1 if it is unknown.
func (g *Genome) Len(chrom string) int {
	s, ok := g.seqs[chrom]
	if !ok {
		return -1
	}
	return len(s)
}

// TotalLength returns the summed length of all chromosomes.
func (g *Genome) TotalLength() int64 {
	var n int64
	for _, s := range g.seqs {
		n += int64(len(s))
	}
	return n
}

// Window returns the half-open substring [start, end) of chrom.
// Out-of-bounds requests fail with *RangeError; they are never clipped.
func (g *Genome) Window(chrom string, start, end int) (string, error) {
	s, ok := g.seqs[chrom]
	if !ok {
		return "", &RangeError{Chrom: chrom, Start: start, End: end, Length: -1}
	}
	if start < 0 || end > len(s) || start > end {
		return "", &RangeError{Chrom: chrom, Start: start, End: end, Length: len(s)}
	}
	return s[start:end], nil
}

// Filter returns a genome restricted to chroms, in this genome's order.
// Names that are not present are dropped without error.
func (g *Genome) Filter(chroms []string) *Genome {
	want := make(map[string]bool, len(chroms))
	for _, c := range chroms {
		want[c] = true
	}

	out := &Genome{seqs: make(map[string]string, len(chroms))}
	for _, name := range g.names {
		if want[name] {
			out.names = append(out.names, name)
			out.seqs[name] = g.seqs[name]
		}
	}
	return out
}
