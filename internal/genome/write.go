package genome

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// LineWidth is the sequence line width used by Write.
const LineWidth = 60

// Write writes g as FASTA, one record per chromosome in genome order.
func Write(w io.Writer, g *Genome) error {
	bw := bufio.NewWriter(w)
	for _, name := range g.names {
		seq := g.seqs[name]
		bw.WriteByte('>')
		bw.WriteString(name)
		bw.WriteByte('\n')
		for i := 0; i < len(seq); i += LineWidth {
			bw.WriteString(seq[i:min(i+LineWidth, len(seq))])
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteFile writes g to path, gzip-compressed when path ends in .gz.
func WriteFile(path string, g *Genome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create FASTA file: %w", err)
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if err := Write(w, g); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return fmt.Errorf("close gzip writer: %w", err)
		}
	}
	return f.Close()
}
