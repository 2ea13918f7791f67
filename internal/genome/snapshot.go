package genome

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Snapshot manages a gob-serialized copy of a parsed genome on disk:
//
//	{dir}/genome.gob       (names and sequences)
//	{dir}/genome.gob.meta  (source FASTA fingerprint)
type Snapshot struct {
	dir string
}

type snapshotData struct {
	Names []string
	Seqs  []string
}

// NewSnapshot creates a snapshot rooted at dir.
func NewSnapshot(dir string) *Snapshot {
	return &Snapshot{dir: dir}
}

func (s *Snapshot) gobPath() string {
	return filepath.Join(s.dir, "genome.gob")
}

func (s *Snapshot) metaPath() string {
	return filepath.Join(s.dir, "genome.gob.meta")
}

// Valid checks whether the snapshot was written from the given source file.
func (s *Snapshot) Valid(src FileFingerprint) bool {
	meta, err := s.readMeta()
	if err != nil {
		return false
	}
	if meta["fasta_size"] != strconv.FormatInt(src.Size, 10) ||
		meta["fasta_modtime"] != src.ModTime.UTC().Format(time.RFC3339Nano) {
		return false
	}
	_, err = os.Stat(s.gobPath())
	return err == nil
}

// Load reads the serialized genome.
func (s *Snapshot) Load() (*Genome, error) {
	f, err := os.Open(s.gobPath())
	if err != nil {
		return nil, fmt.Errorf("open genome snapshot: %w", err)
	}
	defer f.Close()

	var data snapshotData
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode genome snapshot: %w", err)
	}
	return New(data.Names, data.Seqs)
}

// Write serializes g and records the source fingerprint.
func (s *Snapshot) Write(g *Genome, src FileFingerprint) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	data := snapshotData{Names: g.Names()}
	data.Seqs = make([]string, len(data.Names))
	for i, name := range data.Names {
		data.Seqs[i] = g.seqs[name]
	}

	f, err := os.Create(s.gobPath())
	if err != nil {
		return fmt.Errorf("create genome snapshot: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		os.Remove(s.gobPath())
		return fmt.Errorf("encode genome snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close genome snapshot: %w", err)
	}

	return s.writeMeta(src)
}

// Clear removes the snapshot files.
func (s *Snapshot) Clear() {
	os.Remove(s.gobPath())
	os.Remove(s.metaPath())
}

func (s *Snapshot) writeMeta(src FileFingerprint) error {
	lines := []string{
		"fasta_path=" + src.Path,
		"fasta_size=" + strconv.FormatInt(src.Size, 10),
		"fasta_modtime=" + src.ModTime.UTC().Format(time.RFC3339Nano),
		"created_at=" + time.Now().UTC().Format(time.RFC3339),
		"",
	}
	return os.WriteFile(s.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (s *Snapshot) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(s.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
