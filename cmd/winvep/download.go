package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// genomeURLs lists soft-masked reference genomes by assembly name.
// Soft masking is what the unmasked interval kind relies on.
var genomeURLs = map[string]string{
	"tair10": "https://ftp.ensemblgenomes.ebi.ac.uk/pub/plants/release-57/fasta/arabidopsis_thaliana/dna/Arabidopsis_thaliana.TAIR10.dna_sm.toplevel.fa.gz",
	"grch38": "https://hgdownload.soe.ucsc.edu/goldenPath/hg38/bigZips/hg38.fa.gz",
	"grch37": "https://hgdownload.soe.ucsc.edu/goldenPath/hg19/bigZips/hg19.fa.gz",
}

func assemblies() []string {
	names := make([]string, 0, len(genomeURLs))
	for name := range genomeURLs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newDownloadCmd() *cobra.Command {
	var (
		assembly  string
		url       string
		outputDir string
		setConfig bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a reference genome FASTA",
		Long: fmt.Sprintf(`Download a soft-masked reference genome to ~/.winvep/<assembly>/.

Known assemblies: %s. Use --url for any other FASTA.`, strings.Join(assemblies(), ", ")),
		Example: `  winvep download --assembly TAIR10 --set-config
  winvep download --assembly custom --url https://example.org/genome.fa.gz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(assembly, url, outputDir, setConfig)
		},
	}

	cmd.Flags().StringVar(&assembly, "assembly", "TAIR10", "Genome assembly")
	cmd.Flags().StringVar(&url, "url", "", "Download this URL instead of the assembly's default")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: ~/.winvep/)")
	cmd.Flags().BoolVar(&setConfig, "set-config", false, "Store the downloaded path as the genome config value")

	return cmd
}

func runDownload(assembly, url, outputDir string, setConfig bool) error {
	key := strings.ToLower(assembly)
	if url == "" {
		var ok bool
		url, ok = genomeURLs[key]
		if !ok {
			return usageError{fmt.Errorf("unknown assembly %q (known: %s); pass --url", assembly, strings.Join(assemblies(), ", "))}
		}
	}

	if outputDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		outputDir = filepath.Join(home, ".winvep")
	}
	destDir := filepath.Join(outputDir, key)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", destDir, err)
	}

	dest := filepath.Join(destDir, filepath.Base(url))
	fmt.Printf("Downloading %s genome\n", assembly)
	fmt.Printf("Destination: %s\n\n", destDir)
	if err := downloadFile(url, dest); err != nil {
		return fmt.Errorf("download genome: %w", err)
	}

	if setConfig {
		if err := runConfigSet("genome", dest); err != nil {
			return err
		}
	}

	fmt.Printf("\nDownload complete!\n")
	fmt.Printf("To score variants, run:\n")
	fmt.Printf("  winvep score --genome %s variants.vcf\n", dest)
	return nil
}

// downloadFile downloads url to destPath through a temporary file,
// skipping files that already exist.
func downloadFile(url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Printf("  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Printf("  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{Timeout: 2 * time.Hour}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{total: resp.ContentLength, lastPrint: time.Now()}
	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Printf("\n    Done: %s\n", formatSize(pw.downloaded))
	return nil
}

// progressWriter prints download progress at most once per second.
type progressWriter struct {
	total      int64
	downloaded int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.downloaded += int64(len(p))
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(pw.downloaded) / float64(pw.total) * 100
			fmt.Printf("\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Printf("\r    Progress: %s  ", formatSize(pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}
	return len(p), nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
