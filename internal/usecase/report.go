package usecase

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"sniff/internal/domain"
)

// DetectResultsFilename is the fixed name of the detection overview CSV.
const DetectResultsFilename = "llm_detection_results.csv"

// FileCount is one row of the per-file findings breakdown.
type FileCount struct {
	Filename string
	Count    int
}

// BreakdownByFile counts findings per filename, sorted by filename.
func BreakdownByFile(findings []domain.Finding) []FileCount {
	counts := make(map[string]int)
	for _, f := range findings {
		counts[f.Filename]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]FileCount, 0, len(names))
	for _, name := range names {
		out = append(out, FileCount{Filename: name, Count: counts[name]})
	}
	return out
}

// FindingsToRows projects findings onto the overview columns, header
// row first.
func FindingsToRows(findings []domain.Finding) [][]string {
	rows := make([][]string, 0, len(findings)+1)
	rows = append(rows, domain.OverviewColumns)
	for _, f := range findings {
		rows = append(rows, f.OverviewRow())
	}
	return rows
}

// WriteFindingsCSV writes the findings overview, header included even
// when there are no findings.
func WriteFindingsCSV(path string, findings []domain.Finding) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := csv.NewWriter(f).WriteAll(FindingsToRows(findings)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteRawJSONL writes one compact JSON object per line. Raw responses
// pass through without HTML escaping so archived code reads back
// verbatim.
func WriteRawJSONL(path string, records []RawRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// EngineeringOutputNames returns the timestamped findings CSV and raw
// JSONL paths for a prompt engineering run.
func EngineeringOutputNames(outputDir, smellID string, now time.Time) (csvPath, rawPath string) {
	base := fmt.Sprintf("prompt_engineering_%s_%s", smellID, now.Format("20060102_150405"))
	return filepath.Join(outputDir, base+".csv"), filepath.Join(outputDir, base+"_raw.jsonl")
}
