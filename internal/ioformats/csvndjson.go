
package ioformats

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"trend-collector/internal/models"
)

// ReadKeywords reads seed keywords from a CSV file with a "keyword" header
// column, or from NDJSON / plain text with one keyword per line. Unknown
// extensions try CSV first.
func ReadKeywords(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".ndjson", ".jsonl", ".txt":
		return readLines(path)
	default:
		if kws, err := readCSV(path); err == nil && len(kws) > 0 {
			return kws, nil
		}
		return readLines(path)
	}
}

func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}
	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")), "keyword") {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, errors.New("csv must contain a 'keyword' header column")
	}
	var out []string
	for _, row := range rows[1:] {
		if col < len(row) {
			if kw := strings.TrimSpace(row[col]); kw != "" {
				out = append(out, kw)
			}
		}
	}
	return out, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// {"keyword": "..."} or a bare keyword
		if strings.HasPrefix(line, "{") {
			var obj struct {
				Keyword string `json:"keyword"`
			}
			if err := json.Unmarshal([]byte(line), &obj); err == nil && obj.Keyword != "" {
				out = append(out, strings.TrimSpace(obj.Keyword))
				continue
			}
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no keywords found")
	}
	return out, nil
}

// WriteNDJSON writes records as NDJSON to w.
func WriteNDJSON(w io.Writer, records []models.RawRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// SnapshotRecords lists news then blog records.
func SnapshotRecords(s *models.Snapshot) []models.RawRecord {
	out := make([]models.RawRecord, 0, len(s.News)+len(s.Blogs))
	out = append(out, s.News...)
	return append(out, s.Blogs...)
}
