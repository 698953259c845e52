
package ioformats

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"trend-collector/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestReadKeywords(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    []string
	}{
		{"csv", "seeds.csv", "\uFEFFid,Keyword\n1,금리\n2, 환율 \n3,\n", []string{"금리", "환율"}},
		{"ndjson", "seeds.ndjson", "{\"keyword\":\"금리\"}\n\n{\"keyword\":\"부동산\"}\n", []string{"금리", "부동산"}},
		{"plain", "seeds.txt", "# seeds\n반도체\n 주식 \n", []string{"반도체", "주식"}},
		{"no extension csv", "seeds", "keyword\n수출\n", []string{"수출"}},
		{"no extension lines", "list", "수출\n", []string{"수출"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadKeywords(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestReadKeywordsErrors(t *testing.T) {
	if _, err := ReadKeywords(writeFile(t, "bad.csv", "id,name\n1,a\n")); err == nil {
		t.Fatal("want error without a keyword column")
	}
	if _, err := ReadKeywords(writeFile(t, "empty.txt", "\n\n")); err == nil {
		t.Fatal("want error for an empty list")
	}
}

func TestWriteNDJSON(t *testing.T) {
	snap := &models.Snapshot{
		News:  []models.RawRecord{{Title: "금리 <동결>", Source: "naver-news"}},
		Blogs: []models.RawRecord{{Title: "블로그", Keyword: "금리"}},
	}
	var buf bytes.Buffer
	if err := WriteNDJSON(&buf, SnapshotRecords(snap)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "금리 <동결>") || !strings.Contains(lines[1], `"keyword":"금리"`) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
