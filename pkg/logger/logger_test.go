
package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithOutputWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "trend.log")

	l, err := NewWithOutput("debug", path, &console)
	if err != nil {
		t.Fatal(err)
	}
	l.Debugf("collected %d records", 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, out := range []string{console.String(), string(data)} {
		if !strings.Contains(out, "collected 3 records") {
			t.Fatalf("missing log line in %q", out)
		}
	}
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	var console bytes.Buffer
	l, err := NewWithOutput("loud", "", &console)
	if err != nil {
		t.Fatal(err)
	}
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("want info level, got %s", l.GetLevel())
	}
	l.Debugf("hidden")
	if console.Len() != 0 {
		t.Fatalf("debug should be filtered, got %q", console.String())
	}
}
