package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/jiroshimaya/qiitastats/internal/analyze"
	"github.com/jiroshimaya/qiitastats/internal/collect"
)

func testRecords() []collect.Record {
	return []collect.Record{
		{ID: "a1", ReactionCount: 5, CreatedAt: "2024-01-01T00:00:00+09:00"},
		{ID: "a2", ReactionCount: 0, CreatedAt: "2024-02-01T00:00:00+09:00"},
		{ID: "a3", ReactionCount: 150, CreatedAt: "2024-03-01T00:00:00+09:00"},
	}
}

func TestWriteReadReactionsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reactions.csv")
	records := testRecords()

	if err := WriteReactionsCSV(path, records); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadReactionsCSV(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i, want := range records {
		if got[i] != want {
			t.Errorf("record %d: expected %+v, got %+v", i, want, got[i])
		}
	}
}

func TestWriteReactionsCSV_Header(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reactions.csv")
	if err := WriteReactionsCSV(path, testRecords()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "id,reaction_count,created_at" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if len(lines) != 4 {
		t.Errorf("expected header plus 3 rows, got %d lines", len(lines))
	}
}

func TestWriteReactionsCSV_NoRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reactions.csv")
	if err := WriteReactionsCSV(path, nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := ReadReactionsCSV(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestReadReactionsCSV_MissingFile(t *testing.T) {
	_, err := ReadReactionsCSV(filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadReactionsCSV_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("id,count\na1,5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadReactionsCSV(path)
	if err == nil || !strings.Contains(err.Error(), "reaction_count") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestReadReactionsCSV_BadCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "id,reaction_count,created_at\na1,many,2024-01-01T00:00:00+09:00\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadReactionsCSV(path)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line-addressed error, got %v", err)
	}
}

func TestReadReactionsCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadReactionsCSV(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestWriteAnalysisJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.json")
	result := analyze.Result{
		TotalCount:         5,
		Median:             3,
		Mean:               3,
		TopDecileThreshold: 5,
		TopDecileMean:      5,
		TopDecileMedian:    5,
		TopDecileCount:     1,
		Proportions:        map[int]float64{1: 1, 2: 0.8, 3: 0.6},
	}

	if err := WriteAnalysisJSON(path, result); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	want := map[string]float64{
		"total_count":           5,
		"median":                3,
		"mean":                  3,
		"top_decile_threshold":  5,
		"top_decile_mean":       5,
		"top_decile_median":     5,
		"top_decile_count":      1,
		"proportion_at_least_1": 1,
		"proportion_at_least_2": 0.8,
		"proportion_at_least_3": 0.6,
	}
	if len(doc) != len(want) {
		t.Errorf("expected %d keys, got %d: %v", len(want), len(doc), doc)
	}
	for key, wantValue := range want {
		got, ok := doc[key].(float64)
		if !ok {
			t.Errorf("missing or non-numeric key %q", key)
			continue
		}
		if got != wantValue {
			t.Errorf("key %q: expected %v, got %v", key, wantValue, got)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	result := analyze.Result{
		TotalCount:         5,
		Median:             3,
		Mean:               3,
		TopDecileThreshold: 5,
		TopDecileMean:      5,
		TopDecileMedian:    5,
		TopDecileCount:     1,
		Proportions:        map[int]float64{1: 1, 2: 0.8, 3: 0.6},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, "All users", result)

	out := buf.String()
	for _, want := range []string{"All users", "Articles", "Median reactions", "3.00", "80.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
