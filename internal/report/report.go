package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/jiroshimaya/qiitastats/internal/analyze"
	"github.com/jiroshimaya/qiitastats/internal/collect"
)

var csvHeader = []string{"id", "reaction_count", "created_at"}

// WriteReactionsCSV writes one row per sampled article.
func WriteReactionsCSV(path string, records []collect.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		row := []string{r.ID, strconv.Itoa(r.ReactionCount), r.CreatedAt}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing record %s: %w", r.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// ReadReactionsCSV reads a reactions file back into records. Columns are
// located by header name.
func ReadReactionsCSV(path string) ([]collect.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, name := range csvHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%s is missing column %q", path, name)
		}
	}

	records := make([]collect.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		raw := row[col["reaction_count"]]
		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid reaction_count %q", path, i+2, raw)
		}
		records = append(records, collect.Record{
			ID:            row[col["id"]],
			ReactionCount: count,
			CreatedAt:     row[col["created_at"]],
		})
	}
	return records, nil
}

// WriteAnalysisJSON writes the statistics as a flat JSON document.
func WriteAnalysisJSON(path string, result analyze.Result) error {
	data, err := json.MarshalIndent(analysisDocument(result), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling analysis: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func analysisDocument(result analyze.Result) map[string]any {
	doc := map[string]any{
		"total_count":          result.TotalCount,
		"median":               result.Median,
		"mean":                 result.Mean,
		"top_decile_threshold": result.TopDecileThreshold,
		"top_decile_mean":      result.TopDecileMean,
		"top_decile_median":    result.TopDecileMedian,
		"top_decile_count":     result.TopDecileCount,
	}
	for threshold, p := range result.Proportions {
		doc[fmt.Sprintf("proportion_at_least_%d", threshold)] = p
	}
	return doc
}
