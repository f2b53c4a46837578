package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/jiroshimaya/qiitastats/internal/analyze"
)

// PrintSummary renders one analysis as a titled metric table.
func PrintSummary(w io.Writer, title string, result analyze.Result) {
	color.New(color.FgCyan, color.Bold).Fprintf(w, "%s\n", title)

	rows := [][]string{
		{"Articles", strconv.Itoa(result.TotalCount)},
		{"Median reactions", formatFloat(result.Median)},
		{"Mean reactions", formatFloat(result.Mean)},
		{"Top decile threshold", formatFloat(result.TopDecileThreshold)},
		{"Top decile mean", formatFloat(result.TopDecileMean)},
		{"Top decile median", formatFloat(result.TopDecileMedian)},
		{"Top decile articles", strconv.Itoa(result.TopDecileCount)},
	}
	for _, threshold := range sortedThresholds(result.Proportions) {
		rows = append(rows, []string{
			fmt.Sprintf("At least %d reactions", threshold),
			fmt.Sprintf("%.2f%%", result.Proportions[threshold]*100),
		})
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
	table.Header([]string{"Metric", "Value"})
	table.Bulk(rows)
	table.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func sortedThresholds(proportions map[int]float64) []int {
	thresholds := make([]int, 0, len(proportions))
	for threshold := range proportions {
		thresholds = append(thresholds, threshold)
	}
	sort.Ints(thresholds)
	return thresholds
}
