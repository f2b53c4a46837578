package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jiroshimaya/qiitastats/internal/analyze"
	"github.com/jiroshimaya/qiitastats/internal/collect"
	"github.com/jiroshimaya/qiitastats/internal/config"
	"github.com/jiroshimaya/qiitastats/internal/report"
)

// Options control a full reporting run. Empty fields are resolved against
// the API: the user defaults to the token owner, the start date to the
// user's oldest article, the end date to today.
type Options struct {
	StartDate  string
	EndDate    string
	UserID     string
	SampleSize int
	OutputDir  string
}

// RunSummary describes one completed sampling and analysis pass.
type RunSummary struct {
	Label    string
	CSVPath  string
	JSONPath string
	Sampled  int
	Total    int
	Stats    analyze.Result
}

// Result holds the summaries of a full pipeline run.
type Result struct {
	UserID    string
	StartDate string
	EndDate   string
	Runs      []RunSummary
}

// Client is the part of the Qiita client the pipeline needs.
type Client interface {
	collect.Fetcher
	AuthenticatedUser(ctx context.Context) (string, error)
	UserOldestArticleDate(ctx context.Context, userID string) (string, error)
}

// Pipeline orchestrates the two reporting passes: one across all users and
// one restricted to the target user.
type Pipeline struct {
	cfg     *config.Config
	client  Client
	sampler *collect.Sampler
}

// New creates a new pipeline.
func New(cfg *config.Config, client Client) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		client:  client,
		sampler: collect.NewSampler(client),
	}
}

// Run resolves the target user and date range, then samples and analyzes
// both populations, writing a CSV and a JSON report per pass.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := validateDates(opts.StartDate, opts.EndDate); err != nil {
		return nil, err
	}

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = p.cfg.Output.Dir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	userID := opts.UserID
	if userID == "" {
		var err error
		userID, err = p.client.AuthenticatedUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving authenticated user: %w", err)
		}
		log.Printf("Resolved authenticated user: %s", userID)
	}

	startDate := opts.StartDate
	if startDate == "" {
		var err error
		startDate, err = p.client.UserOldestArticleDate(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("resolving start date: %w", err)
		}
		log.Printf("Using oldest article date as start: %s", startDate)
	}

	endDate := opts.EndDate
	if endDate == "" {
		endDate = time.Now().Format("2006-01-02")
	}

	sampleSize := opts.SampleSize
	if sampleSize == 0 {
		sampleSize = p.cfg.Sampling.SampleSize
	}

	result := &Result{UserID: userID, StartDate: startDate, EndDate: endDate}

	runs := []struct {
		label  string
		userID string
	}{
		{"all_users", ""},
		{userID, userID},
	}
	for i, run := range runs {
		log.Printf("Run %d/%d: %s", i+1, len(runs), run.label)
		sampleOpts := collect.Options{
			StartDate:  startDate,
			EndDate:    endDate,
			UserID:     run.userID,
			SampleSize: sampleSize,
			PerPage:    p.cfg.Sampling.PerPage,
			MaxPages:   p.cfg.Sampling.MaxPages,
		}
		summary, err := p.runOne(ctx, outDir, run.label, sampleOpts)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run.label, err)
		}
		result.Runs = append(result.Runs, summary)
	}

	return result, nil
}

// runOne samples one population and writes its CSV and JSON files. Nothing
// is written when sampling fails.
func (p *Pipeline) runOne(ctx context.Context, outDir, label string, opts collect.Options) (RunSummary, error) {
	sample, err := p.sampler.Sample(ctx, opts)
	if err != nil {
		return RunSummary{}, err
	}

	csvPath := filepath.Join(outDir, label+"_reactions.csv")
	if err := report.WriteReactionsCSV(csvPath, sample.Records); err != nil {
		return RunSummary{}, err
	}
	log.Printf("Wrote %s", csvPath)

	stats := analyze.Compute(sample.ReactionCounts(), p.cfg.Analysis.Thresholds)

	jsonPath := filepath.Join(outDir, label+"_analysis_result.json")
	if err := report.WriteAnalysisJSON(jsonPath, stats); err != nil {
		return RunSummary{}, err
	}
	log.Printf("Wrote %s", jsonPath)

	return RunSummary{
		Label:    label,
		CSVPath:  csvPath,
		JSONPath: jsonPath,
		Sampled:  len(sample.Records),
		Total:    sample.TotalCount,
		Stats:    stats,
	}, nil
}

// validateDates checks the explicitly given parts of the date range before
// any request is made. Empty values are resolved later.
func validateDates(start, end string) error {
	var startT, endT time.Time
	var err error
	if start != "" {
		startT, err = time.Parse("2006-01-02", start)
		if err != nil {
			return fmt.Errorf("invalid start date %q, want YYYY-MM-DD", start)
		}
	}
	if end != "" {
		endT, err = time.Parse("2006-01-02", end)
		if err != nil {
			return fmt.Errorf("invalid end date %q, want YYYY-MM-DD", end)
		}
	}
	if start != "" && end != "" && endT.Before(startT) {
		return fmt.Errorf("start date %s is after end date %s", start, end)
	}
	return nil
}
