package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jiroshimaya/qiitastats/internal/analyze"
	"github.com/jiroshimaya/qiitastats/internal/collect"
	"github.com/jiroshimaya/qiitastats/internal/config"
	"github.com/jiroshimaya/qiitastats/internal/pipeline"
	"github.com/jiroshimaya/qiitastats/internal/qiita"
	"github.com/jiroshimaya/qiitastats/internal/report"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env file: %v", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "qiitastats",
	Short:   "Qiita reaction statistics",
	Long:    "qiitastats samples Qiita articles through the search API and reports reaction-count statistics as CSV and JSON.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("qiitastats", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/qiitastats/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to adjust sampling, thresholds, and output settings.")
		return nil
	},
}

// --- count command ---

var (
	countStart      string
	countEnd        string
	countUser       string
	countSampleSize int
	countOutput     string
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Sample reaction counts into a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		sampleSize := countSampleSize
		if sampleSize == 0 {
			sampleSize = cfg.Sampling.SampleSize
		}

		sampler := collect.NewSampler(client)
		result, err := sampler.Sample(context.Background(), collect.Options{
			StartDate:  countStart,
			EndDate:    countEnd,
			UserID:     countUser,
			SampleSize: sampleSize,
			PerPage:    cfg.Sampling.PerPage,
			MaxPages:   cfg.Sampling.MaxPages,
		})
		if err != nil {
			return err
		}

		if err := report.WriteReactionsCSV(countOutput, result.Records); err != nil {
			return err
		}

		fmt.Printf("Sampled %d of %d articles\n", len(result.Records), result.TotalCount)
		fmt.Printf("Saved: %s\n", countOutput)
		return nil
	},
}

func init() {
	countCmd.Flags().StringVar(&countStart, "start", "1900-01-01", "Start date (YYYY-MM-DD)")
	countCmd.Flags().StringVar(&countEnd, "end", "2099-12-31", "End date (YYYY-MM-DD)")
	countCmd.Flags().StringVar(&countUser, "user", "", "Restrict to a single user ID")
	countCmd.Flags().IntVar(&countSampleSize, "sample-size", 0, "Articles to sample (default from config)")
	countCmd.Flags().StringVarP(&countOutput, "output", "o", "counts.csv", "Output CSV path")
}

// --- analyze command ---

var (
	analyzeInput      string
	analyzeOutput     string
	analyzeThresholds []int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute statistics for a previously saved CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := report.ReadReactionsCSV(analyzeInput)
		if err != nil {
			return err
		}

		counts := make([]int, len(records))
		for i, r := range records {
			counts[i] = r.ReactionCount
		}

		thresholds := analyzeThresholds
		if len(thresholds) == 0 {
			thresholds = cfg.Analysis.Thresholds
		}

		stats := analyze.Compute(counts, thresholds)
		report.PrintSummary(os.Stdout, analyzeInput, stats)

		if analyzeOutput != "" {
			if err := report.WriteAnalysisJSON(analyzeOutput, stats); err != nil {
				return err
			}
			fmt.Printf("\nSaved: %s\n", analyzeOutput)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "Input CSV path (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Optional JSON output path")
	analyzeCmd.Flags().IntSliceVar(&analyzeThresholds, "thresholds", nil, "Reaction thresholds (default from config)")
	analyzeCmd.MarkFlagRequired("input")
}

// --- run command ---

var (
	runStart      string
	runEnd        string
	runUser       string
	runSampleSize int
	runOutputDir  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: sample all users and the target user, then report",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		pipe := pipeline.New(cfg, client)
		result, err := pipe.Run(context.Background(), pipeline.Options{
			StartDate:  runStart,
			EndDate:    runEnd,
			UserID:     runUser,
			SampleSize: runSampleSize,
			OutputDir:  runOutputDir,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Period %s to %s, user %s\n", result.StartDate, result.EndDate, result.UserID)
		for _, run := range result.Runs {
			fmt.Println()
			title := fmt.Sprintf("%s (%d of %d articles)", run.Label, run.Sampled, run.Total)
			report.PrintSummary(os.Stdout, title, run.Stats)
			fmt.Printf("\n  %s\n  %s\n", run.CSVPath, run.JSONPath)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runStart, "start", "", "Start date (default: the user's oldest article)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "End date (default: today)")
	runCmd.Flags().StringVar(&runUser, "user", "", "Target user ID (default: the token owner)")
	runCmd.Flags().IntVar(&runSampleSize, "sample-size", 0, "Articles to sample per run (default from config)")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "Report directory (default from config)")
}

func newClient() (*qiita.Client, error) {
	token := cfg.Token()
	if token == "" {
		return nil, fmt.Errorf("environment variable %s is not set; export a Qiita personal access token", cfg.API.TokenEnv)
	}
	return qiita.NewClient(token, cfg.API.BaseURL), nil
}
