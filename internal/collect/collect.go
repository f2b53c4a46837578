package collect

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/jiroshimaya/qiitastats/internal/qiita"
)

// ErrNoArticles is returned when a query matches nothing.
var ErrNoArticles = errors.New("no articles found for query")

// Fetcher is the part of the Qiita client the sampler needs.
type Fetcher interface {
	SearchPage(ctx context.Context, query string, page, perPage int) ([]qiita.Article, int, error)
}

// Options control a single sampling run.
type Options struct {
	StartDate  string // YYYY-MM-DD, inclusive
	EndDate    string // YYYY-MM-DD, inclusive
	UserID     string // empty samples across all users
	SampleSize int
	PerPage    int
	MaxPages   int
}

// Validate rejects malformed options before any request is made.
func (o Options) Validate() error {
	start, err := time.Parse("2006-01-02", o.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q, want YYYY-MM-DD", o.StartDate)
	}
	end, err := time.Parse("2006-01-02", o.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q, want YYYY-MM-DD", o.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("start date %s is after end date %s", o.StartDate, o.EndDate)
	}
	if o.SampleSize <= 0 {
		return fmt.Errorf("sample size must be positive, got %d", o.SampleSize)
	}
	if o.PerPage < 1 || o.PerPage > qiita.MaxPerPage {
		return fmt.Errorf("per page must be between 1 and %d, got %d", qiita.MaxPerPage, o.PerPage)
	}
	if o.MaxPages < 1 {
		return fmt.Errorf("max pages must be positive, got %d", o.MaxPages)
	}
	return nil
}

// Record is the reaction data kept for one sampled article.
type Record struct {
	ID            string
	ReactionCount int
	CreatedAt     string
}

// Result holds the outcome of a sampling run.
type Result struct {
	Records      []Record
	Query        string
	TotalCount   int   // items matching the query per the API
	TotalPages   int   // pages the query spans, capped at Options.MaxPages
	PagesFetched []int // pages actually requested, in order
}

// ReactionCounts returns the reaction count column of the sample.
func (r *Result) ReactionCounts() []int {
	counts := make([]int, len(r.Records))
	for i, rec := range r.Records {
		counts[i] = rec.ReactionCount
	}
	return counts
}

// Sampler approximates a population of search results by fetching a random
// subset of pages instead of walking every one.
type Sampler struct {
	client Fetcher
	rng    *rand.Rand
}

// NewSampler creates a sampler with clock-seeded randomness.
func NewSampler(client Fetcher) *Sampler {
	return &Sampler{
		client: client,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sample fetches up to opts.SampleSize articles matching the date range and
// optional user filter. The first page establishes the total count; further
// pages are drawn at random without replacement and fetched in ascending
// order until the sample is filled.
func (s *Sampler) Sample(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	query := qiita.BuildQuery(opts.StartDate, opts.EndDate, opts.UserID)
	log.Printf("Searching: %s", query)

	first, total, err := s.client.SearchPage(ctx, query, 1, opts.PerPage)
	if err != nil {
		return nil, fmt.Errorf("fetching first page: %w", err)
	}
	if total == 0 || len(first) == 0 {
		return nil, ErrNoArticles
	}

	totalPages := (total + opts.PerPage - 1) / opts.PerPage
	if totalPages > opts.MaxPages {
		totalPages = opts.MaxPages
	}

	result := &Result{
		Query:        query,
		TotalCount:   total,
		TotalPages:   totalPages,
		PagesFetched: []int{1},
	}
	log.Printf("Found %d articles across %d pages", total, totalPages)

	// The whole result set fits on the first page.
	if totalPages == 1 || total <= opts.PerPage {
		result.Records = toRecords(first)
		return result, nil
	}

	articles := first
	for _, page := range s.pickPages(total, totalPages, opts) {
		if len(articles) >= opts.SampleSize {
			break
		}
		pageArticles, _, err := s.client.SearchPage(ctx, query, page, opts.PerPage)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page, err)
		}
		log.Printf("Fetched page %d: %d articles", page, len(pageArticles))
		articles = append(articles, pageArticles...)
		result.PagesFetched = append(result.PagesFetched, page)
	}

	if len(articles) > opts.SampleSize {
		articles = s.subset(articles, opts.SampleSize)
	}
	result.Records = toRecords(articles)
	log.Printf("Sampled %d of %d articles", len(result.Records), total)
	return result, nil
}

// pickPages selects the pages to fetch after the first. One page beyond the
// raw need is included so the run can downsample to the exact size.
func (s *Sampler) pickPages(total, totalPages int, opts Options) []int {
	need := opts.SampleSize/opts.PerPage + 1

	// The sample covers the whole population: walk every page in order.
	if opts.SampleSize >= total || need >= totalPages {
		pages := make([]int, 0, totalPages-1)
		for p := 2; p <= totalPages; p++ {
			pages = append(pages, p)
		}
		return pages
	}

	pages := make([]int, 0, need-1)
	for _, i := range s.rng.Perm(totalPages - 1)[:need-1] {
		pages = append(pages, i+2)
	}
	sort.Ints(pages)
	return pages
}

// subset keeps n randomly chosen articles, preserving fetch order.
func (s *Sampler) subset(articles []qiita.Article, n int) []qiita.Article {
	idx := s.rng.Perm(len(articles))[:n]
	sort.Ints(idx)
	out := make([]qiita.Article, 0, n)
	for _, i := range idx {
		out = append(out, articles[i])
	}
	return out
}

func toRecords(articles []qiita.Article) []Record {
	records := make([]Record, len(articles))
	for i, a := range articles {
		records[i] = Record{
			ID:            a.ID,
			ReactionCount: a.ReactionCount(),
			CreatedAt:     a.CreatedAt,
		}
	}
	return records
}
