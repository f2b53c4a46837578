package qiita

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public endpoint of the Qiita v2 API.
	DefaultBaseURL = "https://qiita.com/api/v2"

	// MaxPerPage is the largest page size the API accepts.
	MaxPerPage = 100

	// MaxPage is the deepest page the API serves for a single query.
	MaxPage = 100
)

// Article is an item returned by the Qiita API.
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	LikesCount  int    `json:"likes_count"`
	StocksCount int    `json:"stocks_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ReactionCount is the combined number of likes and stocks.
func (a Article) ReactionCount() int {
	return a.LikesCount + a.StocksCount
}

// Client calls the Qiita v2 API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given endpoint. An empty baseURL selects
// the public API.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchPage fetches one page of search results along with the total number
// of items matching the query, taken from the Total-Count response header.
func (c *Client) SearchPage(ctx context.Context, query string, page, perPage int) ([]Article, int, error) {
	params := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
		"query":    {query},
	}
	return c.itemsPage(ctx, "/items", params)
}

// UserItems fetches one page of a user's articles. An empty sort keeps the
// API's default ordering.
func (c *Client) UserItems(ctx context.Context, userID string, page, perPage int, sort string) ([]Article, int, error) {
	params := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	if sort != "" {
		params.Set("sort", sort)
	}
	return c.itemsPage(ctx, "/users/"+url.PathEscape(userID)+"/items", params)
}

// AuthenticatedUser returns the user id that owns the configured token.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, "/authenticated_user", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decoding authenticated user: %w", err)
	}
	if user.ID == "" {
		return "", errors.New("authenticated user response has no id")
	}
	return user.ID, nil
}

// UserOldestArticleDate returns the creation date (YYYY-MM-DD) of the user's
// oldest article. The last page of the user's items sorted by created_at ends
// with the oldest one.
func (c *Client) UserOldestArticleDate(ctx context.Context, userID string) (string, error) {
	_, total, err := c.UserItems(ctx, userID, 1, MaxPerPage, "")
	if err != nil {
		return "", err
	}
	if total == 0 {
		return "", fmt.Errorf("user %s has no articles", userID)
	}

	lastPage := (total-1)/MaxPerPage + 1
	articles, _, err := c.UserItems(ctx, userID, lastPage, MaxPerPage, "created_at")
	if err != nil {
		return "", err
	}
	if len(articles) == 0 {
		return "", fmt.Errorf("user %s has no articles on page %d", userID, lastPage)
	}

	oldest := articles[len(articles)-1]
	t, err := time.Parse(time.RFC3339, oldest.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("parsing created_at %q: %w", oldest.CreatedAt, err)
	}
	return t.Format("2006-01-02"), nil
}

func (c *Client) itemsPage(ctx context.Context, path string, params url.Values) ([]Article, int, error) {
	resp, err := c.get(ctx, path, params)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var articles []Article
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, 0, fmt.Errorf("decoding %s response: %w", path, err)
	}

	// Some proxies strip the header; the page length is the best fallback.
	total := len(articles)
	if v := resp.Header.Get("Total-Count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, 0, fmt.Errorf("parsing Total-Count header %q: %w", v, err)
		}
		total = n
	}
	return articles, total, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", path, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

// StatusError is returned when the API responds with an unexpected status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("qiita api: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("qiita api: unexpected status %d: %s", e.StatusCode, e.Body)
}
