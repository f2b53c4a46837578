package qiita

import "fmt"

// BuildQuery assembles a search query for articles created within a date
// range, optionally restricted to a single user.
func BuildQuery(start, end, userID string) string {
	query := fmt.Sprintf("created:>=%s created:<=%s", start, end)
	if userID != "" {
		query += " user:" + userID
	}
	return query
}
