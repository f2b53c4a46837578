package qiita

import "testing"

func TestBuildQuery(t *testing.T) {
	got := BuildQuery("2024-01-01", "2024-01-31", "")
	want := "created:>=2024-01-01 created:<=2024-01-31"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuildQuery_WithUser(t *testing.T) {
	got := BuildQuery("2024-01-01", "2024-01-31", "alice")
	want := "created:>=2024-01-01 created:<=2024-01-31 user:alice"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
