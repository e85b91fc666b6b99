package lyrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSearchRanksTitleLinesFirst(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"lyrics":"You can dance\n\nSee that girl\nYou are the dancing queen\nHaving the time of your life"}`))
	}))
	defer ts.Close()

	client := New(ts.URL)
	client.RetryDelay = time.Millisecond
	snippets, err := client.Search(context.Background(), "Dancing Queen", "ABBA")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(snippets) != 4 {
		t.Fatalf("expected 4 snippets, got %d", len(snippets))
	}
	if snippets[0].Text != "You are the dancing queen" {
		t.Fatalf("expected title line first, got %q", snippets[0].Text)
	}
	for i, snippet := range snippets {
		if snippet.Rank != i+1 {
			t.Fatalf("ranks must be contiguous from 1, got %+v", snippets)
		}
	}
}

func TestSearchProviderFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := New(ts.URL)
	client.RetryDelay = time.Millisecond
	if _, err := client.Search(context.Background(), "Unknown", "Nobody"); err == nil {
		t.Fatal("expected error on provider 404")
	}
}

func TestSearchCapsSnippetCount(t *testing.T) {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = "la la la line"
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, _ := json.Marshal(map[string]string{"lyrics": strings.Join(lines, "\n")})
		_, _ = w.Write(body)
	}))
	defer ts.Close()

	client := New(ts.URL)
	client.RetryDelay = time.Millisecond
	snippets, err := client.Search(context.Background(), "Song", "Artist")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(snippets) != maxSnippets {
		t.Fatalf("expected %d snippets, got %d", maxSnippets, len(snippets))
	}
}
