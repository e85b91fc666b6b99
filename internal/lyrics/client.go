// Package lyrics looks up lyric snippets for a song and ranks them for
// quiz display.
package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	requestTimeout = 10 * time.Second
	maxSnippets    = 10
)

type Client struct {
	BaseURL    string
	RetryDelay time.Duration
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		RetryDelay: 200 * time.Millisecond,
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
}

type Snippet struct {
	Rank int    `json:"rank"`
	Text string `json:"text"`
}

type lyricsResponse struct {
	Lyrics string `json:"lyrics"`
}

// Search fetches the lyrics for (songTitle, artist) and returns ranked
// snippets: lines mentioning a title word rank above the rest. Reads
// retry once on a transport failure.
func (c *Client) Search(ctx context.Context, songTitle, artist string) ([]Snippet, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.BaseURL, url.PathEscape(artist), url.PathEscape(songTitle))

	build := func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}
	resp, err := doWithRetry(c.HTTPClient, build, c.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lyrics lookup failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lyrics response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("lyrics lookup failed (%d)", resp.StatusCode)
	}
	var parsed lyricsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse lyrics response: %w", err)
	}
	return rankSnippets(parsed.Lyrics, songTitle), nil
}

func rankSnippets(lyrics, songTitle string) []Snippet {
	titleWords := strings.Fields(strings.ToLower(songTitle))
	var matched, rest []string
	for _, line := range strings.Split(lyrics, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if lineMentions(strings.ToLower(line), titleWords) {
			matched = append(matched, line)
		} else {
			rest = append(rest, line)
		}
	}
	snippets := make([]Snippet, 0, maxSnippets)
	for _, line := range append(matched, rest...) {
		if len(snippets) == maxSnippets {
			break
		}
		snippets = append(snippets, Snippet{Rank: len(snippets) + 1, Text: line})
	}
	return snippets
}

func lineMentions(line string, words []string) bool {
	for _, word := range words {
		if strings.Contains(line, word) {
			return true
		}
	}
	return false
}

func doWithRetry(client *http.Client, build func() (*http.Request, error), delay time.Duration) (*http.Response, error) {
	req, err := build()
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err == nil {
		return resp, nil
	}
	time.Sleep(delay)
	retry, buildErr := build()
	if buildErr != nil {
		return nil, err
	}
	return client.Do(retry)
}
