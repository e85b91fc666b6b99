// Package spotify wraps the two catalog-provider calls the game needs:
// the OAuth authorization-code exchange and track search.
package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTokenURL   = "https://accounts.spotify.com/api/token"
	defaultAPIBaseURL = "https://api.spotify.com/v1"
	requestTimeout    = 10 * time.Second
)

type Client struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenURL     string
	APIBaseURL   string
	RetryDelay   time.Duration
	HTTPClient   *http.Client
}

func New(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		TokenURL:     defaultTokenURL,
		APIBaseURL:   defaultAPIBaseURL,
		RetryDelay:   200 * time.Millisecond,
		HTTPClient:   &http.Client{Timeout: requestTimeout},
	}
}

type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	PreviewURL string `json:"preview_url"`
	URI        string `json:"uri"`
	DurationMS int    `json:"duration_ms"`
}

// ExchangeCode trades an authorization code for tokens. The exchange is
// a one-shot write and is never retried.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Token, error) {
	if c.ClientID == "" || c.ClientSecret == "" {
		return Token{}, errors.New("spotify credentials are not configured")
	}
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, err
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(c.ClientID + ":" + c.ClientSecret))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("spotify token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("failed to read spotify response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Token{}, fmt.Errorf("spotify token exchange failed (%d)", resp.StatusCode)
	}
	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return Token{}, fmt.Errorf("failed to parse spotify response: %w", err)
	}
	if token.AccessToken == "" {
		return Token{}, errors.New("spotify returned no access token")
	}
	return token, nil
}

type searchResponse struct {
	Tracks struct {
		Items []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			URI     string `json:"uri"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			PreviewURL string `json:"preview_url"`
			DurationMS int    `json:"duration_ms"`
		} `json:"items"`
	} `json:"tracks"`
}

// SearchTracks queries the catalog. Reads retry once on a transport
// failure.
func (c *Client) SearchTracks(ctx context.Context, accessToken, query string) ([]Track, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&type=track&limit=20", c.APIBaseURL, url.QueryEscape(query))

	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		return req, nil
	}

	resp, err := doWithRetry(c.HTTPClient, build, c.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("spotify search failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read spotify response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("spotify search failed (%d)", resp.StatusCode)
	}
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse spotify response: %w", err)
	}

	tracks := make([]Track, 0, len(parsed.Tracks.Items))
	for _, item := range parsed.Tracks.Items {
		artists := make([]string, 0, len(item.Artists))
		for _, artist := range item.Artists {
			artists = append(artists, artist.Name)
		}
		tracks = append(tracks, Track{
			ID:         item.ID,
			Name:       item.Name,
			Artist:     strings.Join(artists, ", "),
			Album:      item.Album.Name,
			PreviewURL: item.PreviewURL,
			URI:        item.URI,
			DurationMS: item.DurationMS,
		})
	}
	return tracks, nil
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
