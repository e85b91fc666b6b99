// Package translate is a pass-through client for the translation
// provider used to localize quiz prompts.
package translate

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

const requestTimeout = 10 * time.Second

// Languages the game UI supports.
var SupportedLanguages = map[string]bool{
	"en": true,
	"nl": true,
	"es": true,
	"fr": true,
}

func Supported(lang string) bool {
	return SupportedLanguages[lang]
}

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

type translateResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

// Translate converts text between two supported languages. Reads retry
// once on a transport failure.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if !Supported(sourceLang) || !Supported(targetLang) {
		return "", fmt.Errorf("unsupported language pair %s -> %s", sourceLang, targetLang)
	}
	endpoint := fmt.Sprintf("%s/get?q=%s&langpair=%s",
		c.BaseURL, url.QueryEscape(text), url.QueryEscape(sourceLang+"|"+targetLang))

	build := func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}
	resp, err := doWithRetry(c.HTTPClient, build, c.RetryDelay)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read translation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("translation failed (%d)", resp.StatusCode)
	}
	var parsed translateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse translation response: %w", err)
	}
	if parsed.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("translation provider returned no text")
	}
	return parsed.ResponseData.TranslatedText, nil
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
