package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTranslate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "good morning" {
			t.Errorf("unexpected q %q", got)
		}
		if got := r.URL.Query().Get("langpair"); got != "en|nl" {
			t.Errorf("unexpected langpair %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responseData":{"translatedText":"goedemorgen"}}`))
	}))
	defer ts.Close()

	client := New(ts.URL)
	client.RetryDelay = time.Millisecond
	translated, err := client.Translate(context.Background(), "good morning", "en", "nl")
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if translated != "goedemorgen" {
		t.Fatalf("unexpected translation %q", translated)
	}
}

func TestTranslateRejectsUnsupportedLanguage(t *testing.T) {
	client := New("http://unused.example.com")
	if _, err := client.Translate(context.Background(), "hello", "en", "de"); err == nil {
		t.Fatal("expected error for unsupported target language")
	}
	if _, err := client.Translate(context.Background(), "hallo", "xx", "en"); err == nil {
		t.Fatal("expected error for unsupported source language")
	}
}

func TestTranslateProviderFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := New(ts.URL)
	client.RetryDelay = time.Millisecond
	if _, err := client.Translate(context.Background(), "hello", "en", "fr"); err == nil {
		t.Fatal("expected error on provider failure")
	}
}

func TestTranslateEmptyProviderResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responseData":{"translatedText":""}}`))
	}))
	defer ts.Close()

	client := New(ts.URL)
	client.RetryDelay = time.Millisecond
	if _, err := client.Translate(context.Background(), "hello", "en", "es"); err == nil {
		t.Fatal("expected error when provider returns no text")
	}
}
