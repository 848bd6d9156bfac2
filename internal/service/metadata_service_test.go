package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
)

func TestExtractMetadata(t *testing.T) {
	page := `<html><head>
<title>
  Rahat &amp; Co
</title>
<meta name="description" content="Designer &amp; developer">
<meta property="og:description" content="ignored">
<meta property="og:image" content="https://example.com/og.png">
</head></html>`

	meta := extractMetadata(page, "https://example.com")
	if meta.Title != "Rahat & Co" {
		t.Fatalf("unexpected title %q", meta.Title)
	}
	if meta.Description != "Designer & developer" {
		t.Fatalf("unexpected description %q", meta.Description)
	}
	if meta.Image.URL != "https://example.com/og.png" {
		t.Fatalf("unexpected image %q", meta.Image.URL)
	}
}

func TestExtractMetadataFallbacks(t *testing.T) {
	page := `<meta property="og:description" content="From OG">`

	meta := extractMetadata(page, "https://example.com/post")
	if meta.Title != "https://example.com/post" {
		t.Fatalf("expected url as title fallback, got %q", meta.Title)
	}
	if meta.Description != "From OG" {
		t.Fatalf("expected og:description fallback, got %q", meta.Description)
	}
	if meta.Image.URL != "" {
		t.Fatalf("expected empty image, got %q", meta.Image.URL)
	}
}

func TestFetchMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<title>Hello</title><meta property="og:image" content="/img.png">`)
	}))
	defer server.Close()

	svc := NewMetadataService()
	svc.SetHTTPClient(server.Client())

	meta, err := svc.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if meta.Title != "Hello" || meta.Image.URL != "/img.png" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
}

func TestFetchMetadataErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewMetadataService()
	svc.SetHTTPClient(server.Client())

	for _, raw := range []string{"", "ftp://example.com/file", "not a url", "/relative/path"} {
		if _, err := svc.Fetch(context.Background(), raw); !errors.Is(err, ErrMetadataURLInvalid) {
			t.Fatalf("expected ErrMetadataURLInvalid for %q, got %v", raw, err)
		}
	}

	if _, err := svc.Fetch(context.Background(), server.URL); !errors.Is(err, ErrMetadataFetch) {
		t.Fatalf("expected ErrMetadataFetch, got %v", err)
	}
}

func TestFetchMetadataRefusesPrivateAddresses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("loopback server should not be reached")
	}))
	defer server.Close()

	svc := NewMetadataService()
	for _, raw := range []string{server.URL, "http://localhost:8080/", "http://10.0.0.7/admin"} {
		_, err := svc.Fetch(context.Background(), raw)
		if !errors.Is(err, ErrMetadataURLInvalid) || !errors.Is(err, ErrMetadataURLBlocked) {
			t.Fatalf("expected blocked url error for %q, got %v", raw, err)
		}
	}
}

func TestIsPrivateAddr(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1":        true,
		"10.1.2.3":         true,
		"172.16.0.1":       true,
		"192.168.1.1":      true,
		"169.254.169.254":  true,
		"0.0.0.0":          true,
		"::1":              true,
		"fd00::1":          true,
		"::ffff:127.0.0.1": true,
		"93.184.216.34":    false,
		"2606:4700::1111":  false,
	}
	for raw, want := range cases {
		if got := isPrivateAddr(netip.MustParseAddr(raw)); got != want {
			t.Errorf("isPrivateAddr(%s) = %v, want %v", raw, got, want)
		}
	}
}
