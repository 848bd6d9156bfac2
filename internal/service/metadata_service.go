package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"syscall"
	"time"
)

const metadataBodyLimit = 1 << 20

var (
	ErrMetadataURLInvalid = errors.New("url is invalid")
	ErrMetadataFetch      = errors.New("failed to fetch url")
	ErrMetadataURLBlocked = errors.New("url points to a private address")
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var (
	titlePattern         = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	descriptionPattern   = regexp.MustCompile(`(?i)<meta\s+name=["']description["']\s+content=["'](.*?)["']`)
	ogDescriptionPattern = regexp.MustCompile(`(?i)<meta\s+property=["']og:description["']\s+content=["'](.*?)["']`)
	ogImagePattern       = regexp.MustCompile(`(?i)<meta\s+property=["']og:image["']\s+content=["'](.*?)["']`)
)

// LinkMetadata is the preview shown for a pasted link.
type LinkMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       struct {
		URL string `json:"url"`
	} `json:"image"`
}

// MetadataService fetches a page and extracts its preview fields.
type MetadataService struct {
	http httpDoer
}

// NewMetadataService creates a MetadataService whose client refuses to dial
// loopback, private and link-local addresses.
func NewMetadataService() *MetadataService {
	return &MetadataService{http: newPublicOnlyClient()}
}

// SetHTTPClient replaces the transport, mainly for tests.
func (s *MetadataService) SetHTTPClient(client httpDoer) {
	if client == nil {
		client = newPublicOnlyClient()
	}
	s.http = client
}

func newPublicOnlyClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
		Control: rejectPrivateAddress,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: 10 * time.Second, Transport: transport}
}

// rejectPrivateAddress runs after DNS resolution, so redirects and
// rebinding hostnames are checked against the address actually dialed.
func rejectPrivateAddress(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMetadataURLBlocked, address)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMetadataURLBlocked, address)
	}
	if isPrivateAddr(addr) {
		return fmt.Errorf("%w: %s", ErrMetadataURLBlocked, addr)
	}
	return nil
}

func isPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified()
}

// Fetch downloads rawURL and extracts title, description and og:image.
func (s *MetadataService) Fetch(ctx context.Context, rawURL string) (*LinkMetadata, error) {
	target, err := parseFetchURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataURLInvalid, err)
	}
	req.Header.Set("User-Agent", "portfolio-link-preview/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.http.Do(req)
	if err != nil {
		if errors.Is(err, ErrMetadataURLBlocked) {
			return nil, fmt.Errorf("%w: %w", ErrMetadataURLInvalid, ErrMetadataURLBlocked)
		}
		return nil, fmt.Errorf("%w: %v", ErrMetadataFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s", ErrMetadataFetch, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, metadataBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataFetch, err)
	}

	return extractMetadata(string(body), target.String()), nil
}

func parseFetchURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, ErrMetadataURLInvalid
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return nil, ErrMetadataURLInvalid
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, ErrMetadataURLInvalid
	}
	if strings.EqualFold(parsed.Hostname(), "localhost") {
		return nil, fmt.Errorf("%w: %w", ErrMetadataURLInvalid, ErrMetadataURLBlocked)
	}
	return parsed, nil
}

func extractMetadata(page, fallbackTitle string) *LinkMetadata {
	meta := &LinkMetadata{Title: fallbackTitle}

	if title := firstMatch(titlePattern, page); title != "" {
		meta.Title = title
	}

	meta.Description = firstMatch(descriptionPattern, page)
	if meta.Description == "" {
		meta.Description = firstMatch(ogDescriptionPattern, page)
	}

	meta.Image.URL = firstMatch(ogImagePattern, page)
	return meta
}

func firstMatch(pattern *regexp.Regexp, page string) string {
	match := pattern.FindStringSubmatch(page)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strings.Join(strings.Fields(match[1]), " ")))
}
