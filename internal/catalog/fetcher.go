package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/litescript/ls-skyplan/internal/logging"
	"github.com/litescript/ls-skyplan/internal/metrics"
	"github.com/litescript/ls-skyplan/internal/version"
)

const (
	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// DefaultFailureThreshold is the number of consecutive HTTP failures
	// that opens the circuit.
	DefaultFailureThreshold = 3

	// DefaultBreakerTimeout is how long the circuit stays open before a
	// trial request is let through.
	DefaultBreakerTimeout = 60 * time.Second

	// LangPlaceholder is replaced by the language code in a descriptions
	// source.
	LangPlaceholder = "{lang}"

	assetCatalog      = "catalog"
	assetDescriptions = "descriptions"
)

// ErrBreakerOpen is returned while the circuit breaker rejects requests.
var ErrBreakerOpen = errors.New("asset source unavailable: circuit open")

// Fetcher loads the catalog and description assets from http(s) URLs or
// local paths. Failures are returned to the caller; nothing is retried.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	catalog      string
	descriptions string
	threshold    uint32
	openFor      time.Duration
	logger       *logging.Logger
	breaker      *gobreaker.CircuitBreaker[[]byte]
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithCatalogSource sets the catalog URL or path.
func WithCatalogSource(src string) FetcherOption {
	return func(f *Fetcher) {
		f.catalog = src
	}
}

// WithDescriptionsSource sets the descriptions URL or path. The source may
// contain LangPlaceholder.
func WithDescriptionsSource(src string) FetcherOption {
	return func(f *Fetcher) {
		f.descriptions = src
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithBreaker sets the consecutive failure count that opens the circuit
// and how long it stays open.
func WithBreaker(threshold uint32, openFor time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.threshold = threshold
		f.openFor = openFor
	}
}

// WithLogger sets the logger used for breaker transitions and catalog
// parse issues.
func WithLogger(l *logging.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a new asset fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultTimeout,
		threshold: DefaultFailureThreshold,
		openFor:   DefaultBreakerTimeout,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}
	if f.logger == nil {
		f.logger = logging.Discard()
	}

	threshold := f.threshold
	f.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "asset-fetch",
		MaxRequests: 1,
		Timeout:     f.openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
			metrics.RecordBreakerState(name, int(to))
		},
	})

	return f
}

// FetchResult contains the result of a catalog fetch.
type FetchResult struct {
	Entries   []Entry
	Issues    []ParseIssue
	RawBytes  []byte
	FetchedAt time.Time
	Duration  time.Duration
	Error     error
}

// FetchCatalog retrieves and parses the catalog.
func (f *Fetcher) FetchCatalog(ctx context.Context) FetchResult {
	start := time.Now()
	result := FetchResult{
		FetchedAt: start,
	}

	raw, err := f.fetchRaw(ctx, assetCatalog, f.catalog)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}
	result.RawBytes = raw

	parsed, err := ParseDetailed(bytes.NewReader(raw))
	if err != nil {
		result.Error = fmt.Errorf("parse catalog: %w", err)
		return result
	}
	result.Entries = parsed.Entries
	result.Issues = parsed.Issues
	for _, issue := range parsed.Issues {
		f.logger.Warn("catalog: %s", issue)
		metrics.CatalogParseIssues.WithLabelValues(issue.Column).Inc()
	}

	return result
}

// FetchDescriptions retrieves the descriptions for a language. With no
// descriptions source configured it returns an empty set.
func (f *Fetcher) FetchDescriptions(ctx context.Context, lang string) (Descriptions, error) {
	if f.descriptions == "" {
		return Descriptions{}, nil
	}

	src := strings.ReplaceAll(f.descriptions, LangPlaceholder, lang)
	raw, err := f.fetchRaw(ctx, assetDescriptions, src)
	if err != nil {
		return nil, err
	}

	d, err := LoadDescriptions(bytes.NewReader(raw))
	if err != nil {
		metrics.FetchErrors.WithLabelValues(assetDescriptions, "decode").Inc()
		return nil, err
	}
	return d, nil
}

func (f *Fetcher) fetchRaw(ctx context.Context, asset, src string) ([]byte, error) {
	start := time.Now()

	var (
		body   []byte
		err    error
		reason string
	)
	if isRemote(src) {
		body, reason, err = f.fetchHTTP(ctx, src)
	} else {
		body, err = os.ReadFile(strings.TrimPrefix(src, "file://"))
		if err != nil {
			reason = "read"
			err = fmt.Errorf("read %s: %w", asset, err)
		}
	}

	metrics.RecordFetch(asset, time.Since(start), err, reason)
	return body, err
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, string, error) {
	reason := ""
	body, err := f.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			reason = "request"
			return nil, fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("User-Agent", "ls-skyplan/"+version.Version+" (observation planner)")

		resp, err := f.client.Do(req)
		if err != nil {
			reason = "transport"
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			reason = "status"
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			reason = "read"
			return nil, fmt.Errorf("read response body: %w", err)
		}
		return b, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, "breaker_open", fmt.Errorf("%w: %s", ErrBreakerOpen, url)
	}
	return body, reason, err
}

// BreakerState returns the circuit breaker state for display.
func (f *Fetcher) BreakerState() string {
	return f.breaker.State().String()
}

// CatalogSource returns the configured catalog URL or path.
func (f *Fetcher) CatalogSource() string {
	return f.catalog
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
