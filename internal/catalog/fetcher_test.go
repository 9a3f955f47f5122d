package catalog

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/litescript/ls-skyplan/internal/logging"
	"github.com/litescript/ls-skyplan/internal/metrics"
)

func TestFetcher_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "ls-skyplan/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		switch r.URL.Path {
		case "/catalog.csv":
			w.Write([]byte(sampleCatalog))
		case "/descriptions_fr.json":
			w.Write([]byte(`{"M31": "La galaxie d'Andromède."}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := NewFetcher(
		WithCatalogSource(server.URL+"/catalog.csv"),
		WithDescriptionsSource(server.URL+"/descriptions_{lang}.json"),
	)

	result := f.FetchCatalog(context.Background())
	if result.Error != nil {
		t.Fatalf("FetchCatalog failed: %v", result.Error)
	}
	if len(result.Entries) != 4 {
		t.Errorf("expected 4 entries, got %d", len(result.Entries))
	}
	if len(result.RawBytes) == 0 || result.FetchedAt.IsZero() {
		t.Error("raw bytes and fetch time should be set")
	}

	d, err := f.FetchDescriptions(context.Background(), "fr")
	if err != nil {
		t.Fatalf("FetchDescriptions failed: %v", err)
	}
	if d.Lookup("M31") == "" {
		t.Error("expected French description for M31")
	}

	if _, err := f.FetchDescriptions(context.Background(), "de"); err == nil {
		t.Error("expected error for missing language file")
	}
}

func TestFetcher_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.csv")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, src := range []string{path, "file://" + path} {
		result := NewFetcher(WithCatalogSource(src)).FetchCatalog(context.Background())
		if result.Error != nil {
			t.Fatalf("FetchCatalog(%s) failed: %v", src, result.Error)
		}
		if len(result.Entries) != 4 {
			t.Errorf("FetchCatalog(%s): %d entries", src, len(result.Entries))
		}
	}

	result := NewFetcher(WithCatalogSource(filepath.Join(dir, "missing.csv"))).FetchCatalog(context.Background())
	if !errors.Is(result.Error, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", result.Error)
	}
}

func TestFetcher_NoDescriptionsSource(t *testing.T) {
	d, err := NewFetcher().FetchDescriptions(context.Background(), "en")
	if err != nil || len(d) != 0 {
		t.Errorf("FetchDescriptions() = %v, %v; want empty, nil", d, err)
	}
}

func TestFetcher_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewFetcher(
		WithCatalogSource(server.URL+"/catalog.csv"),
		WithBreaker(2, time.Minute),
	)

	for i := 0; i < 2; i++ {
		result := f.FetchCatalog(context.Background())
		if result.Error == nil || errors.Is(result.Error, ErrBreakerOpen) {
			t.Fatalf("attempt %d: error = %v, want status error", i, result.Error)
		}
	}

	result := f.FetchCatalog(context.Background())
	if !errors.Is(result.Error, ErrBreakerOpen) {
		t.Errorf("third attempt error = %v, want ErrBreakerOpen", result.Error)
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}
	if f.BreakerState() != "open" {
		t.Errorf("BreakerState() = %q, want open", f.BreakerState())
	}
}

func TestFetcher_ReportsParseIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	csv := "Name;Magnitude;Type\n" +
		"M31;bright;0\n" +
		"Vulcan;1;1\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	before := testutil.ToFloat64(metrics.CatalogParseIssues.WithLabelValues("Magnitude"))

	var buf bytes.Buffer
	f := NewFetcher(
		WithCatalogSource(path),
		WithLogger(logging.NewWithFormat(logging.LevelWarn, logging.FormatJSON, &buf)),
	)
	result := f.FetchCatalog(context.Background())
	if result.Error != nil {
		t.Fatalf("FetchCatalog failed: %v", result.Error)
	}
	if len(result.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", result.Issues)
	}

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `row 1, Magnitude=\"bright\": not a number`, "unknown solar system body"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if got := testutil.ToFloat64(metrics.CatalogParseIssues.WithLabelValues("Magnitude")) - before; got != 1 {
		t.Errorf("Magnitude parse issues counted %v times, want 1", got)
	}
}
