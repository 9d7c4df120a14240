package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/fpaudit/internal/model"
	"github.com/ppiankov/fpaudit/internal/util"
)

const catalogJSON = `[
	{"id": 1, "name": "A", "latestFiles": [
		{"id": 10, "modules": [{"foldername": "A", "fingerprint": 111}, {"foldername": "A_Options", "fingerprint": 112}]}
	]},
	{"id": 2, "name": "B", "latestFiles": [
		{"id": 20, "modules": [{"foldername": "B", "fingerprint": 4294967295}]},
		{"id": 21, "modules": []}
	]}
]`

func newTestFetcher(serverURL string) *Fetcher {
	cfg := model.DefaultConfig()
	cfg.Catalog.URL = serverURL + "/api/v2/addon/search"
	return NewFetcher(&http.Client{Timeout: 5 * time.Second}, cfg.Catalog, "test-agent", 1<<20)
}

func TestFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.URL.Path != "/api/v2/addon/search" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("gameId") != "1" || q.Get("sort") != "4" || q.Get("pageSize") != "500" {
			t.Errorf("Unexpected query: %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("Unexpected User-Agent: %s", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, catalogJSON)
	}))
	defer server.Close()

	packages, err := newTestFetcher(server.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(packages) != 2 {
		t.Fatalf("Expected 2 packages, got %d", len(packages))
	}
	if packages[0].ID != 1 || packages[1].Name != "B" {
		t.Errorf("Unexpected packages: %+v", packages)
	}
	if got := packages[1].LatestFiles[0].Modules[0].Fingerprint; got != model.Fingerprint(4294967295) {
		t.Errorf("Expected max uint32 fingerprint, got %d", got)
	}
}

func TestFetcher_Fetch_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background())
	if err == nil {
		t.Fatal("Expected error for 503, got nil")
	}
	if !strings.Contains(err.Error(), "unexpected status: 503") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestFetcher_Fetch_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"error": "not a list"}`)
	}))
	defer server.Close()

	packages, err := newTestFetcher(server.URL).Fetch(context.Background())
	if err == nil {
		t.Fatal("Expected decode error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "decode catalog:") {
		t.Errorf("Unexpected error: %v", err)
	}
	if packages != nil {
		t.Errorf("Expected no partial catalog, got %d packages", len(packages))
	}
}

func TestFetcher_Fetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	_, err := newTestFetcher(serverURL).Fetch(context.Background())
	if err == nil {
		t.Fatal("Expected transport error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "fetch:") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestFetcher_SearchURL(t *testing.T) {
	tests := []struct {
		name    string
		sort    string
		want    string
		wantErr bool
	}{
		{name: "popularity", sort: "popularity", want: "https://catalog.test/search?gameId=1&pageSize=500&sort=4"},
		{name: "name", sort: "name", want: "https://catalog.test/search?gameId=1&pageSize=500&sort=3"},
		{name: "unknown", sort: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultConfig().Catalog
			cfg.URL = "https://catalog.test/search"
			cfg.Sort = tt.sort

			got, err := NewFetcher(http.DefaultClient, cfg, "ua", 1024).SearchURL()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for sort %q", tt.sort)
				}
				return
			}
			if err != nil {
				t.Fatalf("SearchURL failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("SearchURL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFetcher_Fetch_BodyTooLarge(t *testing.T) {
	entries := make([]string, 0, 40)
	for i := range 40 {
		entries = append(entries, fmt.Sprintf(`{"id": %d, "latestFiles": [{"modules": [{"fingerprint": %d}]}]}`, i, i))
	}
	body := "[" + strings.Join(entries, ",") + "]"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, body)
	}))
	defer server.Close()

	cfg := model.DefaultConfig()
	cfg.Catalog.URL = server.URL + "/api/v2/addon/search"
	fetcher := NewFetcher(&http.Client{Timeout: 5 * time.Second}, cfg.Catalog, "test-agent", 512)

	packages, err := fetcher.Fetch(context.Background())
	if packages != nil {
		t.Errorf("Expected no partial catalog, got %d packages", len(packages))
	}

	var tooLarge *util.BodyTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("Expected BodyTooLargeError, got %v", err)
	}
	if err.Error() != "read body: response exceeds 512 bytes" {
		t.Errorf("Unexpected error: %v", err)
	}
}
