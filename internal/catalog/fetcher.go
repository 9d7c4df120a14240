// Package catalog loads the addon catalog and derives per-package fingerprints.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ppiankov/fpaudit/internal/model"
	"github.com/ppiankov/fpaudit/internal/util"
)

// Fetcher retrieves the package catalog from the search endpoint
type Fetcher struct {
	httpClient *http.Client
	cfg        model.CatalogConfig
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a new Fetcher using the shared HTTP client
func NewFetcher(httpClient *http.Client, cfg model.CatalogConfig, userAgent string, maxBytes int64) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		cfg:        cfg,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
	}
}

// SearchURL builds the catalog query URL from the configuration
func (f *Fetcher) SearchURL() (string, error) {
	parsed, err := url.Parse(f.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse catalog url: %w", err)
	}

	sort, ok := model.ParseCatalogSort(f.cfg.Sort)
	if !ok {
		return "", fmt.Errorf("unknown catalog sort: %q", f.cfg.Sort)
	}

	query := parsed.Query()
	query.Set("gameId", strconv.Itoa(f.cfg.GameID))
	query.Set("sort", strconv.Itoa(int(sort)))
	query.Set("pageSize", strconv.Itoa(f.cfg.PageSize))
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// Fetch retrieves and decodes the catalog. Any failure is fatal to the audit,
// so no partial catalog is ever returned.
func (f *Fetcher) Fetch(ctx context.Context) ([]model.Package, error) {
	searchURL, err := f.SearchURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := util.ReadBody(resp.Body, f.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var packages []model.Package
	if err := json.Unmarshal(body, &packages); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return packages, nil
}
