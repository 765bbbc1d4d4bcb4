// Package polymarket is the REST client for the Polymarket Gamma API, exposed
// to the pipeline as a listing source.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

const pageSize = 100

// maxPages bounds a single fetch so a scan cycle cannot spin on a pathological
// cursor; 50 pages covers the full active market set comfortably.
const maxPages = 50

// Client is the REST client for the Polymarket Gamma API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ domain.ListingSource = (*Client)(nil)

// NewClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Venue identifies this source.
func (c *Client) Venue() domain.VenueID {
	return domain.VenuePolymarket
}

// FetchListings pages through active markets and returns the ones that are
// open with 24h volume at or above minVolume.
func (c *Client) FetchListings(ctx context.Context, minVolume float64) ([]domain.Listing, error) {
	var listings []domain.Listing
	for page := range maxPages {
		markets, err := c.getMarkets(ctx, pageSize, page*pageSize)
		if err != nil {
			return nil, err
		}
		for i := range markets {
			listing := markets[i].ToListing()
			if !listing.Active || listing.Volume24h < minVolume {
				continue
			}
			listings = append(listings, listing)
		}
		if len(markets) < pageSize {
			break
		}
	}
	return listings, nil
}

// getMarkets returns one page of markets.
func (c *Client) getMarkets(ctx context.Context, limit, offset int) ([]APIMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("active", "true")
	params.Set("closed", "false")

	path := "/markets?" + params.Encode()

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("polymarket: get markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("polymarket: decode markets: %w", err)
	}

	return apiMarkets, nil
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx HTTP status codes to appropriate errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, truncate(body))
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, truncate(body))
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, truncate(body))
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, truncate(body))
	}
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
