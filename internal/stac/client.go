package stac

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
)

// ErrNoItems is returned when a search matches nothing; callers treat it as
// fatal to session initialization.
var ErrNoItems = errors.New("stac: search returned no items")

// Client talks to one STAC API endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the given API root, e.g.
// "https://planetarycomputer.microsoft.com/api/stac/v1".
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: httpClient,
	}
}

// NewHTTPClient returns an OAuth2 client-credentials HTTP client when an id
// and secret are configured, otherwise a plain one. Catalogs like the
// Copernicus data space require the former; Planetary Computer does not.
func NewHTTPClient(ctx context.Context, clientID, clientSecret, tokenURL string) *http.Client {
	if clientID == "" {
		return &http.Client{}
	}
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return cfg.Client(ctx)
}

// Search issues one POST /search and follows "next" links until the result
// set is exhausted.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Item, error) {
	var items []Item

	url := c.endpoint + "/search"
	body := interface{}(req)

	for {
		page, err := c.searchPage(ctx, url, body)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Features...)

		next, ok := page.NextLink()
		if !ok {
			break
		}
		url = next.Href
		if next.Body != nil {
			body = next.Body
		}
	}

	return items, nil
}

func (c *Client) searchPage(ctx context.Context, url string, body interface{}) (*ItemCollection, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("catalog search returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var page ItemCollection
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &page, nil
}

// SelectClearest returns the item with the lowest eo:cloud_cover.
func SelectClearest(items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, ErrNoItems
	}
	best := items[0]
	for _, it := range items[1:] {
		if it.CloudCover() < best.CloudCover() {
			best = it
		}
	}
	return best, nil
}
