// Package blob reads pre-rendered rasters from an Azure-style blob account.
// The write path lives outside this system: images are populated by an
// external pipeline, this client only downloads them.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNotFound is returned when the requested object key does not exist.
var ErrNotFound = errors.New("blob: object not found")

// Client downloads objects from one container of a storage account.
type Client struct {
	accountURL string
	container  string
	sasToken   string
	httpClient *http.Client
}

// NewClient builds a client for https://{account}.blob.core.windows.net.
// sasToken may be empty for public containers.
func NewClient(account, container, sasToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		accountURL: fmt.Sprintf("https://%s.blob.core.windows.net", account),
		container:  container,
		sasToken:   strings.TrimPrefix(sasToken, "?"),
		httpClient: httpClient,
	}
}

// NewClientWithURL is NewClient with an explicit account URL, used in tests
// and for emulators.
func NewClientWithURL(accountURL, container, sasToken string, httpClient *http.Client) *Client {
	c := NewClient("", container, sasToken, httpClient)
	c.accountURL = strings.TrimRight(accountURL, "/")
	return c
}

// Get downloads one object by key, e.g. "NDVI_RdYlGn.tif".
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s", c.accountURL, c.container, key)
	if c.sasToken != "" {
		url += "?" + c.sasToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build blob request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob download failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("blob download returned status %d for %s", resp.StatusCode, key)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob body: %w", err)
	}
	return data, nil
}
