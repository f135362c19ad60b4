package stac

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Signer rewrites asset hrefs so they can be fetched. Catalogs that serve
// assets from private storage hand out short-lived tokens per collection.
type Signer interface {
	SignHref(ctx context.Context, href string) (string, error)
}

// NoopSigner returns hrefs unchanged.
type NoopSigner struct{}

func (NoopSigner) SignHref(_ context.Context, href string) (string, error) {
	return href, nil
}

// SASSigner appends a Planetary-Computer style shared-access-signature token
// to asset hrefs. Tokens are fetched per collection from the sign endpoint
// and cached until shortly before expiry.
type SASSigner struct {
	endpoint   string
	collection string
	httpClient *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

type sasTokenResponse struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"msft:expiry"`
}

// NewSASSigner creates a signer for one collection. endpoint is the token
// API root, e.g. "https://planetarycomputer.microsoft.com/api/sas/v1/token".
func NewSASSigner(endpoint, collection string, httpClient *http.Client) *SASSigner {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &SASSigner{
		endpoint:   strings.TrimRight(endpoint, "/"),
		collection: collection,
		httpClient: httpClient,
	}
}

func (s *SASSigner) SignHref(ctx context.Context, href string) (string, error) {
	token, err := s.currentToken(ctx)
	if err != nil {
		return "", err
	}
	sep := "?"
	if strings.Contains(href, "?") {
		sep = "&"
	}
	return href + sep + token, nil
}

func (s *SASSigner) currentToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expiry.Add(-time.Minute)) {
		return s.token, nil
	}

	url := s.endpoint + "/" + s.collection
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var tr sasTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.Token == "" {
		return "", fmt.Errorf("token endpoint returned an empty token for collection %s", s.collection)
	}

	s.token = tr.Token
	s.expiry = tr.Expiry
	return s.token, nil
}
