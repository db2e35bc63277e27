package pokeapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dexterm/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "dexterm/1.0"
)

// Client fetches catalog and detail payloads from the PokeAPI.
// Implements domain.Client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a PokeAPI client for the given base URL
// (e.g. "https://pokeapi.co/api/v2").
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs a GET and returns the response body.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("pokeapi request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("pokeapi request failed", "url", reqURL, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrFetchFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("pokeapi request error", "status", resp.StatusCode, "url", reqURL)
		return nil, fmt.Errorf("%w: unexpected status code %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	return body, nil
}

// FetchCatalog fetches one page of the Pokémon list.
func (c *Client) FetchCatalog(ctx context.Context, offset, limit int) (*domain.Catalog, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.doRequest(ctx, fmt.Sprintf("%s/pokemon?%s", c.baseURL, query.Encode()))
	if err != nil {
		return nil, err
	}

	dto, err := decodeCatalog(body)
	if err != nil {
		c.logger.Error("catalog decode failed", "error", err, "bodyLen", len(body))
		return nil, err
	}

	return mapCatalog(dto), nil
}

// FetchPokemon fetches the detail record behind a catalog resource URL.
func (c *Client) FetchPokemon(ctx context.Context, resourceURL string) (*domain.Pokemon, error) {
	parsed, err := url.Parse(resourceURL)
	if err != nil || !parsed.IsAbs() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidURL, resourceURL)
	}

	body, err := c.doRequest(ctx, resourceURL)
	if err != nil {
		return nil, err
	}

	dto, err := decodeDetail(body)
	if err != nil {
		c.logger.Error("detail decode failed", "error", err, "url", resourceURL)
		return nil, err
	}

	return mapDetail(dto), nil
}
