package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/vitwit/checkout/logger"
	"github.com/vitwit/checkout/types"
)

const defaultSearchBaseURL = "https://www.searchapi.io"

// SearchResult is one organic listing as returned by the search API,
// including the flags the search service filters on.
type SearchResult struct {
	Title              string             `json:"title"`
	Price              float64            `json:"price"`
	ASIN               string             `json:"asin"`
	Rating             float64            `json:"rating"`
	Reviews            int                `json:"reviews"`
	URL                string             `json:"url"`
	IsAmazonFresh      bool               `json:"is_amazon_fresh"`
	IsWholeFoodsMarket bool               `json:"is_whole_foods_market"`
	PricePer           map[string]float64 `json:"price_per"`
}

// SearchResponse is the search API response envelope.
type SearchResponse struct {
	OrganicResults []SearchResult `json:"organic_results"`
}

// SearchAPI is a client for the third-party product search endpoint.
// Unlike the Crossmint API it authenticates with a bearer token.
type SearchAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logger.Logger
}

// NewSearchAPI creates a product search client. An empty baseURL selects
// the hosted search API.
func NewSearchAPI(baseURL, apiKey string, httpClient *http.Client, log logger.Logger) *SearchAPI {
	if baseURL == "" {
		baseURL = defaultSearchBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &SearchAPI{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  httpClient,
		log:     log,
	}
}

// Search runs an amazon_search query against amazon.com and returns the
// raw organic results.
func (s *SearchAPI) Search(ctx context.Context, query string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("engine", "amazon_search")
	params.Set("q", query)
	params.Set("amazon_domain", "amazon.com")
	params.Set("page", "1")

	endpoint := fmt.Sprintf("%s/api/v1/search?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrRemoteCallFailed,
			Message: fmt.Sprintf("build search request: %v", err),
		}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	s.log.Debug("search request", map[string]any{"query": query})

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrRemoteCallFailed,
			Message: fmt.Sprintf("search request failed: %v", err),
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrRemoteCallFailed,
			Message: fmt.Sprintf("read search response: %v", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &types.CheckoutError{
			Code:    types.ErrRemoteCallFailed,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, types.UnwrapRemoteMessage(string(raw))),
		}
	}

	var out SearchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrRemoteCallFailed,
			Message: fmt.Sprintf("malformed search response: %v", err),
		}
	}
	return &out, nil
}
