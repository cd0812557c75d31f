// Package search integrates the third-party product search API and
// filters listings down to orderable products.
package search

import (
	"context"

	"github.com/vitwit/checkout/clients"
	"github.com/vitwit/checkout/logger"
	"github.com/vitwit/checkout/types"
)

// unitPriceKeys mark listings priced per measurement unit. Those cannot
// be ordered as a single line item and are dropped.
var unitPriceKeys = []string{"ounce", "lb", "gram"}

// Service wraps the search client with listing filters.
type Service struct {
	client *clients.SearchAPI
	log    logger.Logger
}

// NewService creates a product search service.
func NewService(client *clients.SearchAPI, log logger.Logger) *Service {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Service{client: client, log: log}
}

// Search queries product listings and returns orderable results: fresh
// grocery, Whole Foods, and unit-priced listings are excluded. The
// second return is the raw listing count before filtering, so callers
// can tell an empty result set from a fully filtered one.
func (s *Service) Search(ctx context.Context, query string) ([]types.Product, int, error) {
	resp, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	products := make([]types.Product, 0, len(resp.OrganicResults))
	for _, result := range resp.OrganicResults {
		if !orderable(result) {
			continue
		}
		products = append(products, types.Product{
			Title:   result.Title,
			Price:   result.Price,
			ASIN:    result.ASIN,
			Rating:  result.Rating,
			Reviews: result.Reviews,
			URL:     result.URL,
		})
	}

	s.log.Info("search completed", map[string]any{
		"query":    query,
		"total":    len(resp.OrganicResults),
		"returned": len(products),
	})
	return products, len(resp.OrganicResults), nil
}

func orderable(result clients.SearchResult) bool {
	if result.IsAmazonFresh || result.IsWholeFoodsMarket {
		return false
	}
	for _, key := range unitPriceKeys {
		if result.PricePer[key] != 0 {
			return false
		}
	}
	return true
}
