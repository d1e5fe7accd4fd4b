package usecase

import (
	"sort"

	"github.com/spirittours/travelcore/internal/domain/entity"
)

// BestOffer is the cheapest offer found across every provider in an aggregate,
// with Savings measured against the mean price of all returned items
type BestOffer struct {
	Provider string             `json:"provider,omitempty"`
	Item     *entity.ResultItem `json:"item,omitempty"`
	Price    float64            `json:"price"`
	Currency string             `json:"currency,omitempty"`
	Savings  float64            `json:"savings"`
}

// BestPrice scans every item of every provider result and returns the minimum
// price seen. Ties break by lexicographic provider identity, then by item
// order within a provider, so repeated selection over the same aggregate is
// reproducible. An aggregate without items yields a zero offer, not an error.
func BestPrice(agg *entity.AggregateResult) *BestOffer {
	offer := &BestOffer{}
	if agg == nil {
		return offer
	}

	names := make([]string, 0, len(agg.Providers))
	for name := range agg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	var count int
	for _, name := range names {
		result := agg.Providers[name]
		for i := range result.Items {
			item := &result.Items[i]
			sum += item.Price
			count++
			if offer.Item == nil || item.Price < offer.Price {
				offer.Provider = name
				offer.Item = item
				offer.Price = item.Price
				offer.Currency = item.Currency
			}
		}
	}
	if count == 0 {
		return offer
	}
	offer.Savings = sum/float64(count) - offer.Price
	return offer
}
