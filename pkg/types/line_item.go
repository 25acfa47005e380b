package types

import "github.com/shopspring/decimal"

// LineItem is one configured design-service purchase held in a cart. The JSON
// field names match the document format the dashboard and admin console read.
type LineItem struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Price           decimal.Decimal `json:"price"`
	BasePrice       decimal.Decimal `json:"basePrice"`
	Description     string          `json:"description"`
	ImageURL        string          `json:"imageUrl"`
	Tier            string          `json:"tier"`
	ServiceType     string          `json:"serviceType"`
	Info            string          `json:"info"`
	Addons          []string        `json:"addons"`
	Sections        int             `json:"sections"`
	SectionFeatures []string        `json:"sectionFeatures"`
}

// Clone returns a deep copy so callers cannot mutate a stored item through
// the shared slices.
func (li LineItem) Clone() LineItem {
	out := li
	if li.Addons != nil {
		out.Addons = append([]string(nil), li.Addons...)
	}
	if li.SectionFeatures != nil {
		out.SectionFeatures = append([]string(nil), li.SectionFeatures...)
	}
	return out
}

// CartSnapshot is the full ordered cart at one instant, the unit of
// persistence. Snapshots are copies: neither the local mirror nor the remote
// document ever holds a live reference into a store.
type CartSnapshot []LineItem

// Total sums the member prices. An empty snapshot totals zero.
func (s CartSnapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s {
		total = total.Add(item.Price)
	}
	return total
}

// Clone deep-copies the snapshot.
func (s CartSnapshot) Clone() CartSnapshot {
	if s == nil {
		return nil
	}
	out := make(CartSnapshot, len(s))
	for i, item := range s {
		out[i] = item.Clone()
	}
	return out
}
