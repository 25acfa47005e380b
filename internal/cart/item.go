package cart

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kayalabs/studiocart-backend/pkg/types"
)

// PriceValue accepts either a JSON number or a currency-formatted string
// such as "R200" or "1,200.50".
type PriceValue struct {
	raw string
	set bool
}

// NewPriceValue wraps a raw price for callers constructing inputs directly.
func NewPriceValue(raw string) PriceValue {
	return PriceValue{raw: raw, set: true}
}

func (p *PriceValue) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		p.raw = asString
		p.set = true
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err == nil {
		p.raw = asNumber.String()
		p.set = true
		return nil
	}
	// Anything else degrades to zero rather than failing the add.
	p.raw = ""
	p.set = true
	return nil
}

func (p PriceValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.raw)
}

// IsSet reports whether a value was supplied at all.
func (p PriceValue) IsSet() bool {
	return p.set
}

// Amount resolves the raw value to a non-negative decimal. Currency symbols,
// thousands separators and whitespace are stripped first; anything still
// unparsable resolves to zero. Never returns an error.
func (p PriceValue) Amount() decimal.Decimal {
	return ParsePrice(p.raw)
}

// ParsePrice normalizes a loosely formatted price into a non-negative
// decimal. Unparsable input resolves to zero.
func ParsePrice(raw string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == 'R' || r == ',':
			return -1
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// ItemInput is the loosely typed payload a line item is built from. Only the
// title is required; every other field has a defined default.
type ItemInput struct {
	Title           string     `json:"title" validate:"required"`
	Price           PriceValue `json:"price"`
	BasePrice       PriceValue `json:"basePrice"`
	Description     string     `json:"description"`
	ImageURL        string     `json:"imageUrl"`
	Tier            string     `json:"tier"`
	ServiceType     string     `json:"serviceType"`
	Info            string     `json:"info"`
	Addons          []string   `json:"addons"`
	Sections        int        `json:"sections"`
	SectionFeatures []string   `json:"sectionFeatures"`
}

// NormalizeItem converts the input into a canonical LineItem. Identity is
// assigned later by the owning store; the factory itself has no side
// effects and never fails.
func NormalizeItem(input ItemInput) types.LineItem {
	price := input.Price.Amount()

	basePrice := price
	if input.BasePrice.IsSet() {
		basePrice = input.BasePrice.Amount()
	}

	sections := input.Sections
	if sections < 1 {
		sections = 1
	}

	addons := input.Addons
	if addons == nil {
		addons = []string{}
	}
	features := input.SectionFeatures
	if features == nil {
		features = []string{}
	}

	return types.LineItem{
		Title:           strings.TrimSpace(input.Title),
		Price:           price,
		BasePrice:       basePrice,
		Description:     input.Description,
		ImageURL:        input.ImageURL,
		Tier:            input.Tier,
		ServiceType:     input.ServiceType,
		Info:            input.Info,
		Addons:          append([]string(nil), addons...),
		Sections:        sections,
		SectionFeatures: append([]string(nil), features...),
	}
}
