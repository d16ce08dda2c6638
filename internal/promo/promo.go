// Package promo holds the static promo code table and its discount rules.
// Codes do not expire and do not stack.
package promo

import (
	"errors"
	"sort"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/shopspring/decimal"
)

var ErrInvalidPromoCode = errors.New("invalid promo code")

var hundred = decimal.NewFromInt(100)

type Table struct {
	codes map[string]model.PromoCode
}

func NewTable(codes ...model.PromoCode) *Table {
	t := &Table{codes: make(map[string]model.PromoCode, len(codes))}
	for _, c := range codes {
		c.Code = normalize(c.Code)
		t.codes[c.Code] = c
	}
	return t
}

// DefaultTable is the storefront's built-in code list.
func DefaultTable() *Table {
	return NewTable(
		model.PromoCode{Code: "SAVE10", Type: model.DiscountPercentage, Value: decimal.NewFromInt(10), Description: "10% off your order"},
		model.PromoCode{Code: "SAVE20", Type: model.DiscountPercentage, Value: decimal.NewFromInt(20), Description: "20% off your order"},
		model.PromoCode{Code: "WELCOME15", Type: model.DiscountPercentage, Value: decimal.NewFromInt(15), Description: "15% off for new customers"},
		model.PromoCode{Code: "FLAT5", Type: model.DiscountFixed, Value: decimal.NewFromInt(5), Description: "$5 off your order"},
		model.PromoCode{Code: "FLAT10", Type: model.DiscountFixed, Value: decimal.NewFromInt(10), Description: "$10 off your order"},
	)
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (t *Table) Lookup(code string) (model.PromoCode, error) {
	p, ok := t.codes[normalize(code)]
	if !ok {
		return model.PromoCode{}, ErrInvalidPromoCode
	}
	return p, nil
}

func (t *Table) All() []model.PromoCode {
	out := make([]model.PromoCode, 0, len(t.codes))
	for _, p := range t.codes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Discount returns the amount p takes off subtotal, clamped to [0, subtotal]
// and rounded to cents.
func Discount(p model.PromoCode, subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.Sign() <= 0 {
		return decimal.Zero
	}

	var d decimal.Decimal
	switch p.Type {
	case model.DiscountPercentage:
		d = subtotal.Mul(p.Value).Div(hundred)
	case model.DiscountFixed:
		d = p.Value
	default:
		return decimal.Zero
	}

	if d.Sign() < 0 {
		d = decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	return d.Round(2)
}
