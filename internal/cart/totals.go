package cart

import (
	"fmt"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/promo"
	"github.com/shopspring/decimal"
)

// Pricing holds the rates applied on top of the item subtotal.
type Pricing struct {
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.08"),
		ShippingFee:           decimal.RequireFromString("9.99"),
		FreeShippingThreshold: decimal.NewFromInt(100),
	}
}

// ParsePricing reads the rates from their decimal string form.
func ParsePricing(taxRate, shippingFee, freeShippingThreshold string) (Pricing, error) {
	var p Pricing
	var err error
	if p.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return p, fmt.Errorf("tax rate %q: %w", taxRate, err)
	}
	if p.ShippingFee, err = decimal.NewFromString(shippingFee); err != nil {
		return p, fmt.Errorf("shipping fee %q: %w", shippingFee, err)
	}
	if p.FreeShippingThreshold, err = decimal.NewFromString(freeShippingThreshold); err != nil {
		return p, fmt.Errorf("free shipping threshold %q: %w", freeShippingThreshold, err)
	}
	return p, nil
}

// Totals prices c. A promo code that is no longer in promos is ignored.
//
//	subtotal = Σ unit_price·quantity
//	shipping = 0 when empty or subtotal-discount ≥ threshold, else the flat fee
//	tax      = (subtotal-discount)·rate, rounded to cents
//	final    = max(0, subtotal-discount+shipping+tax)
func (p Pricing) Totals(c *model.Cart, promos *promo.Table) model.CartTotals {
	t := model.CartTotals{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Shipping: decimal.Zero,
		Tax:      decimal.Zero,
	}
	if c == nil {
		t.FinalTotal = decimal.Zero
		return t
	}

	for _, item := range c.Items {
		t.ItemCount += item.Quantity
		t.Subtotal = t.Subtotal.Add(item.LineTotal())
	}

	if c.PromoCode != "" && promos != nil {
		if code, err := promos.Lookup(c.PromoCode); err == nil {
			t.Discount = promo.Discount(code, t.Subtotal)
		}
	}

	taxable := t.Subtotal.Sub(t.Discount)
	if len(c.Items) > 0 && taxable.LessThan(p.FreeShippingThreshold) {
		t.Shipping = p.ShippingFee
	}
	t.Tax = taxable.Mul(p.TaxRate).Round(2)

	t.FinalTotal = taxable.Add(t.Shipping).Add(t.Tax)
	if t.FinalTotal.Sign() < 0 {
		t.FinalTotal = decimal.Zero
	}
	return t
}
