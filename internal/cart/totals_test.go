package cart

import (
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/promo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(id, price string, qty int) model.CartItem {
	return model.CartItem{ProductID: id, UnitPrice: d(price), Quantity: qty}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: want %s, got %s", msg, want, got)
}

func TestTotals(t *testing.T) {
	promos := promo.DefaultTable()
	pricing := DefaultPricing()

	cases := []struct {
		name                                      string
		cart                                      model.Cart
		items                                     int
		subtotal, discount, shipping, tax, final string
	}{
		{
			name:     "empty cart costs nothing",
			cart:     model.Cart{},
			subtotal: "0", discount: "0", shipping: "0", tax: "0", final: "0",
		},
		{
			name:     "subtotal is sum of price times quantity",
			cart:     model.Cart{Items: []model.CartItem{item("a", "12.50", 2), item("b", "3.25", 4)}},
			items:    6,
			subtotal: "38", discount: "0", shipping: "9.99", tax: "3.04", final: "51.03",
		},
		{
			name:     "SAVE10 on 100 takes 10 and drops below free shipping",
			cart:     model.Cart{Items: []model.CartItem{item("a", "50", 2)}, PromoCode: "SAVE10"},
			items:    2,
			subtotal: "100", discount: "10", shipping: "9.99", tax: "7.2", final: "107.19",
		},
		{
			name:     "free shipping at threshold",
			cart:     model.Cart{Items: []model.CartItem{item("a", "100", 1)}},
			items:    1,
			subtotal: "100", discount: "0", shipping: "0", tax: "8", final: "108",
		},
		{
			name:     "fixed discount clamps to subtotal",
			cart:     model.Cart{Items: []model.CartItem{item("a", "4", 1)}, PromoCode: "flat10"},
			items:    1,
			subtotal: "4", discount: "4", shipping: "9.99", tax: "0", final: "9.99",
		},
		{
			name:     "retired promo code is ignored",
			cart:     model.Cart{Items: []model.CartItem{item("a", "10", 1)}, PromoCode: "GONE"},
			items:    1,
			subtotal: "10", discount: "0", shipping: "9.99", tax: "0.8", final: "20.79",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pricing.Totals(&tc.cart, promos)
			assert.Equal(t, tc.items, got.ItemCount)
			assertDec(t, tc.subtotal, got.Subtotal, "subtotal")
			assertDec(t, tc.discount, got.Discount, "discount")
			assertDec(t, tc.shipping, got.Shipping, "shipping")
			assertDec(t, tc.tax, got.Tax, "tax")
			assertDec(t, tc.final, got.FinalTotal, "final")
		})
	}
}

func TestTotals_FinalNeverNegative(t *testing.T) {
	pricing := Pricing{TaxRate: d("0.08"), ShippingFee: d("0"), FreeShippingThreshold: d("0")}
	promos := promo.NewTable(model.PromoCode{Code: "HUGE", Type: model.DiscountFixed, Value: d("1000")})

	got := pricing.Totals(&model.Cart{Items: []model.CartItem{item("a", "5", 1)}, PromoCode: "HUGE"}, promos)
	assert.True(t, got.FinalTotal.Sign() >= 0)
}

func TestParsePricing(t *testing.T) {
	p, err := ParsePricing("0.11", "5", "50")
	require.NoError(t, err)
	assertDec(t, "0.11", p.TaxRate, "tax rate")

	_, err = ParsePricing("abc", "5", "50")
	assert.Error(t, err)
}

func TestID(t *testing.T) {
	assert.Equal(t, "u1", ID("u1", "s1"))
	assert.Equal(t, "guest-s1", ID("", "s1"))
	assert.Equal(t, "", ID("", ""))
	assert.Equal(t, "", GuestID(""))
}
