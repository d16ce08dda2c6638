package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/promo"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type cartUseCase struct {
	repo     cart.Repository
	products cart.ProductReader
	promos   *promo.Table
	pricing  cart.Pricing
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewCartUseCase(repo cart.Repository, products cart.ProductReader, promos *promo.Table, pricing cart.Pricing, log logger.ZapLogger) cart.UseCase {
	return &cartUseCase{
		repo:     repo,
		products: products,
		promos:   promos,
		pricing:  pricing,
		logger:   log,
		now:      time.Now,
	}
}

func (uc *cartUseCase) Totals(c *model.Cart) model.CartTotals {
	return uc.pricing.Totals(c, uc.promos)
}

func (uc *cartUseCase) view(c *model.Cart) *model.CartView {
	return &model.CartView{Cart: c, Totals: uc.Totals(c)}
}

// load returns the stored cart or a fresh empty one. A cart stored under
// another merchant is treated as absent.
func (uc *cartUseCase) load(ctx context.Context, merchantID, cartID string) (*model.Cart, error) {
	if cartID == "" {
		return nil, cart.ErrNoCartIdentity
	}
	c, err := uc.repo.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.MerchantID != merchantID {
		return &model.Cart{ID: cartID, MerchantID: merchantID, Items: []model.CartItem{}}, nil
	}
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	return c, nil
}

func (uc *cartUseCase) save(ctx context.Context, c *model.Cart) (*model.CartView, error) {
	c.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Save(ctx, c); err != nil {
		uc.logger.Error("failed to save cart", zap.String("cart_id", c.ID), zap.Error(err))
		return nil, err
	}
	return uc.view(c), nil
}

func unitPrice(p *model.Product) decimal.Decimal {
	return decimal.NewFromFloat(p.BasePrice).Round(2)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// sellable returns the product when it can be put in a cart at all.
func (uc *cartUseCase) sellable(ctx context.Context, merchantID, productID string) (*model.Product, error) {
	p, err := uc.products.FindByID(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, cart.ErrProductNotFound
	}
	if !p.IsActive {
		return nil, cart.ErrProductInactive
	}
	return p, nil
}

func (uc *cartUseCase) GetCart(ctx context.Context, merchantID, cartID string) (*model.CartView, error) {
	c, err := uc.load(ctx, merchantID, cartID)
	if err != nil {
		return nil, err
	}
	return uc.view(c), nil
}

func (uc *cartUseCase) AddItem(ctx context.Context, merchantID, cartID, productID string, quantity int) (*model.CartView, error) {
	if quantity <= 0 {
		return nil, cart.ErrInvalidQuantity
	}
	c, err := uc.load(ctx, merchantID, cartID)
	if err != nil {
		return nil, err
	}
	p, err := uc.sellable(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}

	idx := c.Find(productID)
	total := quantity
	if idx >= 0 {
		total += c.Items[idx].Quantity
	}
	if total > p.Stock {
		return nil, cart.ErrInsufficientStock
	}

	if idx >= 0 {
		c.Items[idx].Quantity = total
		c.Items[idx].UnitPrice = unitPrice(p)
	} else {
		c.Items = append(c.Items, model.CartItem{
			ProductID: p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			ImageURL:  deref(p.ImageURL),
			UnitPrice: unitPrice(p),
			Quantity:  quantity,
			AddedAt:   uc.now().UTC(),
		})
	}
	return uc.save(ctx, c)
}

func (uc *cartUseCase) UpdateQuantity(ctx context.Context, merchantID, cartID, productID string, quantity int) (*model.CartView, error) {
	if quantity <= 0 {
		return uc.RemoveItem(ctx, merchantID, cartID, productID)
	}
	c, err := uc.load(ctx, merchantID, cartID)
	if err != nil {
		return nil, err
	}
	idx := c.Find(productID)
	if idx < 0 {
		return nil, cart.ErrItemNotFound
	}
	p, err := uc.sellable(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	if quantity > p.Stock {
		return nil, cart.ErrInsufficientStock
	}
	c.Items[idx].Quantity = quantity
	c.Items[idx].UnitPrice = unitPrice(p)
	return uc.save(ctx, c)
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, merchantID, cartID, productID string) (*model.CartView, error) {
	c, err := uc.load(ctx, merchantID, cartID)
	if err != nil {
		return nil, err
	}
	idx := c.Find(productID)
	if idx < 0 {
		return nil, cart.ErrItemNotFound
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return uc.save(ctx, c)
}

// Clear drops the cart. A cart stored under another merchant is left alone.
func (uc *cartUseCase) Clear(ctx context.Context, merchantID, cartID string) error {
	if cartID == "" {
		return cart.ErrNoCartIdentity
	}
	c, err := uc.repo.Get(ctx, cartID)
	if err != nil {
		return err
	}
	if c == nil || c.MerchantID != merchantID {
		return nil
	}
	return uc.repo.Delete(ctx, cartID)
}

// ApplyPromo replaces any previous code. An unknown code leaves the stored
// cart untouched.
func (uc *cartUseCase) ApplyPromo(ctx context.Context, merchantID, cartID, code string) (*model.CartView, error) {
	p, err := uc.promos.Lookup(code)
	if err != nil {
		return nil, err
	}
	c, err := uc.load(ctx, merchantID, cartID)
	if err != nil {
		return nil, err
	}
	c.PromoCode = p.Code
	return uc.save(ctx, c)
}

func (uc *cartUseCase) RemovePromo(ctx context.Context, merchantID, cartID string) (*model.CartView, error) {
	c, err := uc.load(ctx, merchantID, cartID)
	if err != nil {
		return nil, err
	}
	c.PromoCode = ""
	return uc.save(ctx, c)
}

// MergeGuestCart folds the guest cart into the user's cart and deletes it.
// Quantities add up but are capped at current stock; items that can no
// longer be sold are dropped. The user's own promo code wins.
func (uc *cartUseCase) MergeGuestCart(ctx context.Context, merchantID, guestID, userID string) (*model.CartView, error) {
	userCart, err := uc.load(ctx, merchantID, userID)
	if err != nil {
		return nil, err
	}
	if guestID == "" || guestID == userID {
		return uc.view(userCart), nil
	}

	guest, err := uc.repo.Get(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if guest == nil || guest.MerchantID != merchantID {
		return uc.view(userCart), nil
	}

	for _, item := range guest.Items {
		p, err := uc.sellable(ctx, merchantID, item.ProductID)
		if err != nil {
			uc.logger.Info("dropping guest cart item", zap.String("product_id", item.ProductID), zap.Error(err))
			continue
		}
		qty := item.Quantity
		idx := userCart.Find(item.ProductID)
		if idx >= 0 {
			qty += userCart.Items[idx].Quantity
		}
		if qty > p.Stock {
			qty = p.Stock
		}
		if qty <= 0 {
			continue
		}
		if idx >= 0 {
			userCart.Items[idx].Quantity = qty
			userCart.Items[idx].UnitPrice = unitPrice(p)
			continue
		}
		item.Quantity = qty
		item.UnitPrice = unitPrice(p)
		userCart.Items = append(userCart.Items, item)
	}
	if userCart.PromoCode == "" {
		userCart.PromoCode = guest.PromoCode
	}

	view, err := uc.save(ctx, userCart)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Delete(ctx, guestID); err != nil {
		uc.logger.Warn("failed to delete merged guest cart", zap.String("cart_id", guestID), zap.Error(err))
	}
	return view, nil
}
