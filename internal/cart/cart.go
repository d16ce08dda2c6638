// Package cart keeps shopping carts in the cache store and prices them.
package cart

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

const guestPrefix = "guest-"

// ID is the cart identity: the user id when signed in, otherwise the guest
// session. It returns "" when neither is known.
func ID(userID, session string) string {
	if userID != "" {
		return userID
	}
	if session != "" {
		return guestPrefix + session
	}
	return ""
}

func GuestID(session string) string {
	if session == "" {
		return ""
	}
	return guestPrefix + session
}

type Repository interface {
	// Get returns nil when no cart is stored under id.
	Get(ctx context.Context, id string) (*model.Cart, error)
	Save(ctx context.Context, c *model.Cart) error
	Delete(ctx context.Context, id string) error
}

// ProductReader is the slice of the catalog the cart needs.
type ProductReader interface {
	FindByID(ctx context.Context, merchantID, id string) (*model.Product, error)
}

type UseCase interface {
	GetCart(ctx context.Context, merchantID, cartID string) (*model.CartView, error)
	AddItem(ctx context.Context, merchantID, cartID, productID string, quantity int) (*model.CartView, error)
	UpdateQuantity(ctx context.Context, merchantID, cartID, productID string, quantity int) (*model.CartView, error)
	RemoveItem(ctx context.Context, merchantID, cartID, productID string) (*model.CartView, error)
	Clear(ctx context.Context, merchantID, cartID string) error
	ApplyPromo(ctx context.Context, merchantID, cartID, code string) (*model.CartView, error)
	RemovePromo(ctx context.Context, merchantID, cartID string) (*model.CartView, error)
	MergeGuestCart(ctx context.Context, merchantID, guestID, userID string) (*model.CartView, error)
	Totals(c *model.Cart) model.CartTotals
}
