package user

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/user/dto"
)

type Repository interface {
	Create(ctx context.Context, u *model.User) error
	// FindByEmail and FindByID return nil when nothing matches.
	FindByEmail(ctx context.Context, merchantID, email string) (*model.User, error)
	FindByID(ctx context.Context, merchantID, id string) (*model.User, error)
}

// CartMerger folds a guest cart into a user's cart on sign in.
type CartMerger interface {
	MergeGuestCart(ctx context.Context, merchantID, guestID, userID string) (*model.CartView, error)
}

type UseCase interface {
	Register(ctx context.Context, input *dto.RegisterInput) (*dto.AuthResult, error)
	Login(ctx context.Context, input *dto.LoginInput) (*dto.AuthResult, error)
	Me(ctx context.Context, merchantID, userID string) (*dto.Profile, error)
	CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error)
}
