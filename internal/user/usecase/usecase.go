package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/user"
	"github.com/fekuna/omnipos-storefront-service/internal/user/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), bcrypt.DefaultCost)

type userUseCase struct {
	repo   user.Repository
	tokens *auth.TokenManager
	carts  user.CartMerger
	logger logger.ZapLogger
	cost   int
}

func NewUserUseCase(repo user.Repository, tokens *auth.TokenManager, carts user.CartMerger, log logger.ZapLogger) user.UseCase {
	return &userUseCase{
		repo:   repo,
		tokens: tokens,
		carts:  carts,
		logger: log,
		cost:   bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (uc *userUseCase) Register(ctx context.Context, input *dto.RegisterInput) (*dto.AuthResult, error) {
	u, err := uc.create(ctx, input.MerchantID, input.Email, input.Password, input.Name, model.RoleCustomer)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", u.ID), zap.String("merchant_id", u.MerchantID))

	uc.mergeCart(ctx, u, input.GuestCartID)
	return uc.issue(u)
}

// CreateUser adds an account with an explicit role. Self registration always
// yields customers, so this is how staff and admins come to exist.
func (uc *userUseCase) CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error) {
	switch input.Role {
	case model.RoleCustomer, model.RoleStaff, model.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: %q", user.ErrInvalidRole, input.Role)
	}
	u, err := uc.create(ctx, input.MerchantID, input.Email, input.Password, input.Name, input.Role)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("user created", zap.String("user_id", u.ID), zap.String("role", u.Role), zap.String("merchant_id", u.MerchantID))
	return u, nil
}

func (uc *userUseCase) create(ctx context.Context, merchantID, email, password, name, role string) (*model.User, error) {
	email = normalizeEmail(email)
	existing, err := uc.repo.FindByEmail(ctx, merchantID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, user.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		MerchantID:   merchantID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         role,
		IsActive:     true,
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *userUseCase) Login(ctx context.Context, input *dto.LoginInput) (*dto.AuthResult, error) {
	u, err := uc.repo.FindByEmail(ctx, input.MerchantID, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}

	hash := dummyHash
	if u != nil {
		hash = []byte(u.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(input.Password)); err != nil || u == nil || !u.IsActive {
		return nil, user.ErrInvalidCredentials
	}

	uc.mergeCart(ctx, u, input.GuestCartID)
	return uc.issue(u)
}

// mergeCart is best effort. A failed merge leaves the guest cart in place.
func (uc *userUseCase) mergeCart(ctx context.Context, u *model.User, guestCartID string) {
	if guestCartID == "" || uc.carts == nil {
		return
	}
	if _, err := uc.carts.MergeGuestCart(ctx, u.MerchantID, guestCartID, u.ID); err != nil {
		uc.logger.Warn("failed to merge guest cart", zap.String("user_id", u.ID), zap.Error(err))
	}
}

func (uc *userUseCase) issue(u *model.User) (*dto.AuthResult, error) {
	token, exp, err := uc.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (uc *userUseCase) Me(ctx context.Context, merchantID, userID string) (*dto.Profile, error) {
	u, err := uc.repo.FindByID(ctx, merchantID, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, user.ErrUserNotFound
	}

	perms := auth.PermissionsFor(u.Role)
	profile := &dto.Profile{User: u, Permissions: make([]string, 0, len(perms))}
	for _, p := range perms {
		profile.Permissions = append(profile.Permissions, string(p))
	}
	return profile, nil
}

