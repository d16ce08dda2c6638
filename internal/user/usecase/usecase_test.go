package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/user"
	"github.com/fekuna/omnipos-storefront-service/internal/user/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memRepo struct {
	mu    sync.Mutex
	users []*model.User
}

func (r *memRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = uuid.New().String()
	r.users = append(r.users, u)
	return nil
}

func (r *memRepo) FindByEmail(_ context.Context, merchantID, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.MerchantID == merchantID && u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memRepo) FindByID(_ context.Context, merchantID, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.MerchantID == merchantID && u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type mergeRecorder struct {
	guestID, userID string
	err             error
}

func (m *mergeRecorder) MergeGuestCart(_ context.Context, _, guestID, userID string) (*model.CartView, error) {
	m.guestID, m.userID = guestID, userID
	return &model.CartView{}, m.err
}

func newUseCase(merger user.CartMerger) (*userUseCase, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	uc := NewUserUseCase(&memRepo{}, tokens, merger, logger.NewNop()).(*userUseCase)
	uc.cost = bcrypt.MinCost
	return uc, tokens
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	uc, tokens := newUseCase(nil)

	res, err := uc.Register(ctx, &dto.RegisterInput{MerchantID: "m1", Email: " Ann@Example.com ", Password: "s3cret-pass", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.Equal(t, model.RoleCustomer, res.User.Role)
	assert.NotEqual(t, "s3cret-pass", res.User.PasswordHash)

	res, err = uc.Login(ctx, &dto.LoginInput{MerchantID: "m1", Email: "ANN@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)
	assert.Equal(t, "m1", claims.MerchantID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(nil)

	_, err := uc.Register(ctx, &dto.RegisterInput{MerchantID: "m1", Email: "a@b.c", Password: "password1"})
	require.NoError(t, err)
	_, err = uc.Register(ctx, &dto.RegisterInput{MerchantID: "m1", Email: "A@B.C", Password: "password2"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = uc.Register(ctx, &dto.RegisterInput{MerchantID: "m2", Email: "a@b.c", Password: "password3"})
	assert.NoError(t, err, "emails are unique per merchant")
}

func TestLogin_FailuresAreGeneric(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(nil)
	_, err := uc.Register(ctx, &dto.RegisterInput{MerchantID: "m1", Email: "a@b.c", Password: "password1"})
	require.NoError(t, err)

	_, wrongPassword := uc.Login(ctx, &dto.LoginInput{MerchantID: "m1", Email: "a@b.c", Password: "nope"})
	_, unknownEmail := uc.Login(ctx, &dto.LoginInput{MerchantID: "m1", Email: "x@b.c", Password: "password1"})

	assert.ErrorIs(t, wrongPassword, user.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, user.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogin_MergesGuestCart(t *testing.T) {
	ctx := context.Background()
	merger := &mergeRecorder{}
	uc, _ := newUseCase(merger)
	reg, err := uc.Register(ctx, &dto.RegisterInput{MerchantID: "m1", Email: "a@b.c", Password: "password1"})
	require.NoError(t, err)

	merger.err = errors.New("redis down")
	_, err = uc.Login(ctx, &dto.LoginInput{MerchantID: "m1", Email: "a@b.c", Password: "password1", GuestCartID: "guest-s1"})
	require.NoError(t, err, "merge failure does not block sign in")

	assert.Equal(t, "guest-s1", merger.guestID)
	assert.Equal(t, reg.User.ID, merger.userID)
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(nil)
	reg, err := uc.Register(ctx, &dto.RegisterInput{MerchantID: "m1", Email: "a@b.c", Password: "password1"})
	require.NoError(t, err)

	profile, err := uc.Me(ctx, "m1", reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", profile.Email)
	assert.Empty(t, profile.Permissions)

	_, err = uc.Me(ctx, "m1", "ghost")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestCreateUser_Roles(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(nil)

	admin, err := uc.CreateUser(ctx, &dto.CreateUserInput{MerchantID: "m1", Email: "Boss@b.c", Password: "password1", Name: "Boss", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, "boss@b.c", admin.Email)

	profile, err := uc.Me(ctx, "m1", admin.ID)
	require.NoError(t, err)
	assert.Contains(t, profile.Permissions, "users:manage")

	_, err = uc.CreateUser(ctx, &dto.CreateUserInput{MerchantID: "m1", Email: "x@b.c", Password: "password1", Role: "owner"})
	assert.ErrorIs(t, err, user.ErrInvalidRole)

	_, err = uc.CreateUser(ctx, &dto.CreateUserInput{MerchantID: "m1", Email: "boss@b.c", Password: "password1", Role: model.RoleStaff})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}
