package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/user"
	"github.com/fekuna/omnipos-storefront-service/internal/user/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	user.UseCase
	login  *dto.LoginInput
	create *dto.CreateUserInput
	err    error
}

func (s *stubUseCase) CreateUser(_ context.Context, in *dto.CreateUserInput) (*model.User, error) {
	s.create = in
	if s.err != nil {
		return nil, s.err
	}
	return &model.User{Email: in.Email, Role: in.Role, MerchantID: in.MerchantID}, nil
}

func (s *stubUseCase) Login(_ context.Context, in *dto.LoginInput) (*dto.AuthResult, error) {
	s.login = in
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AuthResult{Token: "tok", User: &model.User{Email: in.Email}}, nil
}

func (s *stubUseCase) Register(_ context.Context, in *dto.RegisterInput) (*dto.AuthResult, error) {
	return nil, s.err
}

func anonymous(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(auth.WithUser(req.Context(), auth.UserContext{MerchantID: "m1"}))
}

func TestLogin_PassesGuestCart(t *testing.T) {
	uc := &stubUseCase{}
	h := NewUserHandler(uc, logger.NewNop())
	rec := httptest.NewRecorder()

	req := anonymous(http.MethodPost, "/auth/login", `{"email":"a@b.c","password":"password1"}`)
	req.Header.Set("X-Cart-Session", "s1")
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guest-s1", uc.login.GuestCartID)
	assert.Equal(t, "m1", uc.login.MerchantID)
}

func TestLogin_InvalidCredentialsLocalized(t *testing.T) {
	i18n.Init()
	uc := &stubUseCase{err: user.ErrInvalidCredentials}
	h := NewUserHandler(uc, logger.NewNop())
	rec := httptest.NewRecorder()

	req := anonymous(http.MethodPost, "/auth/login", `{"email":"a@b.c","password":"wrong"}`)
	req.Header.Set("Accept-Language", "id")
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, i18n.MsgInvalidCredentials, body.Error.Code)
	assert.NotEqual(t, i18n.MsgInvalidCredentials, body.Error.Message)
}

func TestRegister_Validation(t *testing.T) {
	h := NewUserHandler(&stubUseCase{}, logger.NewNop())
	rec := httptest.NewRecorder()

	h.Register(rec, anonymous(http.MethodPost, "/auth/register", `{"email":"not-an-email","password":"short","name":"A"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error.Fields, "email")
	assert.Contains(t, body.Error.Fields, "password")
}

func TestRegister_EmailTaken(t *testing.T) {
	i18n.Init()
	h := NewUserHandler(&stubUseCase{err: user.ErrEmailTaken}, logger.NewNop())
	rec := httptest.NewRecorder()

	h.Register(rec, anonymous(http.MethodPost, "/auth/register", `{"email":"a@b.c","password":"password1","name":"Ann"}`))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateUser(t *testing.T) {
	i18n.Init()
	uc := &stubUseCase{}
	h := NewUserHandler(uc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.CreateUser(rec, anonymous(http.MethodPost, "/users", `{"email":"s@b.c","password":"password1","name":"Sam","role":"staff"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, model.RoleStaff, uc.create.Role)
	assert.Equal(t, "m1", uc.create.MerchantID)

	rec = httptest.NewRecorder()
	h.CreateUser(rec, anonymous(http.MethodPost, "/users", `{"email":"s@b.c","password":"password1","name":"Sam","role":"owner"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
