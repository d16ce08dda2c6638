package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func testUser(role string) *model.User {
	return &model.User{
		BaseModel:  model.BaseModel{ID: "u-1"},
		MerchantID: "m-1",
		Email:      "ana@example.com",
		Role:       role,
	}
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	tok, exp, err := tm.Issue(testUser(model.RoleStaff))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, UserContext{MerchantID: "m-1", UserID: "u-1", Role: model.RoleStaff, Email: "ana@example.com"}, claims.UserContext())
}

func TestTokenManager_RejectsExpiredAndForeign(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tok, _, err := tm.Issue(testUser(model.RoleCustomer))
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenManager("other-secret", time.Minute)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(model.RoleAdmin, PermUsersManage))
	assert.True(t, HasPermission(model.RoleStaff, PermInventoryWrite))
	assert.False(t, HasPermission(model.RoleStaff, PermUsersManage))
	assert.False(t, HasPermission(model.RoleCustomer, PermProductsWrite))
	assert.False(t, HasPermission("unknown", PermReportsRead))
}

func TestMiddleware_AnonymousAndBearer(t *testing.T) {
	i18n.Init()
	tm := NewTokenManager("secret", time.Hour)
	mw := NewMiddleware(tm, "default-merchant")

	var got UserContext
	h := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "default-merchant", got.MerchantID)
	assert.False(t, got.Authenticated())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(MerchantHeader, "m-9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "m-9", got.MerchantID)

	tok, _, err := tm.Issue(testUser(model.RoleCustomer))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "m-1", got.MerchantID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	i18n.Init()
	h := RequirePermission(PermReportsRead, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name string
		uc   *UserContext
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"customer", &UserContext{UserID: "u", Role: model.RoleCustomer}, http.StatusForbidden},
		{"staff", &UserContext{UserID: "u", Role: model.RoleStaff}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.uc != nil {
				req = req.WithContext(WithUser(req.Context(), *tc.uc))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestContextInterceptor(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	interceptor := ContextInterceptor(tm, "default-merchant")

	var seen string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = GetMerchantID(ctx)
		return nil, nil
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-merchant-id", "m-7"))
	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{}, handler)
	require.NoError(t, err)
	assert.Equal(t, "m-7", seen)

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
	_, err = interceptor(ctx, nil, &grpc.UnaryServerInfo{}, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
