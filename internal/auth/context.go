package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

type ctxKey struct{}

type UserContext struct {
	MerchantID string
	UserID     string
	Role       string
	Email      string
}

func (u UserContext) Authenticated() bool {
	return u.UserID != ""
}

func WithUser(ctx context.Context, u UserContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func FromContext(ctx context.Context) (UserContext, bool) {
	u, ok := ctx.Value(ctxKey{}).(UserContext)
	return u, ok
}

// GetMerchantID reads the merchant set by the HTTP middleware or the gRPC
// interceptor, falling back to raw incoming metadata.
func GetMerchantID(ctx context.Context) string {
	if u, ok := FromContext(ctx); ok && u.MerchantID != "" {
		return u.MerchantID
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get("x-merchant-id"); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if u, ok := FromContext(ctx); ok {
		return u.UserID
	}
	return ""
}

func IsStaff(ctx context.Context) bool {
	u, _ := FromContext(ctx)
	return HasPermission(u.Role, PermOrdersManage)
}
