package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ContextInterceptor mirrors Middleware.Authenticate for gRPC callers.
func ContextInterceptor(tokens *TokenManager, defaultMerchantID string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		uc := UserContext{MerchantID: defaultMerchantID}

		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get("x-merchant-id"); len(v) > 0 && v[0] != "" {
				uc.MerchantID = v[0]
			}
			if v := md.Get("authorization"); len(v) > 0 {
				token := strings.TrimPrefix(v[0], "Bearer ")
				claims, err := tokens.Parse(token)
				if err != nil {
					return nil, status.Error(codes.Unauthenticated, "invalid token")
				}
				uc = claims.UserContext()
			}
		}

		return handler(WithUser(ctx, uc), req)
	}
}
