package auth

import (
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
)

const MerchantHeader = "X-Merchant-ID"

type Middleware struct {
	tokens            *TokenManager
	defaultMerchantID string
}

func NewMiddleware(tokens *TokenManager, defaultMerchantID string) *Middleware {
	return &Middleware{tokens: tokens, defaultMerchantID: defaultMerchantID}
}

// Authenticate attaches a UserContext to every request. Requests without a
// bearer token browse anonymously under the header or default merchant; a
// malformed or expired token is rejected outright.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uc := UserContext{MerchantID: r.Header.Get(MerchantHeader)}
		if uc.MerchantID == "" {
			uc.MerchantID = m.defaultMerchantID
		}

		if header := r.Header.Get("Authorization"); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httputil.WriteError(w, r, http.StatusUnauthorized, i18n.MsgUnauthorized, nil)
				return
			}
			claims, err := m.tokens.Parse(token)
			if err != nil {
				httputil.WriteError(w, r, http.StatusUnauthorized, i18n.MsgUnauthorized, nil)
				return
			}
			uc = claims.UserContext()
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), uc)))
	})
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, _ := FromContext(r.Context()); !u.Authenticated() {
			httputil.WriteError(w, r, http.StatusUnauthorized, i18n.MsgUnauthorized, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequirePermission(p Permission, next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := FromContext(r.Context())
		if !HasPermission(u.Role, p) {
			httputil.WriteError(w, r, http.StatusForbidden, i18n.MsgForbidden, nil)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
