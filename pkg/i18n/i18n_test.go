package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestT(t *testing.T) {
	Init()

	assert.Equal(t, "Invalid promo code", T("en", MsgInvalidPromoCode, nil))
	assert.Equal(t, "Kode promo tidak valid", T("id-ID,id;q=0.9", MsgInvalidPromoCode, nil))
	assert.Equal(t, "Invalid promo code", T("fr", MsgInvalidPromoCode, nil))
	assert.Equal(t, "Order cannot move from delivered to pending",
		T("en", MsgInvalidTransition, map[string]interface{}{"From": "delivered", "To": "pending"}))
	assert.Equal(t, "no_such_message", T("en", "no_such_message", nil))
}
