package i18n

import (
	"embed"
	"encoding/json"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message IDs shared by handlers.
const (
	MsgInvalidCredentials  = "invalid_credentials"
	MsgInvalidPromoCode    = "invalid_promo_code"
	MsgInsufficientStock   = "insufficient_stock"
	MsgProductNotFound     = "product_not_found"
	MsgCategoryNotFound    = "category_not_found"
	MsgOrderNotFound       = "order_not_found"
	MsgWarehouseNotFound   = "warehouse_not_found"
	MsgCartEmpty           = "cart_empty"
	MsgCartItemNotFound    = "cart_item_not_found"
	MsgProductInactive     = "product_inactive"
	MsgInvalidTransition   = "invalid_status_transition"
	MsgEmailTaken          = "email_taken"
	MsgSKUTaken            = "sku_taken"
	MsgBarcodeTaken        = "barcode_taken"
	MsgValidationFailed    = "validation_failed"
	MsgInvalidBody         = "invalid_request_body"
	MsgUnauthorized        = "unauthorized"
	MsgForbidden           = "forbidden"
	MsgNotFound            = "not_found"
	MsgRateLimited         = "rate_limited"
	MsgSystemBusy          = "system_busy"
	MsgInternal            = "internal_error"
	MsgCategoryCycle       = "category_cycle"
	MsgSameWarehouse       = "same_warehouse"
	MsgWarehouseCodeTaken  = "warehouse_code_taken"
	MsgStockNegative       = "stock_negative"
	MsgWarehouseNotEmpty   = "warehouse_not_empty"
	MsgCartSessionRequired = "cart_session_required"
)

var (
	mu     sync.RWMutex
	bundle *goi18n.Bundle
)

// Init builds the bundle from the embedded en and id locales.
func Init() {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, name := range []string{"locales/active.en.json", "locales/active.id.json"} {
		// embedded files are part of the binary, a failure here is a build defect
		if _, err := b.LoadMessageFileFS(localeFS, name); err != nil {
			panic(err)
		}
	}

	mu.Lock()
	bundle = b
	mu.Unlock()
}

// Load merges an additional message file from disk into the bundle.
func Load(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if bundle == nil {
		return errNotInitialized
	}
	_, err := bundle.LoadMessageFile(path)
	return err
}

// T localizes messageID for the Accept-Language style lang list. Unknown ids are
// returned verbatim so a missing translation never hides the error.
func T(lang, messageID string, data map[string]interface{}) string {
	mu.RLock()
	b := bundle
	mu.RUnlock()
	if b == nil {
		return messageID
	}

	loc := goi18n.NewLocalizer(b, lang)
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}

type initError string

func (e initError) Error() string { return string(e) }

const errNotInitialized = initError("i18n: bundle not initialized")
