package product

import "fmt"

// ListCachePattern matches every cached product list of a merchant. Anything
// that moves stock or edits the catalog deletes these keys.
func ListCachePattern(merchantID string) string {
	return fmt.Sprintf("products:list:%s:*", merchantID)
}
