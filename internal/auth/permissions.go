package auth

import "github.com/fekuna/omnipos-storefront-service/internal/model"

type Permission string

const (
	PermProductsWrite   Permission = "products:write"
	PermCategoriesWrite Permission = "categories:write"
	PermInventoryRead   Permission = "inventory:read"
	PermInventoryWrite  Permission = "inventory:write"
	PermWarehousesWrite Permission = "warehouses:write"
	PermOrdersManage    Permission = "orders:manage"
	PermReportsRead     Permission = "reports:read"
	PermUsersManage     Permission = "users:manage"
)

var rolePermissions = map[string][]Permission{
	model.RoleAdmin: {
		PermProductsWrite, PermCategoriesWrite, PermInventoryRead, PermInventoryWrite,
		PermWarehousesWrite, PermOrdersManage, PermReportsRead, PermUsersManage,
	},
	model.RoleStaff: {
		PermProductsWrite, PermCategoriesWrite, PermInventoryRead, PermInventoryWrite,
		PermOrdersManage, PermReportsRead,
	},
	model.RoleCustomer: {},
}

func PermissionsFor(role string) []Permission {
	return rolePermissions[role]
}

func HasPermission(role string, p Permission) bool {
	for _, granted := range rolePermissions[role] {
		if granted == p {
			return true
		}
	}
	return false
}
