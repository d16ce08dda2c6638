package model

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

type User struct {
	BaseModel
	MerchantID   string `db:"merchant_id" json:"merchant_id"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Name         string `db:"name" json:"name"`
	Role         string `db:"role" json:"role"`
	IsActive     bool   `db:"is_active" json:"is_active"`
}
