package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

const userColumns = `id, merchant_id, email, password_hash, name, role, is_active, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO users (id, merchant_id, email, password_hash, name, role, is_active, created_at, updated_at)
        VALUES (:id, :merchant_id, :email, :password_hash, :name, :role, :is_active, :created_at, :updated_at)
    `, u)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return user.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByEmail(ctx context.Context, merchantID, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE merchant_id = $1 AND email = $2`, merchantID, email)
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE merchant_id = $1 AND id = $2`, merchantID, id)
}

func (r *PGRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var u model.User
	if err := r.DB.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
