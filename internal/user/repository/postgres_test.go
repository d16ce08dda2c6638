package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/user"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	err := repo.Create(context.Background(), &model.User{MerchantID: "m1", Email: "a@b.c", Role: model.RoleCustomer})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE merchant_id = $1 AND email = $2")).
		WithArgs("m1", "a@b.c").
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "email", "password_hash", "name", "role", "is_active", "created_at", "updated_at"}).
			AddRow("u1", "m1", "a@b.c", "hash", "Ann", "customer", true, now, now))

	u, err := repo.FindByEmail(context.Background(), "m1", "a@b.c")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_Missing(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE merchant_id = $1 AND id = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	u, err := repo.FindByID(context.Background(), "m1", "nope")
	require.NoError(t, err)
	assert.Nil(t, u)
}
