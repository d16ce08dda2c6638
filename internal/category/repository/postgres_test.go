package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var navColumns = []string{"id", "merchant_id", "parent_id", "name", "description", "image_url", "sort_order", "is_active", "created_at", "updated_at", "product_count"}

func newRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestFindAll_RootCategories(t *testing.T) {
	repo, mock := newRepo(t)

	root := ""
	active := true
	f := &dto.CategoryFilters{MerchantID: "m1", ParentID: &root, IsActive: &active, Page: 2, PageSize: 5}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM categories c WHERE c.merchant_id = $1 AND c.parent_id IS NULL AND c.is_active = $2")).
		WithArgs("m1", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY c.sort_order ASC, c.name ASC LIMIT 5 OFFSET 5")).
		WithArgs("m1", true).
		WillReturnRows(sqlmock.NewRows(navColumns).AddRow("c6", "m1", nil, "Shoes", nil, nil, 0, true, now, now, 12))

	cats, total, err := repo.FindAll(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, cats, 1)
	assert.Nil(t, cats[0].ParentID)
	assert.Equal(t, 12, cats[0].ProductCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("AS product_count")).
		WithArgs("c1", "m1").
		WillReturnRows(sqlmock.NewRows(navColumns).AddRow("c1", "m1", "c0", "Boots", "Winter", nil, 2, true, now, now, 3))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.id = $1 AND c.merchant_id = $2")).
		WithArgs("ghost", "m1").
		WillReturnRows(sqlmock.NewRows(navColumns))

	c, err := repo.FindByID(context.Background(), "m1", "c1")
	require.NoError(t, err)
	require.NotNil(t, c.ParentID)
	assert.Equal(t, "c0", *c.ParentID)
	assert.Equal(t, 3, c.ProductCount)

	c, err = repo.FindByID(context.Background(), "m1", "ghost")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("INSERT INTO categories").WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &model.Category{BaseModel: model.BaseModel{ID: "c1"}, MerchantID: "m1", Name: "Shoes", IsActive: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
