// Package seed loads a YAML catalog file into a running storefront through its
// HTTP API, so seeded data passes the same validation and cache invalidation
// as admin edits.
package seed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/fekuna/omnipos-storefront-service/pkg/apiclient"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const categoriesPath = "/api/v1/categories"

type File struct {
	Warehouses []Warehouse `yaml:"warehouses"`
	Categories []Category  `yaml:"categories"`
	Products   []Product   `yaml:"products"`
}

type Warehouse struct {
	Code    string `yaml:"code" json:"code" validate:"required,max=32"`
	Name    string `yaml:"name" json:"name" validate:"required"`
	Address string `yaml:"address" json:"address,omitempty"`
}

type Category struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	ImageURL    string     `yaml:"image_url"`
	SortOrder   int        `yaml:"sort_order"`
	Children    []Category `yaml:"children"`
}

type Product struct {
	SKU          string  `yaml:"sku"`
	Barcode      string  `yaml:"barcode"`
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	Category     string  `yaml:"category"`
	BasePrice    float64 `yaml:"base_price"`
	CostPrice    float64 `yaml:"cost_price"`
	Stock        int     `yaml:"stock"`
	ReorderPoint int     `yaml:"reorder_point"`
	ImageURL     string  `yaml:"image_url"`
}

// Load parses a seed file.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

type Result struct {
	Created map[string]int `json:"created"`
	Skipped map[string]int `json:"skipped"`
}

func newResult() *Result {
	return &Result{Created: map[string]int{}, Skipped: map[string]int{}}
}

type categoryRecord struct {
	ID       string  `json:"id" validate:"required"`
	ParentID *string `json:"parent_id"`
	Name     string  `json:"name"`
}

type categoryList struct {
	Items []categoryRecord `json:"items"`
}

type categoryBody struct {
	ParentID    *string `json:"parent_id,omitempty"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	SortOrder   int     `json:"sort_order"`
}

type productBody struct {
	CategoryID   string  `json:"category_id,omitempty"`
	SKU          string  `json:"sku" validate:"required"`
	Barcode      string  `json:"barcode,omitempty"`
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description,omitempty"`
	BasePrice    float64 `json:"base_price" validate:"gte=0"`
	CostPrice    float64 `json:"cost_price" validate:"gte=0"`
	Stock        int     `json:"stock" validate:"gte=0"`
	ReorderPoint int     `json:"reorder_point" validate:"gte=0"`
	ImageURL     string  `json:"image_url,omitempty"`
}

type created struct {
	ID string `json:"id"`
}

// Seeder is idempotent: records that already exist (by warehouse code,
// category name under the same parent, or product SKU) are skipped.
type Seeder struct {
	client *apiclient.Client
	query  *apiclient.QueryClient
	logger logger.ZapLogger
}

func NewSeeder(client *apiclient.Client, query *apiclient.QueryClient, log logger.ZapLogger) *Seeder {
	return &Seeder{client: client, query: query, logger: log}
}

func (s *Seeder) Run(ctx context.Context, f *File) (*Result, error) {
	res := newResult()
	for _, w := range f.Warehouses {
		if err := s.warehouse(ctx, w, res); err != nil {
			return res, err
		}
	}
	for _, c := range f.Categories {
		if err := s.category(ctx, c, nil, res); err != nil {
			return res, err
		}
	}
	for _, p := range f.Products {
		if err := s.product(ctx, p, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func isConflict(err error) bool {
	var httpErr *apiclient.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusConflict
}

func (s *Seeder) warehouse(ctx context.Context, w Warehouse, res *Result) error {
	_, err := apiclient.Do[Warehouse, created](ctx, s.client, apiclient.Request[Warehouse]{
		Method: http.MethodPost,
		Path:   "/api/v1/warehouses",
		Body:   &w,
	})
	switch {
	case isConflict(err):
		res.Skipped["warehouses"]++
		return nil
	case err != nil:
		return fmt.Errorf("warehouse %s: %w", w.Code, err)
	}
	res.Created["warehouses"]++
	s.logger.Info("seeded warehouse", zap.String("code", w.Code))
	return nil
}

func (s *Seeder) categories(ctx context.Context) ([]categoryRecord, error) {
	list, err := apiclient.Query[categoryList](ctx, s.query, apiclient.Request[apiclient.NoBody]{Path: categoriesPath})
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Seeder) category(ctx context.Context, c Category, parentID *string, res *Result) error {
	existing, err := s.categories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}

	var id string
	for _, rec := range existing {
		if rec.Name == c.Name && sameParent(rec.ParentID, parentID) {
			id = rec.ID
			break
		}
	}

	if id == "" {
		out, err := apiclient.Do[categoryBody, created](ctx, s.client, apiclient.Request[categoryBody]{
			Method: http.MethodPost,
			Path:   categoriesPath,
			Body: &categoryBody{
				ParentID:    parentID,
				Name:        c.Name,
				Description: c.Description,
				ImageURL:    c.ImageURL,
				SortOrder:   c.SortOrder,
			},
		})
		if err != nil {
			return fmt.Errorf("category %s: %w", c.Name, err)
		}
		s.query.Invalidate(categoriesPath)
		id = out.ID
		res.Created["categories"]++
		s.logger.Info("seeded category", zap.String("name", c.Name), zap.String("id", id))
	} else {
		res.Skipped["categories"]++
	}

	for _, child := range c.Children {
		if err := s.category(ctx, child, &id, res); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) categoryID(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	existing, err := s.categories(ctx)
	if err != nil {
		return "", fmt.Errorf("list categories: %w", err)
	}
	for _, rec := range existing {
		if rec.Name == name {
			return rec.ID, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", name)
}

func (s *Seeder) product(ctx context.Context, p Product, res *Result) error {
	categoryID, err := s.categoryID(ctx, p.Category)
	if err != nil {
		return fmt.Errorf("product %s: %w", p.SKU, err)
	}

	_, err = apiclient.Do[productBody, created](ctx, s.client, apiclient.Request[productBody]{
		Method: http.MethodPost,
		Path:   "/api/v1/products",
		Body: &productBody{
			CategoryID:   categoryID,
			SKU:          p.SKU,
			Barcode:      p.Barcode,
			Name:         p.Name,
			Description:  p.Description,
			BasePrice:    p.BasePrice,
			CostPrice:    p.CostPrice,
			Stock:        p.Stock,
			ReorderPoint: p.ReorderPoint,
			ImageURL:     p.ImageURL,
		},
	})
	switch {
	case isConflict(err):
		res.Skipped["products"]++
		return nil
	case err != nil:
		return fmt.Errorf("product %s: %w", p.SKU, err)
	}
	res.Created["products"]++
	return nil
}

// Login exchanges credentials for a bearer token.
func Login(ctx context.Context, c *apiclient.Client, email, password string) (string, error) {
	type loginBody struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type tokenBody struct {
		Token string `json:"token" validate:"required"`
	}
	out, err := apiclient.Do[loginBody, tokenBody](ctx, c, apiclient.Request[loginBody]{
		Method: http.MethodPost,
		Path:   "/api/v1/auth/login",
		Body:   &loginBody{Email: email, Password: password},
	})
	if err != nil {
		return "", err
	}
	return out.Token, nil
}
