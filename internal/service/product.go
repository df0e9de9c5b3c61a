package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/flatlogic/usermgmt-backend/internal/config"
	"github.com/flatlogic/usermgmt-backend/internal/model"
	"github.com/flatlogic/usermgmt-backend/internal/notification"
	"github.com/flatlogic/usermgmt-backend/internal/repository"
)

// ProductService wraps the demo catalog.  Purely CRUD; the only business rule
// is translating missing rows into typed not-found errors.
type ProductService struct {
	cfg      config.Config
	products *repository.ProductRepo
}

func NewProductService(cfg config.Config, products *repository.ProductRepo) *ProductService {
	return &ProductService{cfg: cfg, products: products}
}

// List returns the whole catalog.
func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	return s.products.FindAll(ctx)
}

// Get returns one product or NotFoundError.
func (s *ProductService) Get(ctx context.Context, id string) (model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, notification.NewNotFoundError("")
	}
	return p, err
}

// Create inserts a new product; any client-supplied id is ignored.
func (s *ProductService) Create(ctx context.Context, p model.Product) (model.Product, error) {
	p.ID = ""
	return s.products.Create(ctx, p)
}

// Update rewrites a product or fails with NotFoundError.
func (s *ProductService) Update(ctx context.Context, id string, p model.Product) (model.Product, error) {
	out, err := s.products.Update(ctx, id, p)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, notification.NewNotFoundError("")
	}
	return out, err
}

// Delete removes a product or fails with NotFoundError.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return notification.NewNotFoundError("")
	}
	return err
}

// Images lists the bundled product image URLs from the public assets
// directory, skipping dotfiles.
func (s *ProductService) Images() ([]string, error) {
	dir := filepath.Join("public", "assets", "products")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	out := []string{}
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		out = append(out, s.cfg.APIURL+"/assets/products/"+e.Name())
	}
	return out, nil
}
