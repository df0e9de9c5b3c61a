package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/flatlogic/usermgmt-backend/internal/model"
)

// ProductRepo persists the trivial demo catalog.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productColumns = "id, title, price, description, img, created_at, updated_at"

func scanProduct(scan func(dest ...any) error) (model.Product, error) {
	var (
		p           model.Product
		description sql.NullString
		img         sql.NullString
	)
	err := scan(&p.ID, &p.Title, &p.Price, &description, &img, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Product{}, err
	}
	p.Description = description.String
	p.Img = img.String
	return p, nil
}

// FindAll returns the whole catalog, newest first.
func (r *ProductRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindByID fetches one product; sql.ErrNoRows when absent.
func (r *ProductRepo) FindByID(ctx context.Context, id string) (model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id)
	return scanProduct(row.Scan)
}

// Create inserts a product and returns the stored row.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (id, title, price, description, img) VALUES (?,?,?,?,?)",
		p.ID, p.Title, p.Price, nullable(p.Description), nullable(p.Img))
	if err != nil {
		return model.Product{}, err
	}
	return r.FindByID(ctx, p.ID)
}

// Update rewrites a product's fields; sql.ErrNoRows when the id is unknown.
func (r *ProductRepo) Update(ctx context.Context, id string, p model.Product) (model.Product, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET title=?, price=?, description=?, img=? WHERE id=?",
		p.Title, p.Price, nullable(p.Description), nullable(p.Img), id)
	if err := oneRowAffected(res, err); err != nil {
		return model.Product{}, err
	}
	return r.FindByID(ctx, id)
}

// Delete removes a product; sql.ErrNoRows when the id is unknown.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	return oneRowAffected(res, err)
}
