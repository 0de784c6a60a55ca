package repository

import (
	"context"
	"errors"
	"fmt"

	"instructor-portal/internal/data/entity"
	"instructor-portal/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ProductRepository interface {
	FindActive(ctx context.Context) ([]*entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
}

type productRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewProductRepository(db database.PgxIface, log *zap.Logger) ProductRepository {
	return &productRepository{
		db:  db,
		log: log.With(zap.String("repository", "product")),
	}
}

func (r *productRepository) FindActive(ctx context.Context) ([]*entity.Product, error) {
	query := `
		SELECT id, name, description, images, price_id, requires_instructor, active
		FROM products
		WHERE active = TRUE
		ORDER BY sort_order, name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list products", zap.Error(err))
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Images, &p.PriceID, &p.RequiresInstructor, &p.Active); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, name, description, images, price_id, requires_instructor, active
		FROM products
		WHERE id = $1 AND active = TRUE
	`

	var p entity.Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.Images, &p.PriceID, &p.RequiresInstructor, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find product", zap.Error(err), zap.String("product_id", id))
		return nil, fmt.Errorf("find product %s: %w", id, err)
	}

	return &p, nil
}
