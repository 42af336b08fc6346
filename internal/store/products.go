package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"marketplace-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no row matches the id within the caller's store.
var ErrNotFound = errors.New("product not found")

// ErrEmptyPatch is returned when an update supplies no fields.
var ErrEmptyPatch = errors.New("empty product patch")

// CreateProduct inserts a new product row and reads back its created_at.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (id, store_id, name, description, price, stock, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return s.db.GetContext(ctx, &p.CreatedAt, query,
		p.ID, p.StoreID, p.Name, p.Description, p.Price, p.Stock, p.Status)
}

// GetProduct retrieves a product by id, scoped to the owning store.
func (s *Store) GetProduct(ctx context.Context, storeID, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 AND store_id = $2", id, storeID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetPublishedProduct retrieves a published product by id, regardless of
// store. This is the buyer-facing lookup used by the cart.
func (s *Store) GetPublishedProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 AND status = $2", id, models.ProductStatusPublished)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// buildProductPatch compiles the supplied patch fields into a parameterized
// SET clause. Column names come from a fixed whitelist, never from input.
func buildProductPatch(patch *models.ProductPatch) (string, []interface{}) {
	var (
		sets []string
		args []interface{}
	)

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}

	return strings.Join(sets, ", "), args
}

// UpdateProduct applies the supplied patch fields to a product, scoped to the
// owning store. An empty patch is rejected rather than compiled into a
// malformed statement.
func (s *Store) UpdateProduct(ctx context.Context, storeID, id string, patch *models.ProductPatch) error {
	setClause, args := buildProductPatch(patch)
	if len(args) == 0 {
		return ErrEmptyPatch
	}

	args = append(args, id, storeID)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d AND store_id = $%d",
		setClause, len(args)-1, len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProducts retrieves up to limit products for a store, newest first.
func (s *Store) ListProducts(ctx context.Context, storeID string, limit, offset int) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE store_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		storeID, limit, offset)
	return products, err
}

// DecrementStock deducts quantity from a product's stock within a transaction
// (FOR UPDATE lock). Stock never goes below zero; an oversold line deducts
// whatever remains.
func (s *Store) DecrementStock(ctx context.Context, productID string, quantity int) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var stock int
		err := tx.GetContext(ctx, &stock,
			"SELECT stock FROM products WHERE id = $1 FOR UPDATE", productID)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock product: %w", err)
		}

		if quantity > stock {
			quantity = stock
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1 WHERE id = $2",
			quantity, productID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		return nil
	})
}
