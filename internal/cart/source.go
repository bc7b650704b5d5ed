// Package cart reads cart contents and catalog data for quote computations.
package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cedran/backend-frete/internal/quote"
)

// ErrNotFound indicates the requested cart or product could not be located.
// It wraps the quote package's sentinel so the payload builder skips missing
// products instead of failing the whole quote.
var ErrNotFound = fmt.Errorf("cart: %w", quote.ErrProductNotFound)

// Source reads carts, items and products from Postgres. It backs both the
// cart accessor and the category resolver of the quote service.
type Source struct {
	pool *pgxpool.Pool
}

// NewSource constructs a Source backed by a pgx connection pool.
func NewSource(pool *pgxpool.Pool) *Source {
	return &Source{pool: pool}
}

// AllItems lists cart rows in insertion order.
func (s *Source) AllItems(ctx context.Context, cartID string) ([]quote.LineItem, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("cart: source not configured")
	}
	id, err := uuid.Parse(cartID)
	if err != nil {
		return nil, fmt.Errorf("cart: parse cart id: %w", err)
	}
	rows, err := s.pool.Query(ctx, `SELECT product_id, product_type, weight, qty, price, COALESCE(parent_sku, '')
FROM cart_items WHERE cart_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []quote.LineItem
	for rows.Next() {
		var (
			item      quote.LineItem
			productID uuid.UUID
			kind      string
		)
		if err := rows.Scan(&productID, &kind, &item.Weight, &item.Qty, &item.Price, &item.ParentSKU); err != nil {
			return nil, err
		}
		item.ProductID = productID.String()
		item.Type = quote.ProductType(kind)
		items = append(items, item)
	}
	return items, rows.Err()
}

// ProductByID loads one catalog product with its raw attribute values.
func (s *Source) ProductByID(ctx context.Context, id string) (quote.Product, error) {
	if s == nil || s.pool == nil {
		return quote.Product{}, errors.New("cart: source not configured")
	}
	pid, err := uuid.Parse(id)
	if err != nil {
		return quote.Product{}, fmt.Errorf("cart: parse product id: %w", err)
	}
	var (
		p       quote.Product
		kind    string
		special sql.NullFloat64
	)
	err = s.pool.QueryRow(ctx, `SELECT id, sku, product_type, final_price, special_price
FROM products WHERE id = $1`, pid).Scan(&pid, &p.SKU, &kind, &p.FinalPrice, &special)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quote.Product{}, ErrNotFound
		}
		return quote.Product{}, err
	}
	p.ID = pid.String()
	p.Type = quote.ProductType(kind)
	if special.Valid {
		p.SpecialPrice = special.Float64
		p.HasSpecialPrice = true
	}

	attrRows, err := s.pool.Query(ctx, `SELECT name, value FROM product_attributes WHERE product_id = $1`, pid)
	if err != nil {
		return quote.Product{}, err
	}
	defer attrRows.Close()
	p.Attributes = make(map[string]string)
	for attrRows.Next() {
		var name, value string
		if err := attrRows.Scan(&name, &value); err != nil {
			return quote.Product{}, err
		}
		p.Attributes[name] = value
	}
	return p, attrRows.Err()
}

// Discounts returns the cart-level subtotal and applied discount.
func (s *Source) Discounts(ctx context.Context, cartID string) (quote.DiscountContext, error) {
	if s == nil || s.pool == nil {
		return quote.DiscountContext{}, errors.New("cart: source not configured")
	}
	id, err := uuid.Parse(cartID)
	if err != nil {
		return quote.DiscountContext{}, fmt.Errorf("cart: parse cart id: %w", err)
	}
	var d quote.DiscountContext
	err = s.pool.QueryRow(ctx, `SELECT subtotal_amount, discount_amount FROM carts WHERE id = $1`, id).
		Scan(&d.SubtotalAmount, &d.DiscountAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quote.DiscountContext{}, ErrNotFound
		}
		return quote.DiscountContext{}, err
	}
	return d, nil
}

// ProductCategories resolves category names through the catalog tables. Used
// when no category attribute mapping is configured on the carrier.
func (s *Source) ProductCategories(ctx context.Context, p quote.Product, composite bool) ([]string, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("cart: source not configured")
	}
	pid, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("cart: parse product id: %w", err)
	}
	rows, err := s.pool.Query(ctx, `SELECT c.name FROM product_categories pc
JOIN categories c ON c.id = pc.category_id
WHERE pc.product_id = $1 ORDER BY c.name`, pid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
