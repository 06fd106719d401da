package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"product-catalog/internal/catalog"

	"github.com/lib/pq"
)

const healthCheckTimeout = 2 * time.Second

const productColumns = `id, name, model, description, price, category, brand, stock,
	availability, featured, rgb, rating, review_count, tags, created_at, updated_at`

// predicateFields whitelists the columns the query builder may filter on.
// Anything outside this set is a programming error, not user input.
var predicateFields = map[string]struct{}{
	"category":     {},
	"brand":        {},
	"availability": {},
	"featured":     {},
	"rgb":          {},
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	query := `
		INSERT INTO products (name, model, description, price, category, brand, stock,
			availability, featured, rgb, rating, review_count, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + productColumns

	row := r.db.QueryRowContext(ctx, query,
		p.Name, p.Model, p.Description, p.Price, p.Category, p.Brand, p.Stock,
		p.Availability, p.Featured, p.RGB, p.Rating, p.ReviewCount,
		pq.Array(p.Tags), p.CreatedAt, p.UpdatedAt,
	)

	created, err := scanProduct(row)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// Update applies the non-nil fields of the patch and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch catalog.ProductPatch, availability *string, updatedAt time.Time) (catalog.Product, error) {
	sets := []string{}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Model != nil {
		add("model", *patch.Model)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Brand != nil {
		add("brand", *patch.Brand)
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}
	if patch.Featured != nil {
		add("featured", *patch.Featured)
	}
	if patch.RGB != nil {
		add("rgb", *patch.RGB)
	}
	if patch.Rating != nil {
		add("rating", *patch.Rating)
	}
	if patch.ReviewCount != nil {
		add("review_count", *patch.ReviewCount)
	}
	if patch.Tags != nil {
		add("tags", pq.Array(*patch.Tags))
	}
	if availability != nil {
		add("availability", *availability)
	}
	add("updated_at", updatedAt)

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), productColumns,
	)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, fmt.Errorf("update product %s: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return catalog.ErrNotFound
	}

	return nil
}

// Find executes an ordered conjunctive predicate list against the
// collection. Only whitelisted equality predicates are accepted.
func (r *PostgresRepository) Find(ctx context.Context, preds []catalog.Predicate) ([]catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := make([]any, 0, len(preds))
	clauses := make([]string, 0, len(preds))

	for _, p := range preds {
		if _, ok := predicateFields[p.Field]; !ok {
			return nil, fmt.Errorf("unsupported filter field %q", p.Field)
		}
		if p.Op != catalog.OpEq {
			return nil, fmt.Errorf("unsupported filter operator %q", p.Op)
		}
		args = append(args, p.Value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", p.Field, len(args)))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	return r.queryProducts(ctx, query, args...)
}

// List returns one page ordered by creation time descending. The cursor is
// opaque to callers; an empty cursor starts from the newest record.
func (r *PostgresRepository) List(ctx context.Context, pageSize int, cursor string) ([]catalog.Product, string, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}

	if cursor != "" {
		after, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("decode cursor: %w", err)
		}
		args = append(args, after.CreatedAt, after.ID)
		query += ` WHERE (created_at, id) < ($1, $2)`
	}

	args = append(args, pageSize)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	items, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(items) > 0 {
		last := items[len(items)-1]
		next = encodeCursor(cursorPos{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return items, next, nil
}

func (r *PostgresRepository) Featured(ctx context.Context, limit int) ([]catalog.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE featured = true
		ORDER BY rating DESC
		LIMIT $1`
	return r.queryProducts(ctx, query, limit)
}

func (r *PostgresRepository) ByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE category = $1
		ORDER BY rating DESC`
	return r.queryProducts(ctx, query, category)
}

// All scans the entire collection; used only by the stats aggregation.
func (r *PostgresRepository) All(ctx context.Context) ([]catalog.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products`)
}

func (r *PostgresRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) queryProducts(ctx context.Context, query string, args ...any) ([]catalog.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	list := make([]catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Model, &p.Description, &p.Price, &p.Category, &p.Brand,
		&p.Stock, &p.Availability, &p.Featured, &p.RGB, &p.Rating, &p.ReviewCount,
		pq.Array(&p.Tags), &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
