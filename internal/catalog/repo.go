package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, title, description, price, images, category, subcategory,
	available, stripe_product_id, stripe_price_id, sync_status, last_synced_at,
	created_at, updated_at`

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ListOutOfSync: semua product yang belum punya id provider lengkap atau
// statusnya bukan 'synced'. Dipakai queue_all_products.
func (r *Repo) ListOutOfSync(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+productCols+` FROM products
		WHERE stripe_product_id IS NULL
		   OR stripe_price_id IS NULL
		   OR sync_status <> 'synced'
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *Repo) MarkPending(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE products SET sync_status='pending', updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var stripeProduct, stripePrice *string
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Images,
		&p.Category, &p.Subcategory, &p.Available, &stripeProduct, &stripePrice,
		&p.SyncStatus, &p.LastSyncedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if stripeProduct != nil {
		p.StripeProductID = *stripeProduct
	}
	if stripePrice != nil {
		p.StripePriceID = *stripePrice
	}
	return p, nil
}
