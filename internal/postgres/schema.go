package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the catalog and queue tables if they are missing.
// Safe to run on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price TEXT NOT NULL,
			images TEXT[] NOT NULL DEFAULT '{}',
			category TEXT NOT NULL DEFAULT '',
			subcategory TEXT NOT NULL DEFAULT '',
			available BOOLEAN NOT NULL DEFAULT TRUE,
			stripe_product_id TEXT,
			stripe_price_id TEXT,
			sync_status TEXT NOT NULL DEFAULT 'unsynced',
			last_synced_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_products_sync_status ON products(sync_status);
	`)
	if err != nil {
		return fmt.Errorf("create products table: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sync_queue (
			id UUID PRIMARY KEY,
			product_id UUID,
			operation_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			retry_count INT NOT NULL DEFAULT 0,
			next_retry_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			error_message TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			claimed_at TIMESTAMPTZ,
			processed_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_sync_queue_claim
			ON sync_queue(created_at) WHERE status IN ('pending','retrying');
		-- satu job aktif per product, biar enqueue ulang tidak dobel
		CREATE UNIQUE INDEX IF NOT EXISTS idx_sync_queue_active_product
			ON sync_queue(product_id) WHERE status IN ('pending','retrying','processing');
	`)
	if err != nil {
		return fmt.Errorf("create sync_queue table: %w", err)
	}
	return nil
}
