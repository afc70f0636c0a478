package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAlreadyQueued = errors.New("product already has an active sync job")

type Repo struct{ DB *pgxpool.Pool }

const jobCols = `id, product_id, operation_type, status, retry_count,
	next_retry_at, error_message, metadata, created_at, processed_at`

// Enqueue inserts one pending job. A second enqueue for the same product
// while an active job exists hits the partial unique index and returns
// ErrAlreadyQueued. Delete jobs first supersede ALL active jobs for the
// product, 'processing' included: kalau tidak, insert-nya kena unique index
// dan event delete hilang, padahal product remote harus tetap di-deactivate.
// Worker yang lagi pegang job yang di-supersede akan gagal di guard
// `status='processing'` waktu Complete/Fail, itu memang disengaja.
func (r *Repo) Enqueue(ctx context.Context, productID string, op Operation, meta Metadata) (Job, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Job{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if op == OpDelete {
		if _, err := tx.Exec(ctx, `
			DELETE FROM sync_queue
			WHERE product_id=$1 AND status IN ('pending','retrying','processing')`, productID); err != nil {
			return Job{}, err
		}
	}

	job := Job{
		ID:        uuid.NewString(),
		ProductID: productID,
		Operation: op,
		Status:    StatusPending,
		Metadata:  meta,
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO sync_queue (id, product_id, operation_type, status, metadata)
		VALUES ($1, $2, $3, 'pending', $4)
		ON CONFLICT DO NOTHING
		RETURNING id, created_at, next_retry_at`,
		job.ID, productID, op, meta)
	if err := row.Scan(&job.ID, &job.CreatedAt, &job.NextRetryAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, ErrAlreadyQueued
		}
		return Job{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Claim marks up to n due jobs 'processing' and returns them, oldest first.
// Satu statement dengan SKIP LOCKED: dua invocation yang overlap tidak
// mungkin dapat job yang sama.
func (r *Repo) Claim(ctx context.Context, n int) ([]Job, error) {
	rows, err := r.DB.Query(ctx, `
		UPDATE sync_queue SET status='processing', claimed_at=now()
		WHERE id IN (
			SELECT id FROM sync_queue
			WHERE status IN ('pending','retrying')
			  AND retry_count < $1
			  AND next_retry_at <= now()
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobCols, MaxRetries, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Complete: tulis hasil sukses ke job dan product dalam satu transaksi.
func (r *Repo) Complete(ctx context.Context, job Job, stripeProductID, stripePriceID string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE sync_queue SET status='completed', error_message='', processed_at=now()
		WHERE id=$1 AND status='processing'`, job.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("job %s not in processing state", job.ID)
	}

	if job.Operation != OpDelete && job.ProductID != "" {
		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stripe_product_id=$2, stripe_price_id=$3, sync_status='synced',
			    last_synced_at=now(), updated_at=now()
			WHERE id=$1`, job.ProductID, stripeProductID, stripePriceID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Fail bumps the retry counter; under the cap the job goes back to
// 'retrying' with an exponential next_retry_at, otherwise it is terminal
// and the product is marked failed in the same transaction.
func (r *Repo) Fail(ctx context.Context, job Job, msg string) (Job, error) {
	job.RetryCount++
	job.ErrorMessage = msg
	if job.RetryCount < MaxRetries {
		job.Status = StatusRetrying
		job.NextRetryAt = time.Now().Add(Backoff(job.RetryCount))
	} else {
		job.Status = StatusFailed
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Job{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ct pgconn.CommandTag
	if job.Status == StatusFailed {
		ct, err = tx.Exec(ctx, `
			UPDATE sync_queue
			SET status='failed', retry_count=$2, error_message=$3, processed_at=now()
			WHERE id=$1 AND status='processing'`, job.ID, job.RetryCount, msg)
	} else {
		ct, err = tx.Exec(ctx, `
			UPDATE sync_queue
			SET status='retrying', retry_count=$2, error_message=$3, next_retry_at=$4
			WHERE id=$1 AND status='processing'`, job.ID, job.RetryCount, msg, job.NextRetryAt)
	}
	if err != nil {
		return Job{}, err
	}
	if ct.RowsAffected() == 0 {
		// job-nya sudah di-supersede delete job, jangan sentuh product
		return job, tx.Commit(ctx)
	}

	if job.Status == StatusFailed && job.ProductID != "" {
		// product row bisa saja sudah dihapus (delete job) -> abaikan rows affected
		if _, err := tx.Exec(ctx, `
			UPDATE products SET sync_status='failed', updated_at=now()
			WHERE id=$1`, job.ProductID); err != nil {
			return Job{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Job{}, err
	}
	return job, nil
}

func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	s := Stats{GeneratedAt: time.Now().UTC()}
	rows, err := r.DB.Query(ctx, `SELECT status, COUNT(*) FROM sync_queue GROUP BY status`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return Stats{}, err
		}
		switch Status(st) {
		case StatusPending:
			s.Pending = n
		case StatusProcessing:
			s.Processing = n
		case StatusCompleted:
			s.Completed = n
		case StatusRetrying:
			s.Retrying = n
		case StatusFailed:
			s.Failed = n
		}
		s.Total += n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	var oldest *time.Time
	err = r.DB.QueryRow(ctx,
		`SELECT MIN(created_at) FROM sync_queue WHERE status='pending'`).Scan(&oldest)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Stats{}, err
	}
	if oldest != nil {
		s.OldestPendingAge = time.Since(*oldest).Round(time.Second).String()
	}
	return s, nil
}

// Cleanup prunes terminal jobs past the retention window and re-queues jobs
// stuck in 'processing' (function timeout mati di tengah batch).
func (r *Repo) Cleanup(ctx context.Context, retention, stuckAfter time.Duration) (CleanupResult, error) {
	var res CleanupResult

	ct, err := r.DB.Exec(ctx, `
		DELETE FROM sync_queue
		WHERE status IN ('completed','failed') AND created_at < $1`,
		time.Now().Add(-retention))
	if err != nil {
		return res, err
	}
	res.Deleted = int(ct.RowsAffected())

	ct, err = r.DB.Exec(ctx, `
		UPDATE sync_queue
		SET status='pending', claimed_at=NULL, next_retry_at=now()
		WHERE status='processing' AND claimed_at < $1`,
		time.Now().Add(-stuckAfter))
	if err != nil {
		return res, err
	}
	res.Requeued = int(ct.RowsAffected())
	return res, nil
}

func scanJob(rows pgx.Rows) (Job, error) {
	var j Job
	var productID *string
	err := rows.Scan(&j.ID, &productID, &j.Operation, &j.Status, &j.RetryCount,
		&j.NextRetryAt, &j.ErrorMessage, &j.Metadata, &j.CreatedAt, &j.ProcessedAt)
	if err != nil {
		return Job{}, err
	}
	if productID != nil {
		j.ProductID = *productID
	}
	return j, nil
}
