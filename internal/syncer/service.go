package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/meistrid/go-catalog-sync/internal/catalog"
	"github.com/meistrid/go-catalog-sync/internal/redisx"
	"github.com/meistrid/go-catalog-sync/internal/stripe"
	"github.com/meistrid/go-catalog-sync/internal/syncqueue"
)

const (
	DefaultBatchSize = 10

	cleanupRetention  = 7 * 24 * time.Hour
	cleanupStuckAfter = 15 * time.Minute
)

type QueueRepo interface {
	Enqueue(ctx context.Context, productID string, op syncqueue.Operation, meta syncqueue.Metadata) (syncqueue.Job, error)
	Claim(ctx context.Context, n int) ([]syncqueue.Job, error)
	Complete(ctx context.Context, job syncqueue.Job, stripeProductID, stripePriceID string) error
	Fail(ctx context.Context, job syncqueue.Job, msg string) (syncqueue.Job, error)
	Stats(ctx context.Context) (syncqueue.Stats, error)
	Cleanup(ctx context.Context, retention, stuckAfter time.Duration) (syncqueue.CleanupResult, error)
}

type CatalogRepo interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
	ListOutOfSync(ctx context.Context) ([]catalog.Product, error)
	MarkPending(ctx context.Context, id string) error
}

// Provider is the slice of the payment-provider API the pipeline needs.
type Provider interface {
	CreateProduct(ctx context.Context, p stripe.ProductParams) (*stripe.Product, error)
	GetProduct(ctx context.Context, id string) (*stripe.Product, error)
	UpdateProduct(ctx context.Context, id string, p stripe.ProductParams) (*stripe.Product, error)
	DeactivateProduct(ctx context.Context, id string) (*stripe.Product, error)
	CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (*stripe.Price, error)
	GetPrice(ctx context.Context, id string) (*stripe.Price, error)
	DeactivatePrice(ctx context.Context, id string) (*stripe.Price, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Queue        QueueRepo
	Catalog      CatalogRepo
	Provider     Provider
	Redis        *redis.Client
	ProducerOK   Publisher // catalog.sync.completed
	ProducerFail Publisher // catalog.sync.failed
	ServiceName  string
	JobDelay     time.Duration // jeda antar job, rate-limit courtesy ke provider
	Currency     string        // default "eur"
}

type Result struct {
	JobID           string `json:"job_id"`
	ProductID       string `json:"product_id,omitempty"`
	Operation       string `json:"operation"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
	StripeProductID string `json:"stripe_product_id,omitempty"`
	StripePriceID   string `json:"stripe_price_id,omitempty"`
}

type Summary struct {
	Processed  int      `json:"processed"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ProcessQueue claims up to batchSize due jobs and runs them serially,
// oldest first. Satu job gagal tidak menggagalkan batch; hasilnya dicatat
// per job. Empty queue -> summary nol tanpa error.
func (s *Service) ProcessQueue(ctx context.Context, batchSize int) (Summary, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	jobs, err := s.Queue.Claim(ctx, batchSize)
	if err != nil {
		return Summary{}, fmt.Errorf("claim jobs: %w", err)
	}

	var sum Summary
	for i, job := range jobs {
		if i > 0 && s.JobDelay > 0 {
			select {
			case <-time.After(s.JobDelay):
			case <-ctx.Done():
				return sum, ctx.Err()
			}
		}

		res := Result{JobID: job.ID, ProductID: job.ProductID, Operation: string(job.Operation)}
		prodID, priceID, syncErr := s.syncJob(ctx, job)
		if syncErr != nil {
			failed, ferr := s.Queue.Fail(ctx, job, syncErr.Error())
			if ferr != nil {
				log.Printf("persist failure for job %s: %v", job.ID, ferr)
				failed = job
				failed.Status = syncqueue.StatusRetrying
			}
			res.Status = string(failed.Status)
			res.Error = syncErr.Error()
			s.publishFailed(failed, syncErr)
			sum.Failed++
		} else {
			if cerr := s.Queue.Complete(ctx, job, prodID, priceID); cerr != nil {
				// job tetap 'processing'; cleanup_queue akan re-queue nanti
				log.Printf("persist completion for job %s: %v", job.ID, cerr)
			}
			res.Status = string(syncqueue.StatusCompleted)
			res.StripeProductID = prodID
			res.StripePriceID = priceID
			s.publishCompleted(job, prodID, priceID)
			sum.Successful++
		}
		sum.Processed++
		sum.Results = append(sum.Results, res)
	}
	return sum, nil
}

// syncJob dispatches one job and returns the provider IDs to persist.
func (s *Service) syncJob(ctx context.Context, job syncqueue.Job) (string, string, error) {
	switch job.Operation {
	case syncqueue.OpDelete:
		return "", "", s.syncDelete(ctx, job)
	case syncqueue.OpCreate, syncqueue.OpUpdate:
		p, err := s.Catalog.Get(ctx, job.ProductID)
		if err != nil {
			return "", "", fmt.Errorf("load product %s: %w", job.ProductID, err)
		}
		if p.StripeProductID == "" {
			return s.syncCreate(ctx, p)
		}
		return s.syncUpdate(ctx, p)
	default:
		return "", "", fmt.Errorf("unknown operation %q", job.Operation)
	}
}

func (s *Service) syncCreate(ctx context.Context, p catalog.Product) (string, string, error) {
	name, err := catalog.SanitizeName(p.Title)
	if err != nil {
		return "", "", err
	}
	minor, err := catalog.ParsePrice(p.Price)
	if err != nil {
		return "", "", err
	}

	prod, err := s.Provider.CreateProduct(ctx, stripe.ProductParams{
		Name:        name,
		Description: p.Description,
		Images:      p.Images,
		Metadata:    s.productMetadata(p),
	})
	if err != nil {
		return "", "", fmt.Errorf("create provider product: %w", err)
	}
	price, err := s.Provider.CreatePrice(ctx, prod.ID, minor, s.currency())
	if err != nil {
		return "", "", fmt.Errorf("create provider price: %w", err)
	}
	return prod.ID, price.ID, nil
}

func (s *Service) syncUpdate(ctx context.Context, p catalog.Product) (string, string, error) {
	name, err := catalog.SanitizeName(p.Title)
	if err != nil {
		return "", "", err
	}
	minor, err := catalog.ParsePrice(p.Price)
	if err != nil {
		return "", "", err
	}

	remote, err := s.Provider.GetProduct(ctx, p.StripeProductID)
	if stripe.IsNotFound(err) {
		// dihapus manual di dashboard provider -> recreate, self-healing
		return s.syncCreate(ctx, p)
	}
	if err != nil {
		return "", "", fmt.Errorf("fetch provider product: %w", err)
	}

	if _, err := s.Provider.UpdateProduct(ctx, remote.ID, stripe.ProductParams{
		Name:        name,
		Description: p.Description,
		Images:      p.Images,
		Metadata:    s.productMetadata(p),
	}); err != nil {
		return "", "", fmt.Errorf("update provider product: %w", err)
	}

	priceID, err := s.reconcilePrice(ctx, remote.ID, p.StripePriceID, minor)
	if err != nil {
		return "", "", err
	}
	return remote.ID, priceID, nil
}

// reconcilePrice: harga sama -> reuse price id lama; beda -> price baru dan
// yang lama di-deactivate. Provider prices are immutable once created.
func (s *Service) reconcilePrice(ctx context.Context, stripeProductID, currentPriceID string, minor int64) (string, error) {
	var old *stripe.Price
	if currentPriceID != "" {
		pr, err := s.Provider.GetPrice(ctx, currentPriceID)
		switch {
		case err == nil && pr.Active && pr.UnitAmount == minor:
			return pr.ID, nil // unchanged, reuse
		case err == nil:
			old = pr
		case stripe.IsNotFound(err):
			// price dihapus/hilang di provider -> buat baru saja
		default:
			return "", fmt.Errorf("fetch provider price: %w", err)
		}
	}

	created, err := s.Provider.CreatePrice(ctx, stripeProductID, minor, s.currency())
	if err != nil {
		return "", fmt.Errorf("create provider price: %w", err)
	}
	if old != nil && old.Active {
		if _, err := s.Provider.DeactivatePrice(ctx, old.ID); err != nil && !stripe.IsNotFound(err) {
			return "", fmt.Errorf("deactivate old price %s: %w", old.ID, err)
		}
	}
	return created.ID, nil
}

// syncDelete deactivates the provider product named in the job metadata.
// Product row-nya biasanya sudah hilang, makanya id diambil dari metadata.
// Tanpa id -> no-op sukses (idempotent).
func (s *Service) syncDelete(ctx context.Context, job syncqueue.Job) error {
	id := job.Metadata.StripeProductID
	if id == "" {
		return nil
	}
	if _, err := s.Provider.DeactivateProduct(ctx, id); err != nil && !stripe.IsNotFound(err) {
		return fmt.Errorf("deactivate provider product %s: %w", id, err)
	}
	return nil
}

// QueueAllProducts scans for products missing provider IDs or not marked
// synced and enqueues one job per product. Guard Redis singkat plus unique
// index di queue bikin pemanggilan dobel aman.
func (s *Service) QueueAllProducts(ctx context.Context) (int, error) {
	if s.Redis != nil {
		ok, err := s.Redis.SetNX(ctx, redisx.KeyEnqueueGuard, "1", redisx.TTLEnqueueGuard).Result()
		if err == nil && !ok {
			return 0, nil // baru saja jalan, tidak perlu dobel
		}
	}

	prods, err := s.Catalog.ListOutOfSync(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan products: %w", err)
	}

	queued := 0
	for _, p := range prods {
		op := syncqueue.OpUpdate
		if p.StripeProductID == "" || p.StripePriceID == "" {
			op = syncqueue.OpCreate
		}
		if _, err := s.Queue.Enqueue(ctx, p.ID, op, syncqueue.Metadata{}); err != nil {
			if errors.Is(err, syncqueue.ErrAlreadyQueued) {
				continue
			}
			return queued, fmt.Errorf("enqueue product %s: %w", p.ID, err)
		}
		if err := s.Catalog.MarkPending(ctx, p.ID); err != nil {
			log.Printf("mark product %s pending: %v", p.ID, err)
		}
		queued++
	}
	return queued, nil
}

func (s *Service) Stats(ctx context.Context) (syncqueue.Stats, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, redisx.KeyQueueStats).Result(); err == nil && cached != "" {
			var st syncqueue.Stats
			if json.Unmarshal([]byte(cached), &st) == nil {
				return st, nil
			}
		}
	}
	st, err := s.Queue.Stats(ctx)
	if err != nil {
		return syncqueue.Stats{}, err
	}
	if s.Redis != nil {
		if b, err := json.Marshal(st); err == nil {
			_ = s.Redis.Set(ctx, redisx.KeyQueueStats, b, redisx.TTLStatsCache).Err()
		}
	}
	return st, nil
}

func (s *Service) Cleanup(ctx context.Context) (syncqueue.CleanupResult, error) {
	return s.Queue.Cleanup(ctx, cleanupRetention, cleanupStuckAfter)
}

func (s *Service) productMetadata(p catalog.Product) map[string]string {
	m := map[string]string{"product_id": p.ID}
	if p.Category != "" {
		m["category"] = p.Category
	}
	if p.Subcategory != "" {
		m["subcategory"] = p.Subcategory
	}
	return m
}

func (s *Service) currency() string {
	if s.Currency != "" {
		return s.Currency
	}
	return "eur"
}
