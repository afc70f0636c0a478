package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/meistrid/go-catalog-sync/internal/catalog"
	"github.com/meistrid/go-catalog-sync/internal/config"
	"github.com/meistrid/go-catalog-sync/internal/events"
	kafkax "github.com/meistrid/go-catalog-sync/internal/kafka"
	"github.com/meistrid/go-catalog-sync/internal/postgres"
	"github.com/meistrid/go-catalog-sync/internal/redisx"
	"github.com/meistrid/go-catalog-sync/internal/stripe"
	"github.com/meistrid/go-catalog-sync/internal/syncer"
	"github.com/meistrid/go-catalog-sync/internal/syncqueue"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("db schema: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producers: completed & failed (dua topic berbeda)
	pOK := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicSyncCompleted, 1024)
	pOK.Start(ctx)
	pFail := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicSyncFailed, 1024)
	pFail.Start(ctx)

	// Provider client
	sc := stripe.NewClient(cfg.StripeKey)
	if cfg.StripeAPIBase != "" {
		sc.APIBase = cfg.StripeAPIBase
	}

	// Service
	svc := &syncer.Service{
		Queue:        &syncqueue.Repo{DB: db},
		Catalog:      &catalog.Repo{DB: db},
		Provider:     sc,
		Redis:        rdb,
		ProducerOK:   pOK,
		ProducerFail: pFail,
		ServiceName:  cfg.ServiceName + "-worker",
		JobDelay:     cfg.SyncJobDelay,
	}

	// Consumer: catalog.product.changed -> enqueue job
	group := getenv("SYNC_GROUP", "catalog-sync")
	workers := mustAtoi(os.Getenv("SYNC_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicProductChanged, workers)

	go func() {
		log.Printf("sync consumer started: group=%s topic=%s workers=%d", group, events.TopicProductChanged, workers)
		if err := cons.Start(ctx, svc.HandleProductChanged); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// Ticker pengganti cron: drain queue tiap interval.
	go func() {
		t := time.NewTicker(cfg.SyncInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				sum, err := svc.ProcessQueue(ctx, cfg.SyncBatchSize)
				if err != nil {
					log.Printf("process queue: %v", err)
					continue
				}
				if sum.Processed > 0 {
					log.Printf("processed=%d successful=%d failed=%d", sum.Processed, sum.Successful, sum.Failed)
				}
			}
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down worker...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	pOK.Close()
	pFail.Close()
	pOK.WaitClosed()
	pFail.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
