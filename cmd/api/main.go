package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/meistrid/go-catalog-sync/internal/catalog"
	"github.com/meistrid/go-catalog-sync/internal/config"
	"github.com/meistrid/go-catalog-sync/internal/events"
	"github.com/meistrid/go-catalog-sync/internal/httpx"
	kafkax "github.com/meistrid/go-catalog-sync/internal/kafka"
	"github.com/meistrid/go-catalog-sync/internal/postgres"
	"github.com/meistrid/go-catalog-sync/internal/redisx"
	"github.com/meistrid/go-catalog-sync/internal/stripe"
	"github.com/meistrid/go-catalog-sync/internal/syncer"
	"github.com/meistrid/go-catalog-sync/internal/syncqueue"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("db schema: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers untuk hasil sync
	pOK := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicSyncCompleted, 1024)
	pOK.Start(ctx)
	pFail := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicSyncFailed, 1024)
	pFail.Start(ctx)

	// Provider client
	sc := stripe.NewClient(cfg.StripeKey)
	if cfg.StripeAPIBase != "" {
		sc.APIBase = cfg.StripeAPIBase
	}

	// Service & handler
	catalogRepo := &catalog.Repo{DB: db}
	svc := &syncer.Service{
		Queue:        &syncqueue.Repo{DB: db},
		Catalog:      catalogRepo,
		Provider:     sc,
		Redis:        rdb,
		ProducerOK:   pOK,
		ProducerFail: pFail,
		ServiceName:  cfg.ServiceName,
		JobDelay:     cfg.SyncJobDelay,
	}
	router := httpx.NewRouter()
	sh := &httpx.SyncHandler{Syncer: svc, Catalog: catalogRepo}
	sh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pOK.Close() // tutup inbox -> flush & close writer
	pFail.Close()
	cancel()
	pOK.WaitClosed()
	pFail.WaitClosed()
}
