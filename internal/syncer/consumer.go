package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/meistrid/go-catalog-sync/internal/events"
	kafkax "github.com/meistrid/go-catalog-sync/internal/kafka"
	"github.com/meistrid/go-catalog-sync/internal/redisx"
	"github.com/meistrid/go-catalog-sync/internal/syncqueue"
)

// HandleProductChanged: dipasang sebagai handler consumer untuk
// catalog.product.changed. Admin backend publish event tiap product
// berubah; di sini diterjemahkan jadi job di sync queue.
func (s *Service) HandleProductChanged(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventProductChanged {
		return nil
	} // ignore

	// dedup via Redis (pakai event_id). Key-nya baru ditulis di bawah,
	// setelah enqueue berhasil; kalau ditulis di sini, error transien di DB
	// bikin redelivery berikutnya malah ke-skip dan event hilang.
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if s.Redis != nil {
		exists, _ := redisx.Exists(ctx, s.Redis, dkey)
		if exists {
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[events.ProductChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	var op syncqueue.Operation
	var meta syncqueue.Metadata
	switch p.Change {
	case events.ChangeCreated:
		op = syncqueue.OpCreate
	case events.ChangeUpdated:
		op = syncqueue.OpUpdate
	case events.ChangeDeleted:
		op = syncqueue.OpDelete
		meta.StripeProductID = p.StripeProductID
	default:
		return fmt.Errorf("unknown change kind %q", p.Change)
	}

	if _, err := s.Queue.Enqueue(ctx, p.ProductID, op, meta); err != nil {
		if !errors.Is(err, syncqueue.ErrAlreadyQueued) {
			return err
		}
		// job aktif untuk product ini sudah ada, event-nya tercakup
	} else if op != syncqueue.OpDelete {
		if err := s.Catalog.MarkPending(ctx, p.ProductID); err != nil {
			log.Printf("mark product %s pending: %v", p.ProductID, err)
		}
	}

	if s.Redis != nil {
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}
	return nil
}
