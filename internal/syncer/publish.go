package syncer

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/meistrid/go-catalog-sync/internal/events"
	kafkax "github.com/meistrid/go-catalog-sync/internal/kafka"
	"github.com/meistrid/go-catalog-sync/internal/syncqueue"
)

func (s *Service) publishCompleted(job syncqueue.Job, stripeProductID, stripePriceID string) {
	if s.ProducerOK == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventSyncCompleted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: job.ProductID,
		Payload: kafkax.MustMarshal(events.SyncCompletedPayload{
			JobID:           job.ID,
			ProductID:       job.ProductID,
			Operation:       string(job.Operation),
			StripeProductID: stripeProductID,
			StripePriceID:   stripePriceID,
		}),
	}
	s.ProducerOK.Publish(events.PartitionKey(job.ProductID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventSyncCompleted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) publishFailed(job syncqueue.Job, cause error) {
	if s.ProducerFail == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventSyncFailed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: job.ProductID,
		Payload: kafkax.MustMarshal(events.SyncFailedPayload{
			JobID:      job.ID,
			ProductID:  job.ProductID,
			Operation:  string(job.Operation),
			Error:      cause.Error(),
			RetryCount: job.RetryCount,
			Terminal:   job.Status == syncqueue.StatusFailed,
		}),
	}
	s.ProducerFail.Publish(events.PartitionKey(job.ProductID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventSyncFailed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
