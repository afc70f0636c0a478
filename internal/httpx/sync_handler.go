package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meistrid/go-catalog-sync/internal/catalog"
	"github.com/meistrid/go-catalog-sync/internal/syncer"
)

const (
	ActionProcessQueue     = "process_queue"
	ActionQueueAllProducts = "queue_all_products"
	ActionGetQueueStats    = "get_queue_stats"
	ActionCleanupQueue     = "cleanup_queue"
)

type ProductLister interface {
	List(ctx context.Context) ([]catalog.Product, error)
}

type SyncHandler struct {
	Syncer  *syncer.Service
	Catalog ProductLister
}

type SyncRequest struct {
	Action    string `json:"action"`
	BatchSize int    `json:"batch_size,omitempty"`
}

func (h *SyncHandler) Register(r *chi.Mux) {
	r.Post("/sync", h.sync)
	r.Get("/sync/stats", h.stats)
	r.Get("/products", h.listProducts)
}

func (h *SyncHandler) sync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid json"})
		return
	}

	ctx := r.Context()
	switch req.Action {
	case ActionProcessQueue:
		sum, err := h.Syncer.ProcessQueue(ctx, req.BatchSize)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"processed":  sum.Processed,
			"successful": sum.Successful,
			"failed":     sum.Failed,
			"results":    sum.Results,
		})
	case ActionQueueAllProducts:
		n, err := h.Syncer.QueueAllProducts(ctx)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "queued": n})
	case ActionGetQueueStats:
		st, err := h.Syncer.Stats(ctx)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": st})
	case ActionCleanupQueue:
		res, err := h.Syncer.Cleanup(ctx)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": res.Deleted, "requeued": res.Requeued})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "unknown action"})
	}
}

func (h *SyncHandler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Syncer.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": st})
}

// listProducts: dipakai admin dashboard buat lihat sync_status per product.
func (h *SyncHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}
