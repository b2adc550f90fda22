package webhook

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"stockbridge/internal/config"
	"stockbridge/internal/storefront"
	"stockbridge/internal/sync"
)

const signatureHeader = "X-Shopify-Hmac-Sha256"

// Handler is the webhook admission gate: a request that fails signature
// verification never reaches the order syncer.
type Handler struct {
	cfg    config.Config
	syncer *sync.OrderSyncer
}

func NewHandler(cfg config.Config, syncer *sync.OrderSyncer) *Handler {
	return &Handler{cfg: cfg, syncer: syncer}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Post("/webhooks/orders/create", h.handleOrderCreate)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func (h *Handler) handleOrderCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	if !Verify(body, r.Header.Get(signatureHeader), h.cfg.WebhookSecret) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	order, err := storefront.ParseOrderPayload(body)
	if err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	// Ack before syncing; the platform retries webhooks that answer
	// slowly, and the sync dedupes on external reference anyway.
	w.WriteHeader(http.StatusOK)

	go func() {
		result, err := h.syncer.SyncParsedOrder(context.Background(), order, sync.Options{})
		if err != nil {
			fmt.Printf("webhook order sync error: %v\n", err)
			return
		}
		fmt.Printf("webhook order #%d -> %s\n", result.OrderNumber, result.State)
	}()
}
