package main

import (
	"fmt"
	"net/http"
	"os"

	"stockbridge/internal/config"
	"stockbridge/internal/storage"
	"stockbridge/internal/storefront"
	"stockbridge/internal/sync"
	"stockbridge/internal/warehouse"
	"stockbridge/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	must(err)
	must(cfg.Require("WEBHOOK_SECRET", cfg.WebhookSecret))

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	syncer := sync.NewOrderSyncer(cfg, storefront.NewClient(cfg), warehouse.NewClient(cfg), db)
	handler := webhook.NewHandler(cfg, syncer)

	fmt.Printf("webhookd listening on %s\n", cfg.WebhookAddr)
	must(http.ListenAndServe(cfg.WebhookAddr, handler.Router()))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
