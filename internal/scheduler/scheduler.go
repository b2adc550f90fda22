package scheduler

import (
	"context"
	"fmt"
	"time"

	"stockbridge/internal/config"
	"stockbridge/internal/storage"
	"stockbridge/internal/storefront"
	"stockbridge/internal/sync"
	"stockbridge/internal/warehouse"
)

// Service runs the sync on a fixed interval. It assumes it is the only
// instance scheduled against its store; there is no cross-process lock.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("sync cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.ListenIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	wh := warehouse.NewClient(s.cfg)
	sf := storefront.NewClient(s.cfg)

	reconciler := sync.NewReconciler(s.cfg, wh, sf, sf, s.db)
	if _, err := reconciler.Run(ctx, sync.Options{}); err != nil {
		return err
	}

	if s.cfg.ListenSyncOrders {
		syncer := sync.NewOrderSyncer(s.cfg, sf, wh, s.db)
		if _, err := syncer.SyncRecent(ctx, sync.Options{}); err != nil {
			return err
		}
	}

	fmt.Printf("sync cycle done store=%s\n", s.cfg.StoreName)
	return nil
}
