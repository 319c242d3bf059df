package scheduler

import (
	"time"

	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CartSweeper periodically deletes cart lines that have not been touched
// for longer than maxAge. Abandoned carts otherwise accumulate forever
// because carts only clear on order placement.
type CartSweeper struct {
	cron     *cron.Cron
	cartRepo repository.CartRepository
	spec     string
	maxAge   time.Duration
}

func NewCartSweeper(cartRepo repository.CartRepository, spec string, maxAge time.Duration) *CartSweeper {
	return &CartSweeper{
		cron:     cron.New(),
		cartRepo: cartRepo,
		spec:     spec,
		maxAge:   maxAge,
	}
}

// Start registers the sweep job and starts the cron loop.
func (s *CartSweeper) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.Sweep)
	if err != nil {
		logger.Error("Failed to add cron job for cart sweep", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Cart sweeper started", map[string]interface{}{
		"spec":    s.spec,
		"max_age": s.maxAge.String(),
	})
	return nil
}

// Sweep deletes every cart line older than maxAge. Exposed so operators
// can trigger a run outside the schedule.
func (s *CartSweeper) Sweep() {
	cutoff := time.Now().Add(-s.maxAge)
	logger.Info("Starting stale cart sweep", map[string]interface{}{
		"cutoff": cutoff.Format(time.RFC3339),
	})

	removed, err := s.cartRepo.DeleteStale(cutoff)
	if err != nil {
		logger.Error("Stale cart sweep failed", err, nil)
		return
	}

	logger.Info("Stale cart sweep completed", map[string]interface{}{
		"removed": removed,
	})
}

// Stop halts the cron loop. Running jobs finish first.
func (s *CartSweeper) Stop() {
	logger.Info("Stopping cart sweeper", nil)
	s.cron.Stop()
	logger.Info("Cart sweeper stopped", nil)
}
