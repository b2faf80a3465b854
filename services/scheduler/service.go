// Package scheduler runs periodic maintenance in the background. Its only
// task today is pruning expired entries from the metadata response cache.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Pruner removes expired entries and reports how many were dropped.
type Pruner interface {
	Prune() (int, error)
}

// Service manages the maintenance loop.
type Service struct {
	cache    Pruner
	interval time.Duration

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService creates a maintenance service pruning the cache every interval.
func NewService(cache Pruner, interval time.Duration) *Service {
	if interval < time.Minute {
		interval = 24 * time.Hour
	}
	return &Service{cache: cache, interval: interval}
}

// Start begins the background loop. Starting twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.loop()

	log.Println("[scheduler] maintenance service started")
	return nil
}

// Stop cancels the loop and waits for it to finish, bounded by ctx.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[scheduler] maintenance service stopped gracefully")
	case <-ctx.Done():
		log.Println("[scheduler] maintenance service stopped (timeout)")
	}

	s.running = false
	return nil
}

func (s *Service) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Prune once on start so restarts don't accumulate stale entries.
	s.pruneOnce()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.pruneOnce()
		}
	}
}

func (s *Service) pruneOnce() {
	removed, err := s.cache.Prune()
	if err != nil {
		log.Printf("[scheduler] cache prune failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[scheduler] pruned %d expired cache entries", removed)
	}
}
