package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pool runs background tasks such as media cleanup and periodic jobs and
// waits for them on shutdown.
type Pool struct {
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	stop   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewPool creates a new worker pool
func NewPool(logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		stop:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Submit runs task in its own goroutine. Tasks submitted after Shutdown
// has started are dropped.
func (p *Pool) Submit(task func(ctx context.Context)) {
	p.spawn(func() { task(p.ctx) })
}

// SubmitWithTimeout runs task with a context that expires after timeout
func (p *Pool) SubmitWithTimeout(timeout time.Duration, task func(ctx context.Context)) {
	p.spawn(func() {
		ctx, cancel := context.WithTimeout(p.ctx, timeout)
		defer cancel()
		task(ctx)
	})
}

// Every runs job every interval until Shutdown. A failing run is logged and
// the schedule continues.
func (p *Pool) Every(name string, interval time.Duration, job func(ctx context.Context) error) {
	if interval <= 0 {
		p.logger.Info("⏸️ [Worker] Periodic job disabled", "job", name)
		return
	}

	p.spawn(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		p.logger.Info("⏱️ [Worker] Periodic job scheduled", "job", name, "interval", interval)
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				if err := job(p.ctx); err != nil {
					p.logger.Error("❌ [Worker] Periodic job failed", "job", name, "error", err)
				}
			}
		}
	})
}

func (p *Pool) spawn(run func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.Warn("⚠️ [Worker] Pool is shut down, task dropped")
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("❌ [Worker] Task panicked", "panic", r)
			}
		}()
		run()
	}()
}

// Context returns the pool's context. It is cancelled when Shutdown gives up
// waiting.
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Shutdown stops periodic jobs and waits up to timeout for running tasks.
// Tasks still running afterwards see their context cancelled.
func (p *Pool) Shutdown(timeout time.Duration) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.stop)
	p.mu.Unlock()

	p.logger.Info("🛑 [Worker] Initiating graceful shutdown...")
	defer p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("✅ [Worker] All background tasks completed")
	case <-time.After(timeout):
		p.logger.Warn("⚠️ [Worker] Shutdown timeout exceeded, some tasks may not have completed",
			"timeout", timeout,
		)
	}
}
