// Package cleanup runs the periodic background task that trims expired
// rate-limit window entries, reclaiming store space that the window-sum
// computation no longer needs.
package cleanup

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/samir-okafor/quotaguard/pkg/events"
	"github.com/samir-okafor/quotaguard/pkg/ratelimit"
	"github.com/samir-okafor/quotaguard/pkg/ratelimit/store"
)

// TickPeriod is the interval between trim passes.
const TickPeriod = 1 * time.Second

// Worker periodically trims every configured bucket's window. A trim
// failure is fatal: a cleanup worker that silently stops trimming lets the
// store grow without bound, which is worse than a visible crash.
type Worker struct {
	catalog *ratelimit.Catalog
	store   store.Store
	bus     events.Bus
	logger  *slog.Logger
	clock   func() time.Time

	// Exit is called on fatal store error; overridable in tests to avoid
	// terminating the test process.
	Exit func(code int)
}

// NewWorker builds a Worker over catalog and st. Run subscribes to bus's
// "shutdown" topic to know when to stop.
func NewWorker(catalog *ratelimit.Catalog, st store.Store, bus events.Bus, logger *slog.Logger) *Worker {
	return &Worker{
		catalog: catalog,
		store:   st,
		bus:     bus,
		logger:  logger,
		clock:   time.Now,
		Exit:    os.Exit,
	}
}

// Run ticks every TickPeriod, trimming every configured bucket, until ctx is
// canceled or a shutdown event arrives on the bus.
func (w *Worker) Run(ctx context.Context) {
	shutdown := make(chan struct{})
	_ = w.bus.Subscribe(ctx, "shutdown", func(ctx context.Context, e events.Event) error {
		close(shutdown)
		return nil
	})

	ticker := time.NewTicker(TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-shutdown:
			return
		case <-ticker.C:
			if err := w.tick(ctx); err != nil {
				w.logger.ErrorContext(ctx, "cleanup tick failed, terminating", "error", err)
				w.Exit(1)
				return
			}
		}
	}
}

func (w *Worker) tick(ctx context.Context) error {
	limits := w.catalog.All()
	if len(limits) == 0 {
		return nil
	}

	now := w.clock()
	inputs := make([]store.TrimInput, 0, len(limits))
	for _, l := range limits {
		windowStart := now.Add(-l.Freq.Period()).UnixMilli()
		inputs = append(inputs, store.TrimInput{WindowKey: l.Bucket, WindowStartMs: windowStart})
	}

	return w.store.TrimExpired(ctx, inputs)
}
