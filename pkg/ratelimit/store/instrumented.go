package store

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/samir-okafor/quotaguard/pkg/ratelimit/store")

// InstrumentedStore wraps a Store with a trace span and a structured log
// line per call, without altering behavior.
type InstrumentedStore struct {
	next   Store
	logger *slog.Logger
}

// Instrument wraps next with tracing and logging.
func Instrument(next Store, logger *slog.Logger) *InstrumentedStore {
	return &InstrumentedStore{next: next, logger: logger}
}

func (s *InstrumentedStore) ChargeBucket(ctx context.Context, in ChargeInput) (ChargeOutput, error) {
	ctx, span := tracer.Start(ctx, "store.ChargeBucket", trace.WithAttributes(
		attribute.String("ratelimit.window_key", in.WindowKey),
		attribute.Int64("ratelimit.cost", int64(in.Cost)),
	))
	defer span.End()

	start := time.Now()
	out, err := s.next.ChargeBucket(ctx, in)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "charge_bucket failed",
			"window_key", in.WindowKey, "elapsed_ms", elapsed.Milliseconds(), "error", err)
		return out, err
	}

	s.logger.DebugContext(ctx, "charge_bucket",
		"window_key", in.WindowKey,
		"total_after", out.TotalAfter,
		"is_blocked", out.IsBlocked,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return out, nil
}

func (s *InstrumentedStore) TrimExpired(ctx context.Context, inputs []TrimInput) error {
	ctx, span := tracer.Start(ctx, "store.TrimExpired", trace.WithAttributes(
		attribute.Int("ratelimit.bucket_count", len(inputs)),
	))
	defer span.End()

	err := s.next.TrimExpired(ctx, inputs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "trim_expired failed", "bucket_count", len(inputs), "error", err)
		return err
	}
	s.logger.DebugContext(ctx, "trim_expired", "bucket_count", len(inputs))
	return nil
}

func (s *InstrumentedStore) Close() error { return s.next.Close() }

var _ Store = (*InstrumentedStore)(nil)
