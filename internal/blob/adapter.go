package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/fancystore/storeadmin/pkg/errors"
	"github.com/fancystore/storeadmin/pkg/tracing"
)

var errNotReady = errors.New("blob store is not initialized")

// Config tunes the adapter around a backend.
type Config struct {
	// Timeout bounds every backend call, including ones that ignore ctx.
	Timeout time.Duration
	Breaker BreakerConfig
	// InitBackoff is the first retry delay for backend initialization.
	InitBackoff time.Duration
	// InitMaxBackoff caps the retry delay.
	InitMaxBackoff time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		Breaker:        DefaultBreakerConfig(),
		InitBackoff:    time.Second,
		InitMaxBackoff: 30 * time.Second,
	}
}

// Adapter is the single entry point to image storage. It refuses work until
// the backend is initialized, bounds each call with a timeout and a circuit
// breaker, and maps backend failures onto the application error taxonomy:
// a missing reference becomes NotFound and anything else StoreUnavailable.
type Adapter struct {
	backend Backend
	cfg     Config
	breaker *gobreaker.CircuitBreaker[any]
	tracer  trace.Tracer
	logger  *slog.Logger
	ready   atomic.Bool
}

// NewAdapter wraps backend. The adapter is not ready until Start succeeds.
func NewAdapter(backend Backend, cfg Config, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.InitBackoff <= 0 {
		cfg.InitBackoff = def.InitBackoff
	}
	if cfg.InitMaxBackoff < cfg.InitBackoff {
		cfg.InitMaxBackoff = max(def.InitMaxBackoff, cfg.InitBackoff)
	}

	storeReady.WithLabelValues(backend.Name()).Set(0)

	return &Adapter{
		backend: backend,
		cfg:     cfg,
		breaker: newBreaker("blob-"+backend.Name(), cfg.Breaker, logger),
		tracer:  tracing.Tracer("github.com/fancystore/storeadmin/internal/blob"),
		logger:  logger.With(slog.String("blob_backend", backend.Name())),
	}
}

// Start initializes the backend, retrying with exponential backoff until it
// succeeds or ctx is done. It is safe to run in a goroutine while the HTTP
// server is already accepting requests.
func (a *Adapter) Start(ctx context.Context) error {
	init, ok := a.backend.(Initializer)
	if !ok {
		a.markReady()
		return nil
	}

	backoff := a.cfg.InitBackoff
	for attempt := 1; ; attempt++ {
		initCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		err := init.Init(initCtx)
		cancel()
		if err == nil {
			a.markReady()
			return nil
		}

		a.logger.WarnContext(ctx, "blob store initialization failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("initialize blob store %s: %w", a.backend.Name(), ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, a.cfg.InitMaxBackoff)
	}
}

func (a *Adapter) markReady() {
	a.ready.Store(true)
	storeReady.WithLabelValues(a.backend.Name()).Set(1)
	a.logger.Info("blob store ready")
}

// Ready reports whether the backend finished initialization.
func (a *Adapter) Ready() bool {
	return a.ready.Load()
}

// BackendName returns the name of the wrapped backend.
func (a *Adapter) BackendName() string {
	return a.backend.Name()
}

// Store persists payload and returns its reference.
func (a *Adapter) Store(ctx context.Context, payload []byte, contentType, filename string) (string, error) {
	if len(payload) == 0 {
		return "", apperrors.InvalidInput("image payload is empty")
	}

	v, err := a.do(ctx, "store", "", func(ctx context.Context) (any, error) {
		return a.backend.Put(ctx, &Object{Data: payload, ContentType: contentType}, filename)
	})
	if err != nil {
		return "", err
	}

	ref := v.(string)
	a.logger.DebugContext(ctx, "image stored",
		slog.String("ref", ref),
		slog.Int("size", len(payload)),
		slog.String("content_type", contentType),
	)
	return ref, nil
}

// Fetch returns the payload stored under ref.
func (a *Adapter) Fetch(ctx context.Context, ref string) (*Object, error) {
	if ref == "" {
		return nil, apperrors.NotFound("image", ref)
	}

	v, err := a.do(ctx, "fetch", ref, func(ctx context.Context) (any, error) {
		return a.backend.Get(ctx, ref)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Object), nil
}

// Delete removes ref. Failures are logged and never returned: callers use it
// for cleanup after the authoritative record change already happened.
func (a *Adapter) Delete(ctx context.Context, ref string) {
	if ref == "" {
		return
	}

	_, err := a.do(ctx, "delete", ref, func(ctx context.Context) (any, error) {
		return nil, a.backend.Remove(ctx, ref)
	})
	switch {
	case err == nil:
		a.logger.DebugContext(ctx, "image deleted", slog.String("ref", ref))
	case errors.Is(err, apperrors.ErrNotFound):
		a.logger.DebugContext(ctx, "image already gone", slog.String("ref", ref))
	default:
		a.logger.WarnContext(ctx, "failed to delete image, blob orphaned",
			slog.String("ref", ref),
			slog.String("error", err.Error()),
		)
	}
}

// PublicURL returns the client-facing URL for ref, or "" when ref is empty.
func (a *Adapter) PublicURL(ref string) string {
	if ref == "" {
		return ""
	}
	return a.backend.URL(ref)
}

// Ping is the readiness check for the blob store.
func (a *Adapter) Ping(ctx context.Context) error {
	if !a.Ready() {
		return errNotReady
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	return a.backend.Ping(ctx)
}

type callResult struct {
	value any
	err   error
}

func (a *Adapter) do(ctx context.Context, op, ref string, fn func(context.Context) (any, error)) (any, error) {
	name := a.backend.Name()
	if !a.Ready() {
		operationsTotal.WithLabelValues(name, op, "unavailable").Inc()
		return nil, apperrors.StoreUnavailable(errNotReady)
	}

	ctx, span := a.tracer.Start(ctx, "blob."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("blob.backend", name),
			attribute.String("blob.ref", ref),
		),
	)
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := time.Now()
	done := make(chan callResult, 1)
	go func() {
		v, err := a.breaker.Execute(func() (any, error) {
			return fn(callCtx)
		})
		done <- callResult{value: v, err: err}
	}()

	var res callResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		res.err = fmt.Errorf("blob %s after %s: %w", op, a.cfg.Timeout, callCtx.Err())
	}
	operationDuration.WithLabelValues(name, op).Observe(time.Since(start).Seconds())

	outcome, err := classify(ref, res.err)
	operationsTotal.WithLabelValues(name, op, outcome).Inc()
	if err != nil {
		span.RecordError(res.err)
		if outcome != "not_found" {
			span.SetStatus(codes.Error, res.err.Error())
		}
		return nil, err
	}
	return res.value, nil
}

func classify(ref string, err error) (string, error) {
	switch {
	case err == nil:
		return "ok", nil
	case errors.Is(err, ErrNotFound):
		return "not_found", apperrors.NotFound("image", ref)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected", apperrors.StoreUnavailable(err)
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout", apperrors.StoreUnavailable(err)
	default:
		return "error", apperrors.StoreUnavailable(err)
	}
}
