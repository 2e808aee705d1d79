package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/middleware"
	"github.com/SscSPs/pos_reconciliation/internal/platform/metrics"
	"github.com/SscSPs/pos_reconciliation/internal/utils/keylock"
)

// BaseService provides the collaborators shared by all ledger services: the unit of
// work, the per-record locks, the event publisher, metrics and the clock.
type BaseService struct {
	tm        portsrepo.TransactionManager
	locks     *keylock.KeyedMutex
	publisher portssvc.EventPublisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// ServiceOption configures the shared BaseService.
type ServiceOption func(*BaseService)

// WithPublisher sets the publisher for committed ledger events.
func WithPublisher(p portssvc.EventPublisher) ServiceOption {
	return func(b *BaseService) {
		b.publisher = p
	}
}

// WithMetrics sets the prometheus collectors.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(b *BaseService) {
		b.metrics = m
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(b *BaseService) {
		b.now = now
	}
}

// WithLocks shares a lock table between services built separately.
func WithLocks(locks *keylock.KeyedMutex) ServiceOption {
	return func(b *BaseService) {
		b.locks = locks
	}
}

// NewBaseService builds the shared collaborators.
func NewBaseService(tm portsrepo.TransactionManager, options ...ServiceOption) BaseService {
	b := BaseService{
		tm:    tm,
		locks: keylock.New(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(&b)
	}
	return b
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// logFailure logs unexpected errors at ERROR and caller mistakes at DEBUG.
func (s *BaseService) logFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	if isClientError(err) {
		s.LogDebug(ctx, msg, append([]any{slog.String("error", err.Error())}, keyvals...)...)
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}

func isClientError(err error) bool {
	for _, target := range []error{
		apperrors.ErrValidation, apperrors.ErrNotFound, apperrors.ErrDuplicate,
		apperrors.ErrInvalidAmount, apperrors.ErrInvalidQuantity, apperrors.ErrRecordAlreadySettled,
		apperrors.ErrQuantityExceedsAvailable, apperrors.ErrNegativeBalance, apperrors.ErrMissingExchangeRate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// mutate runs fn as one unit of work while holding the exclusive lock of every key.
func (s *BaseService) mutate(ctx context.Context, operation string, keys []string, fn func(ctx context.Context, store portsrepo.Store) error) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation(operation, start, err) }()

	unlock, err := s.locks.LockAll(ctx, keys...)
	if err != nil {
		return fmt.Errorf("acquire lock for %s: %w", operation, err)
	}
	defer unlock()
	return s.tm.WithinTx(ctx, fn)
}

// read runs fn against a consistent snapshot of committed records.
func (s *BaseService) read(ctx context.Context, fn func(ctx context.Context, store portsrepo.Store) error) error {
	return s.tm.ReadSnapshot(ctx, fn)
}

// publish delivers events after commit. A delivery failure never undoes the commit.
func (s *BaseService) publish(ctx context.Context, events ...domain.LedgerEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.LogError(ctx, err, "Failed to publish ledger events", slog.Int("count", len(events)), slog.String("first_type", string(events[0].Type)))
	}
}

// liveRate reads the live rate. A missing rate is returned as the zero rate so that
// queries which never need a conversion still succeed; any conversion then fails with
// ErrMissingExchangeRate.
func liveRate(ctx context.Context, store portsrepo.Store) (domain.ExchangeRate, error) {
	rate, err := store.CurrentRate(ctx)
	if errors.Is(err, apperrors.ErrMissingExchangeRate) {
		return domain.ExchangeRate{}, nil
	}
	return rate, err
}
