package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/events"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/metrics"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/models"
	dErrors "github.com/ErickCaburnay/B-Sphere-sub001/pkg/domain-errors"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/requestcontext"
)

// CounterStore is the atomic persistence primitive the generator delegates to.
// Increment must be a single atomic read-modify-write per document type.
type CounterStore interface {
	Increment(ctx context.Context, documentType models.DocumentType, now time.Time) (*models.Counter, error)
	Get(ctx context.Context, documentType models.DocumentType) (*models.Counter, error)
}

// EventPublisher mirrors events.Publisher for option wiring.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service issues strictly-increasing, formatted control numbers.
// Authorization is the caller's responsibility; handlers sit behind the admin
// middleware before reaching this service.
type Service struct {
	counters  CounterStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher EventPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// New constructs a Service.
func New(counters CounterStore, opts ...Option) *Service {
	s := &Service{counters: counters}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next control number for documentType.
//
// Contention in the underlying store surfaces as a retryable Unavailable
// error; the service never retries internally, so a failed call has issued
// nothing and the caller may simply call again.
func (s *Service) Next(ctx context.Context, documentType models.DocumentType) (string, error) {
	if !documentType.Valid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown document type")
	}

	counter, err := s.counters.Increment(ctx, documentType, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "counter store unavailable, retry")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to increment counter")
	}

	s.logAudit(ctx, events.EventControlNumberIssued,
		"document_type", string(documentType),
		"control_number", counter.LastGeneratedID,
		"count", counter.Count,
	)
	if s.metrics != nil {
		s.metrics.IncControlNumberIssued(string(documentType))
	}
	if s.publisher != nil {
		_ = s.publisher.Emit(ctx, events.Event{
			Type:         events.EventControlNumberIssued,
			OccurredAt:   requestcontext.Now(ctx),
			AdminID:      requestcontext.AdminID(ctx),
			DocumentType: string(documentType),
			Data:         map[string]string{"control_number": counter.LastGeneratedID},
		})
	}

	return counter.LastGeneratedID, nil
}

// Current reports the counter state without advancing it. Used by the admin
// dashboard; a series that has never issued reads as count zero.
func (s *Service) Current(ctx context.Context, documentType models.DocumentType) (*models.Counter, error) {
	if !documentType.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown document type")
	}
	counter, err := s.counters.Get(ctx, documentType)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &models.Counter{DocumentType: documentType}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load counter")
	}
	return counter, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
