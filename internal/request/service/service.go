// Package service drives pending resident requests to a terminal decision.
//
// A decision is a short saga, not a transaction: the resident-record mutation
// is the gating step with abort semantics, while the status write and the
// outbound notification are best-effort and degrade into warnings. The two
// stores involved cannot share a transaction, so the inconsistency window
// after a failed status write is accepted and surfaced rather than hidden.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/events"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/metrics"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/request/cache"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/request/models"
	dErrors "github.com/ErickCaburnay/B-Sphere-sub001/pkg/domain-errors"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/requestcontext"
)

// RequestStore loads requests and applies the conditional status transition.
type RequestStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.PendingRequest, error)
	MarkStatusIfPending(ctx context.Context, id uuid.UUID, status models.Status, decidedBy string, now time.Time) error
}

// ResidentStore is the external roster interface the approve gate mutates.
type ResidentStore interface {
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any, now time.Time) error
}

// Notifier creates the outbound decision notification for the resident.
type Notifier interface {
	NotifyDecision(ctx context.Context, req *models.PendingRequest, approved bool) error
}

// EventPublisher mirrors events.Publisher for option wiring.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service is the request workflow engine.
type Service struct {
	requests  RequestStore
	residents ResidentStore
	notifier  Notifier
	view      cache.StatusView
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

func WithStatusView(view cache.StatusView) Option {
	return func(s *Service) { s.view = view }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// New constructs a Service.
func New(requests RequestStore, residents ResidentStore, notifier Notifier, opts ...Option) *Service {
	s := &Service{requests: requests, residents: residents, notifier: notifier}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Approve applies the requested changes to the resident record and marks the
// request approved.
//
// The resident update is the gate: until it succeeds nothing else runs, and
// if it fails the request stays pending and no notification is sent. After
// the gate, a failed status write or notification degrades into a warning,
// since the resident's data has already changed and must not be reported as
// a failed operation.
func (s *Service) Approve(ctx context.Context, requestID uuid.UUID) (*models.DecisionResult, error) {
	req, err := s.loadPending(ctx, requestID)
	if err != nil {
		return nil, err
	}

	payload, err := models.BuildResidentUpdate(req.RequestedChanges)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid requested changes")
	}

	now := requestcontext.Now(ctx)
	if err := s.residents.UpdateFields(ctx, req.ResidentID, payload, now); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "resident update failed: resident not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "resident update failed")
	}

	var warnings []string
	err = s.requests.MarkStatusIfPending(ctx, requestID, models.StatusApproved, requestcontext.AdminID(ctx), now)
	switch {
	case errors.Is(err, sentinel.ErrInvalidState):
		// A competing decision won between our load and this write. Stop
		// before notifying; the winner already owns the notification.
		return nil, dErrors.New(dErrors.CodeInvalidState, "request was decided concurrently")
	case err != nil:
		warnings = append(warnings, fmt.Sprintf("request status not recorded: %v", err))
		s.warnDegraded(ctx, requestID, "status write failed after resident update", err)
	}

	req.Status = models.StatusApproved
	if err := s.notifier.NotifyDecision(ctx, req, true); err != nil {
		warnings = append(warnings, fmt.Sprintf("notification not sent: %v", err))
		s.warnNotification(ctx, requestID, err)
	}

	s.reflectStatus(ctx, requestID, models.StatusApproved)
	s.finishDecision(ctx, req, events.EventRequestApproved, "approved")

	return &models.DecisionResult{Status: models.StatusApproved, Warnings: warnings}, nil
}

// Reject marks the request rejected and notifies the resident. There is no
// external mutation to protect, so a failed status write only risks a stale
// status and processing continues.
func (s *Service) Reject(ctx context.Context, requestID uuid.UUID) (*models.DecisionResult, error) {
	req, err := s.loadPending(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var warnings []string
	now := requestcontext.Now(ctx)
	err = s.requests.MarkStatusIfPending(ctx, requestID, models.StatusRejected, requestcontext.AdminID(ctx), now)
	switch {
	case errors.Is(err, sentinel.ErrInvalidState):
		return nil, dErrors.New(dErrors.CodeInvalidState, "request was decided concurrently")
	case err != nil:
		warnings = append(warnings, fmt.Sprintf("request status not recorded: %v", err))
		s.warnDegraded(ctx, requestID, "status write failed during reject", err)
	}

	req.Status = models.StatusRejected
	if err := s.notifier.NotifyDecision(ctx, req, false); err != nil {
		warnings = append(warnings, fmt.Sprintf("notification not sent: %v", err))
		s.warnNotification(ctx, requestID, err)
	}

	s.reflectStatus(ctx, requestID, models.StatusRejected)
	s.finishDecision(ctx, req, events.EventRequestRejected, "rejected")

	return &models.DecisionResult{Status: models.StatusRejected, Warnings: warnings}, nil
}

// Get returns a request for the admin review page.
func (s *Service) Get(ctx context.Context, requestID uuid.UUID) (*models.PendingRequest, error) {
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load request")
	}
	return req, nil
}

func (s *Service) loadPending(ctx context.Context, requestID uuid.UUID) (*models.PendingRequest, error) {
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load request")
	}
	if req.Type != models.TypeInfoUpdate {
		return nil, dErrors.New(dErrors.CodeValidation, "unsupported request type")
	}
	if req.Status.Terminal() {
		return nil, dErrors.New(dErrors.CodeInvalidState, fmt.Sprintf("request is already %s", req.Status))
	}
	return req, nil
}

// reflectStatus updates the cached list view. Losing this write only delays
// the UI, so the error is logged and dropped.
func (s *Service) reflectStatus(ctx context.Context, requestID uuid.UUID, status models.Status) {
	if s.view == nil {
		return
	}
	if err := s.view.Put(ctx, requestID, status); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "status view update failed",
			"decision_request_id", requestID.String(),
			"error", err,
		)
	}
}

func (s *Service) finishDecision(ctx context.Context, req *models.PendingRequest, eventType, outcome string) {
	s.logAudit(ctx, eventType,
		"decision_request_id", req.ID.String(),
		"resident_id", req.ResidentID.String(),
		"outcome", outcome,
	)
	if s.metrics != nil {
		s.metrics.IncRequestDecision(outcome)
	}
	if s.publisher != nil {
		_ = s.publisher.Emit(ctx, events.Event{
			Type:       eventType,
			OccurredAt: requestcontext.Now(ctx),
			AdminID:    requestcontext.AdminID(ctx),
			RequestID:  req.ID.String(),
			ResidentID: req.ResidentID.String(),
		})
	}
}

func (s *Service) warnDegraded(ctx context.Context, requestID uuid.UUID, msg string, err error) {
	if s.metrics != nil {
		s.metrics.DecisionDegraded.Inc()
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg,
			"decision_request_id", requestID.String(),
			"error", err,
		)
	}
}

func (s *Service) warnNotification(ctx context.Context, requestID uuid.UUID, err error) {
	if s.metrics != nil {
		s.metrics.DecisionDegraded.Inc()
		s.metrics.NotificationFailures.Inc()
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "decision notification failed",
			"decision_request_id", requestID.String(),
			"error", err,
		)
	}
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
