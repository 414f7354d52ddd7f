package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/events"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/notify/models"
	requestmodels "github.com/ErickCaburnay/B-Sphere-sub001/internal/request/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/requestcontext"
)

// Store persists outbound notifications.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
}

// EventPublisher mirrors events.Publisher for option wiring.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service creates resident-facing notifications for workflow outcomes.
type Service struct {
	store     Store
	logger    *slog.Logger
	publisher EventPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NotifyDecision creates the one notification a terminal decision owes the
// resident. The Data block echoes the request's before/after values so the
// inbox entry is auditable without a join back to the request.
func (s *Service) NotifyDecision(ctx context.Context, req *requestmodels.PendingRequest, approved bool) error {
	n := &models.Notification{
		ID:           uuid.New(),
		TargetRole:   "resident",
		TargetUserID: req.ResidentID,
		RequestID:    req.ID,
		Priority:     models.PriorityNormal,
		Status:       models.StatusUnread,
		Data:         decisionData(req),
		CreatedAt:    requestcontext.Now(ctx),
	}
	if approved {
		n.Type = models.TypeInfoUpdateApproved
		n.Title = "Information Update Approved"
		n.Message = "Your information update request has been approved and your record now reflects the changes."
	} else {
		n.Type = models.TypeInfoUpdateRejected
		n.Title = "Information Update Rejected"
		n.Message = "Your information update request has been reviewed and rejected. Your record is unchanged."
	}

	if err := s.store.Create(ctx, n); err != nil {
		return fmt.Errorf("create decision notification: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.Emit(ctx, events.Event{
			Type:       events.EventNotificationCreated,
			OccurredAt: n.CreatedAt,
			RequestID:  req.ID.String(),
			ResidentID: req.ResidentID.String(),
			Data:       map[string]string{"notification_type": n.Type},
		})
	}
	return nil
}

// MarkRead flips a notification to read for the resident inbox.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.store.UpdateStatus(ctx, id, models.StatusRead)
}

// ListForResident returns the resident's notifications, newest first.
func (s *Service) ListForResident(ctx context.Context, residentID uuid.UUID) ([]*models.Notification, error) {
	return s.store.ListByUser(ctx, residentID)
}

func decisionData(req *requestmodels.PendingRequest) map[string]string {
	data := map[string]string{
		"request_type": string(req.Type),
		"request_id":   req.ID.String(),
	}
	for name, value := range req.RequestedChanges {
		data["requested."+name] = fmt.Sprint(value)
	}
	for name, value := range req.OriginalData {
		data["original."+name] = fmt.Sprint(value)
	}
	return data
}
