package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/request/cache"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/request/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/request/service/mocks"
	dErrors "github.com/ErickCaburnay/B-Sphere-sub001/pkg/domain-errors"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockRequests  *mocks.MockRequestStore
	mockResidents *mocks.MockResidentStore
	mockNotifier  *mocks.MockNotifier
	view          *cache.MemoryView
	service       *Service

	now     time.Time
	adminID string
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRequests = mocks.NewMockRequestStore(s.ctrl)
	s.mockResidents = mocks.NewMockResidentStore(s.ctrl)
	s.mockNotifier = mocks.NewMockNotifier(s.ctrl)
	s.view = cache.NewMemory()
	s.service = New(s.mockRequests, s.mockResidents, s.mockNotifier,
		WithStatusView(s.view),
	)
	s.now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s.adminID = "admin-1"
}

func (s *ServiceSuite) ctx() context.Context {
	ctx := requestcontext.WithTime(context.Background(), s.now)
	return requestcontext.WithAdminID(ctx, s.adminID)
}

func pendingRequest(changes map[string]any) *models.PendingRequest {
	return &models.PendingRequest{
		ID:               uuid.New(),
		Type:             models.TypeInfoUpdate,
		Status:           models.StatusPending,
		ResidentID:       uuid.New(),
		RequestedChanges: changes,
		OriginalData:     map[string]any{"contactNumber": "000"},
		RequestedBy:      "resident-portal",
		RequestedAt:      time.Date(2024, 5, 28, 12, 0, 0, 0, time.UTC),
	}
}

func (s *ServiceSuite) TestApprove_Success() {
	req := pendingRequest(map[string]any{"contactNumber": "09171234567"})
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)
	s.mockResidents.EXPECT().
		UpdateFields(gomock.Any(), req.ResidentID, map[string]any{"contactNumber": "09171234567"}, s.now).
		Return(nil)
	s.mockRequests.EXPECT().
		MarkStatusIfPending(gomock.Any(), req.ID, models.StatusApproved, s.adminID, s.now).
		Return(nil)
	s.mockNotifier.EXPECT().NotifyDecision(gomock.Any(), req, true).Return(nil)

	result, err := s.service.Approve(s.ctx(), req.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, result.Status)
	s.Empty(result.Warnings)

	status, ok, err := s.view.Get(context.Background(), req.ID)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(models.StatusApproved, status)
}

func (s *ServiceSuite) TestApprove_GateFailureAbortsEverything() {
	req := pendingRequest(map[string]any{"email": "new@example.com"})
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)
	s.mockResidents.EXPECT().
		UpdateFields(gomock.Any(), req.ResidentID, gomock.Any(), s.now).
		Return(errors.New("connection reset"))
	// No MarkStatusIfPending, no NotifyDecision: the gate aborts the saga.

	result, err := s.service.Approve(s.ctx(), req.ID)
	s.Require().Error(err)
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	_, ok, _ := s.view.Get(context.Background(), req.ID)
	s.False(ok, "no cached status after an aborted approve")
}

func (s *ServiceSuite) TestApprove_ResidentMissing() {
	req := pendingRequest(map[string]any{"email": "new@example.com"})
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)
	s.mockResidents.EXPECT().
		UpdateFields(gomock.Any(), req.ResidentID, gomock.Any(), s.now).
		Return(sentinel.ErrNotFound)

	_, err := s.service.Approve(s.ctx(), req.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestApprove_DegradedNotification() {
	req := pendingRequest(map[string]any{"contactNumber": "09171234567"})
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)
	s.mockResidents.EXPECT().
		UpdateFields(gomock.Any(), req.ResidentID, gomock.Any(), s.now).
		Return(nil)
	s.mockRequests.EXPECT().
		MarkStatusIfPending(gomock.Any(), req.ID, models.StatusApproved, s.adminID, s.now).
		Return(nil)
	s.mockNotifier.EXPECT().NotifyDecision(gomock.Any(), req, true).
		Return(errors.New("notification store timeout"))

	result, err := s.service.Approve(s.ctx(), req.ID)
	s.Require().NoError(err, "notification failure must not fail the approval")
	s.Equal(models.StatusApproved, result.Status)
	s.Len(result.Warnings, 1)
	s.Contains(result.Warnings[0], "notification not sent")
}

func (s *ServiceSuite) TestApprove_DegradedStatusWrite() {
	req := pendingRequest(map[string]any{"contactNumber": "09171234567"})
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)
	s.mockResidents.EXPECT().
		UpdateFields(gomock.Any(), req.ResidentID, gomock.Any(), s.now).
		Return(nil)
	s.mockRequests.EXPECT().
		MarkStatusIfPending(gomock.Any(), req.ID, models.StatusApproved, s.adminID, s.now).
		Return(errors.New("write timeout"))
	// The resident record already changed, so the notification still goes out.
	s.mockNotifier.EXPECT().NotifyDecision(gomock.Any(), req, true).Return(nil)

	result, err := s.service.Approve(s.ctx(), req.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, result.Status)
	s.Len(result.Warnings, 1)
	s.Contains(result.Warnings[0], "status not recorded")
}

func (s *ServiceSuite) TestApprove_AlreadyTerminal() {
	req := pendingRequest(map[string]any{"email": "new@example.com"})
	req.Status = models.StatusApproved
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)

	_, err := s.service.Approve(s.ctx(), req.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ServiceSuite) TestApprove_LostRaceToConcurrentDecision() {
	req := pendingRequest(map[string]any{"email": "new@example.com"})
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)
	s.mockResidents.EXPECT().
		UpdateFields(gomock.Any(), req.ResidentID, gomock.Any(), s.now).
		Return(nil)
	s.mockRequests.EXPECT().
		MarkStatusIfPending(gomock.Any(), req.ID, models.StatusApproved, s.adminID, s.now).
		Return(sentinel.ErrInvalidState)
	// The winning decision owns the notification; this caller sends none.

	_, err := s.service.Approve(s.ctx(), req.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ServiceSuite) TestApprove_NotFound() {
	requestID := uuid.New()
	s.mockRequests.EXPECT().Get(gomock.Any(), requestID).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Approve(s.ctx(), requestID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestApprove_PhoneAndAddressNormalization() {
	req := pendingRequest(map[string]any{
		"phone":   "123",
		"address": map[string]any{"street": "", "city": ""},
	})
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)

	var captured map[string]any
	s.mockResidents.EXPECT().
		UpdateFields(gomock.Any(), req.ResidentID, gomock.Any(), s.now).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, fields map[string]any, _ time.Time) error {
			captured = fields
			return nil
		})
	s.mockRequests.EXPECT().
		MarkStatusIfPending(gomock.Any(), req.ID, models.StatusApproved, s.adminID, s.now).
		Return(nil)
	s.mockNotifier.EXPECT().NotifyDecision(gomock.Any(), req, true).Return(nil)

	_, err := s.service.Approve(s.ctx(), req.ID)
	s.Require().NoError(err)
	s.Equal(map[string]any{"contactNumber": "123"}, captured)
}

func (s *ServiceSuite) TestApprove_UnsupportedType() {
	req := pendingRequest(nil)
	req.Type = "document_request"
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)

	_, err := s.service.Approve(s.ctx(), req.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestReject_Success() {
	req := pendingRequest(map[string]any{"email": "new@example.com"})
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)
	s.mockRequests.EXPECT().
		MarkStatusIfPending(gomock.Any(), req.ID, models.StatusRejected, s.adminID, s.now).
		Return(nil)
	s.mockNotifier.EXPECT().NotifyDecision(gomock.Any(), req, false).Return(nil)

	result, err := s.service.Reject(s.ctx(), req.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, result.Status)
	s.Empty(result.Warnings)
}

func (s *ServiceSuite) TestReject_StatusWriteFailureContinues() {
	req := pendingRequest(map[string]any{"email": "new@example.com"})
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)
	s.mockRequests.EXPECT().
		MarkStatusIfPending(gomock.Any(), req.ID, models.StatusRejected, s.adminID, s.now).
		Return(errors.New("write timeout"))
	// Reject has no external mutation to protect; the notification still goes out.
	s.mockNotifier.EXPECT().NotifyDecision(gomock.Any(), req, false).Return(nil)

	result, err := s.service.Reject(s.ctx(), req.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, result.Status)
	s.Len(result.Warnings, 1)
}

func (s *ServiceSuite) TestReject_AlreadyTerminal() {
	req := pendingRequest(nil)
	req.Status = models.StatusRejected
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)

	_, err := s.service.Reject(s.ctx(), req.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

type failingView struct{}

func (failingView) Put(ctx context.Context, requestID uuid.UUID, status models.Status) error {
	return errors.New("redis down")
}

func (failingView) Get(ctx context.Context, requestID uuid.UUID) (models.Status, bool, error) {
	return "", false, errors.New("redis down")
}

func (s *ServiceSuite) TestReject_CacheFailureIsInvisible() {
	svc := New(s.mockRequests, s.mockResidents, s.mockNotifier, WithStatusView(failingView{}))

	req := pendingRequest(nil)
	s.mockRequests.EXPECT().Get(gomock.Any(), req.ID).Return(req, nil)
	s.mockRequests.EXPECT().
		MarkStatusIfPending(gomock.Any(), req.ID, models.StatusRejected, s.adminID, s.now).
		Return(nil)
	s.mockNotifier.EXPECT().NotifyDecision(gomock.Any(), req, false).Return(nil)

	result, err := svc.Reject(s.ctx(), req.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, result.Status)
	s.Empty(result.Warnings, "cache failure is not even a warning")
}
