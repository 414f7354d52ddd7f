package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/metrics"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/middleware"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/request/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/transport/http/shared"
	dErrors "github.com/ErickCaburnay/B-Sphere-sub001/pkg/domain-errors"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/requestcontext"
)

// Service defines the interface for request workflow operations.
type Service interface {
	Approve(ctx context.Context, requestID uuid.UUID) (*models.DecisionResult, error)
	Reject(ctx context.Context, requestID uuid.UUID) (*models.DecisionResult, error)
	Get(ctx context.Context, requestID uuid.UUID) (*models.PendingRequest, error)
}

// Handler handles admin request-review endpoints.
type Handler struct {
	logger       *slog.Logger
	requests     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new request Handler.
func New(requests Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		requests:     requests,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the request routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	requestRouter := chi.NewRouter()
	requestRouter.Use(middleware.RequestID)
	requestRouter.Use(middleware.Recovery(h.logger))
	requestRouter.Use(middleware.Logger(h.logger))
	requestRouter.Use(middleware.Timeout(30 * time.Second))
	requestRouter.Use(middleware.ContentTypeJSON)
	requestRouter.Use(middleware.LatencyMiddleware(h.metrics))
	requestRouter.Use(middleware.RequireAdmin(h.jwtValidator, h.logger))
	requestRouter.Get("/{requestID}", h.handleGetRequest)
	requestRouter.Post("/{requestID}/approve", h.handleApprove)
	requestRouter.Post("/{requestID}/reject", h.handleReject)

	r.Mount("/api/v1/admin/requests", requestRouter)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.requests.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.requests.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, apply func(context.Context, uuid.UUID) (*models.DecisionResult, error)) {
	ctx := r.Context()
	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request id"))
		return
	}

	result, err := apply(ctx, requestID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "decision failed",
				"decision_request_id", requestID.String(),
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		} else {
			h.logger.WarnContext(ctx, "decision rejected",
				"decision_request_id", requestID.String(),
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	// warnings present means the primary intent succeeded anyway; the UI
	// shows a success toast with the warning text, not a failure.
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request id"))
		return
	}

	req, err := h.requests.Get(ctx, requestID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, requestResponse{
		ID:               req.ID.String(),
		Type:             string(req.Type),
		Status:           string(req.Status),
		ResidentID:       req.ResidentID.String(),
		RequestedChanges: req.RequestedChanges,
		OriginalData:     req.OriginalData,
		RequestedBy:      req.RequestedBy,
		RequestedAt:      req.RequestedAt,
	})
}

type requestResponse struct {
	ID               string         `json:"id"`
	Type             string         `json:"type"`
	Status           string         `json:"status"`
	ResidentID       string         `json:"residentId"`
	RequestedChanges map[string]any `json:"requestedChanges"`
	OriginalData     map[string]any `json:"originalData"`
	RequestedBy      string         `json:"requestedBy"`
	RequestedAt      time.Time      `json:"requestedAt"`
}
