package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/metrics"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/middleware"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/transport/http/shared"
)

// Service defines the interface for control-number issuance.
type Service interface {
	Next(ctx context.Context, documentType models.DocumentType) (string, error)
	Current(ctx context.Context, documentType models.DocumentType) (*models.Counter, error)
}

// Handler handles control-number endpoints for document issuance call sites.
type Handler struct {
	logger       *slog.Logger
	sequences    Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new sequence Handler.
func New(sequences Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		sequences:    sequences,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the control-number routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	seqRouter := chi.NewRouter()
	seqRouter.Use(middleware.RequestID)
	seqRouter.Use(middleware.Recovery(h.logger))
	seqRouter.Use(middleware.Logger(h.logger))
	seqRouter.Use(middleware.Timeout(10 * time.Second))
	seqRouter.Use(middleware.ContentTypeJSON)
	seqRouter.Use(middleware.LatencyMiddleware(h.metrics))
	seqRouter.Use(middleware.RequireAdmin(h.jwtValidator, h.logger))
	seqRouter.Post("/{documentType}", h.handleNext)
	seqRouter.Get("/{documentType}", h.handleCurrent)

	r.Mount("/api/v1/admin/control-numbers", seqRouter)
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentType := models.DocumentType(chi.URLParam(r, "documentType"))

	controlNumber, err := h.sequences.Next(ctx, documentType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, controlNumberResponse{
		DocumentType:  string(documentType),
		ControlNumber: controlNumber,
	})
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentType := models.DocumentType(chi.URLParam(r, "documentType"))

	counter, err := h.sequences.Current(ctx, documentType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, counterResponse{
		DocumentType:    string(counter.DocumentType),
		Count:           counter.Count,
		LastGeneratedID: counter.LastGeneratedID,
	})
}

type controlNumberResponse struct {
	DocumentType  string `json:"documentType"`
	ControlNumber string `json:"controlNumber"`
}

type counterResponse struct {
	DocumentType    string `json:"documentType"`
	Count           int64  `json:"count"`
	LastGeneratedID string `json:"lastGeneratedId"`
}
