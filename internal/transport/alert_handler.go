package transport

import (
	"errors"
	"net/http"

	"pricewatch/internal/middleware"
	"pricewatch/internal/repository"
	"pricewatch/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateAlertRequest represents the subscribe-to-a-product request payload
type CreateAlertRequest struct {
	UserEmail   string   `json:"user_email" validate:"required,email"`
	TargetPrice *float64 `json:"target_price" validate:"omitempty,gt=0"`
}

// AlertHandler handles HTTP requests for price alerts
type AlertHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(productService service.ProductService, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all alert routes
func (h *AlertHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/products/{id}/alerts", h.Create)
	r.Delete("/api/alerts/{id}", h.Deactivate)
}

// Create subscribes an email address to a tracked product
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req CreateAlertRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Alert validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alert, err := h.productService.CreateAlert(r.Context(), productID, req.UserEmail, req.TargetPrice)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to create alert", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create alert")
		return
	}

	h.logger.Info("Alert created",
		zap.String("alert_id", alert.ID.String()),
		zap.String("product_id", productID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, alert)
}

// Deactivate stops a subscription
func (h *AlertHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	if err := h.productService.DeactivateAlert(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "alert not found")
			return
		}
		h.logger.Error("Failed to deactivate alert", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to deactivate alert")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
