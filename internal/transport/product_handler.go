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

// RegisterProductRequest represents the track-a-product request payload
type RegisterProductRequest struct {
	URL         string   `json:"url" validate:"required,url"`
	UserEmail   string   `json:"user_email" validate:"omitempty,email"`
	TargetPrice *float64 `json:"target_price" validate:"omitempty,gt=0"`
}

// ProductHandler handles HTTP requests for tracked products
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Deactivate)
	})
}

// Register starts tracking a product URL
func (h *ProductHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product registration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.productService.Register(r.Context(), req.URL, req.UserEmail, req.TargetPrice)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProductURL):
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product URL: could not extract ASIN")
		case errors.Is(err, service.ErrProductUnavailable):
			middleware.RespondWithError(w, http.StatusBadGateway, "could not extract product details; the product may be unavailable")
		default:
			h.logger.Error("Product registration failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register product")
		}
		return
	}

	status := http.StatusCreated
	if result.AlreadyTracked {
		status = http.StatusOK
	}

	h.logger.Info("Product registered",
		zap.String("asin", result.Product.ASIN),
		zap.Bool("already_tracked", result.AlreadyTracked),
	)
	middleware.RespondWithJSON(w, status, result)
}

// List returns all tracked products with history, alerts, and trend
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	overviews, err := h.productService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, overviews)
}

// Get returns one tracked product with history, alerts, and trend
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	overview, err := h.productService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, overview)
}

// Deactivate stops checking a product without deleting its records
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.productService.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to deactivate product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to deactivate product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
