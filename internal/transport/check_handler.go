package transport

import (
	"errors"
	"net/http"

	"pricewatch/internal/middleware"
	"pricewatch/internal/scheduler"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckHandler exposes the manual trigger for a price check cycle
type CheckHandler struct {
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

// NewCheckHandler creates a new CheckHandler
func NewCheckHandler(sched *scheduler.Scheduler, logger *zap.Logger) *CheckHandler {
	return &CheckHandler{
		scheduler: sched,
		logger:    logger,
	}
}

// RegisterRoutes registers the check routes
func (h *CheckHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/checks/run", h.Run)
}

// Run executes one check cycle and returns its report
func (h *CheckHandler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.scheduler.RunNow(r.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrCycleInProgress) {
			middleware.RespondWithError(w, http.StatusConflict, "a check cycle is already running")
			return
		}
		h.logger.Error("Check cycle failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "check cycle failed")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, report)
}
