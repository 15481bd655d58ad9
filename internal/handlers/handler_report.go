package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mintflow/syncd/internal/apperrors"
	portssvc "github.com/mintflow/syncd/internal/core/ports/services"
	"github.com/mintflow/syncd/internal/middleware"
)

// reportHandler handles HTTP requests for spending reports.
type reportHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

// newReportHandler creates a new reportHandler.
func newReportHandler(rs portssvc.ReportingSvcFacade) *reportHandler {
	return &reportHandler{reportingService: rs}
}

// registerReportRoutes registers routes related to reports.
func registerReportRoutes(rg *gin.RouterGroup, rs portssvc.ReportingSvcFacade) {
	h := newReportHandler(rs)

	reports := rg.Group("/reports")
	{
		reports.GET("/spending", h.spendingSummary)
	}
}

func (h *reportHandler) spendingSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	period := c.DefaultQuery("period", "monthly")
	summary, err := h.reportingService.GetSpendingSummary(c.Request.Context(), userID, period)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to build spending summary", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build spending summary"})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}
