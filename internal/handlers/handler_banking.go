package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mintflow/syncd/internal/apperrors"
	portssvc "github.com/mintflow/syncd/internal/core/ports/services"
	"github.com/mintflow/syncd/internal/dto"
	"github.com/mintflow/syncd/internal/middleware"
)

// bankingHandler handles HTTP requests for bank connections, accounts and
// manual syncs.
type bankingHandler struct {
	connectionService portssvc.ConnectionSvcFacade
	syncService       portssvc.SyncSvcFacade
	accountService    portssvc.AccountSvcFacade
}

// newBankingHandler creates a new bankingHandler.
func newBankingHandler(cs portssvc.ConnectionSvcFacade, ss portssvc.SyncSvcFacade, as portssvc.AccountSvcFacade) *bankingHandler {
	return &bankingHandler{
		connectionService: cs,
		syncService:       ss,
		accountService:    as,
	}
}

// registerBankingRoutes registers routes for the bank linking and sync flow.
func registerBankingRoutes(rg *gin.RouterGroup, cs portssvc.ConnectionSvcFacade, ss portssvc.SyncSvcFacade, as portssvc.AccountSvcFacade) {
	h := newBankingHandler(cs, ss, as)

	banking := rg.Group("/banking")
	{
		banking.POST("/link-token", h.createLinkToken)
		banking.POST("/exchange-token", h.exchangeToken)
		banking.GET("/connections", h.listConnections)
		banking.GET("/connections/:id", h.getConnection)
		banking.DELETE("/connections/:id", h.removeConnection)
		banking.GET("/accounts", h.listAccounts)
		banking.POST("/sync", h.sync)
	}
}

func (h *bankingHandler) createLinkToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	token, err := h.connectionService.CreateLinkToken(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to create link token", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create link token"})
		return
	}

	c.JSON(http.StatusOK, dto.LinkTokenResponse{LinkToken: token})
}

func (h *bankingHandler) exchangeToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ExchangeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ExchangeToken", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := h.connectionService.ExchangeToken(c.Request.Context(), userID, req.PublicToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrProviderAuth) || errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Token exchange rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token exchange failed"})
		} else {
			logger.Error("Failed to exchange token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to exchange token"})
		}
		return
	}

	logger.Info("Bank connection linked", slog.String("connection_id", conn.ConnectionID))
	c.JSON(http.StatusCreated, dto.ToConnectionResponse(*conn))
}

func (h *bankingHandler) listConnections(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conns, err := h.connectionService.ListConnections(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list connections", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list connections"})
		return
	}

	c.JSON(http.StatusOK, dto.ToConnectionResponses(conns))
}

func (h *bankingHandler) getConnection(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := h.connectionService.GetConnection(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Connection not found"})
		} else {
			logger.Error("Failed to get connection", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve connection"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToConnectionResponse(*conn))
}

func (h *bankingHandler) removeConnection(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.connectionService.RemoveConnection(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Connection not found"})
		} else {
			logger.Error("Failed to remove connection", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove connection"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *bankingHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}

// sync triggers a sync for one connection or all of the user's connections.
// The response always reports per-connection outcomes; a skipped or failed
// sync is data, not an HTTP error.
func (h *bankingHandler) sync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Sync", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summaries, err := h.syncService.SyncUser(c.Request.Context(), userID, req.ConnectionID, req.Force)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Connection not found"})
		} else {
			logger.Error("Failed to run sync", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run sync"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": summaries})
}
