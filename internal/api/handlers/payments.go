package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tipjar/internal/apperr"
	"tipjar/internal/model"
)

// HistoryFetcher loads the tip history. *history.Reader satisfies it.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context) ([]model.TipRecord, error)
}

type PaymentsHandler struct {
	history HistoryFetcher
	logger  *zap.Logger
}

func NewPaymentsHandler(history HistoryFetcher, logger *zap.Logger) *PaymentsHandler {
	return &PaymentsHandler{history: history, logger: logger}
}

// List answers 200 {"payments": [...]} or 500 {"error", "details"}.
func (h *PaymentsHandler) List(c *gin.Context) {
	records, err := h.history.FetchHistory(c.Request.Context())
	if err != nil {
		message := "Failed to fetch payment history from the blockchain."
		details := err.Error()
		kind := apperr.KindOf(err)
		if appErr, ok := apperr.As(err); ok {
			message = appErr.Message
			details = appErr.Details()
		}
		h.logger.Error("fetch payment history failed",
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   message,
			"details": details,
			"kind":    kind.String(),
		})
		return
	}

	if records == nil {
		records = []model.TipRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"payments": records})
}
