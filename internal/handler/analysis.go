package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetAnalysis godoc
// @Summary      Get the technical snapshot for a symbol
// @Description  Computes RSI, MACD, moving averages, volume, Bollinger bands and candle patterns from recent daily bars
// @Tags         analysis
// @Produce      json
// @Param        symbol  path  string  true  "Ticker symbol (e.g., AAPL, BTC-USD)"
// @Success      200  {object}  domain.Snapshot
// @Failure      400  {object}  map[string]string
// @Router       /api/analysis/{symbol} [get]
func (h *Handler) GetAnalysis(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-analysis")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	span.SetAttributes(attribute.String("symbol", symbol))

	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	snapshot, err := h.signals.Analyze(ctx, symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
