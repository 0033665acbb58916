package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type backtestRequest struct {
	Symbol         string  `json:"symbol" binding:"required"`
	WindowSize     int     `json:"window_size"`
	InitialCapital float64 `json:"initial_capital"`
}

// RunBacktest godoc
// @Summary      Backtest the technical strategy over recent history
// @Description  Replays daily bars through the strategy with a paper ledger and returns trades, ROI and the equity curve
// @Tags         backtest
// @Accept       json
// @Produce      json
// @Param        request  body  backtestRequest  true  "Backtest parameters"
// @Success      200  {object}  domain.BacktestResult
// @Failure      400  {object}  map[string]string
// @Router       /api/backtest [post]
func (h *Handler) RunBacktest(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.run-backtest")
	defer span.End()

	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	span.SetAttributes(attribute.String("symbol", symbol))

	result, err := h.backtester.Run(ctx, symbol, req.WindowSize, req.InitialCapital)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
