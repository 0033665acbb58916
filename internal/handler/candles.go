package handler

import (
	"net/http"
	"strings"
	"time"

	"paper-tiger/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetCandles godoc
// @Summary      List stored OHLCV bars for a symbol
// @Tags         candles
// @Produce      json
// @Param        symbol    path   string  true   "Ticker symbol"
// @Param        interval  query  string  false  "Bar interval (default 1d)"
// @Param        from      query  string  false  "Range start, RFC3339 or YYYY-MM-DD (default 30 days ago)"
// @Param        to        query  string  false  "Range end, RFC3339 or YYYY-MM-DD (default now)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/candles/{symbol} [get]
func (h *Handler) GetCandles(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-candles")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	span.SetAttributes(attribute.String("symbol", symbol))

	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	interval := c.DefaultQuery("interval", "1d")
	if !domain.IsSupportedInterval(interval) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unsupported interval, use one of: " + strings.Join(domain.SupportedIntervals, ", "),
		})
		return
	}

	to := time.Now().UTC()
	if v := c.Query("to"); v != "" {
		t, err := parseRangeTime(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return
		}
		to = t
	}
	from := to.AddDate(0, 0, -30)
	if v := c.Query("from"); v != "" {
		t, err := parseRangeTime(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return
		}
		from = t
	}
	if from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be before to"})
		return
	}

	candles, err := h.signals.CandleHistory(ctx, symbol, interval, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "interval": interval, "candles": candles})
}

func parseRangeTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
