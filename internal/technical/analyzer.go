package technical

import (
	"errors"
	"fmt"
	"math"

	"paper-tiger/internal/domain"
	"paper-tiger/internal/ta"
)

// Default indicator periods, overridable through Config.
const (
	defaultRSIPeriod        = 14
	defaultMACDFast         = 12
	defaultMACDSlow         = 26
	defaultMACDSignal       = 9
	defaultSMAShort         = 20
	defaultSMAMid           = 50
	defaultSMALong          = 200
	defaultVolumePeriod     = 20
	defaultBollingerPeriod  = 20
	defaultBollingerStdDevs = 2.0
)

var (
	ErrNoData     = errors.New("technical: empty candle series")
	ErrOutOfOrder = errors.New("technical: candle timestamps not strictly increasing")
)

// Config holds the indicator periods for one analyzer. Zero values fall
// back to the defaults above.
type Config struct {
	RSIPeriod        int
	MACDFast         int
	MACDSlow         int
	MACDSignal       int
	SMAShort         int
	SMAMid           int
	SMALong          int
	VolumePeriod     int
	BollingerPeriod  int
	BollingerStdDevs float64
}

func DefaultConfig() Config {
	return Config{
		RSIPeriod:        defaultRSIPeriod,
		MACDFast:         defaultMACDFast,
		MACDSlow:         defaultMACDSlow,
		MACDSignal:       defaultMACDSignal,
		SMAShort:         defaultSMAShort,
		SMAMid:           defaultSMAMid,
		SMALong:          defaultSMALong,
		VolumePeriod:     defaultVolumePeriod,
		BollingerPeriod:  defaultBollingerPeriod,
		BollingerStdDevs: defaultBollingerStdDevs,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if c.MACDFast <= 0 {
		c.MACDFast = d.MACDFast
	}
	if c.MACDSlow <= 0 {
		c.MACDSlow = d.MACDSlow
	}
	if c.MACDSignal <= 0 {
		c.MACDSignal = d.MACDSignal
	}
	if c.SMAShort <= 0 {
		c.SMAShort = d.SMAShort
	}
	if c.SMAMid <= 0 {
		c.SMAMid = d.SMAMid
	}
	if c.SMALong <= 0 {
		c.SMALong = d.SMALong
	}
	if c.VolumePeriod <= 0 {
		c.VolumePeriod = d.VolumePeriod
	}
	if c.BollingerPeriod <= 0 {
		c.BollingerPeriod = d.BollingerPeriod
	}
	if c.BollingerStdDevs <= 0 {
		c.BollingerStdDevs = d.BollingerStdDevs
	}
	return c
}

// Analyzer computes indicator snapshots from candle series. It holds no
// mutable state and is safe to share across goroutines.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg.withDefaults()}
}

// Analyze computes a snapshot for the last candle of the series using only
// that candle and the ones before it. Individual indicators that lack
// history degrade to their documented fallback and are named in the
// snapshot's Insufficient list; only structural problems (empty series,
// out-of-order timestamps) produce an error.
func (a *Analyzer) Analyze(symbol string, candles []domain.Candle) (*domain.Snapshot, error) {
	n := len(candles)
	if n == 0 {
		return nil, ErrNoData
	}
	for i := 1; i < n; i++ {
		if !candles[i].OpenTime.After(candles[i-1].OpenTime) {
			return nil, fmt.Errorf("%w: index %d", ErrOutOfOrder, i)
		}
	}

	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = c.Volume
	}
	current := closes[n-1]

	snap := &domain.Snapshot{
		Symbol:    symbol,
		Timestamp: candles[n-1].OpenTime,
		Patterns:  RecognizePatterns(candles),
	}
	var insufficient []string
	mark := func(name string) {
		insufficient = append(insufficient, name)
	}

	snap.Price = a.priceBlock(closes, &insufficient)
	snap.RSI = a.rsiBlock(closes, mark)
	snap.MACD = a.macdBlock(closes)
	snap.MovingAverages = a.maBlock(closes, current, mark)
	snap.Volume = a.volumeBlock(volumes, mark)
	snap.Bollinger = a.bollingerBlock(closes, current, mark)
	snap.Insufficient = insufficient

	return snap, nil
}

func (a *Analyzer) priceBlock(closes []float64, insufficient *[]string) domain.PriceBlock {
	n := len(closes)
	block := domain.PriceBlock{Current: closes[n-1]}
	if n >= 2 && closes[n-2] != 0 {
		block.Change1DPct = (closes[n-1]/closes[n-2] - 1) * 100
	} else {
		*insufficient = append(*insufficient, "change_1d")
	}
	if n >= 6 && closes[n-6] != 0 {
		block.Change5DPct = (closes[n-1]/closes[n-6] - 1) * 100
	} else {
		*insufficient = append(*insufficient, "change_5d")
	}
	return block
}

func (a *Analyzer) rsiBlock(closes []float64, mark func(string)) domain.RSIBlock {
	series := ta.RSISeries(closes, a.cfg.RSIPeriod)
	if series == nil {
		mark("rsi")
		return domain.RSIBlock{Value: 50, Signal: "neutral"}
	}
	value := series[len(series)-1]
	signal := "neutral"
	if value < 30 {
		signal = "oversold"
	} else if value > 70 {
		signal = "overbought"
	}
	return domain.RSIBlock{Value: value, Signal: signal}
}

func (a *Analyzer) macdBlock(closes []float64) domain.MACDBlock {
	line, signal := ta.MACDSeries(closes, a.cfg.MACDFast, a.cfg.MACDSlow, a.cfg.MACDSignal)
	last := len(closes) - 1
	hist := line[last] - signal[last]
	trend := "bearish"
	if hist > 0 {
		trend = "bullish"
	}
	return domain.MACDBlock{
		Line:      line[last],
		Signal:    signal[last],
		Histogram: hist,
		Trend:     trend,
	}
}

func (a *Analyzer) maBlock(closes []float64, current float64, mark func(string)) domain.MABlock {
	sma := func(period int, name string) float64 {
		series := ta.SMASeries(closes, period)
		v := series[len(series)-1]
		if math.IsNaN(v) {
			// Short history: substitute the current price, which
			// neutralizes this average in the trend comparison.
			mark(name)
			return current
		}
		return v
	}
	block := domain.MABlock{
		SMA20:  sma(a.cfg.SMAShort, "sma_20"),
		SMA50:  sma(a.cfg.SMAMid, "sma_50"),
		SMA200: sma(a.cfg.SMALong, "sma_200"),
	}
	switch {
	case current > block.SMA50 && block.SMA50 > block.SMA200:
		block.Trend = "bullish"
	case current < block.SMA50 && block.SMA50 < block.SMA200:
		block.Trend = "bearish"
	default:
		block.Trend = "neutral"
	}
	return block
}

func (a *Analyzer) volumeBlock(volumes []float64, mark func(string)) domain.VolumeBlock {
	n := len(volumes)
	period := a.cfg.VolumePeriod
	if n < period {
		mark("volume")
		return domain.VolumeBlock{Current: volumes[n-1], Trend: "stable"}
	}

	current := volumes[n-1]
	avg := ta.Mean(volumes[n-period:])
	ratio := 0.0
	if avg > 0 {
		ratio = current / avg
	}

	trend := "stable"
	recent := ta.Mean(volumes[n-5:])
	older := ta.Mean(volumes[n-period : n-5])
	if older > 0 {
		switch r := recent / older; {
		case r > 1.2:
			trend = "increasing"
		case r < 0.8:
			trend = "decreasing"
		}
	}

	return domain.VolumeBlock{
		Current: current,
		Average: avg,
		Ratio:   ratio,
		Trend:   trend,
		Spike:   ratio > 1.5,
	}
}

func (a *Analyzer) bollingerBlock(closes []float64, current float64, mark func(string)) domain.BollingerBlock {
	middle, upper, lower := ta.BollingerSeries(closes, a.cfg.BollingerPeriod, a.cfg.BollingerStdDevs)
	last := len(closes) - 1
	if math.IsNaN(middle[last]) {
		mark("bollinger")
		return domain.BollingerBlock{PositionPct: 50}
	}

	position := 50.0
	if upper[last] != lower[last] {
		position = (current - lower[last]) / (upper[last] - lower[last]) * 100
	}
	return domain.BollingerBlock{
		Upper:       upper[last],
		Middle:      middle[last],
		Lower:       lower[last],
		PositionPct: position,
		Oversold:    position < 20,
		Overbought:  position > 80,
	}
}
