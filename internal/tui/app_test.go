package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"paper-tiger/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
)

type stubSignals struct {
	signals map[string]*domain.Signal
}

func (s stubSignals) GenerateSignal(ctx context.Context, symbol string) (*domain.Signal, error) {
	if sig, ok := s.signals[symbol]; ok {
		return sig, nil
	}
	return nil, errors.New("no data")
}

func testServices() Services {
	return Services{
		Signals: stubSignals{signals: map[string]*domain.Signal{
			"AAPL": {Symbol: "AAPL", Decision: domain.DecisionBuy, Score: 62, Confidence: 58, Price: 231.4, Reasons: []string{"Uptrend"}},
		}},
		Watchlist: []string{"AAPL", "MSFT"},
		Username:  "trader",
	}
}

func TestFetchSignalsCollectsResultsAndErrors(t *testing.T) {
	t.Parallel()

	msg := fetchSignals(testServices())()
	got, ok := msg.(signalsMsg)
	if !ok {
		t.Fatalf("unexpected msg type %T", msg)
	}
	if len(got.signals) != 1 || got.signals["AAPL"] == nil {
		t.Fatalf("unexpected signals: %+v", got.signals)
	}
	if len(got.errs) != 1 || got.errs["MSFT"] == nil {
		t.Fatalf("expected an error for MSFT, got %+v", got.errs)
	}
}

func TestAppModelRendersSignals(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testServices())
	m.SetSize(100, 30)

	updated, _ := m.Update(signalsMsg{
		signals: map[string]*domain.Signal{
			"AAPL": {Symbol: "AAPL", Decision: domain.DecisionBuy, Score: 62, Confidence: 58, Price: 231.4, Reasons: []string{"Uptrend"}},
		},
		errs: map[string]error{},
	})
	model := updated.(*AppModel)

	view := model.View()
	for _, want := range []string{"AAPL", "62.0", "$231.40", "trader"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestAppModelQuitKey(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testServices())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.Quit")
	}
}

func TestRowsKeepWatchlistOrder(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testServices())
	m.signals["AAPL"] = &domain.Signal{Symbol: "AAPL", Decision: domain.DecisionHold, Score: 50, Confidence: 50, Price: 100}

	rows := m.rows()
	if len(rows) != 2 || rows[0][0] != "AAPL" || rows[1][0] != "MSFT" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[1][1] != "-" {
		t.Fatalf("missing signal should render a placeholder, got %v", rows[1])
	}
}
