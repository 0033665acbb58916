package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"paper-tiger/internal/domain"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	buyColor  = lipgloss.Color("#33cc33")
	sellColor = lipgloss.Color("#cc3300")
	holdColor = lipgloss.Color("#cccc00")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#0077cc")).
			Padding(0, 1)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333333")).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(holdColor).
			Padding(0, 1)
)

// SignalProvider is the slice of the signal service the dashboard needs.
type SignalProvider interface {
	GenerateSignal(ctx context.Context, symbol string) (*domain.Signal, error)
}

// Services carries everything an SSH session's dashboard depends on.
type Services struct {
	Signals   SignalProvider
	Watchlist []string
	Username  string
}

type signalsMsg struct {
	signals map[string]*domain.Signal
	errs    map[string]error
}

// AppModel is the bubbletea model behind the SSH dashboard.
type AppModel struct {
	svc     Services
	table   table.Model
	signals map[string]*domain.Signal
	status  string
	width   int
	height  int
	loading bool
}

func NewAppModel(svc Services) *AppModel {
	columns := []table.Column{
		{Title: "Symbol", Width: 10},
		{Title: "Decision", Width: 12},
		{Title: "Score", Width: 7},
		{Title: "Conf", Width: 7},
		{Title: "Price", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	styles.Selected = styles.Selected.Background(lipgloss.Color("#222222"))
	t.SetStyles(styles)

	return &AppModel{
		svc:     svc,
		table:   t,
		signals: make(map[string]*domain.Signal),
		status:  "Loading signals...",
		width:   120,
		height:  40,
		loading: true,
	}
}

// SetSize adjusts the layout before the first render, from the session pty.
func (m *AppModel) SetSize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
}

func (m *AppModel) Init() tea.Cmd {
	return fetchSignals(m.svc)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.loading {
				m.loading = true
				m.status = "Refreshing..."
				return m, fetchSignals(m.svc)
			}
		}

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case signalsMsg:
		m.loading = false
		for symbol, s := range msg.signals {
			m.signals[symbol] = s
		}
		m.table.SetRows(m.rows())
		if len(msg.errs) > 0 {
			failed := make([]string, 0, len(msg.errs))
			for symbol := range msg.errs {
				failed = append(failed, symbol)
			}
			sort.Strings(failed)
			m.status = fmt.Sprintf("Failed: %s", strings.Join(failed, ", "))
		} else {
			m.status = fmt.Sprintf("Updated %s", time.Now().Format("15:04:05"))
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *AppModel) View() string {
	title := titleStyle.Render(fmt.Sprintf("paper-tiger signals | %s", m.svc.Username))
	footer := footerStyle.Render("↑/↓ navigate · r refresh · q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		m.table.View(),
		"",
		m.detailView(),
		statusStyle.Render(m.status),
		footer,
	)
}

func (m *AppModel) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.svc.Watchlist))
	for _, symbol := range m.svc.Watchlist {
		s, ok := m.signals[symbol]
		if !ok {
			rows = append(rows, table.Row{symbol, "-", "-", "-", "-"})
			continue
		}
		rows = append(rows, table.Row{
			symbol,
			decisionText(s.Decision),
			fmt.Sprintf("%.1f", s.Score),
			fmt.Sprintf("%.1f", s.Confidence),
			fmt.Sprintf("$%.2f", s.Price),
		})
	}
	return rows
}

func (m *AppModel) detailView() string {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return detailStyle.Render("No symbol selected")
	}
	s, ok := m.signals[row[0]]
	if !ok {
		return detailStyle.Render(fmt.Sprintf("%s: no signal yet", row[0]))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s", s.Symbol, decisionText(s.Decision))
	if s.Sentiment != nil {
		fmt.Fprintf(&sb, "\nNews: %s (%d articles, conf %.0f)", s.Sentiment.Label, s.Sentiment.NewsCount, s.Sentiment.Confidence)
	}
	if len(s.Reasons) > 0 {
		fmt.Fprintf(&sb, "\n%s", strings.Join(s.Reasons, " · "))
	}
	return detailStyle.Render(sb.String())
}

func decisionText(d domain.Decision) string {
	var style lipgloss.Style
	switch {
	case d.IsBuy():
		style = lipgloss.NewStyle().Foreground(buyColor)
	case d.IsSell():
		style = lipgloss.NewStyle().Foreground(sellColor)
	default:
		style = lipgloss.NewStyle().Foreground(holdColor)
	}
	if d == domain.DecisionStrongBuy || d == domain.DecisionStrongSell {
		style = style.Bold(true)
	}
	return style.Render(string(d))
}

func fetchSignals(svc Services) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		msg := signalsMsg{
			signals: make(map[string]*domain.Signal),
			errs:    make(map[string]error),
		}
		for _, symbol := range svc.Watchlist {
			s, err := svc.Signals.GenerateSignal(ctx, symbol)
			if err != nil {
				msg.errs[symbol] = err
				continue
			}
			msg.signals[symbol] = s
		}
		return msg
	}
}
