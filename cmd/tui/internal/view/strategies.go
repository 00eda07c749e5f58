package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

// StrategyModel browses the category targets of each strategy.
type StrategyModel struct {
	CommonModel
	result  recommendation.Result
	current int
	table   table.Model
}

func NewStrategyModel(result recommendation.Result) StrategyModel {
	t := newTable([]table.Column{
		{Title: "Group", Width: 20},
		{Title: "Category", Width: 24},
		{Title: "Type", Width: 6},
		{Title: "Baseline", Width: 12},
		{Title: "Target", Width: 12},
	}, 15)

	m := StrategyModel{result: result, table: t}
	m.refreshTable()

	return m
}

func (m StrategyModel) Title() string { return "Strategies" }

func (m StrategyModel) ShortHelp() string {
	return "Tab: next strategy | Shift+Tab: previous | Esc: back"
}

func (m StrategyModel) Init() tea.Cmd {
	return nil
}

func (m StrategyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-14, 5))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "tab":
			m.cycle(1)
			return m, nil
		case "shift+tab":
			m.cycle(-1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *StrategyModel) cycle(step int) {
	n := len(m.result.Plans)
	if n == 0 {
		return
	}

	m.current = (m.current + step + n) % n
	m.refreshTable()
}

func (m *StrategyModel) refreshTable() {
	var rows []table.Row

	if len(m.result.Plans) > 0 {
		for _, g := range m.result.Plans[m.current].Groups {
			for _, c := range g.Categories {
				kind := "fixed"
				if c.Discretionary {
					kind = "disc"
				}

				rows = append(rows, table.Row{g.Name, c.Name, kind, FormatAmount(c.Baseline), FormatAmount(c.Amount)})
			}
		}
	}

	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m StrategyModel) View() string {
	if len(m.result.Plans) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No recommendations available.\n\n(Esc to go back)")
	}

	p := m.result.Plans[m.current]

	tabs := ""
	for i, other := range m.result.Plans {
		label := string(other.Strategy)
		if i == m.current {
			label = activeStyle("[" + label + "]")
		}

		tabs += label + "  "
	}

	summary := fmt.Sprintf(
		"Income %s | Fixed %s | Discretionary %s (change %s) | Available %s | Goals %d",
		FormatAmount(p.Income),
		FormatAmount(p.NonDiscretionary),
		FormatAmount(p.Discretionary),
		FormatAmount(p.Change),
		FormatAmount(p.Available),
		len(p.Goals),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		"",
		summary,
		"",
		boxStyle.Render(m.table.View()),
		faintStyle.Render(m.ShortHelp()),
	))
}
