package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/analysis"
	"github.com/MrJamesThe3rd/finplan/internal/budget"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

// An analysis can wait on three provider attempts per item.
const analysisTimeout = 3 * time.Minute

type analysisState int

const (
	analysisStateIdle analysisState = iota
	analysisStateRunning
	analysisStateResult
)

// ShowPlansMsg asks the root model to open the strategy browser.
type ShowPlansMsg struct {
	Result recommendation.Result
}

type AnalysisModel struct {
	CommonModel
	analysisService *analysis.Service
	budgetService   *budget.Service
	budgetID        uuid.UUID

	state   analysisState
	spinner spinner.Model
	report  *analysis.Report
	stored  *budget.Spending
	err     error
}

func NewAnalysisModel(svc *analysis.Service, budgets *budget.Service, budgetID uuid.UUID) AnalysisModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return AnalysisModel{
		analysisService: svc,
		budgetService:   budgets,
		budgetID:        budgetID,
		spinner:         s,
	}
}

func (m AnalysisModel) Title() string { return "Analysis" }

func (m AnalysisModel) ShortHelp() string {
	switch m.state {
	case analysisStateRunning:
		return "Analyzing..."
	case analysisStateResult:
		return "Enter: browse strategies | r: run again | Esc: back"
	}

	return "r: run analysis | Enter: browse stored strategies | Esc: back"
}

func (m AnalysisModel) Init() tea.Cmd {
	return m.loadStoredCmd()
}

func (m AnalysisModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case storedSpendingMsg:
		if msg.err != nil && !errors.Is(msg.err, budget.ErrNoAnalysis) {
			m.err = msg.err
		}

		m.stored = msg.spending

		return m, nil

	case analysisResultMsg:
		m.state = analysisStateResult
		m.report = msg.report
		m.err = msg.err

		return m, nil

	case spinner.TickMsg:
		if m.state != analysisStateRunning {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		if m.state == analysisStateRunning {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.state = analysisStateRunning
			m.err = nil

			return m, tea.Batch(m.spinner.Tick, m.runCmd())
		case "enter":
			return m, m.showPlans()
		}
	}

	return m, nil
}

func (m AnalysisModel) showPlans() tea.Cmd {
	var result recommendation.Result

	switch {
	case m.report != nil:
		result = m.report.Recommendations
	case m.stored != nil:
		result = m.stored.Recommendations
	default:
		return nil
	}

	return func() tea.Msg { return ShowPlansMsg{Result: result} }
}

func (m AnalysisModel) View() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	switch m.state {
	case analysisStateRunning:
		return style.Render(fmt.Sprintf("%s Reconciling transactions and building recommendations...", m.spinner.View()))
	case analysisStateResult:
		if m.err != nil {
			return style.Render(errorStyle.Render(fmt.Sprintf("Analysis failed: %v", m.err)) + "\n\n(r to retry, Esc to go back)")
		}

		return style.Render(renderReport(m.report))
	}

	body := "No analysis has been run for this budget yet."
	if m.stored != nil {
		body = fmt.Sprintf("Last analysis: %s\n\n%s",
			m.stored.AnalyzedAt.Format(time.RFC1123), renderPlans(m.stored.Recommendations))
	}

	if m.err != nil {
		body += "\n\n" + errorStyle.Render(m.err.Error())
	}

	return style.Render(body + "\n\n" + faintStyle.Render(m.ShortHelp()))
}

func renderReport(r *analysis.Report) string {
	var b strings.Builder

	b.WriteString(successStyle.Render("Analysis complete") + "\n\n")
	fmt.Fprintf(&b, "Transactions: %d linked, %d unlinked, %d new, %d uncategorized\n",
		r.Linked, r.Unlinked, r.New, r.Uncategorized)
	fmt.Fprintf(&b, "Goals planned: %d\n", len(r.Goals))

	for _, s := range r.Skipped {
		fmt.Fprintf(&b, "%s\n", errorStyle.Render(fmt.Sprintf("Skipped goal %q: %s", s.Name, s.Reason)))
	}

	b.WriteString("\n" + renderPlans(r.Recommendations))

	return b.String()
}

func renderPlans(r recommendation.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-14s %12s %12s %12s\n", "Strategy", "Income", "Spending", "Available")

	for _, p := range r.Plans {
		fmt.Fprintf(&b, "%-14s %12s %12s %12s\n",
			p.Strategy, FormatAmount(p.Income), FormatAmount(p.Spending()), FormatAmount(p.Available))
	}

	return b.String()
}

type analysisResultMsg struct {
	report *analysis.Report
	err    error
}

type storedSpendingMsg struct {
	spending *budget.Spending
	err      error
}

func (m AnalysisModel) runCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
		defer cancel()

		report, err := m.analysisService.Run(ctx, m.budgetID)

		return analysisResultMsg{report: report, err: err}
	}
}

func (m AnalysisModel) loadStoredCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sp, err := m.budgetService.LoadSpending(ctx, m.budgetID)

		return storedSpendingMsg{spending: sp, err: err}
	}
}
