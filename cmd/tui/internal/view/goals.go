package view

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

type goalsState int

const (
	goalsStateList goalsState = iota
	goalsStateSchedule
	goalsStateCreate
	goalsStateDelete
)

type GoalsModel struct {
	CommonModel
	goalService *goal.Service
	budgetID    uuid.UUID

	state    goalsState
	table    table.Model
	schedule table.Model
	goals    []*goal.Goal
	form     *huh.Form
	status   string
	err      error

	fields *goalFields
}

// goalFields holds the form bindings. It is shared by pointer because the
// model is copied on every update while the form keeps writing to it.
type goalFields struct {
	name     string
	typ      goal.Type
	amount   string
	date     string
	strategy recommendation.Strategy
	lender   string
	rate     string
	minimum  string
	confirm  bool
}

func NewGoalsModel(svc *goal.Service, budgetID uuid.UUID) GoalsModel {
	return GoalsModel{
		goalService: svc,
		budgetID:    budgetID,
		fields:      &goalFields{},
		table: newTable([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Type", Width: 11},
			{Title: "Amount", Width: 12},
			{Title: "Target", Width: 11},
			{Title: "Strategy", Width: 13},
			{Title: "Scheduled", Width: 12},
		}, 12),
		schedule: newTable([]table.Column{
			{Title: "Month", Width: 8},
			{Title: "Start", Width: 12},
			{Title: "Date", Width: 11},
			{Title: "Target", Width: 12},
			{Title: "Actual", Width: 12},
		}, 12),
	}
}

func (m GoalsModel) Title() string { return "Goals" }

func (m GoalsModel) ShortHelp() string {
	switch m.state {
	case goalsStateSchedule:
		return "Esc: back to goals"
	case goalsStateCreate, goalsStateDelete:
		return "Esc: cancel"
	}

	return "Enter: schedule | n: new goal | d: delete | r: refresh | Esc: back"
}

func (m GoalsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m GoalsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadGoalsMsg:
		m.err = msg.err
		m.goals = msg.goals
		m.refreshTable()

		return m, nil

	case goalSavedMsg:
		m.state = goalsStateList
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		m.status = successStyle.Render(msg.status)

		return m, m.loadCmd()
	}

	switch m.state {
	case goalsStateSchedule:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = goalsStateList
			return m, nil
		}

		var cmd tea.Cmd
		m.schedule, cmd = m.schedule.Update(msg)

		return m, cmd
	case goalsStateCreate, goalsStateDelete:
		return m.updateForm(msg)
	}

	return m.updateList(msg)
}

func (m GoalsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "enter":
			if g := m.selected(); g != nil {
				m.schedule.SetRows(scheduleRows(g.Tracking))
				m.state = goalsStateSchedule
			}

			return m, nil
		case "n":
			return m.enterCreate()
		case "d":
			if m.selected() == nil {
				return m, nil
			}

			m.fields.confirm = false
			m.form = huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete goal %q?", m.selected().Name)).
					Value(&m.fields.confirm),
			)).WithShowHelp(false)
			m.state = goalsStateDelete
			m.table.Blur()

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m GoalsModel) enterCreate() (tea.Model, tea.Cmd) {
	f := &goalFields{typ: goal.TypeSavings, strategy: recommendation.Balanced}
	m.fields = f

	strategies := make([]huh.Option[recommendation.Strategy], 0, len(recommendation.Strategies))
	for _, s := range recommendation.Strategies {
		strategies = append(strategies, huh.NewOption(string(s), s))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&f.name).Validate(required("name")),
			huh.NewSelect[goal.Type]().
				Title("Type").
				Options(
					huh.NewOption("Savings", goal.TypeSavings),
					huh.NewOption("Debt", goal.TypeDebt),
					huh.NewOption("Investment", goal.TypeInvestment),
				).
				Value(&f.typ),
			huh.NewInput().Title("Amount").Placeholder("5000.00").Value(&f.amount).Validate(positiveAmount),
			huh.NewInput().Title("Target date").Placeholder("YYYY-MM-DD").Value(&f.date).Validate(futureDate),
			huh.NewSelect[recommendation.Strategy]().Title("Tracking strategy").Options(strategies...).Value(&f.strategy),
		),
		huh.NewGroup(
			huh.NewInput().Title("Lender").Value(&f.lender).Validate(required("lender")),
			huh.NewInput().Title("Interest rate").Placeholder("4.5").Value(&f.rate).Validate(decimalInput),
			huh.NewInput().Title("Minimum payment").Placeholder("150.00").Value(&f.minimum).Validate(decimalInput),
		).WithHideFunc(func() bool { return f.typ != goal.TypeDebt }),
	).WithWidth(50).WithShowHelp(false)

	m.state = goalsStateCreate
	m.table.Blur()

	return m, m.form.Init()
}

func (m GoalsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = goalsStateList
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == goalsStateDelete {
		return m, m.deleteCmd()
	}

	return m, m.createCmd()
}

func (m GoalsModel) selected() *goal.Goal {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.goals) {
		return nil
	}

	return m.goals[idx]
}

func (m *GoalsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.goals))
	for _, g := range m.goals {
		rows = append(rows, table.Row{
			g.Name,
			string(g.Type),
			FormatAmount(g.Amount),
			FormatDate(g.TargetDate),
			string(g.TrackingStrategy()),
			FormatAmount(g.Tracking.Total()),
		})
	}

	m.table.SetRows(rows)
}

func scheduleRows(t goal.Tracking) []table.Row {
	months := make([]string, 0, len(t))
	for month := range t {
		months = append(months, month)
	}

	slices.Sort(months)

	var rows []table.Row

	for _, month := range months {
		mt := t[month]
		for _, a := range mt.Allocations {
			actual := "-"
			if a.Actual != nil {
				actual = FormatAmount(*a.Actual)
			}

			rows = append(rows, table.Row{month, FormatAmount(mt.StartingBalance), FormatDate(a.Date), FormatAmount(a.Target), actual})
		}
	}

	return rows
}

func (m GoalsModel) View() string {
	var content string

	switch m.state {
	case goalsStateSchedule:
		name := ""
		if g := m.selected(); g != nil {
			name = g.Name
		}

		content = lipgloss.JoinVertical(lipgloss.Left,
			fmt.Sprintf("Tracking schedule: %s", activeStyle(name)),
			"",
			boxStyle.Render(m.schedule.View()),
		)
	case goalsStateCreate, goalsStateDelete:
		content = m.form.View()
	default:
		if len(m.goals) == 0 && m.err == nil {
			content = "No goals yet. Press n to add one."
		} else {
			content = boxStyle.Render(m.table.View())
		}
	}

	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + content
	}

	if m.status != "" && m.state == goalsStateList {
		content = m.status + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + faintStyle.Render(m.ShortHelp()))
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func decimalInput(s string) error {
	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return errors.New("not a number")
	}

	return nil
}

func positiveAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("not a number")
	}

	if !d.IsPositive() {
		return errors.New("must be positive")
	}

	return nil
}

func futureDate(s string) error {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return errors.New("use YYYY-MM-DD")
	}

	if !d.After(time.Now()) {
		return errors.New("must be in the future")
	}

	return nil
}

// params converts the validated form input into create params.
func (f *goalFields) params(budgetID uuid.UUID) goal.CreateParams {
	p := goal.CreateParams{
		BudgetID: budgetID,
		Name:     strings.TrimSpace(f.name),
		Type:     f.typ,
		Strategy: f.strategy,
	}

	p.Amount, _ = decimal.NewFromString(strings.TrimSpace(f.amount))
	p.TargetDate, _ = time.Parse(time.DateOnly, strings.TrimSpace(f.date))

	if f.typ == goal.TypeDebt {
		rate, _ := decimal.NewFromString(strings.TrimSpace(f.rate))
		minimum, _ := decimal.NewFromString(strings.TrimSpace(f.minimum))
		p.Debt = &goal.Debt{Lender: strings.TrimSpace(f.lender), InterestRate: rate, MinimumPayment: minimum}
	}

	return p
}

// Messages

type loadGoalsMsg struct {
	goals []*goal.Goal
	err   error
}

type goalSavedMsg struct {
	status string
	err    error
}

func (m GoalsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		goals, err := m.goalService.List(ctx, m.budgetID)

		return loadGoalsMsg{goals: goals, err: err}
	}
}

func (m GoalsModel) createCmd() tea.Cmd {
	params := m.fields.params(m.budgetID)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		g, err := m.goalService.Create(ctx, params)
		if err != nil {
			return goalSavedMsg{err: err}
		}

		return goalSavedMsg{status: fmt.Sprintf("Created goal %q. Run an analysis to schedule it.", g.Name)}
	}
}

func (m GoalsModel) deleteCmd() tea.Cmd {
	g := m.selected()
	if g == nil || !m.fields.confirm {
		return func() tea.Msg { return goalSavedMsg{status: "Nothing deleted."} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.goalService.Delete(ctx, m.budgetID, g.ID); err != nil {
			return goalSavedMsg{err: err}
		}

		return goalSavedMsg{status: fmt.Sprintf("Deleted goal %q.", g.Name)}
	}
}
