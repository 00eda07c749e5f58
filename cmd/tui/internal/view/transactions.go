package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/category"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

type txState int

const (
	txStateTimeframe txState = iota
	txStateList
	txStateEditing
)

type TransactionsModel struct {
	CommonModel
	txService       *transaction.Service
	categoryService *category.Service
	budgetID        uuid.UUID

	state           txState
	timeframePicker TimeframePicker
	table           table.Model
	form            *huh.Form
	txs             []*transaction.Transaction
	categories      map[uuid.UUID]string
	categoryOptions []huh.Option[uuid.UUID]

	filter  transaction.ListFilter
	label   string
	loading bool
	status  string
	err     error

	fields *txFields
}

type txFields struct {
	merchant   string
	note       string
	categoryID uuid.UUID
}

func NewTransactionsModel(txSvc *transaction.Service, catSvc *category.Service, budgetID uuid.UUID) TransactionsModel {
	return TransactionsModel{
		txService:       txSvc,
		categoryService: catSvc,
		budgetID:        budgetID,
		timeframePicker: NewTimeframePicker(),
		table: newTable([]table.Column{
			{Title: "ID", Width: 28},
			{Title: "Date", Width: 11},
			{Title: "Amount", Width: 10},
			{Title: "Merchant", Width: 28},
			{Title: "Category", Width: 18},
			{Title: "Note", Width: 20},
		}, 15),
		filter: transaction.ListFilter{BudgetID: budgetID},
		fields: &txFields{},
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateEditing:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return "e: edit | t: timeframe | r: refresh | Esc: back"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadCategoriesCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.filter.StartDate, m.filter.EndDate = nil, nil
		m.label = TimeframeAll.String()

		if !msg.All {
			m.filter.StartDate = &msg.Start
			m.filter.EndDate = &msg.End
			m.label = fmt.Sprintf("%s to %s", FormatDate(msg.Start), FormatDate(msg.End))
		}

		m.state = txStateList
		m.loading = true

		return m, m.loadCmd()

	case loadTxsMsg:
		m.loading = false
		m.err = msg.err
		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case loadCategoriesMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.categories = make(map[uuid.UUID]string)
		m.categoryOptions = []huh.Option[uuid.UUID]{huh.NewOption("Uncategorized", uuid.Nil)}

		for _, g := range msg.groups {
			for _, c := range g.Categories {
				m.categories[c.ID] = c.Name
				m.categoryOptions = append(m.categoryOptions, huh.NewOption(g.Name+" / "+c.Name, c.ID))
			}
		}

		return m, nil

	case txSavedMsg:
		m.state = txStateList
		m.form = nil
		m.table.Focus()
		m.status = ""

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error saving: %v", msg.err))
			return m, nil
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd
	case txStateEditing:
		return m.updateEdit(msg)
	}

	return m.updateList(msg)
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "t":
			m.state = txStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterEditMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransactionsModel) enterEditMode() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	f := &txFields{merchant: tx.Merchant, note: tx.Note}
	if tx.CategoryID != nil {
		f.categoryID = *tx.CategoryID
	}

	m.fields = f

	fields := []huh.Field{
		huh.NewInput().Title("Merchant").Value(&f.merchant).Validate(required("merchant")),
		huh.NewInput().Title("Note").Value(&f.note),
	}

	if len(m.categoryOptions) > 0 {
		fields = append(fields, huh.NewSelect[uuid.UUID]().
			Title("Category").
			Options(m.categoryOptions...).
			Height(8).
			Value(&f.categoryID))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)
	m.state = txStateEditing
	m.table.Blur()

	return m, m.form.Init()
}

func (m TransactionsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateList
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

	return m, m.saveCmd()
}

func (m TransactionsModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		cat := ""
		if tx.CategoryID != nil {
			cat = m.categories[*tx.CategoryID]
		}

		rows = append(rows, table.Row{
			tx.UserTxID,
			FormatDate(tx.Date),
			FormatAmount(tx.Amount),
			tx.Merchant,
			cat,
			tx.Note,
		})
	}

	m.table.SetRows(rows)
}

func (m TransactionsModel) View() string {
	if m.state == txStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	header := fmt.Sprintf("Timeframe: %s | %d transactions (outflows positive)", activeStyle(m.label), len(m.txs))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxStyle.Render(m.table.View()),
	)

	if m.state == txStateEditing && m.form != nil {
		name := ""
		if tx := m.selected(); tx != nil {
			name = tx.Name
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Edit Transaction\n\nOriginal: %s\n\n%s", name, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + faintStyle.Render(m.ShortHelp()))
}

// details builds the edit for tx, leaving unchanged fields out.
func (f *txFields) details(tx *transaction.Transaction) transaction.Details {
	var d transaction.Details

	if merchant := strings.TrimSpace(f.merchant); merchant != tx.Merchant {
		d.Merchant = &merchant
	}

	if f.note != tx.Note {
		d.Note = new(f.note)
	}

	if f.categoryID != uuid.Nil && (tx.CategoryID == nil || *tx.CategoryID != f.categoryID) {
		d.CategoryID = new(f.categoryID)
	}

	return d
}

// Messages

type loadTxsMsg struct {
	txs []*transaction.Transaction
	err error
}

type loadCategoriesMsg struct {
	groups []category.Group
	err    error
}

type txSavedMsg struct {
	err error
}

func (m TransactionsModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return loadTxsMsg{txs: txs, err: err}
	}
}

func (m TransactionsModel) loadCategoriesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		groups, err := m.categoryService.Groups(ctx, m.budgetID)

		return loadCategoriesMsg{groups: groups, err: err}
	}
}

func (m TransactionsModel) saveCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	d := m.fields.details(tx)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.txService.UpdateDetails(ctx, tx.ID, d)

		return txSavedMsg{err: err}
	}
}
