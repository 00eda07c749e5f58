package category

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// IncomeGroup is the name of the group whose categories hold inflows.
const IncomeGroup = "Income"

var ErrNoMappings = errors.New("provider category mappings unavailable")

// Category is a leaf of the budget taxonomy.
type Category struct {
	ID            uuid.UUID
	GroupID       uuid.UUID
	Name          string
	Discretionary bool
	Position      int
}

// Group owns a set of categories.
type Group struct {
	ID         uuid.UUID
	BudgetID   uuid.UUID
	Name       string
	Position   int
	Categories []Category
}

// IsIncome reports whether the group holds income categories.
func (g Group) IsIncome() bool {
	return strings.EqualFold(g.Name, IncomeGroup)
}

// Ref is a resolved category with a back-reference to its group.
type Ref struct {
	CategoryID    uuid.UUID
	CategoryName  string
	GroupID       uuid.UUID
	GroupName     string
	Discretionary bool
}

// IsIncome reports whether the referenced category sits in the income group.
func (r Ref) IsIncome() bool {
	return strings.EqualFold(r.GroupName, IncomeGroup)
}

// Taxonomy is a read-only index over a budget's groups for one analysis run.
type Taxonomy struct {
	groups []Group
	byID   map[uuid.UUID]Ref
	byName map[string]Ref
}

// NewTaxonomy indexes groups. Names are matched case-insensitively; the first
// category with a given name wins.
func NewTaxonomy(groups []Group) *Taxonomy {
	t := &Taxonomy{
		groups: groups,
		byID:   make(map[uuid.UUID]Ref),
		byName: make(map[string]Ref),
	}

	for _, g := range groups {
		for _, c := range g.Categories {
			ref := Ref{
				CategoryID:    c.ID,
				CategoryName:  c.Name,
				GroupID:       g.ID,
				GroupName:     g.Name,
				Discretionary: c.Discretionary,
			}
			t.byID[c.ID] = ref

			key := normalize(c.Name)
			if _, ok := t.byName[key]; !ok {
				t.byName[key] = ref
			}
		}
	}

	return t
}

// Groups returns the groups in their configured order.
func (t *Taxonomy) Groups() []Group {
	return t.groups
}

func (t *Taxonomy) ByID(id uuid.UUID) (Ref, bool) {
	ref, ok := t.byID[id]
	return ref, ok
}

func (t *Taxonomy) ByName(name string) (Ref, bool) {
	ref, ok := t.byName[normalize(name)]
	return ref, ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
