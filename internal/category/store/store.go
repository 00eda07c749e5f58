package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/category"
)

const (
	kindDetailed = "detailed"
	kindPrimary  = "primary"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListGroups(ctx context.Context, budgetID uuid.UUID) ([]category.Group, error) {
	query := `
		SELECT g.id, g.name, g.position, c.id, c.name, c.discretionary, c.position
		FROM category_groups g
		LEFT JOIN categories c ON c.group_id = g.id
		WHERE g.budget_id = $1
		ORDER BY g.position ASC, c.position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("listing category groups: %w", err)
	}
	defer rows.Close()

	var groups []category.Group

	index := make(map[uuid.UUID]int)

	for rows.Next() {
		var (
			g             category.Group
			catID         *uuid.UUID
			catName       sql.NullString
			discretionary sql.NullBool
			catPos        sql.NullInt64
		)

		if err := rows.Scan(&g.ID, &g.Name, &g.Position, &catID, &catName, &discretionary, &catPos); err != nil {
			return nil, fmt.Errorf("scanning category group: %w", err)
		}

		i, ok := index[g.ID]
		if !ok {
			g.BudgetID = budgetID
			groups = append(groups, g)
			i = len(groups) - 1
			index[g.ID] = i
		}

		if catID == nil {
			continue
		}

		groups[i].Categories = append(groups[i].Categories, category.Category{
			ID:            *catID,
			GroupID:       g.ID,
			Name:          catName.String,
			Discretionary: discretionary.Bool,
			Position:      int(catPos.Int64),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return groups, nil
}

// LoadMapping returns nil tables for kinds that have no rows so the caller can
// tell an unavailable table from an empty one.
func (s *Store) LoadMapping(ctx context.Context) (category.Mapping, error) {
	query := `
		SELECT provider_category, category_name, kind
		FROM category_mappings
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return category.Mapping{}, fmt.Errorf("loading category mappings: %w", err)
	}
	defer rows.Close()

	var m category.Mapping

	for rows.Next() {
		var provider, name, kind string
		if err := rows.Scan(&provider, &name, &kind); err != nil {
			return category.Mapping{}, fmt.Errorf("scanning category mapping: %w", err)
		}

		switch kind {
		case kindDetailed:
			if m.Detailed == nil {
				m.Detailed = make(map[string]string)
			}

			m.Detailed[provider] = name
		case kindPrimary:
			if m.Primary == nil {
				m.Primary = make(map[string]string)
			}

			m.Primary[provider] = name
		}
	}

	if err := rows.Err(); err != nil {
		return category.Mapping{}, fmt.Errorf("iterating category mappings: %w", err)
	}

	return m, nil
}

func (s *Store) CreateMapping(ctx context.Context, providerCategory, categoryName string, detailed bool) error {
	kind := kindPrimary
	if detailed {
		kind = kindDetailed
	}

	query := `
		INSERT INTO category_mappings (provider_category, category_name, kind, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (provider_category, kind) DO UPDATE SET category_name = EXCLUDED.category_name
	`

	_, err := s.db.ExecContext(ctx, query, providerCategory, categoryName, kind)
	if err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}
