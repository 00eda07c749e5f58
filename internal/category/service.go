package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Repository interface {
	ListGroups(ctx context.Context, budgetID uuid.UUID) ([]Group, error)
	LoadMapping(ctx context.Context) (Mapping, error)
	CreateMapping(ctx context.Context, providerCategory, categoryName string, detailed bool) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Load reads the taxonomy and the provider mapping for one analysis run.
// A mapping with neither table available is fatal.
func (s *Service) Load(ctx context.Context, budgetID uuid.UUID) (*Taxonomy, Mapping, error) {
	groups, err := s.repo.ListGroups(ctx, budgetID)
	if err != nil {
		return nil, Mapping{}, fmt.Errorf("list category groups: %w", err)
	}

	mapping, err := s.repo.LoadMapping(ctx)
	if err != nil {
		return nil, Mapping{}, fmt.Errorf("load category mapping: %w", err)
	}

	if mapping.Empty() {
		return nil, Mapping{}, ErrNoMappings
	}

	return NewTaxonomy(groups), mapping, nil
}

func (s *Service) Groups(ctx context.Context, budgetID uuid.UUID) ([]Group, error) {
	groups, err := s.repo.ListGroups(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list category groups: %w", err)
	}

	return groups, nil
}

// Learn remembers which taxonomy category a provider category maps to.
func (s *Service) Learn(ctx context.Context, providerCategory, categoryName string, detailed bool) error {
	return s.repo.CreateMapping(ctx, providerCategory, categoryName, detailed)
}
