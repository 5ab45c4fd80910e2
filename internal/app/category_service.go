package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

// CategoryService serves the built-in categories plus the user's custom ones,
// caching the custom list after the first load.
type CategoryService struct {
	repo domain.CategoryRepository

	mu       sync.Mutex
	defaults map[domain.CategoryKind][]*domain.Category
	custom   []*domain.Category
	loaded   bool
}

func NewCategoryService(repo domain.CategoryRepository) *CategoryService {
	return &CategoryService{
		repo: repo,
		defaults: map[domain.CategoryKind][]*domain.Category{
			domain.CategoryExpense: domain.DefaultCategories(domain.CategoryExpense),
			domain.CategoryIncome:  domain.DefaultCategories(domain.CategoryIncome),
		},
	}
}

// Refresh reloads the custom categories from the store and returns the full
// list of both kinds.
func (s *CategoryService) Refresh(ctx context.Context) (CategoriesOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return CategoriesOutput{}, err
	}

	all := append(s.mergedLocked(domain.CategoryExpense), s.mergedLocked(domain.CategoryIncome)...)

	return fromCategories(all), nil
}

// List returns the categories of a kind. An empty kind lists both. The store
// is only read if nothing has been loaded yet.
func (s *CategoryService) List(ctx context.Context, kind string) (CategoriesOutput, error) {
	kinds := []domain.CategoryKind{domain.CategoryExpense, domain.CategoryIncome}
	if kind != "" {
		k, err := domain.NewCategoryKind(kind)
		if err != nil {
			return CategoriesOutput{}, NewValidationError("kind", err.Error())
		}

		kinds = []domain.CategoryKind{k}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := s.loadLocked(ctx); err != nil {
			return CategoriesOutput{}, err
		}
	}

	var all []*domain.Category
	for _, k := range kinds {
		all = append(all, s.mergedLocked(k)...)
	}

	return fromCategories(all), nil
}

func (s *CategoryService) Add(ctx context.Context, input AddCategoryInput) (CategoryOutput, error) {
	kind, err := domain.NewCategoryKind(input.Kind)
	if err != nil {
		return CategoryOutput{}, NewValidationError("kind", err.Error())
	}

	category, err := domain.NewCustomCategory(input.Name, kind)
	if err != nil {
		return CategoryOutput{}, NewValidationError("name", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := s.loadLocked(ctx); err != nil {
			return CategoryOutput{}, err
		}
	}

	for _, c := range s.mergedLocked(kind) {
		if c.SameName(category) {
			return CategoryOutput{}, fmt.Errorf("%w: %v", ErrAlreadyExists, domain.ErrDuplicateCategory)
		}
	}

	if err := s.repo.Save(ctx, category); err != nil {
		slog.ErrorContext(ctx, "failed to save category",
			"error", err,
			"name", category.Name(),
		)

		return CategoryOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.custom = append(s.custom, category)

	slog.InfoContext(ctx, "category added",
		"category_id", category.ID().String(),
		"kind", string(kind),
	)

	return fromCategory(category), nil
}

func (s *CategoryService) Delete(ctx context.Context, rawID string) error {
	id, err := domain.CategoryIDFromString(rawID)
	if err != nil {
		return NewValidationError("id", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}

		slog.ErrorContext(ctx, "failed to delete category",
			"error", err,
			"category_id", rawID,
		)

		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	kept := s.custom[:0]
	for _, c := range s.custom {
		if !c.ID().Equals(id) {
			kept = append(kept, c)
		}
	}
	s.custom = kept

	return nil
}

func (s *CategoryService) loadLocked(ctx context.Context) error {
	custom, err := s.repo.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load custom categories",
			"error", err,
		)

		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.custom = custom
	s.loaded = true

	slog.DebugContext(ctx, "custom categories loaded",
		"count", len(custom),
	)

	return nil
}

func (s *CategoryService) mergedLocked(kind domain.CategoryKind) []*domain.Category {
	merged := make([]*domain.Category, 0, len(s.defaults[kind])+len(s.custom))
	merged = append(merged, s.defaults[kind]...)

	for _, c := range s.custom {
		if c.Kind() == kind {
			merged = append(merged, c)
		}
	}

	return merged
}
