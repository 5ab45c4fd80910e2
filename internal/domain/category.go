package domain

import (
	"errors"
	"fmt"
	"strings"
)

type CategoryKind string

const (
	CategoryIncome  CategoryKind = "income"
	CategoryExpense CategoryKind = "expense"
)

var (
	ErrInvalidCategoryKind = errors.New("invalid category kind")
	ErrEmptyCategoryName   = errors.New("category name cannot be empty")
	ErrDuplicateCategory   = errors.New("category already exists")
)

func NewCategoryKind(s string) (CategoryKind, error) {
	switch CategoryKind(s) {
	case CategoryIncome, CategoryExpense:
		return CategoryKind(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidCategoryKind, s)
	}
}

type Category struct {
	id     CategoryID
	name   string
	kind   CategoryKind
	custom bool
}

// NewCustomCategory creates a user-defined category.
func NewCustomCategory(name string, kind CategoryKind) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyCategoryName
	}

	if _, err := NewCategoryKind(string(kind)); err != nil {
		return nil, err
	}

	return &Category{
		id:     NewCategoryID(),
		name:   name,
		kind:   kind,
		custom: true,
	}, nil
}

func ReconstituteCategory(id CategoryID, name string, kind CategoryKind) *Category {
	return &Category{
		id:     id,
		name:   name,
		kind:   kind,
		custom: true,
	}
}

func (c *Category) ID() CategoryID {
	return c.id
}

func (c *Category) Name() string {
	return c.name
}

func (c *Category) Kind() CategoryKind {
	return c.kind
}

func (c *Category) IsCustom() bool {
	return c.custom
}

// SameName reports whether both categories would show up as the same entry.
func (c *Category) SameName(other *Category) bool {
	return c.kind == other.kind && strings.EqualFold(c.name, other.name)
}

var defaultCategoryNames = map[CategoryKind][]string{
	CategoryExpense: {"Food", "Transport", "Shopping", "Bills", "Entertainment", "Health", "Education", "Other"},
	CategoryIncome:  {"Salary", "Bonus", "Investment", "Gift", "Other"},
}

// DefaultCategories returns the built-in categories of a kind. They have no
// ID and are never stored.
func DefaultCategories(kind CategoryKind) []*Category {
	names := defaultCategoryNames[kind]

	categories := make([]*Category, 0, len(names))
	for _, n := range names {
		categories = append(categories, &Category{name: n, kind: kind})
	}

	return categories
}
