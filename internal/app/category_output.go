package app

import "github.com/KasumiMercury/primind-payment-reminder/internal/domain"

type CategoryOutput struct {
	ID     string
	Name   string
	Kind   string
	Custom bool
}

type CategoriesOutput struct {
	Categories []CategoryOutput
	Count      int32
}

type AddCategoryInput struct {
	Name string
	Kind string
}

func fromCategory(c *domain.Category) CategoryOutput {
	out := CategoryOutput{
		Name:   c.Name(),
		Kind:   string(c.Kind()),
		Custom: c.IsCustom(),
	}

	if !c.ID().IsZero() {
		out.ID = c.ID().String()
	}

	return out
}

func fromCategories(categories []*domain.Category) CategoriesOutput {
	outputs := make([]CategoryOutput, 0, len(categories))
	for _, c := range categories {
		outputs = append(outputs, fromCategory(c))
	}

	return CategoriesOutput{
		Categories: outputs,
		Count:      int32(len(outputs)), //nolint:gosec
	}
}
