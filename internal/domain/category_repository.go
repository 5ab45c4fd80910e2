package domain

import "context"

//go:generate mockgen -source=category_repository.go -destination=category_repository_mock.go -package=domain

type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id CategoryID) error
	List(ctx context.Context) ([]*Category, error)
}
