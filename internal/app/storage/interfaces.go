package storage

import (
	"context"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
)

// ItemStore holds the canonical item collection. Implementations must
// serialize every operation so id assignment and existence checks never
// interleave.
type ItemStore interface {
	ListItems(ctx context.Context, filter item.Filter) ([]item.Item, error)
	CreateItem(ctx context.Context, in item.Input) (item.Item, error)
	UpdateItem(ctx context.Context, id string, patch item.Patch) (item.Item, error)
	DeleteItem(ctx context.Context, id string) error
	ClearItems(ctx context.Context) error
	CountItems(ctx context.Context) (int, error)
}

// Seeder is implemented by stores that can load an initial dataset.
type Seeder interface {
	// Seed creates every input in order only when the store is empty and
	// reports whether it did.
	Seed(ctx context.Context, inputs []item.Input) (bool, error)
}

// SeedableItemStore is an ItemStore that also supports seeding.
type SeedableItemStore interface {
	ItemStore
	Seeder
}
