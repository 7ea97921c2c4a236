// Package storage persists wizard drafts and finished products. Two backends
// share one contract: GormStore (postgres in production) and MemoryStore.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/drafts"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Drafts is the draft store of the product wizard.
type Drafts interface {
	// Save merges fields into the stored draft of step; fields not present in
	// the call are kept.
	Save(ctx context.Context, seller uuid.UUID, step drafts.Step, fields drafts.Fields) error
	// Load returns the stored draft, or an empty one when nothing is stored or
	// the stored value cannot be decoded.
	Load(ctx context.Context, seller uuid.UUID, step drafts.Step) (drafts.Fields, error)
	// Clear removes the drafts of the given steps; no steps means every step
	// plus the legacy basic info key.
	Clear(ctx context.Context, seller uuid.UUID, steps ...drafts.Step) error
}

type ProductSort string

const (
	SortLatest    ProductSort = "latest"
	SortPriceLow  ProductSort = "price_low"
	SortPriceHigh ProductSort = "price_high"
)

type ProductFilter struct {
	Query    string
	Category string
	MinPrice int64
	MaxPrice int64
	Sort     ProductSort
	Page     int
	Limit    int
}

func (f ProductFilter) normalized() ProductFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	return f
}

func (f ProductFilter) offset() int {
	return (f.Page - 1) * f.Limit
}

type Products interface {
	// NextID returns max(existing ids) + 1, or 1 when there are no products.
	NextID(ctx context.Context) (uint, error)
	Create(ctx context.Context, p *models.Product) error
	Get(ctx context.Context, id uint) (*models.Product, error)
	ListBySeller(ctx context.Context, seller uuid.UUID) ([]models.Product, error)
	ListPublished(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	Categories(ctx context.Context) ([]string, error)
}

type Repos interface {
	Drafts() Drafts
	Products() Products
	Users() Users
}

// Store is a Repos that can run a unit of work atomically: either every
// write made through the Repos passed to fn is kept, or none is.
type Store interface {
	Repos
	Transaction(ctx context.Context, fn func(tx Repos) error) error
}

// LoadComposite reads the three step drafts of a seller.
func LoadComposite(ctx context.Context, d Drafts, seller uuid.UUID) (drafts.Composite, error) {
	var c drafts.Composite
	for _, step := range drafts.Steps {
		f, err := d.Load(ctx, seller, step)
		if err != nil {
			return drafts.Composite{}, err
		}
		c.Put(step, f)
	}
	return c, nil
}
