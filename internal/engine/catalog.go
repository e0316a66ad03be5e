package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrProductUnknown is returned for decisions on products the catalog
// does not know.
var ErrProductUnknown = errors.New("unknown product")

// ProductInfo carries the own-side economics for one product, supplied
// by the external catalog system.
type ProductInfo struct {
	ProductID     string  `json:"product_id"`
	OwnPrice      float64 `json:"own_price"`
	CostBasis     float64 `json:"cost_basis"`
	MarginFloor   float64 `json:"margin_floor"`
	PriceCeiling  float64 `json:"price_ceiling"`
	CurrentDemand float64 `json:"current_demand"` // recent units/period, demand-curve anchor
}

// Catalog resolves product economics at decision time.
type Catalog interface {
	Get(ctx context.Context, productID string) (*ProductInfo, error)
}

// StaticCatalog is an in-memory Catalog fed by configuration or the
// admin interface.
type StaticCatalog struct {
	mu       sync.RWMutex
	products map[string]*ProductInfo
}

// NewStaticCatalog creates an empty catalog.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{products: make(map[string]*ProductInfo)}
}

// Compile-time interface check.
var _ Catalog = (*StaticCatalog)(nil)

// Upsert installs or replaces one product's economics.
func (c *StaticCatalog) Upsert(info *ProductInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *info
	c.products[info.ProductID] = &cp
}

// Get resolves one product. Returns ErrProductUnknown if absent.
func (c *StaticCatalog) Get(_ context.Context, productID string) (*ProductInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, ok := c.products[productID]
	if !ok {
		return nil, ErrProductUnknown
	}
	cp := *info
	return &cp, nil
}

// List returns a copy of every known product, sorted by product ID.
func (c *StaticCatalog) List() []*ProductInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]*ProductInfo, 0, len(c.products))
	for _, info := range c.products {
		cp := *info
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list
}
