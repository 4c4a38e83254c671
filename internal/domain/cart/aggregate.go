package cart

import (
	"math"

	"github.com/basketful/storefront/internal/domain/catalog"
	"github.com/google/uuid"
)

// Pricing holds the flat pricing constants used for cart totals. The unit
// price is applied to every quantity regardless of the ingredient's own price.
type Pricing struct {
	UnitPrice    float64
	PackagingFee float64
}

// DefaultPricing is the storefront's flat pricing
var DefaultPricing = Pricing{UnitPrice: 10, PackagingFee: 20}

// DishGroup is the set of rows sharing one dish id
type DishGroup struct {
	DishID uuid.UUID
	People int
	Rows   []Row
}

// Partition is the result of splitting rows by dish membership
type Partition struct {
	Groups     []DishGroup
	Standalone []Row
}

// PartitionRows splits rows into dish groups and standalone rows. A group's people
// count comes from the first row seen for that dish. Groups keep the order in
// which their dish first appears.
func PartitionRows(rows []Row) Partition {
	var p Partition
	index := make(map[uuid.UUID]int)

	for _, row := range rows {
		if row.IsStandalone() {
			p.Standalone = append(p.Standalone, row)
			continue
		}

		i, ok := index[*row.DishID]
		if !ok {
			i = len(p.Groups)
			index[*row.DishID] = i
			p.Groups = append(p.Groups, DishGroup{
				DishID: *row.DishID,
				People: row.PeopleOrOne(),
			})
		}
		p.Groups[i].Rows = append(p.Groups[i].Rows, row)
	}

	return p
}

// Bundle is a dish group resolved against the catalog
type Bundle struct {
	Dish   catalog.Dish
	People int
	Rows   []Row
}

// DishLookup resolves a dish id
type DishLookup func(id uuid.UUID) (catalog.Dish, error)

// DroppedGroup records a dish group excluded because its dish lookup failed
type DroppedGroup struct {
	DishID uuid.UUID
	Rows   int
	Err    error
}

// Aggregation is the cart projected into bundles and standalone rows
type Aggregation struct {
	Bundles    []Bundle
	Standalone []Row
	Dropped    []DroppedGroup
}

// Aggregate groups rows into dish bundles and standalone rows. Groups whose
// dish cannot be resolved are dropped and reported in Dropped.
func Aggregate(rows []Row, lookup DishLookup) Aggregation {
	p := PartitionRows(rows)
	agg := Aggregation{Standalone: p.Standalone}

	for _, g := range p.Groups {
		dish, err := lookup(g.DishID)
		if err != nil {
			agg.Dropped = append(agg.Dropped, DroppedGroup{DishID: g.DishID, Rows: len(g.Rows), Err: err})
			continue
		}
		agg.Bundles = append(agg.Bundles, Bundle{Dish: dish, People: g.People, Rows: g.Rows})
	}

	return agg
}

// BundleTotal is Σ(quantity × unit price) × people
func (p Pricing) BundleTotal(b Bundle) float64 {
	var sum float64
	for _, r := range b.Rows {
		sum += r.Quantity * p.UnitPrice
	}
	return round2(sum * float64(b.People))
}

// RowTotal is quantity × unit price
func (p Pricing) RowTotal(r Row) float64 {
	return round2(r.Quantity * p.UnitPrice)
}

// Totals is the price breakdown of an aggregation
type Totals struct {
	Subtotal     float64
	PackagingFee float64
	Total        float64
	ItemCount    int
}

// Totals prices an aggregation. The packaging fee applies only when at least
// one row survived aggregation.
func (p Pricing) Totals(agg Aggregation) Totals {
	var t Totals
	for _, b := range agg.Bundles {
		t.Subtotal += p.BundleTotal(b)
		t.ItemCount += len(b.Rows)
	}
	for _, r := range agg.Standalone {
		t.Subtotal += p.RowTotal(r)
		t.ItemCount++
	}

	t.Subtotal = round2(t.Subtotal)
	if t.ItemCount > 0 {
		t.PackagingFee = p.PackagingFee
	}
	t.Total = round2(t.Subtotal + t.PackagingFee)
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
