package cart_test

import (
	"errors"
	"testing"

	"github.com/basketful/storefront/internal/domain/cart"
	"github.com/basketful/storefront/internal/domain/catalog"
	"github.com/basketful/storefront/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// AggregateTestSuite covers partitioning, aggregation and pricing
type AggregateTestSuite struct {
	suite.Suite
	userID  uuid.UUID
	factory *testutils.CatalogFactory
}

func (s *AggregateTestSuite) SetupTest() {
	s.userID = uuid.New()
	s.factory = testutils.NewCatalogFactory(42)
}

func (s *AggregateTestSuite) lookupFrom(dishes ...catalog.Dish) cart.DishLookup {
	byID := make(map[uuid.UUID]catalog.Dish, len(dishes))
	for _, d := range dishes {
		byID[d.ID] = d
	}
	return func(id uuid.UUID) (catalog.Dish, error) {
		d, ok := byID[id]
		if !ok {
			return catalog.Dish{}, catalog.ErrDishNotFound
		}
		return d, nil
	}
}

func (s *AggregateTestSuite) TestPartitionRows() {
	s.Run("GroupsKeepFirstSeenOrder", func() {
		// Arrange
		dishA, dishB := uuid.New(), uuid.New()
		rows := []cart.Row{
			testutils.DishRow(s.userID, dishB, uuid.New(), 1, 2),
			testutils.StandaloneRow(s.userID, uuid.New(), 3),
			testutils.DishRow(s.userID, dishA, uuid.New(), 1, 4),
			testutils.DishRow(s.userID, dishB, uuid.New(), 2, 2),
		}

		// Act
		p := cart.PartitionRows(rows)

		// Assert
		require.Len(s.T(), p.Groups, 2)
		assert.Equal(s.T(), dishB, p.Groups[0].DishID)
		assert.Len(s.T(), p.Groups[0].Rows, 2)
		assert.Equal(s.T(), 2, p.Groups[0].People)
		assert.Equal(s.T(), dishA, p.Groups[1].DishID)
		assert.Equal(s.T(), 4, p.Groups[1].People)
		assert.Len(s.T(), p.Standalone, 1)
	})

	s.Run("MissingPeopleCountsAsOne", func() {
		// Arrange
		row := testutils.DishRow(s.userID, uuid.New(), uuid.New(), 1, 3)
		row.People = nil

		// Act
		p := cart.PartitionRows([]cart.Row{row})

		// Assert
		require.Len(s.T(), p.Groups, 1)
		assert.Equal(s.T(), 1, p.Groups[0].People)
	})

	s.Run("EmptyCart", func() {
		p := cart.PartitionRows(nil)
		assert.Empty(s.T(), p.Groups)
		assert.Empty(s.T(), p.Standalone)
	})
}

func (s *AggregateTestSuite) TestAggregate() {
	s.Run("UnknownDishIsDropped", func() {
		// Arrange
		known := s.factory.Dish("indian")
		missing := uuid.New()
		rows := []cart.Row{
			testutils.DishRow(s.userID, known.ID, uuid.New(), 1, 1),
			testutils.DishRow(s.userID, missing, uuid.New(), 1, 1),
			testutils.DishRow(s.userID, missing, uuid.New(), 1, 1),
		}

		// Act
		agg := cart.Aggregate(rows, s.lookupFrom(known))

		// Assert
		require.Len(s.T(), agg.Bundles, 1)
		assert.Equal(s.T(), known.ID, agg.Bundles[0].Dish.ID)
		require.Len(s.T(), agg.Dropped, 1)
		assert.Equal(s.T(), missing, agg.Dropped[0].DishID)
		assert.Equal(s.T(), 2, agg.Dropped[0].Rows)
		assert.True(s.T(), errors.Is(agg.Dropped[0].Err, catalog.ErrDishNotFound))
	})
}

func (s *AggregateTestSuite) TestAggregateAccountsForEveryRow() {
	known := s.factory.Dish("mexican")
	other := s.factory.Dish("japanese")
	missing := uuid.New()

	tests := []struct {
		name           string
		rows           []cart.Row
		wantBundles    int
		wantStandalone int
		wantDropped    int
	}{
		{
			name:           "OnlyStandalone",
			rows:           []cart.Row{testutils.StandaloneRow(s.userID, uuid.New(), 1), testutils.StandaloneRow(s.userID, uuid.New(), 2)},
			wantStandalone: 2,
		},
		{
			name: "TwoDishesInterleaved",
			rows: []cart.Row{
				testutils.DishRow(s.userID, known.ID, uuid.New(), 1, 2),
				testutils.DishRow(s.userID, other.ID, uuid.New(), 1, 3),
				testutils.DishRow(s.userID, known.ID, uuid.New(), 1, 2),
			},
			wantBundles: 3,
		},
		{
			name: "MixedWithUnknownDish",
			rows: []cart.Row{
				testutils.DishRow(s.userID, missing, uuid.New(), 1, 1),
				testutils.StandaloneRow(s.userID, uuid.New(), 1),
				testutils.DishRow(s.userID, known.ID, uuid.New(), 2, 4),
				testutils.DishRow(s.userID, missing, uuid.New(), 3, 1),
				testutils.StandaloneRow(s.userID, uuid.New(), 5),
			},
			wantBundles:    1,
			wantStandalone: 2,
			wantDropped:    2,
		},
		{
			name:        "EveryDishUnknown",
			rows:        []cart.Row{testutils.DishRow(s.userID, missing, uuid.New(), 1, 1)},
			wantDropped: 1,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			// Act
			agg := cart.Aggregate(tt.rows, s.lookupFrom(known, other))

			// Assert
			var bundled, dropped int
			seen := make(map[uuid.UUID]bool)
			for _, b := range agg.Bundles {
				bundled += len(b.Rows)
				for _, r := range b.Rows {
					require.NotNil(s.T(), r.DishID)
					assert.Equal(s.T(), b.Dish.ID, *r.DishID)
					seen[r.ID] = true
				}
			}
			for _, r := range agg.Standalone {
				assert.True(s.T(), r.IsStandalone())
				seen[r.ID] = true
			}
			for _, d := range agg.Dropped {
				dropped += d.Rows
			}

			assert.Equal(s.T(), tt.wantBundles, bundled)
			assert.Equal(s.T(), tt.wantStandalone, len(agg.Standalone))
			assert.Equal(s.T(), tt.wantDropped, dropped)
			assert.Equal(s.T(), len(tt.rows), bundled+len(agg.Standalone)+dropped)
			assert.Len(s.T(), seen, bundled+len(agg.Standalone))
		})
	}
}

func (s *AggregateTestSuite) TestTotals() {
	pricing := cart.DefaultPricing

	s.Run("PastaForTwoPlusSalt", func() {
		// Arrange
		pasta := s.factory.Dish("italian")
		tomato, basil, salt := uuid.New(), uuid.New(), uuid.New()
		rows := []cart.Row{
			testutils.DishRow(s.userID, pasta.ID, tomato, 2, 2),
			testutils.DishRow(s.userID, pasta.ID, basil, 1, 2),
			testutils.StandaloneRow(s.userID, salt, 1),
		}

		// Act
		agg := cart.Aggregate(rows, s.lookupFrom(pasta))
		totals := pricing.Totals(agg)

		// Assert: (2*10 + 1*10) * 2 + 1*10 + 20 = 90
		require.Len(s.T(), agg.Bundles, 1)
		assert.Equal(s.T(), 2, agg.Bundles[0].People)
		assert.Len(s.T(), agg.Bundles[0].Rows, 2)
		require.Len(s.T(), agg.Standalone, 1)
		assert.Equal(s.T(), salt, agg.Standalone[0].IngredientID)
		testutils.AssertTotals(s.T(), cart.Totals{
			Subtotal:     70,
			PackagingFee: 20,
			Total:        90,
			ItemCount:    3,
		}, totals)
	})

	s.Run("BundleMultipliesByPeople", func() {
		// Arrange
		dish := s.factory.Dish("italian")
		rows := []cart.Row{
			testutils.DishRow(s.userID, dish.ID, uuid.New(), 2, 3),
			testutils.DishRow(s.userID, dish.ID, uuid.New(), 0.5, 3),
		}
		agg := cart.Aggregate(rows, s.lookupFrom(dish))

		// Act
		totals := pricing.Totals(agg)

		// Assert: (2 + 0.5) * 10 * 3 = 75
		testutils.AssertTotals(s.T(), cart.Totals{
			Subtotal:     75,
			PackagingFee: 20,
			Total:        95,
			ItemCount:    2,
		}, totals)
	})

	s.Run("StandaloneIgnoresIngredientPrice", func() {
		// Arrange
		rows := []cart.Row{testutils.StandaloneRow(s.userID, uuid.New(), 4)}

		// Act
		totals := pricing.Totals(cart.Aggregate(rows, s.lookupFrom()))

		// Assert
		testutils.AssertTotals(s.T(), cart.Totals{
			Subtotal:     40,
			PackagingFee: 20,
			Total:        60,
			ItemCount:    1,
		}, totals)
	})

	s.Run("EmptyCartHasNoPackagingFee", func() {
		totals := pricing.Totals(cart.Aggregation{})
		testutils.AssertTotals(s.T(), cart.Totals{}, totals)
	})

	s.Run("OnlyDroppedRowsCountAsEmpty", func() {
		rows := []cart.Row{testutils.DishRow(s.userID, uuid.New(), uuid.New(), 1, 1)}
		totals := pricing.Totals(cart.Aggregate(rows, s.lookupFrom()))
		assert.Zero(s.T(), totals.Total)
	})
}

func (s *AggregateTestSuite) TestNewDishRows() {
	s.Run("SkipsOptionalLinesByDefault", func() {
		// Arrange
		detail := s.factory.DishDetail("thai", 3)
		detail.Lines[1].Optional = true

		// Act
		rows, err := cart.NewDishRows(s.userID, detail, 2, false)

		// Assert
		require.NoError(s.T(), err)
		assert.Len(s.T(), rows, 2)
		for _, r := range rows {
			require.NotNil(s.T(), r.DishID)
			assert.Equal(s.T(), detail.Dish.ID, *r.DishID)
			assert.Equal(s.T(), 2, r.PeopleOrOne())
		}
	})

	s.Run("IncludesOptionalLinesOnRequest", func() {
		detail := s.factory.DishDetail("thai", 3)
		detail.Lines[0].Optional = true

		rows, err := cart.NewDishRows(s.userID, detail, 1, true)

		require.NoError(s.T(), err)
		assert.Len(s.T(), rows, 3)
	})

	s.Run("RejectsPeopleOutOfRange", func() {
		detail := s.factory.DishDetail("thai", 1)

		for _, people := range []int{0, cart.MaxPeople + 1} {
			_, err := cart.NewDishRows(s.userID, detail, people, false)
			assert.ErrorIs(s.T(), err, cart.ErrInvalidPeople)
		}
	})

	s.Run("DishWithOnlyOptionalLines", func() {
		detail := s.factory.DishDetail("thai", 1)
		detail.Lines[0].Optional = true

		_, err := cart.NewDishRows(s.userID, detail, 1, false)

		assert.ErrorIs(s.T(), err, cart.ErrDishHasNoIngredients)
	})
}

func (s *AggregateTestSuite) TestNewStandaloneRow() {
	_, err := cart.NewStandaloneRow(s.userID, uuid.New(), 0)
	assert.ErrorIs(s.T(), err, cart.ErrInvalidQuantity)

	row, err := cart.NewStandaloneRow(s.userID, uuid.New(), 1.5)
	require.NoError(s.T(), err)
	assert.True(s.T(), row.IsStandalone())
	assert.Nil(s.T(), row.People)
}

func TestAggregateTestSuite(t *testing.T) {
	suite.Run(t, new(AggregateTestSuite))
}
