package gorm_test

import (
	"context"
	"testing"
	"time"

	"github.com/basketful/storefront/internal/domain/cart"
	"github.com/basketful/storefront/internal/domain/catalog"
	"github.com/basketful/storefront/internal/domain/favorite"
	"github.com/basketful/storefront/internal/domain/profile"
	"github.com/basketful/storefront/internal/domain/recipegen"
	"github.com/basketful/storefront/internal/domain/user"
	persistence "github.com/basketful/storefront/internal/infrastructure/persistence/gorm"
	"github.com/basketful/storefront/internal/infrastructure/persistence/sqlite"
	"github.com/basketful/storefront/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RepositoryTestSuite struct {
	suite.Suite
	ctx    context.Context
	db     *gorm.DB
	userID uuid.UUID
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutils.NewSeededSQLiteDB(s.T())
	s.userID = uuid.New()
}

func (s *RepositoryTestSuite) seededDish(name string) catalog.DishDetail {
	detail, err := persistence.NewCatalogRepository(s.db).GetDishDetail(s.ctx, sqlite.SeedID("dish", name))
	require.NoError(s.T(), err)
	require.NotNil(s.T(), detail, "seed dish %q", name)
	return *detail
}

func (s *RepositoryTestSuite) TestCatalog() {
	repo := persistence.NewCatalogRepository(s.db)

	s.Run("CuisinesAreDistinctAndSorted", func() {
		cuisines, err := repo.ListCuisines(s.ctx)
		require.NoError(s.T(), err)
		assert.IsIncreasing(s.T(), cuisines)
		assert.Contains(s.T(), cuisines, "thai")
	})

	s.Run("AgeFilterHidesAdultDishes", func() {
		age := 10
		dishes, total, err := repo.ListDishes(s.ctx, catalog.Filter{Age: &age, Limit: 100})
		require.NoError(s.T(), err)
		assert.Equal(s.T(), int64(len(dishes)), total)
		for _, d := range dishes {
			assert.LessOrEqual(s.T(), d.MinAge, age, d.Name)
		}
	})

	s.Run("DetailPutsOptionalLinesLast", func() {
		detail := s.seededDish("Thai Green Curry")
		require.NotEmpty(s.T(), detail.Lines)
		assert.True(s.T(), detail.Lines[len(detail.Lines)-1].Optional)
	})

	s.Run("SearchMatchesAnyKeyword", func() {
		dishes, err := repo.SearchDishes(s.ctx, []string{"curry", "ramen"}, 10)
		require.NoError(s.T(), err)
		names := make([]string, 0, len(dishes))
		for _, d := range dishes {
			names = append(names, d.Name)
		}
		assert.Contains(s.T(), names, "Thai Green Curry")
		assert.Contains(s.T(), names, "Miso Ramen")
	})

	s.Run("UnknownDish", func() {
		detail, err := repo.GetDishDetail(s.ctx, uuid.New())
		require.NoError(s.T(), err)
		assert.Nil(s.T(), detail)
	})
}

func (s *RepositoryTestSuite) TestCartUpdatePeopleForDish() {
	// Arrange
	repo := persistence.NewCartRepository(s.db)
	detail := s.seededDish("Beef Chili")
	rows, err := cart.NewDishRows(s.userID, detail, 2, false)
	require.NoError(s.T(), err)
	require.NoError(s.T(), repo.ReplaceDishRows(s.ctx, s.userID, detail.Dish.ID, rows))
	standalone, err := cart.NewStandaloneRow(s.userID, detail.Lines[0].Ingredient.ID, 1)
	require.NoError(s.T(), err)
	require.NoError(s.T(), repo.Create(s.ctx, standalone))

	// Act
	changed, err := repo.UpdatePeopleForDish(s.ctx, s.userID, detail.Dish.ID, 6)

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(len(rows)), changed)

	stored, err := repo.ListByUser(s.ctx, s.userID)
	require.NoError(s.T(), err)
	for _, r := range stored {
		if r.IsStandalone() {
			assert.Nil(s.T(), r.People)
			continue
		}
		assert.Equal(s.T(), 6, r.PeopleOrOne())
	}
}

func (s *RepositoryTestSuite) TestCartRowOwnership() {
	repo := persistence.NewCartRepository(s.db)
	row, err := cart.NewStandaloneRow(s.userID, uuid.New(), 2)
	require.NoError(s.T(), err)
	require.NoError(s.T(), repo.Create(s.ctx, row))

	stranger := uuid.New()
	assert.ErrorIs(s.T(), repo.UpdateQuantity(s.ctx, stranger, row.ID, 5), cart.ErrRowNotFound)
	assert.ErrorIs(s.T(), repo.Delete(s.ctx, stranger, row.ID), cart.ErrRowNotFound)

	found, err := repo.FindStandalone(s.ctx, s.userID, row.IngredientID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), found)
	assert.Equal(s.T(), 2.0, found.Quantity)

	cleared, err := repo.ClearForUser(s.ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), cleared)
}

func (s *RepositoryTestSuite) TestFavoritesAreUniquePerDish() {
	repo := persistence.NewFavoriteRepository(s.db)
	dishID := sqlite.SeedID("dish", "Smash Burger")

	require.NoError(s.T(), repo.Create(s.ctx, favorite.New(s.userID, dishID)))
	err := repo.Create(s.ctx, favorite.New(s.userID, dishID))

	assert.ErrorIs(s.T(), err, favorite.ErrAlreadyFavorite)
	// another user may save the same dish
	assert.NoError(s.T(), repo.Create(s.ctx, favorite.New(uuid.New(), dishID)))
	assert.ErrorIs(s.T(), repo.Delete(s.ctx, uuid.New(), dishID), favorite.ErrNotFavorite)
}

func (s *RepositoryTestSuite) TestRecipeUsageOncePerDay() {
	repo := persistence.NewRecipeUsageRepository(s.db)
	usage := recipegen.Usage{UserID: s.userID, UsageDate: "2026-04-10", Model: "stub", CreatedAt: time.Now()}

	require.NoError(s.T(), repo.Create(s.ctx, usage))
	assert.ErrorIs(s.T(), repo.Create(s.ctx, usage), recipegen.ErrQuotaExhausted)

	exists, err := repo.ExistsForDay(s.ctx, s.userID, "2026-04-10")
	require.NoError(s.T(), err)
	assert.True(s.T(), exists)

	next := usage
	next.UsageDate = "2026-04-11"
	assert.NoError(s.T(), repo.Create(s.ctx, next))
}

func (s *RepositoryTestSuite) TestUsersAndProfiles() {
	users := persistence.NewUserRepository(s.db)
	profiles := persistence.NewProfileRepository(s.db)

	u, err := user.NewUser("chef@example.com", "long-enough-password", bcrypt.MinCost)
	require.NoError(s.T(), err)
	require.NoError(s.T(), users.Create(s.ctx, u))

	dup, err := user.NewUser("chef@example.com", "another-password", bcrypt.MinCost)
	require.NoError(s.T(), err)
	assert.ErrorIs(s.T(), users.Create(s.ctx, dup), user.ErrEmailTaken)

	found, err := users.FindByEmail(s.ctx, "chef@example.com")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), found)
	assert.NoError(s.T(), found.CheckPassword("long-enough-password"))

	require.NoError(s.T(), profiles.Upsert(s.ctx, profile.Empty(u.ID())))
	complete := testutils.CompleteProfile(u.ID())
	require.NoError(s.T(), profiles.Upsert(s.ctx, complete))

	stored, err := profiles.FindByUserID(s.ctx, u.ID())
	require.NoError(s.T(), err)
	assert.Empty(s.T(), stored.MissingCheckoutFields())
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
