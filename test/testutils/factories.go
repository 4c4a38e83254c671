// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"strings"
	"time"

	"github.com/basketful/storefront/internal/domain/cart"
	"github.com/basketful/storefront/internal/domain/catalog"
	"github.com/basketful/storefront/internal/domain/profile"
	"github.com/basketful/storefront/internal/domain/user"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CatalogFactory creates catalog entities with seeded fake data
type CatalogFactory struct {
	faker *gofakeit.Faker
}

// NewCatalogFactory creates a new catalog factory with seeded faker
func NewCatalogFactory(seed int64) *CatalogFactory {
	return &CatalogFactory{faker: gofakeit.New(seed)}
}

// Dish creates a dish in the given cuisine
func (f *CatalogFactory) Dish(cuisine string) catalog.Dish {
	return catalog.Dish{
		ID:          uuid.New(),
		Name:        f.faker.Dinner(),
		Description: f.faker.Sentence(8),
		Cuisine:     cuisine,
		ImageURL:    f.faker.URL(),
		RecipeText:  f.faker.Paragraph(1, 3, 8, " "),
		CreatedAt:   time.Now().UTC(),
	}
}

// Ingredient creates an ingredient with a random unit
func (f *CatalogFactory) Ingredient() catalog.Ingredient {
	return catalog.Ingredient{
		ID:        uuid.New(),
		Name:      f.faker.Vegetable(),
		Unit:      f.faker.RandomString([]string{"g", "ml", "pcs", "tbsp"}),
		Category:  "produce",
		Price:     f.faker.Price(1, 20),
		CreatedAt: time.Now().UTC(),
	}
}

// DishDetail creates a dish with n required ingredient lines
func (f *CatalogFactory) DishDetail(cuisine string, n int) catalog.DishDetail {
	detail := catalog.DishDetail{Dish: f.Dish(cuisine)}
	for i := 0; i < n; i++ {
		ing := f.Ingredient()
		detail.Lines = append(detail.Lines, catalog.IngredientLine{
			Ingredient: ing,
			Quantity:   float64(f.faker.Number(1, 5)),
			Unit:       ing.Unit,
		})
	}
	return detail
}

// DishRow creates a cart row belonging to a dish bundle
func DishRow(userID, dishID, ingredientID uuid.UUID, quantity float64, people int) cart.Row {
	d := dishID
	p := people
	return cart.Row{
		ID:           uuid.New(),
		UserID:       userID,
		IngredientID: ingredientID,
		Quantity:     quantity,
		DishID:       &d,
		People:       &p,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

// StandaloneRow creates a cart row outside any dish
func StandaloneRow(userID, ingredientID uuid.UUID, quantity float64) cart.Row {
	return cart.Row{
		ID:           uuid.New(),
		UserID:       userID,
		IngredientID: ingredientID,
		Quantity:     quantity,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

// UserBuilder provides a fluent interface for building test users
type UserBuilder struct {
	email    string
	password string
}

// NewUserBuilder creates a new user builder with default values
func NewUserBuilder() *UserBuilder {
	faker := gofakeit.New(time.Now().UnixNano())
	return &UserBuilder{
		email:    strings.ToLower(faker.Email()),
		password: "correct-horse-battery",
	}
}

// WithEmail sets the user email
func (ub *UserBuilder) WithEmail(email string) *UserBuilder {
	ub.email = email
	return ub
}

// WithPassword sets the user password
func (ub *UserBuilder) WithPassword(password string) *UserBuilder {
	ub.password = password
	return ub
}

// Build creates the user with the cheapest bcrypt cost
func (ub *UserBuilder) Build() (*user.User, error) {
	return user.NewUser(ub.email, ub.password, bcrypt.MinCost)
}

// CompleteProfile returns a profile that passes the checkout gate
func CompleteProfile(userID uuid.UUID) *profile.Profile {
	faker := gofakeit.New(time.Now().UnixNano())
	return &profile.Profile{
		UserID:      userID,
		FullName:    faker.Name(),
		Address:     faker.Street(),
		PhoneNumber: "+14155550123",
		City:        faker.City(),
		PostalCode:  faker.Zip(),
		UpdatedAt:   time.Now().UTC(),
	}
}
