package gorm

import (
	"strings"

	"github.com/basketful/storefront/internal/domain/cart"
	"github.com/basketful/storefront/internal/domain/catalog"
	"github.com/basketful/storefront/internal/domain/favorite"
	"github.com/basketful/storefront/internal/domain/feedback"
	"github.com/basketful/storefront/internal/domain/profile"
	"github.com/basketful/storefront/internal/domain/recipegen"
	"github.com/basketful/storefront/internal/domain/user"
)

// UserToModel converts domain user to GORM model
func UserToModel(u *user.User) *UserModel {
	return &UserModel{
		ID:           u.ID(),
		Email:        u.Email(),
		PasswordHash: u.PasswordHash(),
		CreatedAt:    u.CreatedAt(),
		LastLoginAt:  u.LastLoginAt(),
	}
}

// ModelToUser converts GORM model to domain user
func ModelToUser(m *UserModel) *user.User {
	return user.Rehydrate(m.ID, m.Email, m.PasswordHash, m.CreatedAt, m.LastLoginAt)
}

func modelToDish(m DishModel) catalog.Dish {
	return catalog.Dish{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Cuisine:     m.Cuisine,
		ImageURL:    m.ImageURL,
		RecipeText:  m.RecipeText,
		MinAge:      m.MinAge,
		CreatedAt:   m.CreatedAt,
	}
}

func dishToModel(d catalog.Dish) DishModel {
	return DishModel{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Cuisine:     strings.ToLower(d.Cuisine),
		ImageURL:    d.ImageURL,
		RecipeText:  d.RecipeText,
		MinAge:      d.MinAge,
		CreatedAt:   d.CreatedAt,
	}
}

func modelToIngredient(m IngredientModel) catalog.Ingredient {
	return catalog.Ingredient{
		ID:           m.ID,
		Name:         m.Name,
		Unit:         m.Unit,
		Category:     m.Category,
		Price:        m.Price,
		DietaryFlags: []string(m.DietaryFlags),
		CreatedAt:    m.CreatedAt,
	}
}

func ingredientToModel(i catalog.Ingredient) IngredientModel {
	return IngredientModel{
		ID:           i.ID,
		Name:         i.Name,
		Unit:         i.Unit,
		Category:     i.Category,
		Price:        i.Price,
		DietaryFlags: StringSlice(i.DietaryFlags),
		CreatedAt:    i.CreatedAt,
	}
}

// modelToDetail expects Ingredients with their Ingredient preloaded
func modelToDetail(m DishModel) catalog.DishDetail {
	detail := catalog.DishDetail{Dish: modelToDish(m)}
	for _, di := range m.Ingredients {
		ing := modelToIngredient(di.Ingredient)
		join := catalog.DishIngredient{
			DishID:       di.DishID,
			IngredientID: di.IngredientID,
			Quantity:     di.Quantity,
			UnitOverride: di.UnitOverride,
			Optional:     di.Optional,
		}
		detail.Lines = append(detail.Lines, catalog.IngredientLine{
			Ingredient: ing,
			Quantity:   di.Quantity,
			Unit:       join.EffectiveUnit(ing),
			Optional:   di.Optional,
		})
	}
	return detail
}

func rowToModel(r cart.Row) CartItemModel {
	return CartItemModel{
		ID:           r.ID,
		UserID:       r.UserID,
		IngredientID: r.IngredientID,
		Quantity:     r.Quantity,
		DishID:       r.DishID,
		People:       r.People,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func modelToRow(m CartItemModel) cart.Row {
	return cart.Row{
		ID:           m.ID,
		UserID:       m.UserID,
		IngredientID: m.IngredientID,
		Quantity:     m.Quantity,
		DishID:       m.DishID,
		People:       m.People,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func modelToFavorite(m FavoriteModel) favorite.Favorite {
	return favorite.Favorite{ID: m.ID, UserID: m.UserID, DishID: m.DishID, CreatedAt: m.CreatedAt}
}

func profileToModel(p *profile.Profile) ProfileModel {
	return ProfileModel{
		UserID:      p.UserID,
		FullName:    p.FullName,
		Address:     p.Address,
		PhoneNumber: p.PhoneNumber,
		City:        p.City,
		PostalCode:  p.PostalCode,
		BirthDate:   p.BirthDate,
		UpdatedAt:   p.UpdatedAt,
	}
}

func modelToProfile(m ProfileModel) *profile.Profile {
	return &profile.Profile{
		UserID:      m.UserID,
		FullName:    m.FullName,
		Address:     m.Address,
		PhoneNumber: m.PhoneNumber,
		City:        m.City,
		PostalCode:  m.PostalCode,
		BirthDate:   m.BirthDate,
		UpdatedAt:   m.UpdatedAt,
	}
}

func feedbackToModel(f *feedback.Feedback) FeedbackModel {
	return FeedbackModel{
		ID:        f.ID,
		UserID:    f.UserID,
		Name:      f.Name,
		Email:     f.Email,
		Message:   f.Message,
		Rating:    f.Rating,
		CreatedAt: f.CreatedAt,
	}
}

func usageToModel(u recipegen.Usage) RecipeUsageModel {
	return RecipeUsageModel{
		ID:        u.ID,
		UserID:    u.UserID,
		UsageDate: u.UsageDate,
		Model:     u.Model,
		CreatedAt: u.CreatedAt,
	}
}
