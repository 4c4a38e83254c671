// Package gorm provides GORM model definitions and repository
// implementations for the storefront tables.
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

func (UserModel) TableName() string { return "users" }

// DishModel represents a catalog dish
type DishModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name        string    `gorm:"type:varchar(255);not null;index"`
	Description string    `gorm:"type:text"`
	Cuisine     string    `gorm:"type:varchar(50);index"`
	ImageURL    string    `gorm:"type:text"`
	RecipeText  string    `gorm:"type:text"`
	MinAge      int       `gorm:"default:0"`
	CreatedAt   time.Time

	Ingredients []DishIngredientModel `gorm:"foreignKey:DishID"`
}

func (DishModel) TableName() string { return "dishes" }

// IngredientModel represents a catalog ingredient
type IngredientModel struct {
	ID           uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Name         string      `gorm:"type:varchar(255);not null;index"`
	Unit         string      `gorm:"type:varchar(30)"`
	Category     string      `gorm:"type:varchar(50)"`
	Price        float64     `gorm:"default:0"`
	DietaryFlags StringSlice `gorm:"type:json"`
	CreatedAt    time.Time
}

func (IngredientModel) TableName() string { return "ingredients" }

// DishIngredientModel joins dishes to ingredients
type DishIngredientModel struct {
	DishID       uuid.UUID `gorm:"type:char(36);primaryKey"`
	IngredientID uuid.UUID `gorm:"type:char(36);primaryKey"`
	Quantity     float64   `gorm:"not null"`
	UnitOverride string    `gorm:"type:varchar(30)"`
	Optional     bool      `gorm:"default:false"`

	Ingredient IngredientModel `gorm:"foreignKey:IngredientID"`
}

func (DishIngredientModel) TableName() string { return "dish_ingredients" }

// CartItemModel is one row of a user's cart
type CartItemModel struct {
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID  `gorm:"type:char(36);not null;index"`
	IngredientID uuid.UUID  `gorm:"type:char(36);not null"`
	Quantity     float64    `gorm:"not null"`
	DishID       *uuid.UUID `gorm:"type:char(36);index"`
	People       *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (CartItemModel) TableName() string { return "user_carts" }

// FavoriteModel is a saved dish
type FavoriteModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_favorites_user_dish"`
	DishID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_favorites_user_dish"`
	CreatedAt time.Time
}

func (FavoriteModel) TableName() string { return "user_favorites" }

// ProfileModel holds contact and delivery details
type ProfileModel struct {
	UserID      uuid.UUID `gorm:"type:char(36);primaryKey"`
	FullName    string    `gorm:"type:varchar(120)"`
	Address     string    `gorm:"type:varchar(255)"`
	PhoneNumber string    `gorm:"type:varchar(20)"`
	City        string    `gorm:"type:varchar(100)"`
	PostalCode  string    `gorm:"type:varchar(12)"`
	BirthDate   *time.Time
	UpdatedAt   time.Time
}

func (ProfileModel) TableName() string { return "profiles" }

// FeedbackModel stores visitor feedback
type FeedbackModel struct {
	ID        uuid.UUID  `gorm:"type:char(36);primaryKey"`
	UserID    *uuid.UUID `gorm:"type:char(36);index"`
	Name      string     `gorm:"type:varchar(120)"`
	Email     string     `gorm:"type:varchar(255)"`
	Message   string     `gorm:"type:text;not null"`
	Rating    *int
	CreatedAt time.Time
}

func (FeedbackModel) TableName() string { return "feedback" }

// RecipeUsageModel marks a recipe generation for a user and day
type RecipeUsageModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_recipe_usage_user_day"`
	UsageDate string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_recipe_usage_user_day"`
	Model     string    `gorm:"type:varchar(100)"`
	CreatedAt time.Time
}

func (RecipeUsageModel) TableName() string { return "recipe_generation_usage" }

// AllModels lists every model for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&DishModel{},
		&IngredientModel{},
		&DishIngredientModel{},
		&CartItemModel{},
		&FavoriteModel{},
		&ProfileModel{},
		&FeedbackModel{},
		&RecipeUsageModel{},
	}
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// BeforeCreate hooks

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (d *DishModel) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (i *IngredientModel) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (c *CartItemModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (f *FavoriteModel) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (f *FeedbackModel) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (r *RecipeUsageModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
