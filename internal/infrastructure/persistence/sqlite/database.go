// Package sqlite provides SQLite database setup and the catalog seed
package sqlite

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gormModels "github.com/basketful/storefront/internal/infrastructure/persistence/gorm"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed seed/catalog.json
var seedFiles embed.FS

const memoryPath = ":memory:"

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, gormLogger logger.Interface) (*gorm.DB, error) {
	if dbPath == "" {
		dbPath = memoryPath
	}
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	dsn := dbPath
	if dbPath != memoryPath && !strings.Contains(dbPath, "?") {
		dsn = dbPath + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// every pooled connection to :memory: would see its own empty database
	if dbPath == memoryPath {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

type seedCatalog struct {
	Ingredients []seedIngredient `json:"ingredients"`
	Dishes      []seedDish       `json:"dishes"`
}

type seedIngredient struct {
	Name         string   `json:"name"`
	Unit         string   `json:"unit"`
	Category     string   `json:"category"`
	Price        float64  `json:"price"`
	DietaryFlags []string `json:"dietary_flags"`
}

type seedDish struct {
	Name        string     `json:"name"`
	Cuisine     string     `json:"cuisine"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	RecipeText  string     `json:"recipe_text"`
	MinAge      int        `json:"min_age"`
	Ingredients []seedLine `json:"ingredients"`
}

type seedLine struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	UnitOverride string  `json:"unit_override"`
	Optional     bool    `json:"optional"`
}

// SeedID derives a stable ID for a seeded catalog entry
func SeedID(kind, name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("basketful:"+kind+":"+strings.ToLower(name)))
}

// SeedDatabase populates the catalog once. It works against any GORM
// dialect, so the Postgres setup uses it too.
func SeedDatabase(db *gorm.DB) error {
	var dishCount int64
	if err := db.Model(&gormModels.DishModel{}).Count(&dishCount).Error; err != nil {
		return fmt.Errorf("failed to count dishes: %w", err)
	}
	if dishCount > 0 {
		return nil
	}

	raw, err := seedFiles.ReadFile("seed/catalog.json")
	if err != nil {
		return fmt.Errorf("failed to read seed catalog: %w", err)
	}

	var catalog seedCatalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("failed to parse seed catalog: %w", err)
	}

	now := time.Now().UTC()
	return db.Transaction(func(tx *gorm.DB) error {
		ingredientIDs := make(map[string]uuid.UUID, len(catalog.Ingredients))
		for _, ing := range catalog.Ingredients {
			model := gormModels.IngredientModel{
				ID:           SeedID("ingredient", ing.Name),
				Name:         ing.Name,
				Unit:         ing.Unit,
				Category:     ing.Category,
				Price:        ing.Price,
				DietaryFlags: gormModels.StringSlice(ing.DietaryFlags),
				CreatedAt:    now,
			}
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to create ingredient %q: %w", ing.Name, err)
			}
			ingredientIDs[ing.Name] = model.ID
		}

		for _, dish := range catalog.Dishes {
			model := gormModels.DishModel{
				ID:          SeedID("dish", dish.Name),
				Name:        dish.Name,
				Description: dish.Description,
				Cuisine:     strings.ToLower(dish.Cuisine),
				ImageURL:    dish.ImageURL,
				RecipeText:  dish.RecipeText,
				MinAge:      dish.MinAge,
				CreatedAt:   now,
			}
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to create dish %q: %w", dish.Name, err)
			}

			for _, line := range dish.Ingredients {
				ingID, ok := ingredientIDs[line.Name]
				if !ok {
					return fmt.Errorf("dish %q references unknown ingredient %q", dish.Name, line.Name)
				}
				join := gormModels.DishIngredientModel{
					DishID:       model.ID,
					IngredientID: ingID,
					Quantity:     line.Quantity,
					UnitOverride: line.UnitOverride,
					Optional:     line.Optional,
				}
				if err := tx.Create(&join).Error; err != nil {
					return fmt.Errorf("failed to link %q to %q: %w", line.Name, dish.Name, err)
				}
			}
		}

		return nil
	})
}
