package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"kantin/internal/config"
	"kantin/internal/database"
	"kantin/internal/logger"
	"kantin/internal/models"
	"kantin/internal/repositories"
	"kantin/internal/services"

	"gorm.io/gorm"
)

// kantin migrate: create or update the schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		slog.Info("migrations applied")
		return nil
	},
}

// kantin seed: create the admin account and the starter menu.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account and a starter menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDatabase()
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		return seed(cfg, db)
	},
}

func openDatabase() (config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger.Setup(cfg.AppEnv)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}

func seed(cfg config.Config, db *gorm.DB) error {
	authService := services.NewAuthService(repositories.NewGORMUserRepository(db), cfg.JWTSecret)
	if err := authService.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}
	return seedMenu(repositories.NewGORMMenuItemRepository(db))
}

// seedMenu fills an empty menu; an existing menu is left alone.
func seedMenu(repo repositories.MenuItemRepository) error {
	existing, err := repo.GetAll(repositories.MenuFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("menu already has items, skipping", "count", len(existing))
		return nil
	}

	for i := range starterMenu {
		item := starterMenu[i]
		if err := repo.Create(&item); err != nil {
			return err
		}
		slog.Info("seeded menu item", "name", item.Name, "id", item.ID)
	}
	return nil
}

var starterMenu = []models.MenuItem{
	{Name: "Nasi Goreng Spesial", Description: "Nasi goreng dengan telur, ayam, dan sayuran segar", Price: 25000, Image: "https://images.unsplash.com/photo-1512058564366-18510be2db19?w=400", Category: "Makanan Utama", IsAvailable: true},
	{Name: "Mie Goreng Ayam", Description: "Mie goreng dengan potongan ayam dan sayuran", Price: 22000, Image: "https://images.unsplash.com/photo-1585032226651-759b368d7246?w=400", Category: "Makanan Utama", IsAvailable: true},
	{Name: "Ayam Geprek", Description: "Ayam crispy dengan sambal geprek dan nasi", Price: 28000, Image: "https://images.unsplash.com/photo-1604908176997-125f25cc6f3d?w=400", Category: "Makanan Utama", IsAvailable: true},
	{Name: "Soto Ayam", Description: "Soto ayam dengan kuah bening dan pelengkap", Price: 20000, Image: "https://images.unsplash.com/photo-1547928576-b822bc410e94?w=400", Category: "Makanan Utama", IsAvailable: true},
	{Name: "Es Teh Manis", Description: "Teh manis dingin segar", Price: 5000, Image: "https://images.unsplash.com/photo-1556679343-c7306c1976bc?w=400", Category: "Minuman", IsAvailable: true},
	{Name: "Jus Jeruk", Description: "Jus jeruk segar tanpa pengawet", Price: 10000, Image: "https://images.unsplash.com/photo-1621506289937-a8e4df240d0b?w=400", Category: "Minuman", IsAvailable: true},
	{Name: "Pisang Goreng", Description: "Pisang goreng renyah dengan toping keju", Price: 12000, Image: "https://images.unsplash.com/photo-1600326145308-d1f1cdd4e1af?w=400", Category: "Snack", IsAvailable: true},
	{Name: "Roti Bakar Coklat", Description: "Roti bakar dengan selai coklat premium", Price: 15000, Image: "https://images.unsplash.com/photo-1484723091739-30a097e8f929?w=400", Category: "Snack", IsAvailable: true},
}
