package main

import (
	"fmt"
	"strings"

	"github.com/freshcart-next/internal/config"
	"github.com/freshcart-next/internal/constants"
	"github.com/freshcart-next/internal/logger"
	"github.com/freshcart-next/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加商品
	products := []models.Product{
		{
			Name:        "Organic Bananas",
			Brand:       "FreshCart Farm",
			Category:    "fruits",
			Description: "Fair-trade organic bananas, roughly 5 per bunch.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(1.99)),
			Unit:        "kg",
			ImageURL:    "https://images.unsplash.com/photo-1571771894821-ce9b6c11b08e?w=800",
			IsActive:    true,
			SortOrder:   100,
		},
		{
			Name:        "Whole Milk 1L",
			Brand:       "Laiterie du Val",
			Category:    "dairy",
			Description: "Fresh whole milk from Normandy, pasteurized.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(1.15)),
			Unit:        "bottle",
			ImageURL:    "https://images.unsplash.com/photo-1550583724-b2692b85b150?w=800",
			IsActive:    true,
			SortOrder:   95,
		},
		{
			Name:        "Sourdough Baguette",
			Brand:       "Boulangerie Martin",
			Category:    "bakery",
			Description: "Baked every morning, slow-fermented sourdough.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(2.40)),
			Unit:        "piece",
			ImageURL:    "https://images.unsplash.com/photo-1608198093002-ad4e005484ec?w=800",
			IsActive:    true,
			SortOrder:   90,
		},
		{
			Name:        "Free-Range Eggs x12",
			Brand:       "Ferme des Coteaux",
			Category:    "dairy",
			Description: "A dozen large free-range eggs.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(3.60)),
			Unit:        "box",
			ImageURL:    "https://images.unsplash.com/photo-1582722872445-44dc5f7e3c8f?w=800",
			IsActive:    true,
			SortOrder:   85,
		},
		{
			Name:        "Cherry Tomatoes 500g",
			Brand:       "FreshCart Farm",
			Category:    "vegetables",
			Description: "Sweet cherry tomatoes on the vine.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(2.75)),
			Unit:        "pack",
			ImageURL:    "https://images.unsplash.com/photo-1592924357228-91a4daadcfea?w=800",
			IsActive:    true,
			SortOrder:   80,
		},
		{
			Name:        "Sparkling Water 6x1L",
			Brand:       "Source des Alpes",
			Category:    "beverages",
			Description: "Naturally carbonated mineral water, six-pack.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(4.20)),
			Unit:        "pack",
			ImageURL:    "https://images.unsplash.com/photo-1564419320461-6870880221ad?w=800",
			IsActive:    true,
			SortOrder:   75,
		},
		{
			Name:        "Comté AOP 250g",
			Brand:       "Fromagerie Arnaud",
			Category:    "dairy",
			Description: "18-month aged Comté, cut to order.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(6.90)),
			Unit:        "piece",
			ImageURL:    "https://images.unsplash.com/photo-1486297678162-eb2a19b0a32d?w=800",
			IsActive:    true,
			SortOrder:   70,
		},
		{
			Name:        "Seasonal Item (Offline)",
			Brand:       "FreshCart Farm",
			Category:    "fruits",
			Description: "Out of season, temporarily unavailable.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(5.50)),
			Unit:        "kg",
			ImageURL:    "https://images.unsplash.com/photo-1519996529931-28324d5a630e?w=800",
			IsActive:    false,
			SortOrder:   10,
		},
	}

	for _, prod := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", prod.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Name, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Name)
			}
		} else {
			existing.Brand = prod.Brand
			existing.Category = prod.Category
			existing.Description = prod.Description
			existing.PriceAmount = prod.PriceAmount
			existing.Unit = prod.Unit
			existing.ImageURL = prod.ImageURL
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Name, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Name)
			}
		}
	}

	// 添加演示账号（每个角色一个）
	demoUsers := []struct {
		Email     string
		Password  string
		FirstName string
		LastName  string
		Role      string
	}{
		{Email: "customer@freshcart.local", Password: "customer123", FirstName: "Claire", LastName: "Dupont", Role: constants.RoleCustomer},
		{Email: "rider@freshcart.local", Password: "rider1234", FirstName: "Karim", LastName: "Benali", Role: constants.RoleRider},
		{Email: "manager@freshcart.local", Password: "manager123", FirstName: "Sophie", LastName: "Laurent", Role: constants.RoleManager},
	}

	for _, demo := range demoUsers {
		email := strings.ToLower(strings.TrimSpace(demo.Email))
		var existing models.User
		if err := models.DB.Where("email = ?", email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", email)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(demo.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Printf("Failed to hash password for %s: %v", email, err)
			continue
		}
		user := models.User{
			Email:        email,
			PasswordHash: string(hash),
			FirstName:    demo.FirstName,
			LastName:     demo.LastName,
			Role:         demo.Role,
			Locale:       constants.LocaleFrFR,
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", email, err)
		} else {
			stdLog.Printf("Created user: %s (%s)", email, demo.Role)
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 8 Products (7 active, 1 offline)")
	fmt.Println("- 3 Demo users (customer / rider / manager)")
}
