package main

import (
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
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

	// 分类
	categories := []models.Category{
		{Slug: "electronics", Name: "Electronics", SortOrder: 300},
		{Slug: "lifestyle", Name: "Lifestyle", SortOrder: 200},
		{Slug: "accessories", Name: "Accessories", SortOrder: 100},
	}
	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"electronics", "lifestyle", "accessories"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	// 商品（含规格组合）
	type combinationSeed struct {
		Code  string
		Name  string
		Price float64
		Stock int
	}
	type productSeed struct {
		Slug         string
		Name         string
		Price        float64
		TaxRate      float64
		Stock        int
		Categories   []string
		Combinations []combinationSeed
	}
	products := []productSeed{
		{
			Slug: "wireless-earphones", Name: "Wireless Bluetooth Earphones",
			Price: 99.99, TaxRate: 10, Stock: 50,
			Categories: []string{"electronics", "accessories"},
			Combinations: []combinationSeed{
				{Code: "white", Name: "White", Price: 99.99, Stock: 30},
				{Code: "black", Name: "Black", Price: 104.99, Stock: 20},
			},
		},
		{
			Slug: "smart-watch", Name: "Smart Watch",
			Price: 199.99, TaxRate: 10, Stock: 25,
			Categories: []string{"electronics"},
			Combinations: []combinationSeed{
				{Code: "40mm", Name: "40mm", Price: 199.99, Stock: 15},
				{Code: "44mm", Name: "44mm", Price: 229.99, Stock: 10},
			},
		},
		{
			Slug: "power-bank", Name: "Portable Power Bank",
			Price: 49.99, TaxRate: 5, Stock: 100,
			Categories: []string{"accessories"},
		},
		{
			Slug: "backpack", Name: "Multi-function Backpack",
			Price: 79.99, TaxRate: 5, Stock: 40,
			Categories: []string{"lifestyle"},
		},
		{
			Slug: "desk-lamp", Name: "LED Desk Lamp",
			Price: 29.99, TaxRate: 5, Stock: 0,
			Categories: []string{"lifestyle"},
		},
	}

	for _, seed := range products {
		var cats []models.Category
		for _, slug := range seed.Categories {
			if id, ok := categoryIDs[slug]; ok {
				cats = append(cats, models.Category{ID: id})
			}
		}
		prod := models.Product{
			Slug:        seed.Slug,
			Name:        seed.Name,
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(seed.Price)),
			TaxRate:     models.NewMoneyFromDecimal(decimal.NewFromFloat(seed.TaxRate)),
			Stock:       seed.Stock,
			IsActive:    true,
			Categories:  cats,
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", seed.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", seed.Slug, err)
				continue
			}
			stdLog.Printf("Created product: %s", seed.Slug)
		} else {
			existing.Name = prod.Name
			existing.PriceAmount = prod.PriceAmount
			existing.TaxRate = prod.TaxRate
			existing.Stock = prod.Stock
			existing.IsActive = prod.IsActive
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", seed.Slug, err)
				continue
			}
			prod = existing
			stdLog.Printf("Updated product: %s", seed.Slug)
		}

		for i, comb := range seed.Combinations {
			record := models.ProductCombination{
				ProductID:   prod.ID,
				Code:        comb.Code,
				Name:        comb.Name,
				PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(comb.Price)),
				Stock:       comb.Stock,
				IsActive:    true,
				SortOrder:   100 - i,
			}
			var existingComb models.ProductCombination
			if err := models.DB.Where("product_id = ? AND code = ?", prod.ID, comb.Code).
				First(&existingComb).Error; err != nil {
				if err := models.DB.Create(&record).Error; err != nil {
					stdLog.Printf("Failed to create combination %s/%s: %v", seed.Slug, comb.Code, err)
				}
				continue
			}
			existingComb.Name = record.Name
			existingComb.PriceAmount = record.PriceAmount
			existingComb.Stock = record.Stock
			existingComb.IsActive = record.IsActive
			if err := models.DB.Save(&existingComb).Error; err != nil {
				stdLog.Printf("Failed to update combination %s/%s: %v", seed.Slug, comb.Code, err)
			}
		}
	}

	// 客户
	customers := []models.Customer{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	}
	customerIDs := map[string]uint{}
	for _, customer := range customers {
		var existing models.Customer
		if err := models.DB.Where("email = ?", customer.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&customer).Error; err != nil {
				stdLog.Printf("Failed to create customer %s: %v", customer.Email, err)
				continue
			}
			existing = customer
			stdLog.Printf("Created customer: %s", customer.Email)
		}
		customerIDs[existing.Email] = existing.ID
	}

	// 折扣
	now := time.Now()
	windowStart := now.Add(-24 * time.Hour)
	windowEnd := now.AddDate(0, 1, 0)
	expiredEnd := now.Add(-time.Hour)
	usageLimit := 100

	strPtr := func(s string) *string { return &s }
	moneyPtr := func(v float64) *models.Money {
		m := models.NewMoneyFromDecimal(decimal.NewFromFloat(v))
		return &m
	}

	discounts := []models.Discount{
		{
			Automatic:    true,
			DiscountType: constants.DiscountTypePercentage,
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			AppliesTo:    constants.DiscountAppliesCategory,
			StartDate:    &windowStart,
			EndDate:      &windowEnd,
			IsActive:     true,
		},
		{
			Code:           strPtr("SPRING20"),
			DiscountType:   constants.DiscountTypePercentage,
			Value:          models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			AppliesTo:      constants.DiscountAppliesOrderTotal,
			MinOrderAmount: moneyPtr(100),
			UsageLimit:     &usageLimit,
			StartDate:      &windowStart,
			EndDate:        &windowEnd,
			IsActive:       true,
		},
		{
			Code:         strPtr("EARPHONES5"),
			DiscountType: constants.DiscountTypeFixedAmount,
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
			AppliesTo:    constants.DiscountAppliesProduct,
			StartDate:    &windowStart,
			EndDate:      &windowEnd,
			IsActive:     true,
		},
		{
			Code:         strPtr("EXPIRED10"),
			DiscountType: constants.DiscountTypePercentage,
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			AppliesTo:    constants.DiscountAppliesOrderTotal,
			StartDate:    &windowStart,
			EndDate:      &expiredEnd,
			IsActive:     true,
		},
	}

	discountIDs := map[string]uint{}
	for i, disc := range discounts {
		var existing models.Discount
		query := models.DB.Model(&models.Discount{})
		if disc.Code != nil {
			query = query.Where("code = ?", *disc.Code)
		} else {
			query = query.Where("automatic = ? AND applies_to = ?", true, disc.AppliesTo)
		}
		if err := query.First(&existing).Error; err != nil {
			if err := models.DB.Create(&discounts[i]).Error; err != nil {
				stdLog.Printf("Failed to create discount %d: %v", i, err)
				continue
			}
			existing = discounts[i]
			stdLog.Printf("Created discount #%d", existing.ID)
		}
		key := "auto-category"
		if disc.Code != nil {
			key = *disc.Code
		}
		discountIDs[key] = existing.ID
	}

	// 折扣范围关联
	if id := discountIDs["auto-category"]; id != 0 {
		if cid := categoryIDs["electronics"]; cid != 0 {
			link := models.DiscountCategory{DiscountID: id, CategoryID: cid}
			var existing models.DiscountCategory
			if err := models.DB.Where("discount_id = ? AND category_id = ?", id, cid).First(&existing).Error; err != nil {
				if err := models.DB.Create(&link).Error; err != nil {
					stdLog.Printf("Failed to link discount to category: %v", err)
				}
			}
		}
	}
	if id := discountIDs["EARPHONES5"]; id != 0 {
		var product models.Product
		if err := models.DB.Where("slug = ?", "wireless-earphones").First(&product).Error; err == nil {
			link := models.DiscountProduct{DiscountID: id, ProductID: product.ID}
			var existing models.DiscountProduct
			if err := models.DB.Where("discount_id = ? AND product_id = ?", id, product.ID).First(&existing).Error; err != nil {
				if err := models.DB.Create(&link).Error; err != nil {
					stdLog.Printf("Failed to link discount to product: %v", err)
				}
			}
		}
	}

	// 礼品卡
	giftExpiry := now.AddDate(1, 0, 0)
	giftCards := []models.GiftCard{
		{
			CustomerID:     customerIDs["alice@example.com"],
			Code:           "GIFT-ALICE-50",
			IsActive:       true,
			ExpirationDate: &giftExpiry,
			CurrentBalance: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		},
		{
			CustomerID:     customerIDs["bob@example.com"],
			Code:           "GIFT-BOB-200",
			IsActive:       true,
			CurrentBalance: models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
		},
	}
	for _, card := range giftCards {
		if card.CustomerID == 0 {
			continue
		}
		var existing models.GiftCard
		if err := models.DB.Where("customer_id = ? AND code = ?", card.CustomerID, card.Code).
			First(&existing).Error; err != nil {
			if err := models.DB.Create(&card).Error; err != nil {
				stdLog.Printf("Failed to create gift card %s: %v", card.Code, err)
			} else {
				stdLog.Printf("Created gift card: %s", card.Code)
			}
		} else {
			stdLog.Printf("Gift card already exists: %s", card.Code)
		}
	}

	stdLog.Println("Seed data ready: 3 categories, 5 products, 2 customers, 4 discounts, 2 gift cards")
}
