package router

import (
	"fmt"
	"strings"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	adminhandlers "github.com/storefront-next/internal/http/handlers/admin"
	publichandlers "github.com/storefront-next/internal/http/handlers/public"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sfn"
	}
	// 兑换接口限流，防止折扣码/礼品卡码枚举
	redeemRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:redeem", redisPrefix),
		WindowSeconds: cfg.Security.RedeemRateLimit.WindowSeconds,
		MaxAttempts:   cfg.Security.RedeemRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.RedeemRateLimit.BlockSeconds,
	}
	redeemKey := KeyByDraftSession(constants.DraftSessionHeader)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 店面接口
		store := apiV1.Group("/store")
		{
			store.GET("/products", publicHandler.ListProducts)
			store.GET("/products/:slug", publicHandler.GetProduct)
			store.GET("/categories", publicHandler.ListCategories)

			store.GET("/draft", publicHandler.GetDraft)
			store.POST("/draft/customer", publicHandler.BindCustomer)
			store.POST("/draft/items", publicHandler.AddItem)
			store.POST("/draft/items/bulk", publicHandler.AddBulk)
			store.DELETE("/draft/items", publicHandler.RemoveItem)
			store.POST("/draft/redeem", RateLimitMiddleware(cache.Client(), redeemRule, redeemKey), publicHandler.Redeem)
			store.DELETE("/draft/redeem", publicHandler.RemoveCode)

			store.POST("/checkout", publicHandler.Checkout)
			store.GET("/orders/:order_no", publicHandler.GetOrder)
		}

		// 管理端接口
		admin := apiV1.Group("/admin")
		{
			admin.GET("/discounts", adminHandler.ListDiscounts)
			admin.GET("/discounts/:id", adminHandler.GetDiscount)
			admin.POST("/discounts", adminHandler.CreateDiscount)
			admin.PUT("/discounts/:id", adminHandler.UpdateDiscount)
			admin.DELETE("/discounts/:id", adminHandler.DeleteDiscount)

			admin.GET("/gift-cards", adminHandler.ListGiftCards)
			admin.GET("/gift-cards/:id", adminHandler.GetGiftCard)
			admin.POST("/gift-cards", adminHandler.CreateGiftCard)
			admin.PUT("/gift-cards/:id", adminHandler.UpdateGiftCard)
			admin.POST("/gift-cards/:id/adjust-balance", adminHandler.AdjustGiftCardBalance)
			admin.DELETE("/gift-cards/:id", adminHandler.DeleteGiftCard)

			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
