package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

var testDBSeq atomic.Int64

// fixedNow 固定测试时钟，避免生效窗口相关的偶发失败
func fixedNow() time.Time {
	return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func testClock() func() time.Time {
	return fixedNow
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func money(s string) models.Money {
	return models.NewMoneyFromString(s)
}

func moneyPtr(s string) *models.Money {
	m := money(s)
	return &m
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Category{},
		&models.Product{},
		&models.ProductCombination{},
		&models.Discount{},
		&models.DiscountProduct{},
		&models.DiscountCategory{},
		&models.GiftCard{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedPricingFixture 写入贯穿草稿/结账用例的目录数据：
//   - 商品 1 keyboard：50 元、税率 10%、自动九折（折扣 1）
//   - 商品 2 mouse：组合 black 30 元、库存 3
//   - 商品 3 售罄，商品 4 下架
//   - 折扣 5：满 70 减 5 的订单级自动折扣
//   - 客户 1 alice 持 GIFT50 / GIFT10 / GIFT0 三张礼品卡
func seedPricingFixture(t *testing.T, db *gorm.DB) {
	t.Helper()

	category := models.Category{ID: 1, Slug: "peripherals", Name: "Peripherals"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	products := []models.Product{
		{
			ID: 1, Slug: "keyboard", Name: "keyboard",
			PriceAmount: money("50"), TaxRate: money("10"), Stock: 10, IsActive: true,
			Categories: []models.Category{category},
		},
		{
			ID: 2, Slug: "mouse", Name: "mouse",
			PriceAmount: money("20"), Stock: 5, IsActive: true,
			Combinations: []models.ProductCombination{
				{ID: 1, Code: "black", Name: "black", PriceAmount: money("30"), Stock: 3, IsActive: true},
			},
		},
		{ID: 3, Slug: "desk-lamp", Name: "desk lamp", PriceAmount: money("15"), Stock: 0, IsActive: true},
		{ID: 4, Slug: "retired", Name: "retired", PriceAmount: money("10"), Stock: 5, IsActive: true},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed product %s: %v", products[i].Slug, err)
		}
	}
	// default:true 的布尔字段在 Create 时写不进 false，改用显式更新
	if err := db.Model(&models.Product{}).Where("id = ?", 4).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	discounts := []models.Discount{
		{
			ID: 1, Automatic: true, IsActive: true,
			DiscountType: constants.DiscountTypePercentage, Value: money("10"),
			AppliesTo: constants.DiscountAppliesProduct,
			Products:  []models.DiscountProduct{{ProductID: 1}},
		},
		{
			ID: 2, Code: strPtr("SAVE15"), IsActive: true,
			DiscountType: constants.DiscountTypePercentage, Value: money("15"),
			AppliesTo:      constants.DiscountAppliesOrderTotal,
			MinOrderAmount: moneyPtr("40"),
		},
		{
			ID: 3, Code: strPtr("OVER60"), IsActive: true,
			DiscountType: constants.DiscountTypePercentage, Value: money("10"),
			AppliesTo:      constants.DiscountAppliesOrderTotal,
			MinOrderAmount: moneyPtr("60"),
		},
		{
			ID: 4, Code: strPtr("GONE"), IsActive: true,
			DiscountType: constants.DiscountTypePercentage, Value: money("10"),
			AppliesTo:  constants.DiscountAppliesOrderTotal,
			UsageLimit: intPtr(1), UsagesCount: 1,
		},
		{
			ID: 5, Automatic: true, IsActive: true,
			DiscountType: constants.DiscountTypeFixedAmount, Value: money("5"),
			AppliesTo:      constants.DiscountAppliesOrderTotal,
			MinOrderAmount: moneyPtr("70"),
		},
	}
	for i := range discounts {
		if err := db.Create(&discounts[i]).Error; err != nil {
			t.Fatalf("seed discount %d: %v", discounts[i].ID, err)
		}
	}

	alice := models.Customer{
		ID: 1, Name: "alice", Email: "alice@example.com",
		GiftCards: []models.GiftCard{
			{ID: 1, Code: "GIFT50", IsActive: true, CurrentBalance: money("50")},
			{ID: 2, Code: "GIFT10", IsActive: true, CurrentBalance: money("10")},
			{ID: 3, Code: "GIFT0", IsActive: true, CurrentBalance: money("0")},
		},
	}
	if err := db.Create(&alice).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
}

// serviceEnv 服务层测试环境：内存库 + 内存草稿存储 + 固定时钟
type serviceEnv struct {
	db       *gorm.DB
	store    cache.DraftStore
	snapshot *catalog.Snapshotter
	drafts   *DraftService
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	db := newTestDB(t)
	seedPricingFixture(t, db)
	snapshot := catalog.NewSnapshotter(
		repository.NewDiscountRepository(db),
		repository.NewProductRepository(db),
		repository.NewCustomerRepository(db),
	)
	store := cache.NewMemoryDraftStore()
	return &serviceEnv{
		db:       db,
		store:    store,
		snapshot: snapshot,
		drafts:   NewDraftService(store, snapshot, testClock()),
	}
}

func (e *serviceEnv) newSettlement() *SettlementService {
	return NewSettlementService(
		e.db,
		repository.NewDiscountRepository(e.db),
		repository.NewGiftCardRepository(e.db),
		repository.NewOrderRepository(e.db),
	)
}

// newCheckout 构建未启用队列的结账服务（结算同步执行）
func (e *serviceEnv) newCheckout() *CheckoutService {
	return NewCheckoutService(
		e.drafts,
		e.newSettlement(),
		repository.NewOrderRepository(e.db),
		nil,
		testClock(),
	)
}

func (e *serviceEnv) discountUsages(t *testing.T, id uint) int {
	t.Helper()
	var discount models.Discount
	if err := e.db.First(&discount, id).Error; err != nil {
		t.Fatalf("load discount %d: %v", id, err)
	}
	return discount.UsagesCount
}

func (e *serviceEnv) giftCardBalance(t *testing.T, id uint) decimal.Decimal {
	t.Helper()
	var card models.GiftCard
	if err := e.db.First(&card, id).Error; err != nil {
		t.Fatalf("load gift card %d: %v", id, err)
	}
	return card.CurrentBalance.Decimal
}
