package catalog

import (
	"errors"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/pricing"
	"github.com/storefront-next/internal/repository"
)

// 目录查询错误
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInactive     = errors.New("product inactive")
	ErrCombinationNotFound = errors.New("combination not found")
	ErrCombinationInactive = errors.New("combination inactive")
	ErrCustomerNotFound    = errors.New("customer not found")
)

// Snapshotter 定价快照提供者：把持久化模型转成引擎侧只读视图。
// 引擎不接触数据库，所有输入在进入引擎前于此处定格。
type Snapshotter struct {
	discountRepo repository.DiscountRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
}

// NewSnapshotter 创建定价快照提供者
func NewSnapshotter(
	discountRepo repository.DiscountRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
) *Snapshotter {
	return &Snapshotter{
		discountRepo: discountRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
	}
}

// DiscountCatalog 获取启用折扣的引擎视图，保持仓库返回的目录顺序。
func (s *Snapshotter) DiscountCatalog() ([]pricing.Discount, error) {
	records, err := s.discountRepo.ListActive()
	if err != nil {
		return nil, err
	}
	catalog := make([]pricing.Discount, 0, len(records))
	for i := range records {
		catalog = append(catalog, DiscountView(&records[i]))
	}
	return catalog, nil
}

// CustomerContext 获取客户上下文（含礼品卡快照）。
// customerID 为 0 表示匿名，返回 nil 上下文。
func (s *Snapshotter) CustomerContext(customerID uint) (*pricing.CustomerContext, error) {
	if customerID == 0 {
		return nil, nil
	}
	customer, err := s.customerRepo.GetWithGiftCards(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	ctx := &pricing.CustomerContext{CustomerID: customer.ID}
	for i := range customer.GiftCards {
		card := &customer.GiftCards[i]
		ctx.GiftCards = append(ctx.GiftCards, pricing.GiftCard{
			ID:             card.ID,
			Code:           card.Code,
			IsActive:       card.IsActive,
			ExpirationDate: card.ExpirationDate,
			CurrentBalance: card.CurrentBalance.Decimal,
		})
	}
	return ctx, nil
}

// Selection 把（商品，规格组合）定格为目录选择项。
// 价格、库存、税率与分类在此刻快照；行级自动折扣由调用方解析后填入。
func (s *Snapshotter) Selection(productID uint, combinationID *uint) (*pricing.CatalogSelection, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}

	sel := &pricing.CatalogSelection{
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.PriceAmount.Decimal,
		TaxRate:     product.TaxRate.Decimal,
		Stock:       product.Stock,
	}
	for i := range product.Categories {
		sel.CategoryIDs = append(sel.CategoryIDs, product.Categories[i].ID)
	}

	if combinationID != nil {
		var combination *models.ProductCombination
		for i := range product.Combinations {
			if product.Combinations[i].ID == *combinationID {
				combination = &product.Combinations[i]
				break
			}
		}
		if combination == nil {
			return nil, ErrCombinationNotFound
		}
		if !combination.IsActive {
			return nil, ErrCombinationInactive
		}
		cid := combination.ID
		sel.CombinationID = &cid
		sel.ProductName = product.Name + " / " + combination.Name
		sel.UnitPrice = combination.PriceAmount.Decimal
		sel.Stock = combination.Stock
	}
	return sel, nil
}

// DiscountView 把折扣模型转成引擎视图
func DiscountView(d *models.Discount) pricing.Discount {
	view := pricing.Discount{
		ID:           d.ID,
		Automatic:    d.Automatic,
		DiscountType: d.DiscountType,
		Value:        d.Value.Decimal,
		AppliesTo:    d.AppliesTo,
		UsageLimit:   d.UsageLimit,
		UsagesCount:  d.UsagesCount,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		IsActive:     d.IsActive,
	}
	if d.Code != nil {
		view.Code = *d.Code
	}
	if d.MinOrderAmount != nil {
		min := d.MinOrderAmount.Decimal
		view.MinOrderAmount = &min
	}
	for i := range d.Products {
		target := pricing.ProductTarget{ProductID: d.Products[i].ProductID}
		if d.Products[i].CombinationID != nil {
			cid := *d.Products[i].CombinationID
			target.CombinationID = &cid
		}
		view.ProductTargets = append(view.ProductTargets, target)
	}
	for i := range d.Categories {
		view.CategoryIDs = append(view.CategoryIDs, d.Categories[i].CategoryID)
	}
	return view
}
