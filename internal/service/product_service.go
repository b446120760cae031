package service

import (
	"time"

	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/pricing"
	"github.com/storefront-next/internal/repository"
)

// CombinationPreview 规格组合定价预览
type CombinationPreview struct {
	Combination models.ProductCombination `json:"combination"`
	UnitPrice   models.Money              `json:"unit_price"`            // 自动折扣后的单价
	DiscountID  *uint                     `json:"discount_id,omitempty"` // 命中的自动折扣
}

// ProductDetail 商品详情（含自动折扣定价预览）
type ProductDetail struct {
	Product      models.Product       `json:"product"`
	UnitPrice    models.Money         `json:"unit_price"` // 自动折扣后的基础单价
	DiscountID   *uint                `json:"discount_id,omitempty"`
	Combinations []CombinationPreview `json:"combinations,omitempty"`
}

// ProductService 商品目录服务
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	snapshot     *catalog.Snapshotter
	now          func() time.Time
}

// NewProductService 创建商品目录服务
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	snapshot *catalog.Snapshotter,
	now func() time.Time,
) *ProductService {
	if now == nil {
		now = time.Now
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		snapshot:     snapshot,
		now:          now,
	}
}

// List 获取商品列表（上架商品，含自动折扣定价预览）
func (s *ProductService) List(filter repository.ProductListFilter) ([]ProductDetail, int64, error) {
	filter.OnlyActive = true
	products, total, err := s.productRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	resolver, err := s.resolver()
	if err != nil {
		return nil, 0, err
	}
	details := make([]ProductDetail, 0, len(products))
	for i := range products {
		details = append(details, s.buildDetail(&products[i], resolver))
	}
	return details, total, nil
}

// GetBySlug 获取商品详情
func (s *ProductService) GetBySlug(slug string) (*ProductDetail, error) {
	product, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, catalog.ErrProductNotFound
	}
	resolver, err := s.resolver()
	if err != nil {
		return nil, err
	}
	detail := s.buildDetail(product, resolver)
	return &detail, nil
}

// ListCategories 获取全部分类
func (s *ProductService) ListCategories() ([]models.Category, error) {
	return s.categoryRepo.ListAll()
}

func (s *ProductService) resolver() (*pricing.Resolver, error) {
	discounts, err := s.snapshot.DiscountCatalog()
	if err != nil {
		return nil, err
	}
	return pricing.NewResolver(discounts, s.now), nil
}

// buildDetail 计算商品与各组合的自动折扣预览价
func (s *ProductService) buildDetail(product *models.Product, resolver *pricing.Resolver) ProductDetail {
	detail := ProductDetail{
		Product:   *product,
		UnitPrice: product.PriceAmount,
	}
	if d := resolver.FindApplicableDiscount(product.ID, nil); d != nil {
		detail.UnitPrice = models.NewMoneyFromDecimal(
			pricing.DiscountedUnitPrice(d, product.PriceAmount.Decimal, 1),
		)
		id := d.ID
		detail.DiscountID = &id
	}
	for i := range product.Combinations {
		combination := product.Combinations[i]
		if !combination.IsActive {
			continue
		}
		preview := CombinationPreview{
			Combination: combination,
			UnitPrice:   combination.PriceAmount,
		}
		cid := combination.ID
		if d := resolver.FindApplicableDiscount(product.ID, &cid); d != nil {
			preview.UnitPrice = models.NewMoneyFromDecimal(
				pricing.DiscountedUnitPrice(d, combination.PriceAmount.Decimal, 1),
			)
			id := d.ID
			preview.DiscountID = &id
		}
		detail.Combinations = append(detail.Combinations, preview)
	}
	return detail
}
