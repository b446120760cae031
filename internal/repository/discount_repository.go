package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// DiscountRepository 折扣数据访问接口
type DiscountRepository interface {
	GetByID(id uint) (*models.Discount, error)
	GetByCode(code string) (*models.Discount, error)
	ListActive() ([]models.Discount, error)
	Create(discount *models.Discount) error
	Update(discount *models.Discount) error
	Delete(id uint) error
	List(filter DiscountListFilter) ([]models.Discount, int64, error)
	ReplaceProducts(discountID uint, targets []models.DiscountProduct) error
	ReplaceCategories(discountID uint, categories []models.DiscountCategory) error
	IncrementUsagesCount(id uint, delta int) error
	WithTx(tx *gorm.DB) *GormDiscountRepository
}

// GormDiscountRepository GORM 实现
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository 创建折扣仓库
func NewDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountRepository) WithTx(tx *gorm.DB) *GormDiscountRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountRepository{db: tx}
}

// GetByID 根据ID获取折扣（含关联目标）
func (r *GormDiscountRepository) GetByID(id uint) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.Preload("Products").Preload("Categories").First(&discount, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

// GetByCode 根据折扣码获取折扣（含关联目标）
func (r *GormDiscountRepository) GetByCode(code string) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.Preload("Products").Preload("Categories").
		Where("code = ?", code).First(&discount).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

// ListActive 获取全部启用折扣（含关联目标），按创建顺序返回。
// 返回顺序即引擎解析自动折扣时的平局顺序。
func (r *GormDiscountRepository) ListActive() ([]models.Discount, error) {
	var discounts []models.Discount
	if err := r.db.Preload("Products").Preload("Categories").
		Where("is_active = ?", true).
		Order("id asc").
		Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// Create 创建折扣
func (r *GormDiscountRepository) Create(discount *models.Discount) error {
	return r.db.Create(discount).Error
}

// Update 更新折扣
func (r *GormDiscountRepository) Update(discount *models.Discount) error {
	return r.db.Save(discount).Error
}

// Delete 删除折扣及其关联目标
func (r *GormDiscountRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discount_id = ?", id).Delete(&models.DiscountProduct{}).Error; err != nil {
			return err
		}
		if err := tx.Where("discount_id = ?", id).Delete(&models.DiscountCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Discount{}, id).Error
	})
}

// List 获取折扣列表
func (r *GormDiscountRepository) List(filter DiscountListFilter) ([]models.Discount, int64, error) {
	var discounts []models.Discount
	query := r.db.Model(&models.Discount{})

	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}
	if filter.AppliesTo != "" {
		query = query.Where("applies_to = ?", filter.AppliesTo)
	}
	if filter.Automatic != nil {
		query = query.Where("automatic = ?", *filter.Automatic)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ProductID > 0 {
		query = query.Where(
			"id IN (?)",
			r.db.Model(&models.DiscountProduct{}).Select("discount_id").Where("product_id = ?", filter.ProductID),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("Products").Preload("Categories").
		Order("id desc").Find(&discounts).Error; err != nil {
		return nil, 0, err
	}
	return discounts, total, nil
}

// ReplaceProducts 整体替换折扣的商品关联
func (r *GormDiscountRepository) ReplaceProducts(discountID uint, targets []models.DiscountProduct) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discount_id = ?", discountID).Delete(&models.DiscountProduct{}).Error; err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}
		for i := range targets {
			targets[i].ID = 0
			targets[i].DiscountID = discountID
		}
		return tx.Create(&targets).Error
	})
}

// ReplaceCategories 整体替换折扣的分类关联
func (r *GormDiscountRepository) ReplaceCategories(discountID uint, categories []models.DiscountCategory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discount_id = ?", discountID).Delete(&models.DiscountCategory{}).Error; err != nil {
			return err
		}
		if len(categories) == 0 {
			return nil
		}
		for i := range categories {
			categories[i].ID = 0
			categories[i].DiscountID = discountID
		}
		return tx.Create(&categories).Error
	})
}

// IncrementUsagesCount 增加折扣使用次数（结算路径调用）
func (r *GormDiscountRepository) IncrementUsagesCount(id uint, delta int) error {
	if delta == 0 {
		delta = 1
	}
	return r.db.Model(&models.Discount{}).
		Where("id = ?", id).
		UpdateColumn("usages_count", gorm.Expr("usages_count + ?", delta)).Error
}
