package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// ErrGiftCardBalanceConflict 礼品卡余额不足以扣减（并发结算时余额已被消耗）
var ErrGiftCardBalanceConflict = errors.New("gift card balance conflict")

// GiftCardRepository 礼品卡数据访问接口
type GiftCardRepository interface {
	GetByID(id uint) (*models.GiftCard, error)
	GetByCustomerAndCode(customerID uint, code string) (*models.GiftCard, error)
	ListByCustomer(customerID uint) ([]models.GiftCard, error)
	Create(card *models.GiftCard) error
	Update(card *models.GiftCard) error
	Delete(id uint) error
	List(filter GiftCardListFilter) ([]models.GiftCard, int64, error)
	DeductBalance(id uint, amount models.Money) error
	WithTx(tx *gorm.DB) *GormGiftCardRepository
}

// GormGiftCardRepository GORM 实现
type GormGiftCardRepository struct {
	db *gorm.DB
}

// NewGiftCardRepository 创建礼品卡仓库
func NewGiftCardRepository(db *gorm.DB) *GormGiftCardRepository {
	return &GormGiftCardRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGiftCardRepository) WithTx(tx *gorm.DB) *GormGiftCardRepository {
	if tx == nil {
		return r
	}
	return &GormGiftCardRepository{db: tx}
}

// GetByID 根据ID获取礼品卡
func (r *GormGiftCardRepository) GetByID(id uint) (*models.GiftCard, error) {
	var card models.GiftCard
	if err := r.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByCustomerAndCode 按客户与卡密获取礼品卡（卡密仅在客户范围内唯一）
func (r *GormGiftCardRepository) GetByCustomerAndCode(customerID uint, code string) (*models.GiftCard, error) {
	var card models.GiftCard
	if err := r.db.Where("customer_id = ? AND code = ?", customerID, code).
		First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// ListByCustomer 获取客户名下全部礼品卡
func (r *GormGiftCardRepository) ListByCustomer(customerID uint) ([]models.GiftCard, error) {
	var cards []models.GiftCard
	if err := r.db.Where("customer_id = ?", customerID).
		Order("id asc").Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// Create 创建礼品卡
func (r *GormGiftCardRepository) Create(card *models.GiftCard) error {
	return r.db.Create(card).Error
}

// Update 更新礼品卡
func (r *GormGiftCardRepository) Update(card *models.GiftCard) error {
	return r.db.Save(card).Error
}

// Delete 删除礼品卡
func (r *GormGiftCardRepository) Delete(id uint) error {
	return r.db.Delete(&models.GiftCard{}, id).Error
}

// List 获取礼品卡列表
func (r *GormGiftCardRepository) List(filter GiftCardListFilter) ([]models.GiftCard, int64, error) {
	var cards []models.GiftCard
	query := r.db.Model(&models.GiftCard{})

	if filter.CustomerID > 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// DeductBalance 原子扣减余额，余额不足时返回 ErrGiftCardBalanceConflict。
func (r *GormGiftCardRepository) DeductBalance(id uint, amount models.Money) error {
	result := r.db.Model(&models.GiftCard{}).
		Where("id = ?", id).
		Where("current_balance >= ?", amount).
		UpdateColumn("current_balance", gorm.Expr("current_balance - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGiftCardBalanceConflict
	}
	return nil
}
