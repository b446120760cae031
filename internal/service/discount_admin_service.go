package service

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// ErrDiscountInvalid 折扣输入不合法
var ErrDiscountInvalid = errors.New("invalid discount input")

// DiscountAdminService 折扣管理服务
type DiscountAdminService struct {
	repo repository.DiscountRepository
}

// NewDiscountAdminService 创建折扣管理服务
func NewDiscountAdminService(repo repository.DiscountRepository) *DiscountAdminService {
	return &DiscountAdminService{repo: repo}
}

// ProductTargetInput 商品关联输入
type ProductTargetInput struct {
	ProductID     uint  `json:"product_id" binding:"required"`
	CombinationID *uint `json:"combination_id"`
}

// DiscountInput 创建/更新折扣输入
type DiscountInput struct {
	Code           *string              `json:"code"`
	Automatic      bool                 `json:"automatic"`
	DiscountType   string               `json:"discount_type"`
	Value          models.Money         `json:"value"`
	AppliesTo      string               `json:"applies_to"`
	MinOrderAmount *models.Money        `json:"minimum_order_amount"`
	UsageLimit     *int                 `json:"usage_limit"`
	StartDate      *time.Time           `json:"start_date"`
	EndDate        *time.Time           `json:"end_date"`
	IsActive       *bool                `json:"is_active"`
	ProductTargets []ProductTargetInput `json:"product_targets"`
	CategoryIDs    []uint               `json:"category_ids"`
}

// Create 创建折扣
func (s *DiscountAdminService) Create(input DiscountInput) (*models.Discount, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}
	if input.Code != nil {
		exist, err := s.repo.GetByCode(*input.Code)
		if err != nil {
			return nil, err
		}
		if exist != nil {
			return nil, ErrDiscountCodeTaken
		}
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	discount := &models.Discount{
		Code:           input.Code,
		Automatic:      input.Automatic,
		DiscountType:   input.DiscountType,
		Value:          input.Value,
		AppliesTo:      input.AppliesTo,
		MinOrderAmount: input.MinOrderAmount,
		UsageLimit:     input.UsageLimit,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		IsActive:       isActive,
	}
	if err := s.repo.Create(discount); err != nil {
		return nil, err
	}
	if err := s.replaceTargets(discount.ID, &input); err != nil {
		return nil, err
	}
	return s.mustGet(discount.ID)
}

// Update 更新折扣
func (s *DiscountAdminService) Update(id uint, input DiscountInput) (*models.Discount, error) {
	if id == 0 {
		return nil, ErrDiscountInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrDiscountNotFound
	}
	if err := s.validate(&input); err != nil {
		return nil, err
	}
	if input.Code != nil {
		other, err := s.repo.GetByCode(*input.Code)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, ErrDiscountCodeTaken
		}
	}

	existing.Code = input.Code
	existing.Automatic = input.Automatic
	existing.DiscountType = input.DiscountType
	existing.Value = input.Value
	existing.AppliesTo = input.AppliesTo
	existing.MinOrderAmount = input.MinOrderAmount
	existing.UsageLimit = input.UsageLimit
	existing.StartDate = input.StartDate
	existing.EndDate = input.EndDate
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}
	existing.Products = nil
	existing.Categories = nil
	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	if err := s.replaceTargets(id, &input); err != nil {
		return nil, err
	}
	return s.mustGet(id)
}

// Get 获取折扣
func (s *DiscountAdminService) Get(id uint) (*models.Discount, error) {
	discount, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	return discount, nil
}

// List 获取折扣列表
func (s *DiscountAdminService) List(filter repository.DiscountListFilter) ([]models.Discount, int64, error) {
	return s.repo.List(filter)
}

// Delete 删除折扣
func (s *DiscountAdminService) Delete(id uint) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrDiscountNotFound
	}
	return s.repo.Delete(id)
}

// validate 校验折扣输入；范围目标为空是允许的（折扣不可命中但不报错）。
func (s *DiscountAdminService) validate(input *DiscountInput) error {
	input.DiscountType = strings.ToLower(strings.TrimSpace(input.DiscountType))
	if input.DiscountType != constants.DiscountTypePercentage && input.DiscountType != constants.DiscountTypeFixedAmount {
		return ErrInvalidDiscountType
	}
	input.AppliesTo = strings.ToLower(strings.TrimSpace(input.AppliesTo))
	switch input.AppliesTo {
	case constants.DiscountAppliesOrderTotal, constants.DiscountAppliesProduct, constants.DiscountAppliesCategory:
	default:
		return ErrInvalidAppliesTo
	}
	if input.Value.Decimal.LessThanOrEqual(decimal.Zero) {
		return ErrDiscountInvalid
	}
	if input.DiscountType == constants.DiscountTypePercentage && input.Value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
		return ErrDiscountInvalid
	}
	if input.Code != nil {
		trimmed := strings.TrimSpace(*input.Code)
		if trimmed == "" {
			input.Code = nil
		} else {
			input.Code = &trimmed
		}
	}
	// 无码且非自动的折扣永远无法触发
	if input.Code == nil && !input.Automatic {
		return ErrDiscountInvalid
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return ErrDiscountInvalid
	}
	if input.UsageLimit != nil && *input.UsageLimit < 0 {
		return ErrDiscountInvalid
	}
	return nil
}

func (s *DiscountAdminService) replaceTargets(id uint, input *DiscountInput) error {
	targets := make([]models.DiscountProduct, 0, len(input.ProductTargets))
	for _, t := range input.ProductTargets {
		targets = append(targets, models.DiscountProduct{
			ProductID:     t.ProductID,
			CombinationID: t.CombinationID,
		})
	}
	if err := s.repo.ReplaceProducts(id, targets); err != nil {
		return err
	}
	categories := make([]models.DiscountCategory, 0, len(input.CategoryIDs))
	for _, cid := range input.CategoryIDs {
		categories = append(categories, models.DiscountCategory{CategoryID: cid})
	}
	return s.repo.ReplaceCategories(id, categories)
}

func (s *DiscountAdminService) mustGet(id uint) (*models.Discount, error) {
	discount, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	return discount, nil
}
