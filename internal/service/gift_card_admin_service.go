package service

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// ErrGiftCardInvalid 礼品卡输入不合法
var ErrGiftCardInvalid = errors.New("invalid gift card input")

// GiftCardAdminService 礼品卡管理服务
type GiftCardAdminService struct {
	repo         repository.GiftCardRepository
	customerRepo repository.CustomerRepository
}

// NewGiftCardAdminService 创建礼品卡管理服务
func NewGiftCardAdminService(repo repository.GiftCardRepository, customerRepo repository.CustomerRepository) *GiftCardAdminService {
	return &GiftCardAdminService{repo: repo, customerRepo: customerRepo}
}

// GiftCardInput 创建/更新礼品卡输入
type GiftCardInput struct {
	CustomerID     uint         `json:"customer_id"`
	Code           string       `json:"code"`
	IsActive       *bool        `json:"is_active"`
	ExpirationDate *time.Time   `json:"expiration_date"`
	InitialBalance models.Money `json:"initial_balance"`
}

// Create 创建礼品卡（卡密在客户范围内唯一）
func (s *GiftCardAdminService) Create(input GiftCardInput) (*models.GiftCard, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" || input.CustomerID == 0 {
		return nil, ErrGiftCardInvalid
	}
	if input.InitialBalance.Decimal.LessThan(decimal.Zero) {
		return nil, ErrGiftCardInvalid
	}
	customer, err := s.customerRepo.GetByID(input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	exist, err := s.repo.GetByCustomerAndCode(input.CustomerID, code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrGiftCardCodeTaken
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	card := &models.GiftCard{
		CustomerID:     input.CustomerID,
		Code:           code,
		IsActive:       isActive,
		ExpirationDate: input.ExpirationDate,
		CurrentBalance: input.InitialBalance,
	}
	if err := s.repo.Create(card); err != nil {
		return nil, err
	}
	return card, nil
}

// Update 更新礼品卡状态与有效期（余额只通过结算扣减或 Adjust 调整）
func (s *GiftCardAdminService) Update(id uint, input GiftCardInput) (*models.GiftCard, error) {
	card, err := s.mustGet(id)
	if err != nil {
		return nil, err
	}
	if input.IsActive != nil {
		card.IsActive = *input.IsActive
	}
	card.ExpirationDate = input.ExpirationDate
	if err := s.repo.Update(card); err != nil {
		return nil, err
	}
	return card, nil
}

// AdjustBalance 人工调整余额（客服补偿场景）
func (s *GiftCardAdminService) AdjustBalance(id uint, delta models.Money) (*models.GiftCard, error) {
	card, err := s.mustGet(id)
	if err != nil {
		return nil, err
	}
	next := card.CurrentBalance.Decimal.Add(delta.Decimal)
	if next.LessThan(decimal.Zero) {
		return nil, ErrGiftCardInvalid
	}
	card.CurrentBalance = models.NewMoneyFromDecimal(next)
	if err := s.repo.Update(card); err != nil {
		return nil, err
	}
	return card, nil
}

// Get 获取礼品卡
func (s *GiftCardAdminService) Get(id uint) (*models.GiftCard, error) {
	return s.mustGet(id)
}

// List 获取礼品卡列表
func (s *GiftCardAdminService) List(filter repository.GiftCardListFilter) ([]models.GiftCard, int64, error) {
	return s.repo.List(filter)
}

// Delete 删除礼品卡
func (s *GiftCardAdminService) Delete(id uint) error {
	if _, err := s.mustGet(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *GiftCardAdminService) mustGet(id uint) (*models.GiftCard, error) {
	card, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	return card, nil
}
