package service

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// SettlementService 结算落账服务。
// 定价引擎不落任何副作用，结账后由此处统一执行：
// 折扣使用次数递增、礼品卡余额扣减。
type SettlementService struct {
	db           *gorm.DB
	discountRepo *repository.GormDiscountRepository
	giftCardRepo *repository.GormGiftCardRepository
	orderRepo    *repository.GormOrderRepository
}

// NewSettlementService 创建结算落账服务
func NewSettlementService(
	db *gorm.DB,
	discountRepo *repository.GormDiscountRepository,
	giftCardRepo *repository.GormGiftCardRepository,
	orderRepo *repository.GormOrderRepository,
) *SettlementService {
	return &SettlementService{
		db:           db,
		discountRepo: discountRepo,
		giftCardRepo: giftCardRepo,
		orderRepo:    orderRepo,
	}
}

// SettleInput 结算输入
type SettleInput struct {
	OrderID        uint
	DiscountIDs    []uint
	GiftCardID     *uint
	GiftCardAmount decimal.Decimal
}

// Settle 在单个事务内落账。
// 同一折扣在一笔订单内只递增一次；礼品卡扣减为原子操作，
// 余额冲突（并发消耗）会使整个事务回滚并交由队列重试。
func (s *SettlementService) Settle(input SettleInput) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		seen := make(map[uint]struct{}, len(input.DiscountIDs))
		discountRepo := s.discountRepo.WithTx(tx)
		for _, id := range input.DiscountIDs {
			if id == 0 {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if err := discountRepo.IncrementUsagesCount(id, 1); err != nil {
				return err
			}
		}

		if input.GiftCardID != nil && input.GiftCardAmount.GreaterThan(decimal.Zero) {
			amount := models.NewMoneyFromDecimal(input.GiftCardAmount)
			if err := s.giftCardRepo.WithTx(tx).DeductBalance(*input.GiftCardID, amount); err != nil {
				return err
			}
		}

		if input.OrderID != 0 {
			orderRepo := s.orderRepo.WithTx(tx)
			if err := orderRepo.UpdateStatus(input.OrderID, constants.OrderStatusCompleted); err != nil {
				return err
			}
		}
		return nil
	})
}
