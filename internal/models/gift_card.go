package models

import (
	"time"

	"gorm.io/gorm"
)

// GiftCard 礼品卡（归属具体客户，卡密仅在客户范围内唯一）
type GiftCard struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                                   // 主键
	CustomerID     uint           `gorm:"not null;uniqueIndex:idx_gift_card_customer_code" json:"customer_id"`    // 客户ID
	Code           string         `gorm:"type:varchar(80);not null;uniqueIndex:idx_gift_card_customer_code" json:"code"` // 卡密
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`                                 // 是否启用
	ExpirationDate *time.Time     `gorm:"index" json:"expiration_date"`                                           // 过期时间（为空表示不过期）
	CurrentBalance Money          `gorm:"type:decimal(20,2);not null;default:0" json:"current_balance"`           // 当前余额（仅结算路径扣减）
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                                // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                                // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                         // 软删除时间

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"` // 归属客户
}

// TableName 指定表名
func (GiftCard) TableName() string {
	return "gift_cards"
}
