package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer 客户
type Customer struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	Name      string         `gorm:"type:varchar(120)" json:"name"`    // 名称
	Email     string         `gorm:"uniqueIndex;not null" json:"email"` // 邮箱
	CreatedAt time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                       // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间

	GiftCards []GiftCard `gorm:"foreignKey:CustomerID" json:"gift_cards,omitempty"` // 礼品卡列表
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
