package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount 折扣规则
type Discount struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                  // 主键
	Code           *string        `gorm:"uniqueIndex" json:"code"`                               // 折扣码（为空表示仅自动触发）
	Automatic      bool           `gorm:"not null;default:false;index" json:"automatic"`         // 是否自动触发
	DiscountType   string         `gorm:"type:varchar(20);not null" json:"discount_type"`        // 类型（percentage/fixed_amount）
	Value          Money          `gorm:"type:decimal(20,2);not null" json:"value"`              // 数值（百分比或固定金额）
	AppliesTo      string         `gorm:"type:varchar(20);not null" json:"applies_to"`           // 适用范围（order_total/product/category）
	MinOrderAmount *Money         `gorm:"type:decimal(20,2)" json:"minimum_order_amount"`        // 使用门槛（为空表示不限制）
	UsageLimit     *int           `json:"usage_limit"`                                           // 总使用上限（为空表示不限制）
	UsagesCount    int            `gorm:"not null;default:0" json:"usages_count"`                // 已使用次数（仅结算路径递增）
	StartDate      *time.Time     `gorm:"index" json:"start_date"`                               // 生效时间
	EndDate        *time.Time     `gorm:"index" json:"end_date"`                                 // 失效时间
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`                // 是否启用
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                               // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间

	Products   []DiscountProduct  `gorm:"foreignKey:DiscountID" json:"products,omitempty"`   // 商品关联（product 范围）
	Categories []DiscountCategory `gorm:"foreignKey:DiscountID" json:"categories,omitempty"` // 分类关联（category 范围）
}

// TableName 指定表名
func (Discount) TableName() string {
	return "discounts"
}

// DiscountProduct 折扣与商品关联（可细化到具体规格组合）
type DiscountProduct struct {
	ID            uint  `gorm:"primarykey" json:"id"`                // 主键
	DiscountID    uint  `gorm:"index;not null" json:"discount_id"`   // 折扣ID
	ProductID     uint  `gorm:"index;not null" json:"product_id"`    // 商品ID
	CombinationID *uint `gorm:"index" json:"combination_id"`         // 规格组合ID（为空表示不限定组合）
}

// TableName 指定表名
func (DiscountProduct) TableName() string {
	return "discount_products"
}

// DiscountCategory 折扣与分类关联
type DiscountCategory struct {
	ID         uint `gorm:"primarykey" json:"id"`              // 主键
	DiscountID uint `gorm:"index;not null" json:"discount_id"` // 折扣ID
	CategoryID uint `gorm:"index;not null" json:"category_id"` // 分类ID
}

// TableName 指定表名
func (DiscountCategory) TableName() string {
	return "discount_categories"
}
