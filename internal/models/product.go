package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Slug       string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Name       string         `gorm:"type:varchar(200);not null" json:"name"`                    // 名称
	PriceAmount Money         `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 基础单价（无规格商品直接使用）
	TaxRate    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_rate"`     // 税率（百分比）
	Stock      int            `gorm:"not null;default:0" json:"stock"`                           // 库存（无规格商品直接使用）
	IsActive   bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	SortOrder  int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	// 关联
	Categories   []Category           `gorm:"many2many:product_categories" json:"categories,omitempty"` // 分类列表
	Combinations []ProductCombination `gorm:"foreignKey:ProductID" json:"combinations,omitempty"`       // 规格组合列表
	Discounts    []DiscountProduct    `gorm:"foreignKey:ProductID" json:"discounts,omitempty"`          // 折扣关联
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
