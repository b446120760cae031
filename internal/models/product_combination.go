package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductCombination 商品规格组合（如尺码/颜色），价格与库存按组合维度维护
type ProductCombination struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                       // 主键
	ProductID   uint           `gorm:"not null;index;uniqueIndex:idx_combination_code" json:"product_id"`               // 商品ID
	Code        string         `gorm:"column:code;type:varchar(64);not null;uniqueIndex:idx_combination_code" json:"code"` // 组合编码（同商品内唯一）
	Name        string         `gorm:"type:varchar(120)" json:"name"`                              // 组合名称（如 红色/L）
	PriceAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`  // 组合单价
	Stock       int            `gorm:"not null;default:0" json:"stock"`                            // 组合库存
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                        // 是否启用
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                          // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductCombination) TableName() string {
	return "product_combinations"
}
