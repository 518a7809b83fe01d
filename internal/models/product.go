package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（生鲜杂货 SKU）
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Name        string         `gorm:"type:varchar(200);not null;index" json:"name"`              // 商品名称
	Brand       string         `gorm:"type:varchar(100);default:''" json:"brand"`                 // 品牌
	Category    string         `gorm:"type:varchar(100);default:'';index" json:"category"`        // 分类（果蔬/乳品/面包等）
	Description string         `gorm:"type:text" json:"description,omitempty"`                    // 描述
	PriceAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 单价
	Unit        string         `gorm:"type:varchar(40);default:''" json:"unit"`                   // 计量单位（kg/件/升）
	ImageURL    string         `gorm:"type:varchar(500);default:''" json:"image_url"`             // 图片地址
	IsActive    bool           `gorm:"index" json:"is_active"`                                    // 是否上架
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
