package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车项（加购时快照商品名称与单价）
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                         // 主键
	LineID    string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"line_id"`         // 行标识（UUID）
	UserID    uint           `gorm:"not null;index:idx_cart_user_product" json:"user_id"`          // 用户ID
	ProductID uint           `gorm:"not null;index:idx_cart_user_product" json:"product_id"`       // 商品ID
	Name      string         `gorm:"type:varchar(200);not null" json:"name"`                       // 商品名称快照
	Brand     string         `gorm:"type:varchar(100);default:''" json:"brand"`                    // 品牌快照
	Category  string         `gorm:"type:varchar(100);default:''" json:"category"`                 // 分类快照
	UnitPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`      // 单价快照
	Quantity  int            `gorm:"not null" json:"quantity"`                                     // 数量
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
