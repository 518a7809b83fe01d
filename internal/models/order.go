package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID               uint            `gorm:"primarykey" json:"id"`                                        // 主键
	OrderNo          string          `gorm:"uniqueIndex;not null" json:"order_no"`                        // 订单编号
	UserID           uint            `gorm:"index;not null" json:"user_id"`                               // 用户ID
	PaymentIntentID  string          `gorm:"type:varchar(128);uniqueIndex;not null" json:"payment_intent_id"` // 支付意图ID（确认幂等约束）
	PaymentMethod    string          `gorm:"type:varchar(40);not null;default:''" json:"payment_method"` // 支付方式
	Status           string          `gorm:"index;not null" json:"status"`                                // 订单状态
	Currency         string          `gorm:"not null" json:"currency"`                                    // 币种
	Subtotal         Money           `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`       // 商品小计
	TaxAmount        Money           `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`     // 税额
	DeliveryFee      Money           `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_fee"`   // 配送费
	TotalAmount      Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`   // 实付金额
	ShippingAddress  ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`       // 配送地址快照
	DistanceKm       float64         `gorm:"not null;default:0" json:"distance_km"`                       // 配送距离（公里）
	EstimatedMinutes int             `gorm:"not null;default:0" json:"estimated_minutes"`                 // 预计送达分钟数
	CanceledAt       *time.Time      `gorm:"index" json:"canceled_at"`                                    // 取消时间
	DeliveredAt      *time.Time      `gorm:"index" json:"delivered_at"`                                   // 送达时间
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt        time.Time       `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`                                              // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
