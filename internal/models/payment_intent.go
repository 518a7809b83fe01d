package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// CartSnapshotItem 支付意图创建时刻的购物车行快照
type CartSnapshotItem struct {
	ProductID uint   `json:"product_id"` // 商品ID
	Name      string `json:"name"`       // 商品名称
	Brand     string `json:"brand"`      // 品牌
	Category  string `json:"category"`   // 分类
	UnitPrice Money  `json:"unit_price"` // 单价
	Quantity  int    `json:"quantity"`   // 数量
}

// CartSnapshot 购物车快照（JSON 列）
type CartSnapshot []CartSnapshotItem

// Value 用于数据库写入
func (s CartSnapshot) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 用于数据库读取
func (s *CartSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = CartSnapshot{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported cart snapshot column type")
	}
	if len(data) == 0 {
		*s = CartSnapshot{}
		return nil
	}
	return json.Unmarshal(data, s)
}

// PaymentIntent 支付意图记录表（网关确认创建后落库）
type PaymentIntent struct {
	ID               uint            `gorm:"primarykey" json:"id"`                                            // 主键
	IntentID         string          `gorm:"type:varchar(128);uniqueIndex;not null" json:"intent_id"`         // 网关支付意图ID
	ClientSecret     string          `gorm:"type:varchar(200);not null" json:"-"`                             // 客户端密钥（不入列表响应）
	UserID           uint            `gorm:"index;not null" json:"user_id"`                                   // 用户ID
	Status           string          `gorm:"index;not null" json:"status"`                                    // 意图状态
	Currency         string          `gorm:"not null" json:"currency"`                                        // 币种
	Subtotal         Money           `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`           // 商品小计
	TaxAmount        Money           `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`         // 税额
	DeliveryFee      Money           `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_fee"`       // 配送费
	Amount           Money           `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`             // 总金额
	CartSnapshot     CartSnapshot    `gorm:"type:json;not null" json:"cart_snapshot"`                         // 购物车快照
	ShippingAddress  ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`           // 配送地址快照
	DistanceKm       float64         `gorm:"not null;default:0" json:"distance_km"`                           // 配送距离（公里）
	EstimatedMinutes int             `gorm:"not null;default:0" json:"estimated_minutes"`                     // 预计送达分钟数
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt        time.Time       `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`                                                  // 软删除时间
}

// TableName 指定表名
func (PaymentIntent) TableName() string {
	return "payment_intents"
}
