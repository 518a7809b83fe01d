package models

import "strings"

// ShippingAddress 配送地址（内嵌值类型，随订单/支付意图快照存储）
type ShippingAddress struct {
	FirstName  string `gorm:"type:varchar(100)" json:"first_name"` // 收件人名
	LastName   string `gorm:"type:varchar(100)" json:"last_name"`  // 收件人姓
	Street     string `gorm:"type:varchar(255)" json:"street"`     // 街道门牌
	City       string `gorm:"type:varchar(100)" json:"city"`       // 城市
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"` // 邮编
	Country    string `gorm:"type:varchar(100)" json:"country"`    // 国家
	Phone      string `gorm:"type:varchar(40)" json:"phone"`       // 联系电话（可选）
}

// Complete 判断报价与下单所需字段是否全部填写
func (a ShippingAddress) Complete() bool {
	required := []string{a.FirstName, a.LastName, a.Street, a.City, a.PostalCode, a.Country}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// RouteQuery 拼接用于地理编码的查询串
func (a ShippingAddress) RouteQuery() string {
	parts := []string{a.Street, a.PostalCode + " " + a.City, a.Country}
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, ", ")
}

// NormalizedKey 归一化地址缓存键（大小写与空白不敏感）
func (a ShippingAddress) NormalizedKey() string {
	parts := []string{a.Street, a.City, a.PostalCode, a.Country}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	return strings.Join(parts, "|")
}
