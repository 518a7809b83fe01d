package public

import (
	"fmt"

	"github.com/freshcart-next/internal/http/response"
	"github.com/freshcart-next/internal/models"

	"github.com/gin-gonic/gin"
)

// ShippingAddressRequest 收货地址请求
type ShippingAddressRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

func (r ShippingAddressRequest) toModel() models.ShippingAddress {
	return models.ShippingAddress{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Street:     r.Street,
		City:       r.City,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Phone:      r.Phone,
	}
}

// QuoteDelivery 计算配送报价
func (h *Handler) QuoteDelivery(c *gin.Context) {
	var req ShippingAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	quote, err := h.DeliveryService.Quote(c.Request.Context(), req.toModel())
	if err != nil {
		respondDeliveryQuoteError(c, err)
		return
	}
	response.Success(c, quote)
}

// PreviewDeliveryAddress 地址编辑预热
// 每次编辑都会顶掉同一用户尚未触发的预热任务，延迟窗口内只有最后
// 一次编辑真正发起路由查询并写入报价缓存。
func (h *Handler) PreviewDeliveryAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req ShippingAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	addr := req.toModel()
	h.DeliveryService.ScheduleQuoteRefresh(fmt.Sprintf("user:%d", uid), addr)
	response.Success(c, gin.H{"scheduled": addr.Complete()})
}
