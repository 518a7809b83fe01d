package public

import (
	"strings"

	"github.com/freshcart-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CreateCheckoutIntentRequest 创建支付意图请求
type CreateCheckoutIntentRequest struct {
	Address ShippingAddressRequest `json:"address" binding:"required"`
}

// ConfirmCheckoutRequest 确认支付请求
type ConfirmCheckoutRequest struct {
	IntentID      string                 `json:"intent_id" binding:"required"`
	Address       ShippingAddressRequest `json:"address" binding:"required"`
	PaymentMethod string                 `json:"payment_method"`
}

// CreateCheckoutIntent 创建支付意图
// 购物车或地址变化后重复调用会铸造全新意图。
func (h *Handler) CreateCheckoutIntent(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateCheckoutIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	view, err := h.CheckoutService.CreateIntent(c.Request.Context(), uid, req.Address.toModel())
	if err != nil {
		respondCheckoutIntentError(c, err)
		return
	}
	response.Success(c, view)
}

// ConfirmCheckout 确认支付并生成订单
func (h *Handler) ConfirmCheckout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ConfirmCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	intentID := strings.TrimSpace(req.IntentID)
	if intentID == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.CheckoutService.Confirm(c.Request.Context(), uid, intentID, req.Address.toModel(), req.PaymentMethod)
	if err != nil {
		respondCheckoutConfirmError(c, err)
		return
	}
	response.Success(c, order)
}
