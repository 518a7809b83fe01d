package public

import (
	"errors"

	"github.com/freshcart-next/internal/http/response"
	"github.com/freshcart-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrCartLineIDRequired, code: response.CodeBadRequest, key: "error.cart_line_id_required"},
	{target: service.ErrCartQuantityInvalid, code: response.CodeBadRequest, key: "error.cart_quantity_invalid"},
	{target: service.ErrCartLineNotFound, code: response.CodeNotFound, key: "error.cart_line_not_found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
}

var deliveryQuoteErrorRules = []mappedHandlerError{
	{target: service.ErrAddressIncomplete, code: response.CodeBadRequest, key: "error.address_incomplete"},
	{target: service.ErrOutOfDeliveryRange, code: response.CodeBadRequest, key: "error.out_of_delivery_range"},
	{target: service.ErrQuoteUnavailable, code: response.CodeUpstream, key: "error.quote_unavailable"},
}

var checkoutIntentErrorRules = concatMappedHandlerErrors(
	deliveryQuoteErrorRules,
	[]mappedHandlerError{
		{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
		{target: service.ErrAmountTooSmall, code: response.CodeBadRequest, key: "error.amount_too_small"},
		{target: service.ErrPaymentGatewayUnavailable, code: response.CodeUpstream, key: "error.payment_gateway_unavailable"},
	},
)

var checkoutConfirmErrorRules = []mappedHandlerError{
	{target: service.ErrAddressIncomplete, code: response.CodeBadRequest, key: "error.address_incomplete"},
	{target: service.ErrPaymentIntentNotFound, code: response.CodeNotFound, key: "error.payment_intent_not_found"},
	{target: service.ErrPaymentNotSucceeded, code: response.CodePaymentRequired, key: "error.payment_not_succeeded"},
	{target: service.ErrPaymentGatewayUnavailable, code: response.CodeUpstream, key: "error.payment_gateway_unavailable"},
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrOrderNotCancellable, code: response.CodeBadRequest, key: "error.order_not_cancellable"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, key: "error.order_status_invalid"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.internal")
}

func respondDeliveryQuoteError(c *gin.Context, err error) {
	respondWithMappedError(c, err, deliveryQuoteErrorRules, response.CodeInternal, "error.internal")
}

func respondCheckoutIntentError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutIntentErrorRules, response.CodeInternal, "error.internal")
}

func respondCheckoutConfirmError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutConfirmErrorRules, response.CodeInternal, "error.internal")
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "error.internal")
}
