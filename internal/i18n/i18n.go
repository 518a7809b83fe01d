package i18n

import (
	"fmt"
	"strings"

	"github.com/freshcart-next/internal/constants"

	"github.com/gin-gonic/gin"
)

const defaultLocale = constants.LocaleEnUS

// ResolveLocale 解析请求语言（query 参数优先，其次 Accept-Language）。
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return defaultLocale
	}
	if locale := normalizeLocale(c.Query("locale")); locale != "" {
		return locale
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := normalizeLocale(tag); locale != "" {
			return locale
		}
	}
	return defaultLocale
}

// T 返回 key 对应的本地化文案，查不到时回退默认语言。
func T(locale, key string) string {
	if messages, ok := catalog[locale]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[defaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 返回带参数的本地化文案。
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func normalizeLocale(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	for _, supported := range constants.SupportedLocales {
		if strings.EqualFold(tag, supported) {
			return supported
		}
	}
	// 仅语言前缀匹配（fr → fr-FR）
	prefix := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
	for _, supported := range constants.SupportedLocales {
		if strings.ToLower(strings.SplitN(supported, "-", 2)[0]) == prefix {
			return supported
		}
	}
	return ""
}

var catalog = map[string]map[string]string{
	constants.LocaleEnUS: {
		"error.bad_request":                 "Invalid request",
		"error.unauthorized":                "Unauthorized",
		"error.forbidden":                   "Forbidden",
		"error.not_found":                   "Not found",
		"error.internal":                    "Internal server error",
		"error.rate_limited":                "Too many requests, please try again later",
		"error.rate_limit_unavailable":      "Service temporarily unavailable",
		"error.login_too_many":              "Too many login attempts, please try again later",
		"error.token_invalid":               "Invalid or expired token",
		"error.auth_header_missing":         "Authorization header is missing",
		"error.auth_header_invalid":         "Authorization header is invalid",
		"error.jwt_secret_missing":          "Authentication is not configured",
		"error.user_disabled":               "Account is disabled",
		"error.user_id_invalid":             "Invalid user identity",
		"error.user_id_type_invalid":        "Invalid user identity",
		"error.cart_empty":                  "Your cart is empty",
		"error.cart_line_not_found":         "Cart item not found",
		"error.cart_line_id_required":       "Cart line id is required",
		"error.cart_quantity_invalid":       "Quantity must be at least 1",
		"error.product_not_available":       "Product is not available",
		"error.address_incomplete":          "Please complete your delivery address first",
		"error.out_of_delivery_range":       "Sorry, this address is outside our delivery area",
		"error.quote_unavailable":           "Delivery quote is temporarily unavailable, please retry",
		"error.payment_intent_not_found":    "Payment intent not found",
		"error.payment_not_succeeded":       "Payment has not been completed",
		"error.payment_gateway_unavailable": "Payment service is temporarily unavailable",
		"error.amount_too_small":            "Order amount is below the minimum charge",
		"error.order_not_found":             "Order not found",
		"error.order_not_cancellable":       "This order can no longer be cancelled",
		"error.order_status_invalid":        "Invalid order status transition",
		"error.email_exists":                "Email is already registered",
		"error.email_invalid":               "Invalid email address",
		"error.invalid_credentials":         "Invalid email or password",
		"error.captcha_required":            "Captcha is required",
		"error.captcha_invalid":             "Captcha verification failed",
		"error.password_too_short":          "Password must be at least %d characters",
		"error.password_need_upper":         "Password must contain an uppercase letter",
		"error.password_need_lower":         "Password must contain a lowercase letter",
		"error.password_need_number":        "Password must contain a digit",
		"error.password_need_special":       "Password must contain a special character",
	},
	constants.LocaleFrFR: {
		"error.bad_request":                 "Requête invalide",
		"error.unauthorized":                "Non autorisé",
		"error.forbidden":                   "Accès refusé",
		"error.not_found":                   "Introuvable",
		"error.internal":                    "Erreur interne du serveur",
		"error.rate_limited":                "Trop de requêtes, veuillez réessayer plus tard",
		"error.rate_limit_unavailable":      "Service temporairement indisponible",
		"error.login_too_many":              "Trop de tentatives de connexion, veuillez réessayer plus tard",
		"error.token_invalid":               "Jeton invalide ou expiré",
		"error.auth_header_missing":         "En-tête d'autorisation manquant",
		"error.auth_header_invalid":         "En-tête d'autorisation invalide",
		"error.jwt_secret_missing":          "L'authentification n'est pas configurée",
		"error.user_disabled":               "Compte désactivé",
		"error.user_id_invalid":             "Identité utilisateur invalide",
		"error.user_id_type_invalid":        "Identité utilisateur invalide",
		"error.cart_empty":                  "Votre panier est vide",
		"error.cart_line_not_found":         "Article introuvable dans le panier",
		"error.cart_line_id_required":       "Identifiant de ligne requis",
		"error.cart_quantity_invalid":       "La quantité doit être au moins 1",
		"error.product_not_available":       "Produit indisponible",
		"error.address_incomplete":          "Veuillez d'abord compléter votre adresse de livraison",
		"error.out_of_delivery_range":       "Désolé, cette adresse est hors de notre zone de livraison",
		"error.quote_unavailable":           "Devis de livraison temporairement indisponible, veuillez réessayer",
		"error.payment_intent_not_found":    "Intention de paiement introuvable",
		"error.payment_not_succeeded":       "Le paiement n'a pas été finalisé",
		"error.payment_gateway_unavailable": "Service de paiement temporairement indisponible",
		"error.amount_too_small":            "Le montant de la commande est inférieur au minimum",
		"error.order_not_found":             "Commande introuvable",
		"error.order_not_cancellable":       "Cette commande ne peut plus être annulée",
		"error.order_status_invalid":        "Transition de statut de commande invalide",
		"error.email_exists":                "Cet e-mail est déjà enregistré",
		"error.email_invalid":               "Adresse e-mail invalide",
		"error.invalid_credentials":         "E-mail ou mot de passe invalide",
		"error.captcha_required":            "Captcha requis",
		"error.captcha_invalid":             "Échec de la vérification du captcha",
		"error.password_too_short":          "Le mot de passe doit contenir au moins %d caractères",
		"error.password_need_upper":         "Le mot de passe doit contenir une majuscule",
		"error.password_need_lower":         "Le mot de passe doit contenir une minuscule",
		"error.password_need_number":        "Le mot de passe doit contenir un chiffre",
		"error.password_need_special":       "Le mot de passe doit contenir un caractère spécial",
	},
}
