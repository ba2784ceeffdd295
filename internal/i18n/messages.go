package i18n

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":                "Invalid request parameters",
		"error.unauthorized":               "Unauthorized",
		"error.forbidden":                  "Permission denied",
		"error.not_found":                  "Resource not found",
		"error.internal":                   "Internal server error",
		"error.rate_limited":               "Too many requests, please retry in %d seconds",
		"error.onboard_too_many":           "Too many onboarding attempts, please retry in %d seconds",
		"error.payment_too_many":           "Too many payment requests for this tenant, please retry in %d seconds",
		"error.rate_limit_unavailable":     "Rate limiter unavailable",
		"error.jwt_secret_missing":         "Token verification is not configured",
		"error.auth_header_missing":        "Missing Authorization header",
		"error.auth_header_invalid":        "Malformed Authorization header",
		"error.token_invalid":              "Invalid or expired token",
		"error.tenant_unresolved":          "Tenant could not be resolved from host",
		"error.tenant_resolve_failed":      "Tenant resolution failed",
		"error.tenant_isolation":           "Cross-tenant access is not allowed",
		"error.tenant_name_required":       "Tenant name is required",
		"error.subdomain_invalid":          "Subdomain is invalid",
		"error.subdomain_taken":            "Subdomain is already taken",
		"error.contact_email_invalid":      "Contact email is invalid",
		"error.contact_email_taken":        "Contact email is already registered",
		"error.tenant_not_found":           "Tenant not found",
		"error.settings_invalid":           "Tenant settings are invalid",
		"error.settings_not_found":         "Tenant settings not found",
		"error.account_name_required":      "Account name is required",
		"error.account_name_taken":         "Account name already exists",
		"error.account_provider_invalid":   "Payment provider is not supported",
		"error.account_api_key_required":   "API key is required",
		"error.account_webhook_invalid":    "Webhook URL is invalid",
		"error.account_not_found":          "Payment account not found",
		"error.account_id_invalid":         "Payment account id is invalid",
		"error.payment_amount_invalid":     "Payment amount must be greater than zero",
		"error.currency_invalid":           "Currency is invalid",
		"error.transaction_not_found":      "Transaction not found",
		"error.transaction_status_invalid": "Transaction status does not allow this operation",
		"error.transaction_id_duplicate":   "Transaction id collision, please retry",
		"error.refunds_disabled":           "Refunds are disabled for this tenant",
		"error.refund_window_expired":      "Refund window has expired",
		"error.refund_amount_invalid":      "Refund amount is invalid",
		"error.refund_amount_exceeded":     "Refund amount exceeds the refundable balance",
		"error.date_invalid":               "Date format is invalid",
	},
	LocaleZH: {
		"error.bad_request":                "请求参数错误",
		"error.unauthorized":               "未授权",
		"error.forbidden":                  "无权限访问",
		"error.not_found":                  "资源不存在",
		"error.internal":                   "服务器内部错误",
		"error.rate_limited":               "请求过于频繁，请在 %d 秒后重试",
		"error.onboard_too_many":           "开通请求过于频繁，请在 %d 秒后重试",
		"error.payment_too_many":           "该租户支付请求过于频繁，请在 %d 秒后重试",
		"error.rate_limit_unavailable":     "限流服务不可用",
		"error.jwt_secret_missing":         "令牌校验未配置",
		"error.auth_header_missing":        "缺少 Authorization 头",
		"error.auth_header_invalid":        "Authorization 头格式错误",
		"error.token_invalid":              "令牌无效或已过期",
		"error.tenant_unresolved":          "无法根据域名识别租户",
		"error.tenant_resolve_failed":      "租户解析失败",
		"error.tenant_isolation":           "禁止跨租户访问",
		"error.tenant_name_required":       "租户名称不能为空",
		"error.subdomain_invalid":          "子域名格式错误",
		"error.subdomain_taken":            "子域名已被占用",
		"error.contact_email_invalid":      "联系邮箱格式错误",
		"error.contact_email_taken":        "联系邮箱已被注册",
		"error.tenant_not_found":           "租户不存在",
		"error.settings_invalid":           "租户设置不合法",
		"error.settings_not_found":         "租户设置不存在",
		"error.account_name_required":      "账户名称不能为空",
		"error.account_name_taken":         "账户名称已存在",
		"error.account_provider_invalid":   "不支持的支付服务商",
		"error.account_api_key_required":   "API Key 不能为空",
		"error.account_webhook_invalid":    "Webhook 地址不合法",
		"error.account_not_found":          "支付账户不存在",
		"error.account_id_invalid":         "支付账户 ID 不合法",
		"error.payment_amount_invalid":     "支付金额必须大于 0",
		"error.currency_invalid":           "币种不合法",
		"error.transaction_not_found":      "交易不存在",
		"error.transaction_status_invalid": "当前交易状态不允许该操作",
		"error.transaction_id_duplicate":   "交易号冲突，请重试",
		"error.refunds_disabled":           "该租户已关闭退款",
		"error.refund_window_expired":      "已超过可退款期限",
		"error.refund_amount_invalid":      "退款金额不合法",
		"error.refund_amount_exceeded":     "退款金额超出可退余额",
		"error.date_invalid":               "日期格式错误",
	},
	LocaleTW: {
		"error.bad_request":            "請求參數錯誤",
		"error.unauthorized":           "未授權",
		"error.forbidden":              "無權限訪問",
		"error.not_found":              "資源不存在",
		"error.internal":               "伺服器內部錯誤",
		"error.rate_limited":           "請求過於頻繁，請在 %d 秒後重試",
		"error.tenant_isolation":       "禁止跨租戶訪問",
		"error.transaction_not_found":  "交易不存在",
		"error.refund_amount_exceeded": "退款金額超出可退餘額",
	},
}
