package i18n

var catalogs = map[string]map[string]string{
	LocaleEnUS: {
		"error.bad_request":           "Invalid request",
		"error.unauthorized":          "Authentication required",
		"error.forbidden":             "Permission denied",
		"error.not_found":             "Resource not found",
		"error.internal":              "Internal server error",
		"error.rate_limited":          "Too many requests, retry in %d seconds",
		"error.login_too_many":        "Too many login attempts, retry in %d seconds",
		"error.rate_limit_unavailable": "Rate limiter unavailable",
		"error.auth_header_missing":   "Authorization header is missing",
		"error.auth_header_invalid":   "Authorization header is invalid",
		"error.jwt_secret_missing":    "Token secret is not configured",
		"error.token_invalid":         "Token is invalid or expired",
		"error.user_disabled":         "Account is disabled",
		"error.user_not_found":        "User not found",
		"error.user_id_invalid":       "User id is invalid",
		"error.user_id_type_invalid":  "User id has an unexpected type",
		"error.id_invalid":            "Id is invalid",

		"error.email_invalid":           "Email address is invalid",
		"error.email_exists":            "Email is already registered",
		"error.role_invalid":            "Role is not allowed",
		"error.invalid_credentials":     "Invalid email or password",
		"error.password_weak":           "Password is too weak",
		"error.password_min_length":     "Password must be at least %d characters",
		"error.password_max_length":     "Password must be at most %d bytes",
		"error.password_require_upper":  "Password must contain an uppercase letter",
		"error.password_require_lower":  "Password must contain a lowercase letter",
		"error.password_require_number": "Password must contain a number",
		"error.password_require_special": "Password must contain a special character",
		"error.register_failed":         "Registration failed",
		"error.login_failed":            "Login failed",

		"error.component_not_found":       "Component not found",
		"error.component_invalid":         "Component data is invalid",
		"error.component_unavailable":     "Component is not available",
		"error.affiliate_store_not_found": "Affiliate store not found",
		"error.affiliate_store_invalid":   "Affiliate store data is invalid",
		"error.catalog_fetch_failed":      "Failed to load catalog",
		"error.catalog_create_failed":     "Failed to save catalog entry",

		"error.cart_user_invalid":        "User is required",
		"error.cart_product_ref_invalid": "Provide either a component or an affiliate product",
		"error.cart_quantity_invalid":    "Quantity must be at least 1",
		"error.cart_price_invalid":       "Price must not be negative",
		"error.cart_price_mismatch":      "Price has changed, refresh and try again",
		"error.cart_import_empty":        "Nothing to import",
		"error.cart_item_forbidden":      "Cart item not found or not yours",
		"error.cart_fetch_failed":        "Failed to load cart",
		"error.cart_update_failed":       "Failed to update cart",

		"error.campaign_invalid":           "Campaign data is invalid",
		"error.campaign_name_required":     "Component name is required",
		"error.campaign_price_invalid":     "Unit price must be positive",
		"error.campaign_minimum_invalid":   "Minimum quantity must be at least 1",
		"error.campaign_maximum_invalid":   "Maximum quantity must not be below the minimum",
		"error.campaign_cost_invalid":      "Shipping cost and customs duty must not be negative",
		"error.campaign_deadline_invalid":  "Deadline must be in the future",
		"error.campaign_quantity_invalid":  "Quantity must be at least 1",
		"error.campaign_status_invalid":    "Unknown campaign status",
		"error.campaign_not_found":         "Campaign not found",
		"error.campaign_not_open":          "Campaign is not open",
		"error.campaign_expired":           "Campaign deadline has passed",
		"error.campaign_already_joined":    "You already joined this campaign",
		"error.campaign_capacity_exceeded": "Campaign maximum quantity exceeded",
		"error.campaign_forbidden":         "Only the organizer can manage this campaign",
		"error.participant_not_found":      "You are not participating in this campaign",
		"error.participant_paid":           "Cannot leave after payment",
		"error.campaign_fetch_failed":      "Failed to load campaign",
		"error.campaign_update_failed":     "Failed to update campaign",

		"error.notification_not_found":    "Notification not found",
		"error.notification_fetch_failed": "Failed to load notifications",
	},
	LocaleZhCN: {
		"error.bad_request":           "请求参数错误",
		"error.unauthorized":          "请先登录",
		"error.forbidden":             "无权限访问",
		"error.not_found":             "资源不存在",
		"error.internal":              "服务器内部错误",
		"error.rate_limited":          "请求过于频繁，请 %d 秒后重试",
		"error.login_too_many":        "登录尝试次数过多，请 %d 秒后重试",
		"error.rate_limit_unavailable": "限流服务不可用",
		"error.auth_header_missing":   "缺少认证信息",
		"error.auth_header_invalid":   "认证信息格式错误",
		"error.jwt_secret_missing":    "未配置令牌密钥",
		"error.token_invalid":         "令牌无效或已过期",
		"error.user_disabled":         "账号已被禁用",
		"error.user_not_found":        "用户不存在",
		"error.user_id_invalid":       "用户 ID 无效",
		"error.user_id_type_invalid":  "用户 ID 类型错误",
		"error.id_invalid":            "ID 无效",

		"error.email_invalid":           "邮箱格式错误",
		"error.email_exists":            "邮箱已注册",
		"error.role_invalid":            "角色不允许",
		"error.invalid_credentials":     "邮箱或密码错误",
		"error.password_weak":           "密码强度不足",
		"error.password_min_length":     "密码长度至少为 %d 位",
		"error.password_max_length":     "密码长度不能超过 %d 字节",
		"error.password_require_upper":  "密码需包含大写字母",
		"error.password_require_lower":  "密码需包含小写字母",
		"error.password_require_number": "密码需包含数字",
		"error.password_require_special": "密码需包含特殊字符",
		"error.register_failed":         "注册失败",
		"error.login_failed":            "登录失败",

		"error.component_not_found":       "元器件不存在",
		"error.component_invalid":         "元器件信息无效",
		"error.component_unavailable":     "元器件已下架",
		"error.affiliate_store_not_found": "联盟商店不存在",
		"error.affiliate_store_invalid":   "联盟商店信息无效",
		"error.catalog_fetch_failed":      "获取目录失败",
		"error.catalog_create_failed":     "保存目录失败",

		"error.cart_user_invalid":        "缺少用户",
		"error.cart_product_ref_invalid": "请指定元器件或联盟商品之一",
		"error.cart_quantity_invalid":    "数量至少为 1",
		"error.cart_price_invalid":       "价格不能为负数",
		"error.cart_price_mismatch":      "价格已变动，请刷新后重试",
		"error.cart_import_empty":        "没有可导入的商品",
		"error.cart_item_forbidden":      "购物车项不存在或不属于当前用户",
		"error.cart_fetch_failed":        "获取购物车失败",
		"error.cart_update_failed":       "更新购物车失败",

		"error.campaign_invalid":           "团购信息无效",
		"error.campaign_name_required":     "请填写元器件名称",
		"error.campaign_price_invalid":     "单价必须大于 0",
		"error.campaign_minimum_invalid":   "最低数量至少为 1",
		"error.campaign_maximum_invalid":   "最高数量不能低于最低数量",
		"error.campaign_cost_invalid":      "运费和关税不能为负数",
		"error.campaign_deadline_invalid":  "截止时间必须晚于当前时间",
		"error.campaign_quantity_invalid":  "数量至少为 1",
		"error.campaign_status_invalid":    "未知的团购状态",
		"error.campaign_not_found":         "团购不存在",
		"error.campaign_not_open":          "团购未开放",
		"error.campaign_expired":           "团购已截止",
		"error.campaign_already_joined":    "已参加该团购",
		"error.campaign_capacity_exceeded": "超出团购最高数量",
		"error.campaign_forbidden":         "仅发起人可管理该团购",
		"error.participant_not_found":      "未参加该团购",
		"error.participant_paid":           "已付款，无法退出",
		"error.campaign_fetch_failed":      "获取团购失败",
		"error.campaign_update_failed":     "更新团购失败",

		"error.notification_not_found":    "通知不存在",
		"error.notification_fetch_failed": "获取通知失败",
	},
}
