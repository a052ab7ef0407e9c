package public

import (
	"github.com/dfn-network/internal/http/response"
	"github.com/dfn-network/internal/i18n"
	"github.com/dfn-network/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Locale      string `json:"locale"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 用户注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	locale := req.Locale
	if locale == "" {
		locale = i18n.ResolveLocale(c)
	}
	result, err := h.UserAuthService.Register(service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Locale:      locale,
	})
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, "error.register_failed")
		return
	}
	response.Created(c, result)
}

// Login 邮箱密码登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, "error.login_failed")
		return
	}
	response.Success(c, result)
}

// GetCurrentUser 当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUser(uid)
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, "error.internal")
		return
	}
	response.Success(c, user)
}

// Logout 撤销当前用户的全部令牌
func (h *Handler) Logout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.UserAuthService.Logout(c.Request.Context(), uid); err != nil {
		respondWithMappedError(c, err, authErrorRules, "error.internal")
		return
	}
	response.Success(c, gin.H{"revoked": true})
}
