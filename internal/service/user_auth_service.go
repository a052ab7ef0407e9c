package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/dfn-network/internal/cache"
	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput 注册输入
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
	Locale      string
}

// AuthResult 登录结果
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// UserAuthService 用户认证服务
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository) *UserAuthService {
	return &UserAuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateUserJWT 生成用户 JWT Token
func (s *UserAuthService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(resolveUserJWTExpireHours(s.cfg.UserJWT)) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户 JWT Token
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Register 邮箱注册，仅允许 explorer / provider 角色
func (s *UserAuthService) Register(input RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = constants.UserRoleExplorer
	}
	if role != constants.UserRoleExplorer && role != constants.UserRoleProvider {
		return nil, ErrRoleInvalid
	}

	exist, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = resolveNicknameFromEmail(email)
	}
	locale := strings.TrimSpace(input.Locale)
	if locale == "" {
		locale = "en-US"
	}
	now := time.Now()
	user := &models.User{
		Email:        email,
		PasswordHash: string(hashed),
		DisplayName:  displayName,
		Role:         role,
		Locale:       locale,
		Status:       constants.UserStatusActive,
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login 邮箱密码登录
func (s *UserAuthService) Login(email, password string) (*AuthResult, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}
	now := time.Now()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return s.issue(user)
}

// Authenticate 校验 token 并返回以最新账号状态修正后的声明
// 账号快照优先读取 Redis，未命中时回源数据库并回写
func (s *UserAuthService) Authenticate(ctx context.Context, tokenString string) (*UserJWTClaims, error) {
	claims, err := s.ParseUserJWT(tokenString)
	if err != nil {
		return nil, err
	}
	state, hit, err := cache.GetUserAuthState(ctx, claims.UserID)
	if err != nil {
		logger.Warnw("user_auth_state_cache_get_failed", "user_id", claims.UserID, "error", err)
	}
	if !hit || state == nil {
		user, err := s.userRepo.GetByID(claims.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrInvalidToken
		}
		state = cache.BuildUserAuthState(user)
		if err := cache.SetUserAuthState(ctx, state); err != nil {
			logger.Warnw("user_auth_state_cache_set_failed", "user_id", claims.UserID, "error", err)
		}
	}
	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	if !state.Admits(claims.TokenVersion, issuedAt) {
		return nil, ErrInvalidToken
	}
	if !state.Active() {
		return nil, ErrUserDisabled
	}
	claims.Role = state.Role
	return claims, nil
}

// Logout 撤销账号已签发的全部令牌
func (s *UserAuthService) Logout(ctx context.Context, userID uint) error {
	user, err := s.userRepo.RevokeTokens(userID, time.Now())
	if err != nil {
		return err
	}
	if user == nil {
		return categorized(ErrNotFound, "user not found")
	}
	if err := cache.DelUserAuthState(ctx, userID); err != nil {
		logger.Warnw("user_auth_state_cache_del_failed", "user_id", userID, "error", err)
	}
	logger.Infow("user_tokens_revoked", "user_id", userID, "token_version", user.TokenVersion)
	return nil
}

// GetUser 获取用户
func (s *UserAuthService) GetUser(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, categorized(ErrNotFound, "user not found")
	}
	return user, nil
}

func (s *UserAuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}

func resolveNicknameFromEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}
