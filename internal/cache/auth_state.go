package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// UserAuthState 账号鉴权快照，令牌校验时代替回源数据库
// revoked_before 为 Unix 秒，0 表示未撤销过
type UserAuthState struct {
	UserID        uint   `json:"user_id"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	TokenVersion  uint64 `json:"token_version"`
	RevokedBefore int64  `json:"revoked_before"`
}

func userAuthStateKey(userID uint) string {
	return "auth:user:" + strconv.FormatUint(uint64(userID), 10)
}

// BuildUserAuthState 从用户模型构建鉴权快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	state := &UserAuthState{
		UserID:       user.ID,
		Role:         user.Role,
		Status:       user.Status,
		TokenVersion: user.TokenVersion,
	}
	if user.TokenInvalidBefore != nil {
		state.RevokedBefore = user.TokenInvalidBefore.Unix()
	}
	return state
}

// Admits 令牌版本与签发时间是否仍被账号接受
func (s *UserAuthState) Admits(tokenVersion uint64, issuedAt time.Time) bool {
	if s == nil || s.TokenVersion != tokenVersion {
		return false
	}
	return s.RevokedBefore == 0 || issuedAt.IsZero() || issuedAt.Unix() >= s.RevokedBefore
}

// Active 账号是否处于启用状态
func (s *UserAuthState) Active() bool {
	return s != nil && strings.EqualFold(s.Status, constants.UserStatusActive)
}

// GetUserAuthState 获取用户鉴权快照
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state UserAuthState
	hit, err := GetJSON(ctx, userAuthStateKey(userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetUserAuthState 写入用户鉴权快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, userAuthStateKey(state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState 删除用户鉴权快照，账号状态或令牌版本变化后调用
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, userAuthStateKey(userID))
}
