package public

import "github.com/dfn-network/internal/provider"

// Handler 前台接口处理器入口
// 说明：认证、目录、购物车、团购与通知接口共用。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
