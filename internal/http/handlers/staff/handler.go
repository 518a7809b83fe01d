package staff

import "github.com/freshcart-next/internal/provider"

// Handler 员工侧接口处理器入口
// 说明：该处理器仅用于骑手/店长侧 API。
type Handler struct {
	*provider.Container
}

// New 创建员工处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
