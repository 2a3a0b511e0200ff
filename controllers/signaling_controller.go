package controllers

import (
	"net/http"

	"vcall-signal-service/config"
	"vcall-signal-service/services"
	"vcall-signal-service/services/container"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// newUpgrader 构造按配置校验来源的WebSocket升级器
func newUpgrader(cfg *config.Config) *websocket.Upgrader {
	allowed := make(map[string]bool)
	for _, origin := range cfg.GetFrontendOrigins() {
		allowed[origin] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// 非浏览器客户端不带Origin头，放行
			if origin == "" {
				return true
			}
			return allowed[origin]
		},
	}
}

// HandleSignalingFunc 返回WebSocket信令入口的Gin处理函数
// 升级连接后分配连接ID，登记到信令服务并启动读写泵
// @Summary      Signaling WebSocket
// @Description  Upgrade to WebSocket for real-time call signaling
// @Tags         Signaling
// @Router       /ws [get]
func HandleSignalingFunc(c *container.ServiceContainer) gin.HandlerFunc {
	upgrader := newUpgrader(c.GetConfig())

	return func(ctx *gin.Context) {
		conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			config.Warning("WebSocket升级失败: %v", err)
			return
		}

		client := services.NewSignalClient(uuid.New().String(), conn, c.GetSignalingService())
		c.GetSignalingService().HandleConnect(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
