package routes

import (
	"vcall-signal-service/config"
	"vcall-signal-service/controllers"
	_ "vcall-signal-service/docs"
	"vcall-signal-service/middleware"
	"vcall-signal-service/services/container"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件，来源从配置读取
	allowed := make(map[string]bool)
	for _, origin := range cfg.GetFrontendOrigins() {
		allowed[origin] = true
	}
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg)
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// WebSocket 信令入口（身份在连接后通过presence:update声明）
	r.GET("/ws", controllers.HandleSignalingFunc(serviceContainer))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 全局限流：每秒10个请求，允许20个突发
	api.Use(middleware.RateLimiter(10, 20))
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 健康检查
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 认证路由
	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))
	api.POST("/auth/register", controllers.HandleJWTFunc(container, "register"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	authed := api.Group("")
	authed.Use(middleware.Authenticate())

	// 用户路由
	authed.GET("/users", controllers.HandleUserFunc(container, "getUsers"))
	authed.GET("/users/contacts", controllers.HandleUserFunc(container, "getContacts"))

	// 通话记录路由
	authed.GET("/calls", controllers.HandleCallRecordFunc(container, "getCallRecords"))
	authed.GET("/calls/statistics", controllers.HandleCallRecordFunc(container, "getStatistics"))
	authed.GET("/calls/user/:user_id", controllers.HandleCallRecordFunc(container, "getCallRecordsByUser"))
	authed.GET("/calls/:id", controllers.HandleCallRecordFunc(container, "getCallRecord"))
}
