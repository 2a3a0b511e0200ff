package container

import (
	"context"
	"log"
	"sync"
	"time"

	"vcall-signal-service/config"
	"vcall-signal-service/services"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	jwtService   services.InterfaceJWTService
	redisService *services.RedisService

	// 持久化适配器
	persistenceService services.InterfacePersistenceService

	// 系统事件桥
	eventBridge services.InterfaceEventBridge

	// 信令核心
	connectionService services.InterfaceConnectionService
	presenceService   services.InterfacePresenceService
	roomService       services.InterfaceRoomService
	callService       services.InterfaceCallService
	signalingService  services.InterfaceSignalingService

	// 业务服务
	userService       services.InterfaceUserService
	callRecordService services.InterfaceCallRecordService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis连接测试失败: %v，将不使用Redis缓存", err)
			redisClient = nil
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config)
	if c.redis != nil {
		c.redisService = services.NewRedisService(c.config)
	}

	// 初始化持久化适配器
	c.persistenceService = services.NewPersistenceService(c.db, c.config)

	// 初始化系统事件桥并连接（未配置时为空实现）
	c.eventBridge = services.NewMQTTBridgeService(c.config)
	if err := c.eventBridge.Connect(); err != nil {
		log.Printf("MQTT事件桥连接失败: %v", err)
	}

	// 初始化信令核心，依赖顺序：连接 → 状态 → 房间/呼叫 → 网关
	connectionService := services.NewConnectionService()
	c.connectionService = connectionService

	presenceService := services.NewPresenceService(
		connectionService, c.persistenceService, c.redisService, c.eventBridge)
	c.presenceService = presenceService

	c.roomService = services.NewRoomService(connectionService)
	c.callService = services.NewCallService(
		connectionService, presenceService, c.persistenceService, c.eventBridge)

	c.signalingService = services.NewSignalingService(
		c.connectionService, c.roomService, c.presenceService, c.callService)

	// 初始化业务服务
	c.userService = services.NewUserService(c.db, c.config, c.redisService)
	c.callRecordService = services.NewCallRecordService(c.db, c.config)
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// GetConfig 获取配置
func (c *ServiceContainer) GetConfig() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// GetJWTService 获取JWT服务
func (c *ServiceContainer) GetJWTService() services.InterfaceJWTService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jwtService
}

// GetUserService 获取用户服务
func (c *ServiceContainer) GetUserService() services.InterfaceUserService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userService
}

// GetCallRecordService 获取通话记录服务
func (c *ServiceContainer) GetCallRecordService() services.InterfaceCallRecordService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.callRecordService
}

// GetSignalingService 获取信令网关服务
func (c *ServiceContainer) GetSignalingService() services.InterfaceSignalingService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.signalingService
}

// GetPresenceService 获取在线状态服务
func (c *ServiceContainer) GetPresenceService() services.InterfacePresenceService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.presenceService
}

// GetEventBridge 获取系统事件桥
func (c *ServiceContainer) GetEventBridge() services.InterfaceEventBridge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eventBridge
}
