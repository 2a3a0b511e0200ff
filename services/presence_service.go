package services

import (
	"vcall-signal-service/models"
)

// InterfacePresenceService 定义在线状态服务接口
type InterfacePresenceService interface {
	SetPresence(userID, connID string, status models.UserStatus)
	MarkDisconnected(userID, connID string)
	ForceStatus(userIDs []string, status models.UserStatus)
	RecomputeAfterCall(userIDs []string)
	Status(userID string) models.UserStatus
}

// PresenceService 维护用户聚合在线状态（多端连接）并广播变更
// 状态变更先广播后持久化，持久化失败不影响广播正确性
type PresenceService struct {
	registry    *models.PresenceRegistry
	connections InterfaceConnectionService
	persistence InterfacePersistenceService
	redis       *RedisService
	bridge      InterfaceEventBridge
}

// NewPresenceService 创建一个新的在线状态服务
func NewPresenceService(
	connections InterfaceConnectionService,
	persistence InterfacePersistenceService,
	redisService *RedisService,
	bridge InterfaceEventBridge,
) *PresenceService {
	return &PresenceService{
		registry:    models.NewPresenceRegistry(),
		connections: connections,
		persistence: persistence,
		redis:       redisService,
		bridge:      bridge,
	}
}

// SetPresence 处理客户端的状态上报
// 绑定连接身份，按连接登记或移除ONLINE声明，存储并广播声明的状态
// OFFLINE 只在最后一个声明移除时生效：该用户的其他连接仍让其保持在线
func (s *PresenceService) SetPresence(userID, connID string, status models.UserStatus) {
	s.connections.AssociateUser(connID, userID)

	switch status {
	case models.UserStatusOnline:
		s.registry.IncrRef(userID, connID)
	case models.UserStatusOffline:
		if s.registry.DecrRef(userID, connID) > 0 {
			return
		}
	}

	s.registry.SetStatus(userID, status)
	s.publishStatus(userID, status)
}

// MarkDisconnected 连接断开时移除该连接的ONLINE声明
// 最后一个声明移除后转为OFFLINE并广播；仍有其他连接时保持最后声明的状态
func (s *PresenceService) MarkDisconnected(userID, connID string) {
	remaining := s.registry.DecrRef(userID, connID)
	if remaining > 0 {
		return
	}

	s.registry.SetStatus(userID, models.UserStatusOffline)
	s.publishStatus(userID, models.UserStatusOffline)
}

// ForceStatus 通话生命周期对状态的覆盖（接通时双方置为BUSY）
func (s *PresenceService) ForceStatus(userIDs []string, status models.UserStatus) {
	for _, userID := range userIDs {
		s.registry.SetStatus(userID, status)
		s.publishStatus(userID, status)
	}
}

// RecomputeAfterCall 通话结束后重算每个用户的状态
// 仍有存活连接为ONLINE，否则为OFFLINE
func (s *PresenceService) RecomputeAfterCall(userIDs []string) {
	for _, userID := range userIDs {
		status := models.UserStatusOffline
		if s.connections.ConnectionCount(userID) > 0 {
			status = models.UserStatusOnline
		}
		s.registry.SetStatus(userID, status)
		s.publishStatus(userID, status)
	}
}

// Status 返回用户当前聚合状态
func (s *PresenceService) Status(userID string) models.UserStatus {
	return s.registry.Status(userID)
}

// publishStatus 向所有连接广播状态变更，并异步持久化/缓存/发布系统事件
func (s *PresenceService) publishStatus(userID string, status models.UserStatus) {
	s.connections.Broadcast(models.NewSignalMessage(models.EventPresence, models.PresencePayload{
		UserID: userID,
		Status: string(status),
	}))

	dispatchAsync("更新用户状态:"+userID, func() error {
		return s.persistence.UpdateUserStatus(userID, status)
	})

	if s.redis != nil {
		dispatchAsync("缓存用户状态:"+userID, func() error {
			return s.redis.CachePresence(userID, string(status))
		})
	}

	s.bridge.PublishPresenceEvent(userID, string(status))
}
