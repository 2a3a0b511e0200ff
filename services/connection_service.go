package services

import (
	"sync"

	"vcall-signal-service/models"
)

// ClientConn 表示一条到客户端的双向连接
// 由网关层实现，测试中可用记录桩替代
type ClientConn interface {
	ID() string
	// Send 非阻塞投递一条出站消息，缓冲满时丢弃并返回false
	Send(msg *models.SignalMessage) bool
}

// InterfaceConnectionService 定义连接注册表接口
// 对未知连接ID的操作一律按无操作处理：断连可能与在途消息竞争
type InterfaceConnectionService interface {
	Register(client ClientConn)
	Unregister(connID string) string
	AssociateUser(connID, userID string)
	UserOf(connID string) string
	ConnectionCount(userID string) int
	SendTo(connID string, msg *models.SignalMessage) bool
	SendToUser(userID string, msg *models.SignalMessage) int
	Broadcast(msg *models.SignalMessage)
}

// ConnectionService 跟踪存活连接及其身份绑定，不含业务逻辑
type ConnectionService struct {
	clients map[string]ClientConn          // connID -> 连接
	owners  map[string]string              // connID -> userID
	users   map[string]map[string]struct{} // userID -> 连接ID集合
	mu      sync.RWMutex                   // 读写锁保护三个映射
}

// NewConnectionService 创建一个新的连接注册表
func NewConnectionService() *ConnectionService {
	return &ConnectionService{
		clients: make(map[string]ClientConn),
		owners:  make(map[string]string),
		users:   make(map[string]map[string]struct{}),
	}
}

// Register 登记一条新连接
func (s *ConnectionService) Register(client ClientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[client.ID()] = client
}

// Unregister 注销连接，返回其绑定的用户ID（未绑定为空串）
func (s *ConnectionService) Unregister(connID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := s.owners[connID]
	delete(s.clients, connID)
	delete(s.owners, connID)
	if userID != "" {
		if conns, exists := s.users[userID]; exists {
			delete(conns, connID)
			if len(conns) == 0 {
				delete(s.users, userID)
			}
		}
	}
	return userID
}

// AssociateUser 将连接绑定到用户，重复调用直接覆盖（声明身份语义）
func (s *ConnectionService) AssociateUser(connID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[connID]; !exists {
		return
	}

	// 解除旧绑定
	if prev := s.owners[connID]; prev != "" && prev != userID {
		if conns, exists := s.users[prev]; exists {
			delete(conns, connID)
			if len(conns) == 0 {
				delete(s.users, prev)
			}
		}
	}

	s.owners[connID] = userID
	if _, exists := s.users[userID]; !exists {
		s.users[userID] = make(map[string]struct{})
	}
	s.users[userID][connID] = struct{}{}
}

// UserOf 返回连接绑定的用户ID
func (s *ConnectionService) UserOf(connID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.owners[connID]
}

// ConnectionCount 返回用户当前绑定的连接数
func (s *ConnectionService) ConnectionCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.users[userID])
}

// SendTo 向指定连接投递消息，连接不存在时返回false
func (s *ConnectionService) SendTo(connID string, msg *models.SignalMessage) bool {
	s.mu.RLock()
	client, exists := s.clients[connID]
	s.mu.RUnlock()

	if !exists {
		return false
	}
	return client.Send(msg)
}

// SendToUser 向用户的每条连接投递消息，返回投递的连接数
func (s *ConnectionService) SendToUser(userID string, msg *models.SignalMessage) int {
	s.mu.RLock()
	targets := make([]ClientConn, 0, len(s.users[userID]))
	for connID := range s.users[userID] {
		if client, exists := s.clients[connID]; exists {
			targets = append(targets, client)
		}
	}
	s.mu.RUnlock()

	for _, client := range targets {
		client.Send(msg)
	}
	return len(targets)
}

// Broadcast 向所有存活连接投递消息
func (s *ConnectionService) Broadcast(msg *models.SignalMessage) {
	s.mu.RLock()
	targets := make([]ClientConn, 0, len(s.clients))
	for _, client := range s.clients {
		targets = append(targets, client)
	}
	s.mu.RUnlock()

	for _, client := range targets {
		client.Send(msg)
	}
}
