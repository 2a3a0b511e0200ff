package models

import "sync"

// PresenceRegistry 维护用户当前状态及持有ONLINE声明的连接集合
// 按连接记账：同一连接重复声明ONLINE是幂等的，
// 断开只移除该连接自己的贡献（多端登录）
// BUSY 是通话生命周期的覆盖状态，独立于连接集合存储
type PresenceRegistry struct {
	status map[string]UserStatus          // userID -> 当前状态
	online map[string]map[string]struct{} // userID -> 声明过ONLINE的连接ID集合
	mu     sync.RWMutex                   // 读写锁保护两个映射
}

// NewPresenceRegistry 创建一个新的状态注册表
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		status: make(map[string]UserStatus),
		online: make(map[string]map[string]struct{}),
	}
}

// SetStatus 原样存储用户声明的状态
func (p *PresenceRegistry) SetStatus(userID string, status UserStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if status == UserStatusOffline {
		delete(p.status, userID)
		return
	}
	p.status[userID] = status
}

// Status 返回用户当前状态，未知用户为OFFLINE
func (p *PresenceRegistry) Status(userID string) UserStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if s, exists := p.status[userID]; exists {
		return s
	}
	return UserStatusOffline
}

// IncrRef 登记连接的ONLINE声明，返回持有声明的连接数
// 同一连接重复声明不会重复计数
func (p *PresenceRegistry) IncrRef(userID, connID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns, exists := p.online[userID]
	if !exists {
		conns = make(map[string]struct{})
		p.online[userID] = conns
	}
	conns[connID] = struct{}{}
	return len(conns)
}

// DecrRef 移除连接的ONLINE声明（集合为空即删除），返回剩余连接数
// 该连接从未声明过ONLINE时不影响其他连接的贡献
func (p *PresenceRegistry) DecrRef(userID, connID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns, exists := p.online[userID]
	if !exists {
		return 0
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(p.online, userID)
		return 0
	}
	return len(conns)
}

// Refs 返回用户当前持有ONLINE声明的连接数
func (p *PresenceRegistry) Refs(userID string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.online[userID])
}
