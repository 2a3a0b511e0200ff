package models

import (
	"log"
	"sync"
)

// Room 表示一个两人配对房间
// HostConnID 为创建者（槽位A），GuestConnID 为加入者（槽位B）
type Room struct {
	ID          string
	HostConnID  string
	GuestConnID string
}

// JoinOutcome 加入房间的结果
type JoinOutcome int

const (
	// JoinCreated 房间不存在，创建并占据槽位A
	JoinCreated JoinOutcome = iota
	// JoinPaired 占据槽位B，需要通知槽位A发起offer
	JoinPaired
	// JoinFull 房间已满，拒绝加入
	JoinFull
)

// JoinResult 加入房间的结果及需要通知的对端
type JoinResult struct {
	Outcome    JoinOutcome
	RoomID     string
	HostConnID string // Outcome为JoinPaired时有效
}

// LeaveOutcome 离开房间的结果
type LeaveOutcome int

const (
	// LeaveNotInRoom 连接不在任何房间内
	LeaveNotInRoom LeaveOutcome = iota
	// LeaveHostClosed 房主离开，房间整体关闭
	LeaveHostClosed
	// LeaveGuestFreed 加入者离开，槽位B释放，房间保留
	LeaveGuestFreed
)

// LeaveResult 离开房间的结果及需要通知的连接
type LeaveResult struct {
	Outcome     LeaveOutcome
	RoomID      string
	HostConnID  string
	GuestConnID string // 房主离开时，残留的槽位B连接（可能为空）
}

// RoomRegistry 管理所有房间及连接到房间的反查表
type RoomRegistry struct {
	rooms  map[string]*Room  // 以roomID为键的房间映射
	lookup map[string]string // connID -> roomID 反查表
	mu     sync.RWMutex      // 读写锁保护两个映射
}

// NewRoomRegistry 创建一个新的房间注册表
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:  make(map[string]*Room),
		lookup: make(map[string]string),
	}
}

// Join 将连接加入指定房间
// 房间不存在则创建并占据槽位A；只有槽位A时占据槽位B；两个槽位都被占用则拒绝
func (r *RoomRegistry) Join(connID, roomID string) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[roomID]
	if !exists {
		r.rooms[roomID] = &Room{ID: roomID, HostConnID: connID}
		r.lookup[connID] = roomID
		log.Printf("创建房间: ID=%s, 房主连接=%s", roomID, connID)
		return JoinResult{Outcome: JoinCreated, RoomID: roomID}
	}

	if room.HostConnID != "" && room.GuestConnID == "" {
		room.GuestConnID = connID
		r.lookup[connID] = roomID
		log.Printf("加入房间: ID=%s, 连接=%s", roomID, connID)
		return JoinResult{Outcome: JoinPaired, RoomID: roomID, HostConnID: room.HostConnID}
	}

	return JoinResult{Outcome: JoinFull, RoomID: roomID}
}

// RelayTarget 解析转发目标：返回同房间内另一个槽位的连接
// 连接不在房间内或对端槽位为空时ok为false
func (r *RoomRegistry) RelayTarget(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, exists := r.lookup[connID]
	if !exists {
		return "", false
	}
	room, exists := r.rooms[roomID]
	if !exists {
		return "", false
	}

	if room.HostConnID == connID && room.GuestConnID != "" {
		return room.GuestConnID, true
	}
	if room.GuestConnID == connID && room.HostConnID != "" {
		return room.HostConnID, true
	}
	return "", false
}

// Leave 将连接从其所在房间移除
// 房主离开时房间整体关闭；加入者离开时仅释放槽位B
func (r *RoomRegistry) Leave(connID string) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, exists := r.lookup[connID]
	if !exists {
		return LeaveResult{Outcome: LeaveNotInRoom}
	}

	room, exists := r.rooms[roomID]
	if !exists {
		// 反查表残留，清理后按不在房间处理
		delete(r.lookup, connID)
		return LeaveResult{Outcome: LeaveNotInRoom}
	}

	if room.HostConnID == connID {
		guest := room.GuestConnID
		delete(r.rooms, roomID)
		delete(r.lookup, connID)
		if guest != "" {
			delete(r.lookup, guest)
		}
		log.Printf("关闭房间: ID=%s, 房主连接=%s", roomID, connID)
		return LeaveResult{Outcome: LeaveHostClosed, RoomID: roomID, HostConnID: connID, GuestConnID: guest}
	}

	if room.GuestConnID == connID {
		room.GuestConnID = ""
		delete(r.lookup, connID)
		log.Printf("释放房间槽位: ID=%s, 连接=%s", roomID, connID)
		return LeaveResult{Outcome: LeaveGuestFreed, RoomID: roomID, HostConnID: room.HostConnID}
	}

	// 反查表与槽位不一致，按不在房间处理
	delete(r.lookup, connID)
	return LeaveResult{Outcome: LeaveNotInRoom}
}

// RoomOf 返回连接所在的房间ID
func (r *RoomRegistry) RoomOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, exists := r.lookup[connID]
	return roomID, exists
}

// Members 返回房间内当前占用的连接列表
func (r *RoomRegistry) Members(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.rooms[roomID]
	if !exists {
		return nil
	}
	members := make([]string, 0, 2)
	if room.HostConnID != "" {
		members = append(members, room.HostConnID)
	}
	if room.GuestConnID != "" {
		members = append(members, room.GuestConnID)
	}
	return members
}

// RoomExists 检查房间是否存在
func (r *RoomRegistry) RoomExists(roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.rooms[roomID]
	return exists
}
