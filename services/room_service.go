package services

import (
	"encoding/json"
	"time"

	"vcall-signal-service/models"

	"github.com/google/uuid"
)

// 聊天消息长度上限，超出部分截断以限制内存与转发开销
const (
	maxChatTextRunes = 2000
	maxChatNameRunes = 80
)

// 对端离开/断开时的通知文案
const (
	reasonHostLeft          = "Host has left the call"
	reasonGuestLeft         = "Peer has left the call"
	reasonHostDisconnected  = "Host has disconnected"
	reasonGuestDisconnected = "Peer has disconnected"
)

// InterfaceRoomService 定义房间/对等配对服务接口
type InterfaceRoomService interface {
	Join(connID, roomID string)
	Relay(connID, kind string, payload json.RawMessage)
	Leave(connID string)
	Disconnect(connID string)
	BroadcastChat(connID string, payload *models.ChatMessagePayload)
	BroadcastLegacyMessage(text string)
}

// RoomService 管理两人房间的配对并在对端之间转发信令
// 房主离开房间整体关闭，加入者离开只释放槽位B（房主拥有房间）
type RoomService struct {
	registry    *models.RoomRegistry
	connections InterfaceConnectionService
}

// NewRoomService 创建一个新的房间服务
func NewRoomService(connections InterfaceConnectionService) *RoomService {
	return &RoomService{
		registry:    models.NewRoomRegistry(),
		connections: connections,
	}
}

// Join 将连接加入房间
// 新房间占据槽位A；已有房主时占据槽位B并通知房主发起offer；房间已满只回复调用方
func (s *RoomService) Join(connID, roomID string) {
	if roomID == "" {
		return
	}

	result := s.registry.Join(connID, roomID)
	switch result.Outcome {
	case models.JoinPaired:
		// 通知槽位A新对端的连接ID，由其发起offer
		s.connections.SendTo(result.HostConnID, models.NewSignalMessage(models.EventJoin, connID))
	case models.JoinFull:
		s.connections.SendTo(connID, models.NewSignalMessage(models.EventRoomFull, roomID))
	}
}

// Relay 将不透明信令负载原样转发给同房间的另一个槽位
// 调用方不在房间或对端槽位为空时静默丢弃
func (s *RoomService) Relay(connID, kind string, payload json.RawMessage) {
	target, ok := s.registry.RelayTarget(connID)
	if !ok {
		return
	}
	s.connections.SendTo(target, &models.SignalMessage{Event: kind, Data: payload})
}

// Leave 处理显式离开
func (s *RoomService) Leave(connID string) {
	s.teardown(connID, reasonHostLeft, reasonGuestLeft)
}

// Disconnect 连接断开时的清理，与Leave分支逻辑一致
// 即使客户端没有发送leave也保证执行
func (s *RoomService) Disconnect(connID string) {
	s.teardown(connID, reasonHostDisconnected, reasonGuestDisconnected)
}

// teardown 执行离开/断开的公共分支
func (s *RoomService) teardown(connID, hostReason, guestReason string) {
	result := s.registry.Leave(connID)
	switch result.Outcome {
	case models.LeaveHostClosed:
		// 房主离开：通知槽位B，并向全房间发送roomClosed
		if result.GuestConnID != "" {
			s.connections.SendTo(result.GuestConnID,
				models.NewSignalMessage(models.EventPeerDisconnected, hostReason))
		}
		closed := models.NewSignalMessage(models.EventRoomClosed, result.RoomID)
		s.connections.SendTo(result.HostConnID, closed)
		if result.GuestConnID != "" {
			s.connections.SendTo(result.GuestConnID, closed)
		}
	case models.LeaveGuestFreed:
		// 加入者离开：房间保留，通知房主等待新的加入者
		s.connections.SendTo(result.HostConnID,
			models.NewSignalMessage(models.EventPeerDisconnected, guestReason))
	}
}

// BroadcastChat 在房间内广播聊天消息（包括发送方回显）
// 文本与昵称超长截断，消息附带生成的ID与投递时间戳
func (s *RoomService) BroadcastChat(connID string, payload *models.ChatMessagePayload) {
	roomID, ok := s.registry.RoomOf(connID)
	if !ok {
		return
	}

	event := models.ChatMessageEvent{
		ID:         uuid.New().String(),
		RoomID:     roomID,
		Text:       truncateRunes(payload.Text, maxChatTextRunes),
		FromUserID: payload.FromUserID,
		FromName:   truncateRunes(payload.FromName, maxChatNameRunes),
		Ts:         time.Now().UnixMilli(),
	}

	msg := models.NewSignalMessage(models.EventChatMessage, event)
	for _, member := range s.registry.Members(roomID) {
		s.connections.SendTo(member, msg)
	}
}

// BroadcastLegacyMessage 全局广播，保留的旧版兼容路径，不按房间隔离
func (s *RoomService) BroadcastLegacyMessage(text string) {
	s.connections.Broadcast(models.NewSignalMessage(models.EventLegacyMessage, text))
}

// truncateRunes 按字符数截断字符串
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
