package services

import (
	"encoding/json"
	"sync"

	"vcall-signal-service/config"
	"vcall-signal-service/models"
)

// InterfaceSignalingService 定义信令网关服务接口
type InterfaceSignalingService interface {
	HandleConnect(client ClientConn)
	HandleDisconnect(client ClientConn)
	HandleMessage(client ClientConn, raw []byte)
}

// SignalingService 信令入口：按事件名对封闭集合做分发
// 所有入站信号在一个粗粒度互斥区内处理，
// 保证状态读取与变更在单个信号处理步骤内原子完成
type SignalingService struct {
	connections InterfaceConnectionService
	rooms       InterfaceRoomService
	presence    InterfacePresenceService
	calls       InterfaceCallService
	mu          sync.Mutex // 串行化信号处理
}

// NewSignalingService 创建一个新的信令网关服务
func NewSignalingService(
	connections InterfaceConnectionService,
	rooms InterfaceRoomService,
	presence InterfacePresenceService,
	calls InterfaceCallService,
) *SignalingService {
	return &SignalingService{
		connections: connections,
		rooms:       rooms,
		presence:    presence,
		calls:       calls,
	}
}

// HandleConnect 登记新连接
func (s *SignalingService) HandleConnect(client ClientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connections.Register(client)
	config.Info("连接建立: %s", client.ID())
}

// HandleDisconnect 连接断开时的完整清理
// 即使客户端没有发送leave，房间清理也保证执行
func (s *SignalingService) HandleDisconnect(client ClientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	connID := client.ID()
	s.rooms.Disconnect(connID)
	userID := s.connections.Unregister(connID)
	if userID != "" {
		s.presence.MarkDisconnected(userID, connID)
	}
	config.Info("连接断开: %s", connID)
}

// HandleMessage 解析并分发一条入站信令
// 格式错误或缺少必填字段的消息静默丢弃，不向发送方回错
func (s *SignalingService) HandleMessage(client ClientConn, raw []byte) {
	var msg models.SignalMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		config.Warning("丢弃无法解析的消息 [%s]: %v", client.ID(), err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	connID := client.ID()

	switch msg.Event {
	case models.EventJoin:
		var payload models.JoinPayload
		if json.Unmarshal(msg.Data, &payload) != nil || payload.RoomID == "" {
			return
		}
		s.rooms.Join(connID, payload.RoomID)

	case models.EventOffer, models.EventAnswer, models.EventCandidate:
		// 不透明负载，只做路由不做解析
		s.rooms.Relay(connID, msg.Event, msg.Data)

	case models.EventLeave:
		s.rooms.Leave(connID)

	case models.EventPresenceUpdate:
		var payload models.PresenceUpdatePayload
		if json.Unmarshal(msg.Data, &payload) != nil || payload.UserID == "" {
			return
		}
		if !models.ValidUserStatus(payload.Status) {
			return
		}
		s.presence.SetPresence(payload.UserID, connID, models.UserStatus(payload.Status))

	case models.EventCallInvite:
		var payload models.CallInvitePayload
		if json.Unmarshal(msg.Data, &payload) != nil {
			return
		}
		if payload.FromUserID == "" || payload.ToUserID == "" || payload.RoomID == "" {
			return
		}
		s.calls.Invite(connID, &payload)

	case models.EventCallAccept:
		var payload models.CallAcceptPayload
		if json.Unmarshal(msg.Data, &payload) != nil {
			return
		}
		if payload.FromUserID == "" || payload.ToUserID == "" {
			return
		}
		s.calls.Accept(&payload)

	case models.EventCallReject:
		var payload models.CallRejectPayload
		if json.Unmarshal(msg.Data, &payload) != nil || payload.FromUserID == "" {
			return
		}
		s.calls.Reject(&payload)

	case models.EventCallCancel:
		var payload models.CallRejectPayload
		if json.Unmarshal(msg.Data, &payload) != nil || payload.ToUserID == "" {
			return
		}
		s.calls.Cancel(&payload)

	case models.EventCallEnd:
		var payload models.CallEndPayload
		if json.Unmarshal(msg.Data, &payload) != nil || len(payload.UserIDs) == 0 {
			return
		}
		s.calls.End(payload.UserIDs)

	case models.EventChatMessage:
		var payload models.ChatMessagePayload
		if json.Unmarshal(msg.Data, &payload) != nil || payload.Text == "" {
			return
		}
		s.rooms.BroadcastChat(connID, &payload)

	case models.EventLegacyMessage:
		var text string
		if json.Unmarshal(msg.Data, &text) != nil {
			return
		}
		s.rooms.BroadcastLegacyMessage(text)

	default:
		config.Warning("未知的信令事件: %s", msg.Event)
	}
}
