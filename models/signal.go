package models

import "encoding/json"

// 入站信令事件名（封闭集合，网关按事件名分发）
const (
	EventJoin           = "join"
	EventOffer          = "offer"
	EventAnswer         = "answer"
	EventCandidate      = "candidate"
	EventLeave          = "leave"
	EventPresenceUpdate = "presence:update"
	EventCallInvite     = "call:invite"
	EventCallAccept     = "call:accept"
	EventCallReject     = "call:reject"
	EventCallCancel     = "call:cancel"
	EventCallEnd        = "call:end"
	EventChatMessage    = "chat:message"
	EventLegacyMessage  = "message"
)

// 出站信令事件名
const (
	EventRoomFull         = "roomFull"
	EventRoomClosed       = "roomClosed"
	EventPeerDisconnected = "peerDisconnected"
	EventPresence         = "presence"
	EventCallIncoming     = "call:incoming"
	EventCallAccepted     = "call:accepted"
	EventCallRejected     = "call:rejected"
	EventCallCanceled     = "call:canceled"
	EventCallUnavailable  = "call:unavailable"
)

// SignalMessage 信令消息信封，C2S与S2C共用
// offer/answer/candidate 的负载是不透明的JSON，服务端只转发不解析
type SignalMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewSignalMessage 构造一条出站信令消息，负载序列化失败时返回空负载
func NewSignalMessage(event string, data interface{}) *SignalMessage {
	msg := &SignalMessage{Event: event}
	if data == nil {
		return msg
	}
	if raw, err := json.Marshal(data); err == nil {
		msg.Data = raw
	}
	return msg
}

// JoinPayload 加入房间请求
type JoinPayload struct {
	RoomID string `json:"roomId"`
}

// PresenceUpdatePayload 在线状态上报
type PresenceUpdatePayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// PresencePayload 在线状态广播
type PresencePayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// CallInvitePayload 呼叫邀请
type CallInvitePayload struct {
	FromUserID string `json:"fromUserId"`
	FromName   string `json:"fromName"`
	ToUserID   string `json:"toUserId"`
	RoomID     string `json:"roomId"`
}

// CallAcceptPayload 接听
type CallAcceptPayload struct {
	RoomID     string `json:"roomId"`
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
}

// CallRejectPayload 拒接/取消共用
type CallRejectPayload struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
}

// CallEndPayload 挂断，userIds为通话双方
type CallEndPayload struct {
	UserIDs []string `json:"userIds"`
}

// CallUnavailablePayload 呼叫不可达
type CallUnavailablePayload struct {
	Reason string `json:"reason"`
}

// ChatMessagePayload 房间内聊天请求
type ChatMessagePayload struct {
	Text       string `json:"text"`
	FromUserID string `json:"fromUserId,omitempty"`
	FromName   string `json:"fromName,omitempty"`
}

// ChatMessageEvent 房间内聊天广播
type ChatMessageEvent struct {
	ID         string `json:"id"`
	RoomID     string `json:"roomId"`
	Text       string `json:"text"`
	FromUserID string `json:"fromUserId,omitempty"`
	FromName   string `json:"fromName,omitempty"`
	Ts         int64  `json:"ts"`
}
