package services

import (
	"fmt"
	"time"

	"vcall-signal-service/config"
	"vcall-signal-service/models"
)

// 呼叫不可达原因
const (
	reasonUserBusy    = "User is busy"
	reasonUserOffline = "User offline"
)

// InterfaceCallService 定义呼叫邀请服务接口
type InterfaceCallService interface {
	Invite(connID string, payload *models.CallInvitePayload)
	Accept(payload *models.CallAcceptPayload)
	Reject(payload *models.CallRejectPayload)
	Cancel(payload *models.CallRejectPayload)
	End(userIDs []string)
}

// CallService 在两个用户（而非连接）之间执行呼叫握手
// invite → accept/reject/cancel → end，无超时状态机：
// 邀请只在四个终止信号之一到达时结束
type CallService struct {
	activeCalls *models.ActiveCallRegistry
	connections InterfaceConnectionService
	presence    InterfacePresenceService
	persistence InterfacePersistenceService
	bridge      InterfaceEventBridge
}

// NewCallService 创建一个新的呼叫服务
func NewCallService(
	connections InterfaceConnectionService,
	presence InterfacePresenceService,
	persistence InterfacePersistenceService,
	bridge InterfaceEventBridge,
) *CallService {
	return &CallService{
		activeCalls: models.NewActiveCallRegistry(),
		connections: connections,
		presence:    presence,
		persistence: persistence,
		bridge:      bridge,
	}
}

// Invite 发起呼叫
// 被叫BUSY或无绑定连接时只回复发起连接call:unavailable；
// 否则向被叫的每条连接投递call:incoming
func (s *CallService) Invite(connID string, payload *models.CallInvitePayload) {
	if s.presence.Status(payload.ToUserID) == models.UserStatusBusy {
		s.connections.SendTo(connID, models.NewSignalMessage(models.EventCallUnavailable,
			models.CallUnavailablePayload{Reason: reasonUserBusy}))
		return
	}

	if s.connections.ConnectionCount(payload.ToUserID) == 0 {
		s.connections.SendTo(connID, models.NewSignalMessage(models.EventCallUnavailable,
			models.CallUnavailablePayload{Reason: reasonUserOffline}))
		return
	}

	s.connections.SendToUser(payload.ToUserID, models.NewSignalMessage(models.EventCallIncoming,
		models.CallInvitePayload{
			FromUserID: payload.FromUserID,
			FromName:   payload.FromName,
			ToUserID:   payload.ToUserID,
			RoomID:     payload.RoomID,
		}))

	s.bridge.PublishCallEvent("invite", payload.FromUserID, payload.ToUserID)
}

// Accept 被叫接听
// 通知主叫的每条连接，双方置为BUSY，异步创建通话历史并刷新双向联系人
// 持久化失败不回滚通话状态：历史记录是尽力而为
func (s *CallService) Accept(payload *models.CallAcceptPayload) {
	callerID := payload.FromUserID
	calleeID := payload.ToUserID

	s.connections.SendToUser(callerID, models.NewSignalMessage(models.EventCallAccepted, payload))

	s.presence.ForceStatus([]string{callerID, calleeID}, models.UserStatusBusy)

	startedAt := time.Now()
	dispatchAsync(fmt.Sprintf("创建通话记录:%s->%s", callerID, calleeID), func() error {
		recordID, err := s.persistence.CreateCallHistory(callerID, calleeID, startedAt)
		if err != nil {
			return err
		}
		s.activeCalls.Remember(callerID, calleeID, recordID)

		// 双向刷新联系人最近通话时间，单向失败不影响另一方向
		if err := s.persistence.UpsertContactRecency(callerID, calleeID, startedAt); err != nil {
			config.Error("刷新联系人失败 [%s->%s]: %v", callerID, calleeID, err)
		}
		if err := s.persistence.UpsertContactRecency(calleeID, callerID, startedAt); err != nil {
			config.Error("刷新联系人失败 [%s->%s]: %v", calleeID, callerID, err)
		}
		return nil
	})

	s.bridge.PublishCallEvent("accept", callerID, calleeID)
}

// Reject 被叫拒接，通知主叫的每条连接，不改变状态和持久化
func (s *CallService) Reject(payload *models.CallRejectPayload) {
	s.connections.SendToUser(payload.FromUserID,
		models.NewSignalMessage(models.EventCallRejected, payload))
	s.bridge.PublishCallEvent("reject", payload.FromUserID, payload.ToUserID)
}

// Cancel 主叫取消，通知被叫的每条连接，不改变状态和持久化
func (s *CallService) Cancel(payload *models.CallRejectPayload) {
	s.connections.SendToUser(payload.ToUserID,
		models.NewSignalMessage(models.EventCallCanceled, payload))
	s.bridge.PublishCallEvent("cancel", payload.FromUserID, payload.ToUserID)
}

// End 挂断
// 重算每个用户的状态；恰好两个用户时关闭记住的通话历史并刷新联系人
// 接听持久化未完成时记录可能尚不存在，按无操作处理
func (s *CallService) End(userIDs []string) {
	if len(userIDs) == 0 {
		return
	}

	s.presence.RecomputeAfterCall(userIDs)

	if len(userIDs) != 2 {
		return
	}

	userA, userB := userIDs[0], userIDs[1]
	endedAt := time.Now()

	recordID, ok := s.activeCalls.Take(userA, userB)
	if ok {
		dispatchAsync(fmt.Sprintf("关闭通话记录:%d", recordID), func() error {
			return s.persistence.CloseCallHistory(recordID, endedAt)
		})
	}

	dispatchAsync(fmt.Sprintf("刷新联系人:%s<->%s", userA, userB), func() error {
		if err := s.persistence.UpsertContactRecency(userA, userB, endedAt); err != nil {
			return err
		}
		return s.persistence.UpsertContactRecency(userB, userA, endedAt)
	})

	s.bridge.PublishCallEvent("end", userA, userB)
}
