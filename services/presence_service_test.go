package services

import (
	"testing"
	"time"

	"vcall-signal-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPresenceFixture 搭建在线状态服务及其依赖的桩
func newPresenceFixture(t *testing.T) (*PresenceService, *ConnectionService, *fakePersistence) {
	t.Helper()
	connections := NewConnectionService()
	persistence := newFakePersistence()
	return NewPresenceService(connections, persistence, nil, newFakeBridge()), connections, persistence
}

func TestPresenceSetOnlineBroadcasts(t *testing.T) {
	presence, connections, persistence := newPresenceFixture(t)
	conn := newFakeClient("conn-1")
	observer := newFakeClient("conn-2")
	connections.Register(conn)
	connections.Register(observer)

	presence.SetPresence("alice", conn.ID(), models.UserStatusOnline)

	assert.Equal(t, models.UserStatusOnline, presence.Status("alice"))
	assert.Equal(t, "alice", connections.UserOf(conn.ID()))

	// 状态变更广播给所有连接，包括上报方自己
	for _, client := range []*fakeClient{conn, observer} {
		msg := client.lastOf(models.EventPresence)
		require.NotNil(t, msg)

		var payload models.PresencePayload
		require.NoError(t, decodeData(msg, &payload))
		assert.Equal(t, "alice", payload.UserID)
		assert.Equal(t, string(models.UserStatusOnline), payload.Status)
	}

	// 持久化异步完成
	require.Eventually(t, func() bool {
		s, ok := persistence.lastStatus("alice")
		return ok && s == models.UserStatusOnline
	}, time.Second, 10*time.Millisecond)
}

func TestPresenceMultiDeviceOfflineOnlyAtZero(t *testing.T) {
	presence, connections, _ := newPresenceFixture(t)

	// 同一用户三条连接依次上报ONLINE
	conns := make([]*fakeClient, 3)
	for i, id := range []string{"conn-1", "conn-2", "conn-3"} {
		conns[i] = newFakeClient(id)
		connections.Register(conns[i])
		presence.SetPresence("alice", conns[i].ID(), models.UserStatusOnline)
	}
	assert.Equal(t, models.UserStatusOnline, presence.Status("alice"))

	observer := newFakeClient("conn-observer")
	connections.Register(observer)

	// 前两条连接上报OFFLINE：仍有存活连接，状态保持ONLINE且不广播
	presence.SetPresence("alice", conns[0].ID(), models.UserStatusOffline)
	presence.SetPresence("alice", conns[1].ID(), models.UserStatusOffline)
	assert.Equal(t, models.UserStatusOnline, presence.Status("alice"))
	assert.Nil(t, observer.lastOf(models.EventPresence))

	// 最后一条连接上报OFFLINE：计数归零，状态转为OFFLINE并广播
	presence.SetPresence("alice", conns[2].ID(), models.UserStatusOffline)
	assert.Equal(t, models.UserStatusOffline, presence.Status("alice"))

	var payload models.PresencePayload
	require.NoError(t, decodeData(observer.lastOf(models.EventPresence), &payload))
	assert.Equal(t, string(models.UserStatusOffline), payload.Status)
}

func TestPresenceDisconnectCleanup(t *testing.T) {
	presence, connections, _ := newPresenceFixture(t)
	conn1 := newFakeClient("conn-1")
	conn2 := newFakeClient("conn-2")
	connections.Register(conn1)
	connections.Register(conn2)

	presence.SetPresence("alice", conn1.ID(), models.UserStatusOnline)
	presence.SetPresence("alice", conn2.ID(), models.UserStatusOnline)

	// 第一条连接断开：另一条连接仍让用户保持在线
	presence.MarkDisconnected("alice", conn1.ID())
	assert.Equal(t, models.UserStatusOnline, presence.Status("alice"))

	// 最后一条连接断开：转为OFFLINE
	presence.MarkDisconnected("alice", conn2.ID())
	assert.Equal(t, models.UserStatusOffline, presence.Status("alice"))
}

func TestPresenceRepeatedOnlineThenDisconnect(t *testing.T) {
	presence, connections, _ := newPresenceFixture(t)
	conn := newFakeClient("conn-1")
	connections.Register(conn)

	// 同一连接重复上报ONLINE（心跳/重连保护性重发）
	presence.SetPresence("alice", conn.ID(), models.UserStatusOnline)
	presence.SetPresence("alice", conn.ID(), models.UserStatusOnline)
	presence.SetPresence("alice", conn.ID(), models.UserStatusOnline)
	assert.Equal(t, models.UserStatusOnline, presence.Status("alice"))

	// 唯一的连接断开后用户必须转为OFFLINE，重复声明不会让其滞留在线
	presence.MarkDisconnected("alice", conn.ID())
	assert.Equal(t, models.UserStatusOffline, presence.Status("alice"))
}

func TestPresenceBusyOnlyConnDisconnectKeepsOtherDeviceOnline(t *testing.T) {
	presence, connections, _ := newPresenceFixture(t)
	device := newFakeClient("conn-1")
	busyOnly := newFakeClient("conn-2")
	connections.Register(device)
	connections.Register(busyOnly)

	presence.SetPresence("alice", device.ID(), models.UserStatusOnline)
	// 第二条连接只上报过BUSY，从未声明ONLINE
	presence.SetPresence("alice", busyOnly.ID(), models.UserStatusBusy)

	// 它断开时只移除自己的贡献，另一台设备仍让用户保持BUSY声明的状态
	presence.MarkDisconnected("alice", busyOnly.ID())
	assert.NotEqual(t, models.UserStatusOffline, presence.Status("alice"))
	assert.Equal(t, 1, presence.registry.Refs("alice"))
}

func TestPresenceForceStatusOverride(t *testing.T) {
	presence, connections, _ := newPresenceFixture(t)
	conn := newFakeClient("conn-1")
	connections.Register(conn)

	presence.SetPresence("alice", conn.ID(), models.UserStatusOnline)
	presence.ForceStatus([]string{"alice", "bob"}, models.UserStatusBusy)

	// 通话生命周期覆盖双方状态，包括未上报过状态的一方
	assert.Equal(t, models.UserStatusBusy, presence.Status("alice"))
	assert.Equal(t, models.UserStatusBusy, presence.Status("bob"))
}

func TestPresenceRecomputeAfterCall(t *testing.T) {
	presence, connections, _ := newPresenceFixture(t)
	conn := newFakeClient("conn-1")
	connections.Register(conn)

	presence.SetPresence("alice", conn.ID(), models.UserStatusOnline)
	presence.ForceStatus([]string{"alice", "bob"}, models.UserStatusBusy)

	presence.RecomputeAfterCall([]string{"alice", "bob"})

	// alice仍有存活连接回到ONLINE，bob没有连接转为OFFLINE
	assert.Equal(t, models.UserStatusOnline, presence.Status("alice"))
	assert.Equal(t, models.UserStatusOffline, presence.Status("bob"))
}

func TestPresenceRebindSwitchesUser(t *testing.T) {
	presence, connections, _ := newPresenceFixture(t)
	conn := newFakeClient("conn-1")
	connections.Register(conn)

	presence.SetPresence("alice", conn.ID(), models.UserStatusOnline)
	presence.SetPresence("bob", conn.ID(), models.UserStatusOnline)

	// 重新绑定后连接归属新用户
	assert.Equal(t, "bob", connections.UserOf(conn.ID()))
	assert.Equal(t, 0, connections.ConnectionCount("alice"))
	assert.Equal(t, 1, connections.ConnectionCount("bob"))
}
