package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRegistryJoinCreatesThenPairs(t *testing.T) {
	r := NewRoomRegistry()

	// 第一个连接创建房间并占据槽位A
	result := r.Join("conn-a", "room-1")
	assert.Equal(t, JoinCreated, result.Outcome)
	assert.Equal(t, "room-1", result.RoomID)
	assert.True(t, r.RoomExists("room-1"))

	// 第二个连接占据槽位B，结果携带需要通知的房主连接
	result = r.Join("conn-b", "room-1")
	assert.Equal(t, JoinPaired, result.Outcome)
	assert.Equal(t, "conn-a", result.HostConnID)

	// 第三个连接被拒绝
	result = r.Join("conn-c", "room-1")
	assert.Equal(t, JoinFull, result.Outcome)
	_, inRoom := r.RoomOf("conn-c")
	assert.False(t, inRoom)
}

func TestRoomRegistryRelayTarget(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("conn-a", "room-1")

	// 对端槽位为空时无转发目标
	_, ok := r.RelayTarget("conn-a")
	assert.False(t, ok)

	r.Join("conn-b", "room-1")

	// 配对后双向可达
	target, ok := r.RelayTarget("conn-a")
	require.True(t, ok)
	assert.Equal(t, "conn-b", target)

	target, ok = r.RelayTarget("conn-b")
	require.True(t, ok)
	assert.Equal(t, "conn-a", target)

	// 不在房间内的连接没有目标
	_, ok = r.RelayTarget("conn-x")
	assert.False(t, ok)
}

func TestRoomRegistryHostLeaveClosesRoom(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("conn-a", "room-1")
	r.Join("conn-b", "room-1")

	result := r.Leave("conn-a")
	assert.Equal(t, LeaveHostClosed, result.Outcome)
	assert.Equal(t, "room-1", result.RoomID)
	assert.Equal(t, "conn-a", result.HostConnID)
	assert.Equal(t, "conn-b", result.GuestConnID)

	// 房间整体关闭，两个连接的反查均被清理
	assert.False(t, r.RoomExists("room-1"))
	_, inRoom := r.RoomOf("conn-b")
	assert.False(t, inRoom)
}

func TestRoomRegistryGuestLeaveFreesSlot(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("conn-a", "room-1")
	r.Join("conn-b", "room-1")

	result := r.Leave("conn-b")
	assert.Equal(t, LeaveGuestFreed, result.Outcome)
	assert.Equal(t, "conn-a", result.HostConnID)

	// 房间保留，槽位B可被新连接重新占据
	require.True(t, r.RoomExists("room-1"))
	paired := r.Join("conn-c", "room-1")
	assert.Equal(t, JoinPaired, paired.Outcome)
	assert.Equal(t, "conn-a", paired.HostConnID)
}

func TestRoomRegistryLeaveUnknownConn(t *testing.T) {
	r := NewRoomRegistry()

	result := r.Leave("conn-x")
	assert.Equal(t, LeaveNotInRoom, result.Outcome)
}

func TestRoomRegistryMembers(t *testing.T) {
	r := NewRoomRegistry()
	assert.Nil(t, r.Members("room-1"))

	r.Join("conn-a", "room-1")
	assert.Equal(t, []string{"conn-a"}, r.Members("room-1"))

	r.Join("conn-b", "room-1")
	assert.Equal(t, []string{"conn-a", "conn-b"}, r.Members("room-1"))

	r.Leave("conn-b")
	assert.Equal(t, []string{"conn-a"}, r.Members("room-1"))
}
