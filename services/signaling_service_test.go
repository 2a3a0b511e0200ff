package services

import (
	"fmt"
	"testing"

	"vcall-signal-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGatewayFixture 搭建完整的信令网关及其下游服务
func newGatewayFixture(t *testing.T) (*SignalingService, *ConnectionService, *PresenceService) {
	t.Helper()
	connections := NewConnectionService()
	persistence := newFakePersistence()
	bridge := newFakeBridge()
	presence := NewPresenceService(connections, persistence, nil, bridge)
	rooms := NewRoomService(connections)
	calls := NewCallService(connections, presence, persistence, bridge)
	return NewSignalingService(connections, rooms, presence, calls), connections, presence
}

func connect(t *testing.T, gateway *SignalingService, id string) *fakeClient {
	t.Helper()
	client := newFakeClient(id)
	gateway.HandleConnect(client)
	return client
}

func TestGatewayJoinOfferAnswerFlow(t *testing.T) {
	gateway, _, _ := newGatewayFixture(t)
	host := connect(t, gateway, "conn-a")
	guest := connect(t, gateway, "conn-b")

	gateway.HandleMessage(host, []byte(`{"event":"join","data":{"roomId":"room-1"}}`))
	gateway.HandleMessage(guest, []byte(`{"event":"join","data":{"roomId":"room-1"}}`))

	// 配对后房主收到join通知
	var peerConnID string
	require.NoError(t, decodeData(host.lastOf(models.EventJoin), &peerConnID))
	assert.Equal(t, "conn-b", peerConnID)

	// offer从房主转发到加入者，answer反向
	gateway.HandleMessage(host, []byte(`{"event":"offer","data":{"sdp":"v=0"}}`))
	require.NotNil(t, guest.lastOf(models.EventOffer))
	assert.JSONEq(t, `{"sdp":"v=0"}`, string(guest.lastOf(models.EventOffer).Data))

	gateway.HandleMessage(guest, []byte(`{"event":"answer","data":{"sdp":"v=0"}}`))
	assert.NotNil(t, host.lastOf(models.EventAnswer))

	gateway.HandleMessage(host, []byte(`{"event":"candidate","data":{"candidate":"c"}}`))
	assert.NotNil(t, guest.lastOf(models.EventCandidate))
}

func TestGatewayMalformedMessagesDropped(t *testing.T) {
	gateway, _, _ := newGatewayFixture(t)
	client := connect(t, gateway, "conn-a")
	observer := connect(t, gateway, "conn-b")

	for i, raw := range []string{
		`not json`,
		`{"event":"join","data":{}}`,
		`{"event":"join","data":"room-1"}`,
		`{"event":"presence:update","data":{"userId":"alice","status":"SLEEPING"}}`,
		`{"event":"presence:update","data":{"status":"ONLINE"}}`,
		`{"event":"call:invite","data":{"fromUserId":"alice"}}`,
		`{"event":"call:end","data":{"userIds":[]}}`,
		`{"event":"chat:message","data":{"text":""}}`,
		`{"event":"no-such-event","data":{}}`,
	} {
		gateway.HandleMessage(client, []byte(raw))
		assert.Empty(t, client.events(), fmt.Sprintf("用例 %d 不应产生回执", i))
		assert.Empty(t, observer.events(), fmt.Sprintf("用例 %d 不应产生广播", i))
	}
}

func TestGatewayPresenceUpdate(t *testing.T) {
	gateway, connections, presence := newGatewayFixture(t)
	client := connect(t, gateway, "conn-a")

	gateway.HandleMessage(client, []byte(`{"event":"presence:update","data":{"userId":"alice","status":"ONLINE"}}`))

	assert.Equal(t, models.UserStatusOnline, presence.Status("alice"))
	assert.Equal(t, "alice", connections.UserOf("conn-a"))
	assert.NotNil(t, client.lastOf(models.EventPresence))
}

func TestGatewayRepeatedOnlineThenDisconnectGoesOffline(t *testing.T) {
	gateway, connections, presence := newGatewayFixture(t)
	client := connect(t, gateway, "conn-a")

	// 同一连接重复上报ONLINE后断开
	gateway.HandleMessage(client, []byte(`{"event":"presence:update","data":{"userId":"alice","status":"ONLINE"}}`))
	gateway.HandleMessage(client, []byte(`{"event":"presence:update","data":{"userId":"alice","status":"ONLINE"}}`))
	gateway.HandleDisconnect(client)

	// 连接数归零时状态必须同步归于OFFLINE
	assert.Equal(t, 0, connections.ConnectionCount("alice"))
	assert.Equal(t, models.UserStatusOffline, presence.Status("alice"))
}

func TestGatewayDisconnectCleansRoomAndPresence(t *testing.T) {
	gateway, connections, presence := newGatewayFixture(t)
	host := connect(t, gateway, "conn-a")
	guest := connect(t, gateway, "conn-b")

	gateway.HandleMessage(host, []byte(`{"event":"presence:update","data":{"userId":"alice","status":"ONLINE"}}`))
	gateway.HandleMessage(host, []byte(`{"event":"join","data":{"roomId":"room-1"}}`))
	gateway.HandleMessage(guest, []byte(`{"event":"join","data":{"roomId":"room-1"}}`))

	gateway.HandleDisconnect(host)

	// 房间按房主断开处理，对端收到通知与房间关闭
	var reason string
	require.NoError(t, decodeData(guest.lastOf(models.EventPeerDisconnected), &reason))
	assert.Equal(t, "Host has disconnected", reason)
	assert.NotNil(t, guest.lastOf(models.EventRoomClosed))

	// 连接与在线状态均被清理
	assert.Equal(t, 0, connections.ConnectionCount("alice"))
	assert.Equal(t, models.UserStatusOffline, presence.Status("alice"))
}

func TestGatewayCallHandshakeOverWire(t *testing.T) {
	gateway, _, presence := newGatewayFixture(t)
	caller := connect(t, gateway, "conn-alice")
	callee := connect(t, gateway, "conn-bob")

	gateway.HandleMessage(caller, []byte(`{"event":"presence:update","data":{"userId":"alice","status":"ONLINE"}}`))
	gateway.HandleMessage(callee, []byte(`{"event":"presence:update","data":{"userId":"bob","status":"ONLINE"}}`))

	gateway.HandleMessage(caller, []byte(`{"event":"call:invite","data":{"fromUserId":"alice","fromName":"Alice","toUserId":"bob","roomId":"room-1"}}`))
	require.NotNil(t, callee.lastOf(models.EventCallIncoming))

	gateway.HandleMessage(callee, []byte(`{"event":"call:accept","data":{"roomId":"room-1","fromUserId":"alice","toUserId":"bob"}}`))
	require.NotNil(t, caller.lastOf(models.EventCallAccepted))
	assert.Equal(t, models.UserStatusBusy, presence.Status("alice"))
	assert.Equal(t, models.UserStatusBusy, presence.Status("bob"))

	gateway.HandleMessage(caller, []byte(`{"event":"call:end","data":{"userIds":["alice","bob"]}}`))
	assert.Equal(t, models.UserStatusOnline, presence.Status("alice"))
	assert.Equal(t, models.UserStatusOnline, presence.Status("bob"))
}

func TestGatewayLegacyBroadcast(t *testing.T) {
	gateway, _, _ := newGatewayFixture(t)
	sender := connect(t, gateway, "conn-a")
	receiver := connect(t, gateway, "conn-b")

	gateway.HandleMessage(sender, []byte(`{"event":"message","data":"hello everyone"}`))

	// 旧版message事件全局广播，包括发送方
	for _, client := range []*fakeClient{sender, receiver} {
		msg := client.lastOf(models.EventLegacyMessage)
		require.NotNil(t, msg)
		var text string
		require.NoError(t, decodeData(msg, &text))
		assert.Equal(t, "hello everyone", text)
	}
}
