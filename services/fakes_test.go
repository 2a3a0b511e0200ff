package services

import (
	"encoding/json"
	"sync"
	"time"

	"vcall-signal-service/models"
)

// fakeClient 记录收到消息的连接桩
type fakeClient struct {
	id   string
	mu   sync.Mutex
	msgs []*models.SignalMessage
}

func newFakeClient(id string) *fakeClient {
	return &fakeClient{id: id}
}

func (c *fakeClient) ID() string { return c.id }

func (c *fakeClient) Send(msg *models.SignalMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return true
}

// events 返回按接收顺序排列的事件名
func (c *fakeClient) events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.msgs))
	for _, m := range c.msgs {
		names = append(names, m.Event)
	}
	return names
}

// last 返回最后收到的消息，未收到任何消息时为nil
func (c *fakeClient) last() *models.SignalMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.msgs) == 0 {
		return nil
	}
	return c.msgs[len(c.msgs)-1]
}

// lastOf 返回最后一条指定事件的消息
func (c *fakeClient) lastOf(event string) *models.SignalMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.msgs) - 1; i >= 0; i-- {
		if c.msgs[i].Event == event {
			return c.msgs[i]
		}
	}
	return nil
}

// decodeData 将消息负载解码到dest
func decodeData(msg *models.SignalMessage, dest interface{}) error {
	return json.Unmarshal(msg.Data, dest)
}

type contactUpsert struct {
	ownerID   string
	contactID string
}

// fakePersistence 记录调用的持久化桩
type fakePersistence struct {
	mu            sync.Mutex
	statusUpdates map[string]models.UserStatus
	created       int
	nextRecordID  uint
	closed        []uint
	contacts      []contactUpsert
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{
		statusUpdates: make(map[string]models.UserStatus),
		nextRecordID:  1,
	}
}

func (f *fakePersistence) UpdateUserStatus(userID string, status models.UserStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusUpdates[userID] = status
	return nil
}

func (f *fakePersistence) CreateCallHistory(callerID, calleeID string, startedAt time.Time) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	return f.nextRecordID, nil
}

func (f *fakePersistence) CloseCallHistory(recordID uint, endedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, recordID)
	return nil
}

func (f *fakePersistence) UpsertContactRecency(ownerID, contactID string, timestamp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, contactUpsert{ownerID: ownerID, contactID: contactID})
	return nil
}

func (f *fakePersistence) lastStatus(userID string) (models.UserStatus, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.statusUpdates[userID]
	return s, ok
}

func (f *fakePersistence) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

func (f *fakePersistence) closedRecords() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint(nil), f.closed...)
}

func (f *fakePersistence) contactUpserts() []contactUpsert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contactUpsert(nil), f.contacts...)
}

// fakeBridge 记录事件的系统事件桥桩
type fakeBridge struct {
	mu             sync.Mutex
	presenceEvents []string
	callEvents     []string
}

func newFakeBridge() *fakeBridge { return &fakeBridge{} }

func (f *fakeBridge) Connect() error { return nil }

func (f *fakeBridge) Disconnect() {}

func (f *fakeBridge) PublishPresenceEvent(userID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presenceEvents = append(f.presenceEvents, userID+":"+status)
}

func (f *fakeBridge) PublishCallEvent(event, callerID, calleeID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callEvents = append(f.callEvents, event)
}

func (f *fakeBridge) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.callEvents...)
}
