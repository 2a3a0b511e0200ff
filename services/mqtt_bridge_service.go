package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"vcall-signal-service/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// 系统事件主题
const (
	// 在线状态变更事件主题
	TopicPresenceEvent = "vcall/system/presence"

	// 通话生命周期事件主题
	TopicCallEvent = "vcall/system/call"
)

// InterfaceEventBridge 系统事件桥接口
// 向外部监控系统发布状态变更和通话生命周期事件，全部尽力而为
type InterfaceEventBridge interface {
	Connect() error
	Disconnect()
	PublishPresenceEvent(userID, status string)
	PublishCallEvent(event, callerID, calleeID string)
}

// PresenceEventMessage 在线状态变更事件
type PresenceEventMessage struct {
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// CallEventMessage 通话生命周期事件
type CallEventMessage struct {
	Event     string `json:"event"`
	CallerID  string `json:"caller_id"`
	CalleeID  string `json:"callee_id"`
	Timestamp int64  `json:"timestamp"`
}

// MQTTBridgeService 基于MQTT的系统事件桥实现
type MQTTBridgeService struct {
	Config         *config.Config
	Client         mqtt.Client
	IsConnected    bool
	connectedMutex sync.RWMutex // 保护IsConnected字段的读写
}

// NewMQTTBridgeService 创建一个新的MQTT系统事件桥
// 未配置Broker地址时返回空实现，所有发布都是无操作
func NewMQTTBridgeService(cfg *config.Config) InterfaceEventBridge {
	if cfg.MQTTBrokerURL == "" {
		return &noopEventBridge{}
	}

	service := &MQTTBridgeService{Config: cfg}
	service.setupMQTTClient()
	return service
}

// setupMQTTClient 设置MQTT客户端
func (s *MQTTBridgeService) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// 使用唯一的客户端ID，避免同一服务多实例冲突
	opts.SetClientID(fmt.Sprintf("%s-%s", s.Config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Second * 30)
	opts.SetKeepAlive(time.Second * 60)
	opts.SetPingTimeout(time.Second * 10)
	opts.SetCleanSession(true)

	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}

	// 设置连接丢失回调
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		config.Warning("[MQTT] 连接丢失: %v", err)
		s.connectedMutex.Lock()
		s.IsConnected = false
		s.connectedMutex.Unlock()
	})

	// 设置连接建立回调
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		config.Info("[MQTT] 成功连接到 %s", s.Config.MQTTBrokerURL)
		s.connectedMutex.Lock()
		s.IsConnected = true
		s.connectedMutex.Unlock()
	})

	s.Client = mqtt.NewClient(opts)
}

// Connect 连接到MQTT服务器
func (s *MQTTBridgeService) Connect() error {
	token := s.Client.Connect()
	if token.WaitTimeout(5*time.Second) && token.Error() == nil {
		s.connectedMutex.Lock()
		s.IsConnected = true
		s.connectedMutex.Unlock()
		return nil
	}
	return fmt.Errorf("[MQTT] 连接失败: %v", token.Error())
}

// Disconnect 断开与MQTT服务器的连接
func (s *MQTTBridgeService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
}

// PublishPresenceEvent 发布在线状态变更事件
func (s *MQTTBridgeService) PublishPresenceEvent(userID, status string) {
	s.publish(TopicPresenceEvent, PresenceEventMessage{
		UserID:    userID,
		Status:    status,
		Timestamp: time.Now().UnixMilli(),
	})
}

// PublishCallEvent 发布通话生命周期事件
func (s *MQTTBridgeService) PublishCallEvent(event, callerID, calleeID string) {
	s.publish(TopicCallEvent, CallEventMessage{
		Event:     event,
		CallerID:  callerID,
		CalleeID:  calleeID,
		Timestamp: time.Now().UnixMilli(),
	})
}

// publish 序列化并发布一条事件消息，失败只记录日志
func (s *MQTTBridgeService) publish(topic string, message interface{}) {
	s.connectedMutex.RLock()
	connected := s.IsConnected
	s.connectedMutex.RUnlock()

	if !connected {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		config.Error("[MQTT] 序列化事件失败 [%s]: %v", topic, err)
		return
	}

	dispatchAsync("mqtt发布:"+topic, func() error {
		token := s.Client.Publish(topic, 1, false, payload)
		if !token.WaitTimeout(5 * time.Second) {
			return fmt.Errorf("发布超时")
		}
		return token.Error()
	})
}

// noopEventBridge 禁用MQTT时的空实现
type noopEventBridge struct{}

func (n *noopEventBridge) Connect() error { return nil }

func (n *noopEventBridge) Disconnect() {}

func (n *noopEventBridge) PublishPresenceEvent(userID, status string) {}

func (n *noopEventBridge) PublishCallEvent(event, callerID, calleeID string) {}
