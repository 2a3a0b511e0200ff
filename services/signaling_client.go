package services

import (
	"time"

	"vcall-signal-service/config"
	"vcall-signal-service/models"

	"github.com/gorilla/websocket"
)

const (
	// 写超时
	writeWait = 10 * time.Second

	// 等待pong的超时，超过视为连接死亡
	pongWait = 60 * time.Second

	// ping周期，必须小于pongWait
	pingPeriod = (pongWait * 9) / 10

	// 单条入站消息的大小上限，足够容纳WebRTC SDP
	maxMessageSize = 64 * 1024

	// 出站消息缓冲，写满即丢弃（非阻塞投递）
	sendBufferSize = 256
)

// SignalClient 包装一条WebSocket连接，实现ClientConn
// 读写各占一个goroutine：读泵把消息交给信令服务，写泵独占写端
type SignalClient struct {
	id        string
	conn      *websocket.Conn
	signaling InterfaceSignalingService
	send      chan *models.SignalMessage
	closeOnce chan struct{}
}

// NewSignalClient 创建一个新的信令客户端
func NewSignalClient(id string, conn *websocket.Conn, signaling InterfaceSignalingService) *SignalClient {
	return &SignalClient{
		id:        id,
		conn:      conn,
		signaling: signaling,
		send:      make(chan *models.SignalMessage, sendBufferSize),
		closeOnce: make(chan struct{}),
	}
}

// ID 返回服务端分配的连接标识
func (c *SignalClient) ID() string {
	return c.id
}

// Send 非阻塞投递一条出站消息
// 连接已关闭或缓冲已满时丢弃并返回false，绝不阻塞信令处理
func (c *SignalClient) Send(msg *models.SignalMessage) bool {
	select {
	case <-c.closeOnce:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		config.Warning("出站缓冲已满，丢弃消息: conn=%s event=%s", c.id, msg.Event)
		return false
	}
}

// ReadPump 从连接读入消息并交给信令服务处理
// 每条连接一个读goroutine，保证同一连接的信号按到达顺序处理
func (c *SignalClient) ReadPump() {
	defer func() {
		c.signaling.HandleDisconnect(c)
		close(c.closeOnce)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				config.Warning("连接读取错误 [%s]: %v", c.id, err)
			}
			break
		}
		c.signaling.HandleMessage(c, raw)
	}
}

// WritePump 独占连接写端，投递出站消息并定期发送ping
func (c *SignalClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				config.Warning("连接写入错误 [%s]: %v", c.id, err)
				return
			}

		case <-c.closeOnce:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
