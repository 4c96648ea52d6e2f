// Package realtime 提供管理端房态看板的 WebSocket 推送
package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/logger"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/metrics"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/service/board"
)

// 推送主题
const (
	TopicRoomStatus    = "rooms.status"
	TopicRoomSnapshot  = "rooms.snapshot"
	TopicSystemPong    = "system.pong"
	TopicSystemConnect = "system.connected"
)

const (
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 5 * time.Second
	readLimit    = 1 << 16
)

// Message 推送消息
type Message struct {
	Topic     string      `json:"topic"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type command struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// Client 单个看板连接
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	actor      string
	subscribed map[string]struct{}
	closeOnce  sync.Once
}

// NewClient 创建连接，buf 为发送缓冲
func NewClient(hub *Hub, conn *websocket.Conn, actor string, buf int) *Client {
	if buf <= 0 {
		buf = 16
	}
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, buf),
		actor:      actor,
		subscribed: make(map[string]struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

// Send 投递消息，缓冲满时返回 false
func (c *Client) Send(msg *Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Warn("看板消息序列化失败", logger.Err(err))
		return false
	}
	return c.enqueue(data)
}

func (c *Client) enqueue(data []byte) (ok bool) {
	defer func() {
		// 连接已关闭时 send 通道已关闭
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// WritePump 发送循环，定时发送 ping
func (c *Client) WritePump() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("看板连接写入失败", logger.Actor(c.actor), logger.Err(err))
				c.hub.detach(c)
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				c.hub.detach(c)
				return
			}
		}
	}
}

// ReadPump 读取循环，处理订阅指令，返回时断开连接
func (c *Client) ReadPump() {
	defer c.hub.detach(c)

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		var cmd command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("看板连接读取结束", logger.Actor(c.actor), logger.Err(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		c.handleCommand(cmd)
	}
}

func (c *Client) handleCommand(cmd command) {
	switch strings.ToLower(cmd.Action) {
	case "subscribe":
		if cmd.Topic != "" {
			c.hub.subscribe(c, cmd.Topic)
		}
	case "unsubscribe":
		if cmd.Topic != "" {
			c.hub.unsubscribe(c, cmd.Topic)
		}
	case "ping":
		c.Send(&Message{Topic: TopicSystemPong, Timestamp: time.Now().UTC()})
	}
}

// Hub 管理看板连接与主题订阅
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]map[*Client]struct{}
	clients map[*Client]struct{}
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		topics:  make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
	}
}

// Attach 注册连接并订阅主题
func (h *Hub) Attach(c *Client, topics ...string) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	for _, topic := range topics {
		if strings.TrimSpace(topic) == "" {
			continue
		}
		h.subscribeLocked(c, topic)
	}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.GetMetrics().SetBoardClients(count)
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) subscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	h.subscribeLocked(c, topic)
}

func (h *Hub) subscribeLocked(c *Client, topic string) {
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][c] = struct{}{}
	c.subscribed[topic] = struct{}{}
}

func (h *Hub) unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(c, topic)
}

func (h *Hub) unsubscribeLocked(c *Client, topic string) {
	if subs, ok := h.topics[topic]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(c.subscribed, topic)
}

func (h *Hub) detach(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	for topic := range c.subscribed {
		h.unsubscribeLocked(c, topic)
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	c.close()
	metrics.GetMetrics().SetBoardClients(count)
}

// Broadcast 向订阅主题的连接推送，发送缓冲满的连接会被断开
func (h *Hub) Broadcast(msg *Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Warn("看板消息序列化失败", logger.Err(err))
		return 0
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.topics[msg.Topic]))
	for c := range h.topics[msg.Topic] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range clients {
		if c.enqueue(data) {
			delivered++
			continue
		}
		go h.detach(c)
	}
	return delivered
}

// Close 断开全部连接
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.detach(c)
	}
}

// PublishRoomStatus 实现 board.Publisher
func (h *Hub) PublishRoomStatus(ctx context.Context, status board.RoomStatus) error {
	h.Broadcast(&Message{Topic: TopicRoomStatus, Data: status, Timestamp: time.Now().UTC()})
	return nil
}

// PublishSnapshot 实现 board.Publisher
func (h *Hub) PublishSnapshot(ctx context.Context, snapshot *board.Snapshot) error {
	h.Broadcast(&Message{Topic: TopicRoomSnapshot, Data: snapshot, Timestamp: time.Now().UTC()})
	return nil
}
