package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve 升级连接并注册到 Hub，订阅房态主题，先推送 initial 再开始收发循环
func Serve(hub *Hub, w http.ResponseWriter, r *http.Request, actor string, buf int, initial interface{}) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := NewClient(hub, conn, actor, buf)
	hub.Attach(client, TopicRoomStatus, TopicRoomSnapshot)

	client.Send(&Message{
		Topic:     TopicSystemConnect,
		Data:      map[string]interface{}{"actor": actor, "topics": []string{TopicRoomStatus, TopicRoomSnapshot}},
		Timestamp: time.Now().UTC(),
	})
	if initial != nil {
		client.Send(&Message{Topic: TopicRoomSnapshot, Data: initial, Timestamp: time.Now().UTC()})
	}

	go client.WritePump()
	go client.ReadPump()
	return nil
}
