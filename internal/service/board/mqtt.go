package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/metrics"
)

// RetainedPublisher 支持保留消息的 MQTT 客户端
type RetainedPublisher interface {
	PublishRetained(ctx context.Context, topic string, payload interface{}) error
}

// MQTTPublisher 向客房终端推送房态，每个房间一个保留主题
type MQTTPublisher struct {
	client RetainedPublisher
	prefix string
}

// NewMQTTPublisher 创建 MQTT 推送通道，prefix 形如 "hotel/"
func NewMQTTPublisher(client RetainedPublisher, prefix string) *MQTTPublisher {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &MQTTPublisher{client: client, prefix: prefix}
}

// RoomTopic 房间房态主题
func (p *MQTTPublisher) RoomTopic(roomID int64) string {
	return fmt.Sprintf("%srooms/%d/status", p.prefix, roomID)
}

// SnapshotTopic 全量房态主题
func (p *MQTTPublisher) SnapshotTopic() string {
	return p.prefix + "rooms/snapshot"
}

// PublishRoomStatus 实现 Publisher
func (p *MQTTPublisher) PublishRoomStatus(ctx context.Context, status RoomStatus) error {
	topic := p.RoomTopic(status.RoomID)
	if err := p.client.PublishRetained(ctx, topic, status); err != nil {
		return err
	}
	metrics.GetMetrics().RecordMQTTMessage("room_status", "out")
	return nil
}

// PublishSnapshot 实现 Publisher，逐房间刷新保留消息后再发布汇总
func (p *MQTTPublisher) PublishSnapshot(ctx context.Context, snapshot *Snapshot) error {
	for _, status := range snapshot.Rooms {
		if err := p.PublishRoomStatus(ctx, status); err != nil {
			return err
		}
	}
	summary := map[string]interface{}{
		"total":        snapshot.Total,
		"occupied":     snapshot.Occupied,
		"free":         snapshot.Free,
		"disabled":     snapshot.Disabled,
		"generated_at": snapshot.GeneratedAt,
	}
	if err := p.client.PublishRetained(ctx, p.SnapshotTopic(), summary); err != nil {
		return err
	}
	metrics.GetMetrics().RecordMQTTMessage("room_snapshot", "out")
	return nil
}
