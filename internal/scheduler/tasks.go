package scheduler

import (
	"context"
	"time"
)

// 任务名
const (
	TaskBoardBroadcast = "board_broadcast"
)

// Broadcaster 房态全量推送
type Broadcaster interface {
	Broadcast(ctx context.Context) error
}

// RegisterBoardBroadcast 定期推送全量房态，修正单房间推送遗漏造成的偏差
func RegisterBoardBroadcast(s *Scheduler, b Broadcaster, interval time.Duration) {
	s.AddTask(TaskBoardBroadcast, interval, b.Broadcast)
}
