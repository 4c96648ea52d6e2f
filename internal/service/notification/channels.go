package notification

import (
	"context"
	"fmt"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/config"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/logger"
	"github.com/Mohsinkhani/hotel-management-sub000/pkg/kafka"
	"github.com/Mohsinkhani/hotel-management-sub000/pkg/sms"
)

// 渠道名称
const (
	ChannelKafka = "kafka"
	ChannelSMS   = "sms"
	ChannelLog   = "log"
)

// KafkaChannel 将通知写入 Kafka，由邮件服务消费并渲染模板
type KafkaChannel struct {
	producer kafka.Producer
}

// NewKafkaChannel 创建 Kafka 渠道
func NewKafkaChannel(producer kafka.Producer) *KafkaChannel {
	return &KafkaChannel{producer: producer}
}

// Name 渠道名
func (c *KafkaChannel) Name() string { return ChannelKafka }

// Send 发布通知，以预订 ID 作为消息 key
func (c *KafkaChannel) Send(ctx context.Context, notice Notice) error {
	return c.producer.Publish(ctx, notice.ReservationID, notice)
}

// SMSChannel 短信渠道，按预订状态选择模板
type SMSChannel struct {
	sender    sms.Sender
	templates map[string]string
}

// NewSMSChannel 创建短信渠道
func NewSMSChannel(sender sms.Sender, templates map[string]string) *SMSChannel {
	return &SMSChannel{sender: sender, templates: templates}
}

// Name 渠道名
func (c *SMSChannel) Name() string { return ChannelSMS }

// Send 发送短信，无手机号或该状态未配置模板时跳过
func (c *SMSChannel) Send(ctx context.Context, notice Notice) error {
	template, ok := c.templates[notice.Status]
	if !ok || template == "" || notice.ToPhone == "" {
		return nil
	}
	return c.sender.Send(ctx, notice.ToPhone, template, map[string]string{
		"name":           notice.ToName,
		"reservation_id": notice.ReservationID,
		"status":         notice.Status,
		"check_in":       notice.CheckIn.Format("2006-01-02"),
		"check_out":      notice.CheckOut.Format("2006-01-02"),
	})
}

// LogChannel 只记录日志的渠道（开发环境）
type LogChannel struct{}

// Name 渠道名
func (LogChannel) Name() string { return ChannelLog }

// Send 记录通知
func (LogChannel) Send(ctx context.Context, notice Notice) error {
	logger.Info("住客通知",
		logger.ReservationID(notice.ReservationID),
		logger.Status(notice.Status),
		logger.String("to", notice.ToEmail),
		logger.String("check_in", notice.CheckIn.Format("2006-01-02")),
		logger.String("check_out", notice.CheckOut.Format("2006-01-02")),
	)
	return nil
}

// Deps 构建渠道所需依赖
type Deps struct {
	Producer  kafka.Producer
	SMSSender sms.Sender
}

// NewFromConfig 按配置的渠道列表创建分发器
func NewFromConfig(cfg *config.Config, deps Deps) (*Dispatcher, error) {
	var channels []Channel
	for _, name := range cfg.Business.Reservation.NotifyChannels {
		switch name {
		case ChannelKafka:
			if deps.Producer == nil {
				return nil, fmt.Errorf("notify channel kafka requires a producer")
			}
			channels = append(channels, NewKafkaChannel(deps.Producer))
		case ChannelSMS:
			if deps.SMSSender == nil {
				return nil, fmt.Errorf("notify channel sms requires a sender")
			}
			channels = append(channels, NewSMSChannel(deps.SMSSender, cfg.SMS.Templates))
		case ChannelLog:
			channels = append(channels, LogChannel{})
		default:
			return nil, fmt.Errorf("unknown notify channel %q", name)
		}
	}
	return NewDispatcher(channels...), nil
}
