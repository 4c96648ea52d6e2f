package notification

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/logger"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/metrics"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/tracing"
)

// Dispatcher 将通知分发到所有渠道，不重试
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher 创建分发器
func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// Channels 已配置渠道名
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Notify 依次发送到每个渠道，单个渠道失败不影响其余渠道
func (d *Dispatcher) Notify(ctx context.Context, notice Notice) error {
	var errs []error
	m := metrics.GetMetrics()

	for _, ch := range d.channels {
		err := d.send(ctx, ch, notice)
		m.RecordNotification(ch.Name(), err)
		if err != nil {
			logger.Warn("通知发送失败",
				logger.Channel(ch.Name()),
				logger.ReservationID(notice.ReservationID),
				logger.Status(notice.Status),
				logger.Err(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}

	if len(errs) > 0 {
		return apperrors.ErrNotifyFailed.WithError(errors.Join(errs...))
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, ch Channel, notice Notice) error {
	ctx, span := tracing.StartSpan(ctx, "notification.send",
		tracing.WithChannel(ch.Name()),
		tracing.WithReservationID(notice.ReservationID),
	)
	defer span.End()

	err := ch.Send(ctx, notice)
	tracing.SetError(ctx, err)
	return err
}
