package order

import (
	"context"
	"errors"
	"time"

	"github.com/krobus00/order-service/internal/constant"
	"github.com/krobus00/order-service/internal/entity"
	"github.com/krobus00/order-service/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

func initOrderStream(ctx context.Context, js nats.JetStreamContext) error {
	streamConfig := &nats.StreamConfig{
		Name:      constant.OrderStreamName,
		Subjects:  []string{constant.OrderStreamSubjectAll},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
		MaxAge:    24 * time.Hour,
	}

	stream, err := js.StreamInfo(constant.OrderStreamName, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		logrus.Error(err)
		return err
	}

	if stream == nil {
		logrus.Infof("creating stream: %s", constant.OrderStreamName)
		_, err = js.AddStream(streamConfig, nats.Context(ctx))
		return err
	}

	logrus.Infof("updating stream: %s", constant.OrderStreamName)
	_, err = js.UpdateStream(streamConfig, nats.Context(ctx))
	if err != nil {
		logrus.Error(err)
		return err
	}

	return nil
}

func (s *OrderService) JetstreamEventInit(ctx context.Context) error {
	if s.js == nil {
		return nil
	}

	return initOrderStream(ctx, s.js)
}

// publishOrderEvent emits a lifecycle event for the audit trail and stream
// subscribers. Publishing is best effort: a failed publish is logged and
// never fails the originating request.
func (s *OrderService) publishOrderEvent(action entity.OrderAction, order *entity.Order) {
	if s.js == nil {
		return
	}

	event := entity.OrderEvent{
		Action:     action,
		Order:      *order,
		OccurredAt: time.Now().UTC().UnixMilli(),
	}

	err := util.PublishEvent(s.js, constant.OrderStreamSubjectLifecycle, event)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"action":     action,
			"order_uuid": order.UUID,
		}).Errorf("failed to publish order event: %v", err)
	}
}
