package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/krobus00/order-service/internal/config"
	"github.com/krobus00/order-service/internal/constant"
	"github.com/krobus00/order-service/internal/entity"
	"github.com/krobus00/order-service/internal/repository"
	"github.com/krobus00/order-service/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const defaultAuditHandlerTimeout = 5 * time.Second

// OrderAuditService consumes order lifecycle events and persists them as
// audit rows, and serves the stored trail back. It is the durable work-queue
// consumer of the order stream.
type OrderAuditService struct {
	orderAuditRepo repository.OrderAuditRepository
	js             nats.JetStreamContext
}

func NewOrderAuditService(orderAuditRepo repository.OrderAuditRepository, js nats.JetStreamContext) *OrderAuditService {
	return &OrderAuditService{
		orderAuditRepo: orderAuditRepo,
		js:             js,
	}
}

// GetAuditTrail returns the recorded lifecycle events for one order, oldest
// first. An order with no recorded events yields an empty trail; the trail of
// a cancelled order stays readable.
func (s *OrderAuditService) GetAuditTrail(ctx context.Context, orderUUID string) ([]entity.OrderAuditLog, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if strings.TrimSpace(orderUUID) == "" {
		return nil, fmt.Errorf("%w: uuid is required", ErrInvalidRequest)
	}

	auditLogs, err := s.orderAuditRepo.GetByOrderUUID(ctx, orderUUID)
	if err != nil {
		logrus.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return auditLogs, nil
}

func (s *OrderAuditService) JetstreamEventSubscribe(ctx context.Context) error {
	err := initOrderStream(ctx, s.js)
	if err != nil {
		logrus.Error(err)
		return err
	}

	_, err = s.js.QueueSubscribe(
		constant.OrderStreamSubjectLifecycle,
		constant.OrderAuditQueueName,
		func(msg *nats.Msg) {
			err := util.ProcessWithTimeout(auditHandlerTimeout(), msg, s.handleOrderEvent)
			if err != nil {
				logrus.Errorf("error processing message: %v", err)
				return
			}

			err = msg.Ack()
			if err != nil {
				logrus.Errorf("failed to acknowledge message: %v", err)
				return
			}
		},
		nats.ManualAck(),
		nats.Durable(constant.OrderAuditQueueGroup),
	)
	if err != nil {
		logrus.Error(err)
		return err
	}

	return nil
}

func (s *OrderAuditService) handleOrderEvent(ctx context.Context, msg *nats.Msg) error {
	logger := logrus.WithFields(logrus.Fields{
		"event": string(msg.Data),
	})

	var event entity.OrderEvent
	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		logger.Error(err)
		return err
	}

	auditLog := &entity.OrderAuditLog{
		OrderUUID:   event.Order.UUID,
		Action:      event.Action,
		Price:       event.Order.Price,
		QuoteAmount: event.Order.QuoteAmount,
		BaseAmount:  event.Order.BaseAmount,
		Side:        event.Order.Side,
		OccurredAt:  time.UnixMilli(event.OccurredAt).UTC(),
		CreatedAt:   time.Now().UTC(),
	}

	err = s.orderAuditRepo.Create(ctx, auditLog)
	if err != nil {
		logger.Error(err)
		return err
	}

	return nil
}

func auditHandlerTimeout() time.Duration {
	if config.Env == nil {
		return defaultAuditHandlerTimeout
	}

	timeout := config.Env.NatsJetstream.TimeoutHandler["order_audit"]
	if timeout <= 0 {
		return defaultAuditHandlerTimeout
	}

	return timeout
}
