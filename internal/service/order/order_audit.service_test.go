package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/krobus00/order-service/internal/entity"
	"github.com/nats-io/nats.go"
)

type fakeOrderAuditRepository struct {
	logs        []entity.OrderAuditLog
	createErr   error
	getErr      error
	lastQueried string
}

func (f *fakeOrderAuditRepository) Create(_ context.Context, auditLog *entity.OrderAuditLog) error {
	if f.createErr != nil {
		return f.createErr
	}

	f.logs = append(f.logs, *auditLog)
	return nil
}

func (f *fakeOrderAuditRepository) GetByOrderUUID(_ context.Context, orderUUID string) ([]entity.OrderAuditLog, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	f.lastQueried = orderUUID

	var result []entity.OrderAuditLog
	for _, log := range f.logs {
		if log.OrderUUID == orderUUID {
			result = append(result, log)
		}
	}
	return result, nil
}

func TestHandleOrderEventPersistsAuditLog(t *testing.T) {
	js := &fakeJetStream{}
	orderSvc := NewOrderService(newFakeOrderRepository(), js)

	created := createOrder(t, orderSvc, "10", "100", entity.OrderSideAsk)

	auditRepo := &fakeOrderAuditRepository{}
	auditSvc := NewOrderAuditService(auditRepo, nil)

	// Replay the published lifecycle event through the consumer side.
	if len(js.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(js.published))
	}
	msg := &nats.Msg{Data: js.published[0].data}
	if err := auditSvc.handleOrderEvent(context.Background(), msg); err != nil {
		t.Fatalf("handleOrderEvent error: %v", err)
	}

	if len(auditRepo.logs) != 1 {
		t.Fatalf("expected 1 audit log, got %d", len(auditRepo.logs))
	}

	log := auditRepo.logs[0]
	if log.OrderUUID != created.UUID {
		t.Fatalf("order_uuid got=%s want=%s", log.OrderUUID, created.UUID)
	}
	if log.Action != entity.OrderActionCreated {
		t.Fatalf("action got=%s want=%s", log.Action, entity.OrderActionCreated)
	}
	if !log.Price.Equal(created.Price) || !log.QuoteAmount.Equal(created.QuoteAmount) || !log.BaseAmount.Equal(created.BaseAmount) {
		t.Fatalf("unexpected amounts: %+v", log)
	}
	if log.Side != entity.OrderSideAsk {
		t.Fatalf("side got=%s want=%s", log.Side, entity.OrderSideAsk)
	}

	event := decodeOrderEvent(t, js.published[0].data)
	wantOccurredAt := time.UnixMilli(event.OccurredAt).UTC()
	if !log.OccurredAt.Equal(wantOccurredAt) {
		t.Fatalf("occurred_at got=%s want=%s", log.OccurredAt, wantOccurredAt)
	}
	if log.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestHandleOrderEventRejectsMalformedPayload(t *testing.T) {
	auditRepo := &fakeOrderAuditRepository{}
	auditSvc := NewOrderAuditService(auditRepo, nil)

	msg := &nats.Msg{Data: []byte("{not json")}
	if err := auditSvc.handleOrderEvent(context.Background(), msg); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
	if len(auditRepo.logs) != 0 {
		t.Fatalf("expected no audit log, got %d", len(auditRepo.logs))
	}
}

func TestHandleOrderEventPropagatesRepositoryError(t *testing.T) {
	repoErr := errors.New("insert failed")
	auditRepo := &fakeOrderAuditRepository{createErr: repoErr}
	auditSvc := NewOrderAuditService(auditRepo, nil)

	js := &fakeJetStream{}
	orderSvc := NewOrderService(newFakeOrderRepository(), js)
	createOrder(t, orderSvc, "10", "100", entity.OrderSideBid)

	msg := &nats.Msg{Data: js.published[0].data}
	if err := auditSvc.handleOrderEvent(context.Background(), msg); !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestGetAuditTrail(t *testing.T) {
	auditRepo := &fakeOrderAuditRepository{
		logs: []entity.OrderAuditLog{
			{OrderUUID: "order-1", Action: entity.OrderActionCreated},
			{OrderUUID: "order-1", Action: entity.OrderActionCancelled},
			{OrderUUID: "order-2", Action: entity.OrderActionCreated},
		},
	}
	auditSvc := NewOrderAuditService(auditRepo, nil)

	trail, err := auditSvc.GetAuditTrail(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("GetAuditTrail error: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(trail))
	}
	if trail[0].Action != entity.OrderActionCreated || trail[1].Action != entity.OrderActionCancelled {
		t.Fatalf("unexpected trail order: %+v", trail)
	}
	if auditRepo.lastQueried != "order-1" {
		t.Fatalf("queried uuid got=%s want=order-1", auditRepo.lastQueried)
	}
}

func TestGetAuditTrailRequiresUUID(t *testing.T) {
	auditSvc := NewOrderAuditService(&fakeOrderAuditRepository{}, nil)

	if _, err := auditSvc.GetAuditTrail(context.Background(), "  "); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestGetAuditTrailWrapsStorageError(t *testing.T) {
	auditRepo := &fakeOrderAuditRepository{getErr: errors.New("connection refused")}
	auditSvc := NewOrderAuditService(auditRepo, nil)

	if _, err := auditSvc.GetAuditTrail(context.Background(), "order-1"); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}
