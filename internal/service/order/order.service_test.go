package order

import (
	"context"
	"errors"
	"testing"

	"github.com/krobus00/order-service/internal/entity"
	"github.com/krobus00/order-service/internal/repository"
	"github.com/shopspring/decimal"
)

type fakeOrderRepository struct {
	records        map[string]entity.Order
	createErr      error
	applyDeltasErr error
	deltaBatches   []map[string]decimal.Decimal
}

func newFakeOrderRepository() *fakeOrderRepository {
	return &fakeOrderRepository{records: make(map[string]entity.Order)}
}

func (f *fakeOrderRepository) GetByID(_ context.Context, uuid string) (*entity.Order, error) {
	record, ok := f.records[uuid]
	if !ok {
		return nil, repository.ErrOrderRecordNotFound
	}

	return &record, nil
}

func (f *fakeOrderRepository) Create(_ context.Context, order *entity.Order) error {
	if f.createErr != nil {
		return f.createErr
	}

	f.records[order.UUID] = *order
	return nil
}

func (f *fakeOrderRepository) Delete(_ context.Context, uuid string) error {
	delete(f.records, uuid)
	return nil
}

func (f *fakeOrderRepository) ApplyDeltas(_ context.Context, uuid string, deltas map[string]decimal.Decimal) error {
	if f.applyDeltasErr != nil {
		return f.applyDeltasErr
	}

	f.deltaBatches = append(f.deltaBatches, deltas)

	record := f.records[uuid]
	for field, delta := range deltas {
		switch field {
		case repository.OrderFieldPrice:
			record.Price = record.Price.Add(delta)
		case repository.OrderFieldQuoteAmount:
			record.QuoteAmount = record.QuoteAmount.Add(delta)
		case repository.OrderFieldBaseAmount:
			record.BaseAmount = record.BaseAmount.Add(delta)
		}
	}
	f.records[uuid] = record

	return nil
}

func mustDecimal(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", raw, err)
	}
	return value
}

func createOrder(t *testing.T, svc *OrderService, price, quoteAmount string, side entity.OrderSide) *entity.Order {
	t.Helper()
	created, err := svc.Create(context.Background(), entity.CreateOrderRequest{
		Price:       mustDecimal(t, price),
		QuoteAmount: mustDecimal(t, quoteAmount),
		Side:        side,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return created
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepository(), nil)

	created := createOrder(t, svc, "100", "50", entity.OrderSideBid)
	if created.UUID == "" {
		t.Fatalf("expected generated uuid")
	}
	if !created.BaseAmount.Equal(mustDecimal(t, "0.5")) {
		t.Fatalf("base_amount got=%s want=0.5", created.BaseAmount)
	}

	found, err := svc.Get(context.Background(), created.UUID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !found.Price.Equal(created.Price) || !found.QuoteAmount.Equal(created.QuoteAmount) || !found.BaseAmount.Equal(created.BaseAmount) {
		t.Fatalf("round trip mismatch: created=%+v found=%+v", created, found)
	}
	if found.Side != entity.OrderSideBid {
		t.Fatalf("side got=%s want=%s", found.Side, entity.OrderSideBid)
	}
}

func TestCreateCanonicalizesSide(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepository(), nil)

	created := createOrder(t, svc, "1", "1", entity.OrderSide("bid"))
	if created.Side != entity.OrderSideBid {
		t.Fatalf("side got=%s want=%s", created.Side, entity.OrderSideBid)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepository(), nil)

	cases := []struct {
		name string
		req  entity.CreateOrderRequest
	}{
		{
			name: "zero price",
			req: entity.CreateOrderRequest{
				Price:       decimal.Zero,
				QuoteAmount: decimal.NewFromInt(10),
				Side:        entity.OrderSideBid,
			},
		},
		{
			name: "negative price",
			req: entity.CreateOrderRequest{
				Price:       decimal.NewFromInt(-5),
				QuoteAmount: decimal.NewFromInt(10),
				Side:        entity.OrderSideBid,
			},
		},
		{
			name: "zero quote amount",
			req: entity.CreateOrderRequest{
				Price:       decimal.NewFromInt(5),
				QuoteAmount: decimal.Zero,
				Side:        entity.OrderSideAsk,
			},
		},
		{
			name: "unknown side",
			req: entity.CreateOrderRequest{
				Price:       decimal.NewFromInt(5),
				QuoteAmount: decimal.NewFromInt(10),
				Side:        entity.OrderSide("long"),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestCreateStorageFailure(t *testing.T) {
	repo := newFakeOrderRepository()
	repo.createErr = errors.New("connection refused")
	svc := NewOrderService(repo, nil)

	_, err := svc.Create(context.Background(), entity.CreateOrderRequest{
		Price:       decimal.NewFromInt(1),
		QuoteAmount: decimal.NewFromInt(1),
		Side:        entity.OrderSideBid,
	})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestGetEmptyUUID(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepository(), nil)

	_, err := svc.Get(context.Background(), "  ")
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNotFoundPropagation(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepository(), nil)
	missing := "11111111-2222-3333-4444-555555555555"

	if _, err := svc.Get(context.Background(), missing); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("Get: expected ErrOrderNotFound, got %v", err)
	}

	price := decimal.NewFromInt(2)
	if _, err := svc.Update(context.Background(), entity.UpdateOrderRequest{UUID: missing, Price: &price}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("Update: expected ErrOrderNotFound, got %v", err)
	}

	if _, err := svc.Cancel(context.Background(), missing); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("Cancel: expected ErrOrderNotFound, got %v", err)
	}
}

func TestUpdateRecomputesBaseAmount(t *testing.T) {
	repo := newFakeOrderRepository()
	svc := NewOrderService(repo, nil)

	created := createOrder(t, svc, "10", "100", entity.OrderSideBid)
	if !created.BaseAmount.Equal(mustDecimal(t, "10")) {
		t.Fatalf("base_amount got=%s want=10", created.BaseAmount)
	}

	newPrice := mustDecimal(t, "20")
	updated, err := svc.Update(context.Background(), entity.UpdateOrderRequest{
		UUID:  created.UUID,
		Price: &newPrice,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if !updated.Price.Equal(newPrice) {
		t.Fatalf("price got=%s want=20", updated.Price)
	}
	if !updated.QuoteAmount.Equal(mustDecimal(t, "100")) {
		t.Fatalf("quote_amount changed: got=%s want=100", updated.QuoteAmount)
	}
	if !updated.BaseAmount.Equal(mustDecimal(t, "5")) {
		t.Fatalf("base_amount got=%s want=5", updated.BaseAmount)
	}

	// Only price and base_amount were touched, as one batch.
	if len(repo.deltaBatches) != 1 {
		t.Fatalf("expected one delta batch, got %d", len(repo.deltaBatches))
	}
	batch := repo.deltaBatches[0]
	if len(batch) != 2 {
		t.Fatalf("expected 2 deltas, got %v", batch)
	}
	if !batch[repository.OrderFieldPrice].Equal(mustDecimal(t, "10")) {
		t.Fatalf("price delta got=%s want=10", batch[repository.OrderFieldPrice])
	}
	if !batch[repository.OrderFieldBaseAmount].Equal(mustDecimal(t, "-5")) {
		t.Fatalf("base_amount delta got=%s want=-5", batch[repository.OrderFieldBaseAmount])
	}

	stored, err := svc.Get(context.Background(), created.UUID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !stored.BaseAmount.Equal(mustDecimal(t, "5")) {
		t.Fatalf("stored base_amount got=%s want=5", stored.BaseAmount)
	}
}

func TestUpdateQuoteAmountOnly(t *testing.T) {
	repo := newFakeOrderRepository()
	svc := NewOrderService(repo, nil)

	created := createOrder(t, svc, "10", "100", entity.OrderSideAsk)

	newQuoteAmount := mustDecimal(t, "50")
	updated, err := svc.Update(context.Background(), entity.UpdateOrderRequest{
		UUID:        created.UUID,
		QuoteAmount: &newQuoteAmount,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if !updated.Price.Equal(mustDecimal(t, "10")) {
		t.Fatalf("price changed: got=%s want=10", updated.Price)
	}
	if !updated.BaseAmount.Equal(mustDecimal(t, "5")) {
		t.Fatalf("base_amount got=%s want=5", updated.BaseAmount)
	}

	batch := repo.deltaBatches[len(repo.deltaBatches)-1]
	if _, ok := batch[repository.OrderFieldPrice]; ok {
		t.Fatalf("price delta present for quote-only update: %v", batch)
	}
}

func TestUpdateUnchangedValuesSkipStorage(t *testing.T) {
	repo := newFakeOrderRepository()
	svc := NewOrderService(repo, nil)

	created := createOrder(t, svc, "10", "100", entity.OrderSideBid)

	samePrice := mustDecimal(t, "10")
	updated, err := svc.Update(context.Background(), entity.UpdateOrderRequest{
		UUID:  created.UUID,
		Price: &samePrice,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !updated.BaseAmount.Equal(created.BaseAmount) {
		t.Fatalf("base_amount got=%s want=%s", updated.BaseAmount, created.BaseAmount)
	}
	if len(repo.deltaBatches) != 0 {
		t.Fatalf("expected no delta batches for unchanged values, got %d", len(repo.deltaBatches))
	}
}

func TestUpdateValidation(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepository(), nil)

	if _, err := svc.Update(context.Background(), entity.UpdateOrderRequest{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("missing uuid: expected ErrInvalidRequest, got %v", err)
	}

	zero := decimal.Zero
	if _, err := svc.Update(context.Background(), entity.UpdateOrderRequest{UUID: "abc", Price: &zero}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("zero price: expected ErrInvalidRequest, got %v", err)
	}

	negative := decimal.NewFromInt(-3)
	if _, err := svc.Update(context.Background(), entity.UpdateOrderRequest{UUID: "abc", QuoteAmount: &negative}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("negative quote_amount: expected ErrInvalidRequest, got %v", err)
	}
}

func TestUpdateAtomicFailureLeavesRecordUntouched(t *testing.T) {
	repo := newFakeOrderRepository()
	svc := NewOrderService(repo, nil)

	created := createOrder(t, svc, "10", "100", entity.OrderSideBid)

	repo.applyDeltasErr = errors.New("transaction aborted")

	newPrice := mustDecimal(t, "20")
	newQuoteAmount := mustDecimal(t, "200")
	_, err := svc.Update(context.Background(), entity.UpdateOrderRequest{
		UUID:        created.UUID,
		Price:       &newPrice,
		QuoteAmount: &newQuoteAmount,
	})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}

	stored, getErr := svc.Get(context.Background(), created.UUID)
	if getErr != nil {
		t.Fatalf("Get error: %v", getErr)
	}
	if !stored.Price.Equal(mustDecimal(t, "10")) || !stored.QuoteAmount.Equal(mustDecimal(t, "100")) || !stored.BaseAmount.Equal(mustDecimal(t, "10")) {
		t.Fatalf("record mutated after failed batch: %+v", stored)
	}
}

func TestCancelRemovesRecord(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepository(), nil)

	created := createOrder(t, svc, "100", "50", entity.OrderSideBid)

	cancelledUUID, err := svc.Cancel(context.Background(), created.UUID)
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if cancelledUUID != created.UUID {
		t.Fatalf("cancelled uuid got=%s want=%s", cancelledUUID, created.UUID)
	}

	if _, err := svc.Get(context.Background(), created.UUID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound after cancel, got %v", err)
	}
}
