package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/krobus00/order-service/internal/entity"
	"github.com/krobus00/order-service/internal/repository"
	"github.com/krobus00/order-service/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidRequest = errors.New("invalid order request")
	ErrOrderNotFound  = errors.New("order not found")
	ErrStorage        = errors.New("order storage failure")
)

// OrderService orchestrates the order lifecycle: create, get, update, cancel.
// It owns no storage beyond a reference to the repository; all cross-field
// consistency of price, quote_amount and base_amount is enforced here and
// committed through the repository's atomic delta batch.
type OrderService struct {
	orderRepo repository.OrderRepository
	js        nats.JetStreamContext
}

// NewOrderService builds an order service. js may be nil, in which case no
// lifecycle events are published.
func NewOrderService(orderRepo repository.OrderRepository, js nats.JetStreamContext) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		js:        js,
	}
}

func (s *OrderService) Create(ctx context.Context, req entity.CreateOrderRequest) (*entity.Order, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	err := validateCreateRequest(req)
	if err != nil {
		return nil, err
	}

	baseAmount, err := util.QuoteToBase(req.Price, req.QuoteAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	side, _ := entity.ParseOrderSide(string(req.Side))
	order := &entity.Order{
		UUID:        uuid.NewString(),
		Price:       req.Price,
		QuoteAmount: req.QuoteAmount,
		BaseAmount:  baseAmount,
		Side:        side,
	}

	err = s.orderRepo.Create(ctx, order)
	if err != nil {
		logrus.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.publishOrderEvent(entity.OrderActionCreated, order)

	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderUUID string) (*entity.Order, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if strings.TrimSpace(orderUUID) == "" {
		return nil, fmt.Errorf("%w: uuid is required", ErrInvalidRequest)
	}

	order, err := s.orderRepo.GetByID(ctx, orderUUID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderUUID)
		}

		logrus.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return order, nil
}

// Cancel removes an existing order and returns its uuid. The order must
// exist; absence propagates as ErrOrderNotFound.
func (s *OrderService) Cancel(ctx context.Context, orderUUID string) (string, error) {
	order, err := s.Get(ctx, orderUUID)
	if err != nil {
		return "", err
	}

	err = s.orderRepo.Delete(ctx, orderUUID)
	if err != nil {
		logrus.Error(err)
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.publishOrderEvent(entity.OrderActionCancelled, order)

	return orderUUID, nil
}

// Update changes price and/or quote_amount of an existing order. base_amount
// is recomputed from the effective pair whenever either input changed, and
// every touched field is applied as a signed delta in one atomic batch, so a
// reader never observes a base_amount derived from a stale pair. Concurrent
// updates to the same order are not version-guarded; the last committed delta
// set wins.
func (s *OrderService) Update(ctx context.Context, req entity.UpdateOrderRequest) (*entity.Order, error) {
	err := validateUpdateRequest(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	effectivePrice := existing.Price
	if req.Price != nil {
		effectivePrice = *req.Price
	}

	effectiveQuoteAmount := existing.QuoteAmount
	if req.QuoteAmount != nil {
		effectiveQuoteAmount = *req.QuoteAmount
	}

	baseAmount, err := util.QuoteToBase(effectivePrice, effectiveQuoteAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	updated := &entity.Order{
		UUID:        existing.UUID,
		Price:       effectivePrice,
		QuoteAmount: effectiveQuoteAmount,
		BaseAmount:  baseAmount,
		Side:        existing.Side,
	}

	deltas := make(map[string]decimal.Decimal)

	priceChanged := req.Price != nil && !req.Price.Equal(existing.Price)
	if priceChanged {
		deltas[repository.OrderFieldPrice] = updated.Price.Sub(existing.Price)
	}

	quoteAmountChanged := req.QuoteAmount != nil && !req.QuoteAmount.Equal(existing.QuoteAmount)
	if quoteAmountChanged {
		deltas[repository.OrderFieldQuoteAmount] = updated.QuoteAmount.Sub(existing.QuoteAmount)
	}

	if priceChanged || quoteAmountChanged {
		deltas[repository.OrderFieldBaseAmount] = updated.BaseAmount.Sub(existing.BaseAmount)
	}

	if len(deltas) == 0 {
		return updated, nil
	}

	err = s.orderRepo.ApplyDeltas(ctx, req.UUID, deltas)
	if err != nil {
		logrus.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.publishOrderEvent(entity.OrderActionUpdated, updated)

	return updated, nil
}
