package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/krobus00/order-service/internal/entity"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Stored hash field names. One redis hash per order, keyed by the order uuid,
// every field kept as a string.
const (
	OrderFieldUUID        = "uuid"
	OrderFieldPrice       = "price"
	OrderFieldQuoteAmount = "quote_amount"
	OrderFieldBaseAmount  = "base_amount"
	OrderFieldSide        = "side"
)

var (
	ErrOrderRecordNotFound = errors.New("order record not found")
	ErrOrderRecordCorrupt  = errors.New("order record corrupt")
)

// OrderRepository is the key-value store adapter for order records. It holds
// no business logic; its single concurrency guarantee is that ApplyDeltas
// commits the whole batch as one transaction with respect to other writers of
// the same key.
type OrderRepository interface {
	GetByID(ctx context.Context, uuid string) (*entity.Order, error)
	Create(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, uuid string) error
	ApplyDeltas(ctx context.Context, uuid string, deltas map[string]decimal.Decimal) error
}

type RedisOrderRepository struct {
	client *redis.Client
}

func NewRedisOrderRepository(client *redis.Client) *RedisOrderRepository {
	return &RedisOrderRepository{client: client}
}

func (r *RedisOrderRepository) GetByID(ctx context.Context, uuid string) (*entity.Order, error) {
	raw, err := r.client.HGetAll(ctx, uuid).Result()
	if err != nil {
		return nil, err
	}

	return parseOrderRecord(raw)
}

// parseOrderRecord reconstructs a typed order from the raw hash fields.
// HGETALL returns an empty map for a missing key; a record missing any
// required field is a partial write and is reported as not found rather than
// trusted.
func parseOrderRecord(raw map[string]string) (*entity.Order, error) {
	if len(raw) == 0 || raw[OrderFieldUUID] == "" {
		return nil, ErrOrderRecordNotFound
	}

	for _, field := range []string{OrderFieldPrice, OrderFieldQuoteAmount, OrderFieldBaseAmount, OrderFieldSide} {
		if raw[field] == "" {
			return nil, ErrOrderRecordNotFound
		}
	}

	price, err := decimal.NewFromString(raw[OrderFieldPrice])
	if err != nil {
		return nil, fmt.Errorf("%w: price %q", ErrOrderRecordCorrupt, raw[OrderFieldPrice])
	}

	quoteAmount, err := decimal.NewFromString(raw[OrderFieldQuoteAmount])
	if err != nil {
		return nil, fmt.Errorf("%w: quote_amount %q", ErrOrderRecordCorrupt, raw[OrderFieldQuoteAmount])
	}

	baseAmount, err := decimal.NewFromString(raw[OrderFieldBaseAmount])
	if err != nil {
		return nil, fmt.Errorf("%w: base_amount %q", ErrOrderRecordCorrupt, raw[OrderFieldBaseAmount])
	}

	side, ok := entity.ParseOrderSide(raw[OrderFieldSide])
	if !ok {
		return nil, fmt.Errorf("%w: side %q", ErrOrderRecordCorrupt, raw[OrderFieldSide])
	}

	return &entity.Order{
		UUID:        raw[OrderFieldUUID],
		Price:       price,
		QuoteAmount: quoteAmount,
		BaseAmount:  baseAmount,
		Side:        side,
	}, nil
}

func (r *RedisOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.client.HSet(ctx, order.UUID, map[string]any{
		OrderFieldUUID:        order.UUID,
		OrderFieldPrice:       order.Price.String(),
		OrderFieldQuoteAmount: order.QuoteAmount.String(),
		OrderFieldBaseAmount:  order.BaseAmount.String(),
		OrderFieldSide:        string(order.Side),
	}).Err()
}

func (r *RedisOrderRepository) Delete(ctx context.Context, uuid string) error {
	return r.client.Del(ctx, uuid).Err()
}

// ApplyDeltas increments the named numeric fields by the given signed decimal
// deltas inside a single MULTI/EXEC, so either every delta lands or none
// does. Deltas are sent as decimal strings; HINCRBYFLOAT accepts them without
// going through a float64.
func (r *RedisOrderRepository) ApplyDeltas(ctx context.Context, uuid string, deltas map[string]decimal.Decimal) error {
	if len(deltas) == 0 {
		return nil
	}

	fields := make([]string, 0, len(deltas))
	for field := range deltas {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, field := range fields {
			pipe.Do(ctx, "hincrbyfloat", uuid, field, deltas[field].String())
		}
		return nil
	})

	return err
}
