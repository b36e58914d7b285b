package order

import (
	"fmt"
	"strings"

	"github.com/krobus00/order-service/internal/entity"
)

func validateCreateRequest(req entity.CreateOrderRequest) error {
	if req.Price.Sign() <= 0 {
		return fmt.Errorf("%w: price must be a positive decimal", ErrInvalidRequest)
	}

	if req.QuoteAmount.Sign() <= 0 {
		return fmt.Errorf("%w: quote_amount must be a positive decimal", ErrInvalidRequest)
	}

	if _, ok := entity.ParseOrderSide(string(req.Side)); !ok {
		return fmt.Errorf("%w: side must be one of %s, %s", ErrInvalidRequest, entity.OrderSideBid, entity.OrderSideAsk)
	}

	return nil
}

// Update requests are validated field by field: price and quote_amount are
// optional, but each must satisfy the same positivity constraint as on create
// when present.
func validateUpdateRequest(req entity.UpdateOrderRequest) error {
	if strings.TrimSpace(req.UUID) == "" {
		return fmt.Errorf("%w: uuid is required", ErrInvalidRequest)
	}

	if req.Price != nil && req.Price.Sign() <= 0 {
		return fmt.Errorf("%w: price must be a positive decimal", ErrInvalidRequest)
	}

	if req.QuoteAmount != nil && req.QuoteAmount.Sign() <= 0 {
		return fmt.Errorf("%w: quote_amount must be a positive decimal", ErrInvalidRequest)
	}

	return nil
}
