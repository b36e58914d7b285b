package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/guregu/null/v6"
	"github.com/krobus00/order-service/internal/entity"
	"github.com/krobus00/order-service/internal/service/order"
	"github.com/shopspring/decimal"
)

type OrderRequest struct {
	Price       string `json:"price"`
	QuoteAmount string `json:"quote_amount"`
	Side        string `json:"side"`
}

type UpdateOrderRequest struct {
	UUID        string      `json:"uuid"`
	Price       null.String `json:"price"`
	QuoteAmount null.String `json:"quote_amount"`
}

type OrderResponse struct {
	UUID        string `json:"uuid"`
	Price       string `json:"price"`
	QuoteAmount string `json:"quote_amount"`
	BaseAmount  string `json:"base_amount"`
	Side        string `json:"side"`
}

type CancelOrderResponse struct {
	UUID string `json:"uuid"`
}

type OrderAuditResponse struct {
	Action      string `json:"action"`
	Price       string `json:"price"`
	QuoteAmount string `json:"quote_amount"`
	BaseAmount  string `json:"base_amount"`
	Side        string `json:"side"`
	OccurredAt  int64  `json:"occurred_at"`
}

type Handler struct {
	orderService      *order.OrderService
	orderAuditService *order.OrderAuditService
}

func NewOrderHTTPHandler(orderService *order.OrderService, orderAuditService *order.OrderAuditService) *Handler {
	return &Handler{
		orderService:      orderService,
		orderAuditService: orderAuditService,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.CreateOrder)
	mux.HandleFunc("GET /orders/{id}", h.GetOrder)
	mux.HandleFunc("PUT /orders", h.UpdateOrder)
	mux.HandleFunc("DELETE /orders/{id}", h.CancelOrder)
	mux.HandleFunc("GET /orders/{id}/audit", h.GetOrderAuditTrail)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	if strings.TrimSpace(req.Price) == "" || strings.TrimSpace(req.QuoteAmount) == "" || strings.TrimSpace(req.Side) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing required fields"})
		return
	}

	createReq, err := mapHTTPRequestToCreateRequest(&req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	created, err := h.orderService.Create(r.Context(), createReq)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapOrderToHTTPResponse(created))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderUUID := strings.TrimSpace(r.PathValue("id"))
	if orderUUID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "uuid is required"})
		return
	}

	found, err := h.orderService.Get(r.Context(), orderUUID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToHTTPResponse(found))
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	updateReq, err := mapHTTPRequestToUpdateRequest(&req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	updated, err := h.orderService.Update(r.Context(), updateReq)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToHTTPResponse(updated))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderUUID := strings.TrimSpace(r.PathValue("id"))
	if orderUUID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "uuid is required"})
		return
	}

	cancelledUUID, err := h.orderService.Cancel(r.Context(), orderUUID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CancelOrderResponse{UUID: cancelledUUID})
}

func (h *Handler) GetOrderAuditTrail(w http.ResponseWriter, r *http.Request) {
	orderUUID := strings.TrimSpace(r.PathValue("id"))
	if orderUUID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "uuid is required"})
		return
	}

	auditLogs, err := h.orderAuditService.GetAuditTrail(r.Context(), orderUUID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]OrderAuditResponse, 0, len(auditLogs))
	for _, auditLog := range auditLogs {
		resp = append(resp, OrderAuditResponse{
			Action:      string(auditLog.Action),
			Price:       auditLog.Price.String(),
			QuoteAmount: auditLog.QuoteAmount.String(),
			BaseAmount:  auditLog.BaseAmount.String(),
			Side:        string(auditLog.Side),
			OccurredAt:  auditLog.OccurredAt.UnixMilli(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func mapHTTPRequestToCreateRequest(req *OrderRequest) (entity.CreateOrderRequest, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return entity.CreateOrderRequest{}, errors.New("invalid price")
	}

	quoteAmount, err := decimal.NewFromString(req.QuoteAmount)
	if err != nil {
		return entity.CreateOrderRequest{}, errors.New("invalid quote_amount")
	}

	return entity.CreateOrderRequest{
		Price:       price,
		QuoteAmount: quoteAmount,
		Side:        entity.OrderSide(strings.ToUpper(strings.TrimSpace(req.Side))),
	}, nil
}

func mapHTTPRequestToUpdateRequest(req *UpdateOrderRequest) (entity.UpdateOrderRequest, error) {
	updateReq := entity.UpdateOrderRequest{
		UUID: strings.TrimSpace(req.UUID),
	}

	if req.Price.Valid {
		price, err := decimal.NewFromString(req.Price.String)
		if err != nil {
			return entity.UpdateOrderRequest{}, errors.New("invalid price")
		}
		updateReq.Price = &price
	}

	if req.QuoteAmount.Valid {
		quoteAmount, err := decimal.NewFromString(req.QuoteAmount.String)
		if err != nil {
			return entity.UpdateOrderRequest{}, errors.New("invalid quote_amount")
		}
		updateReq.QuoteAmount = &quoteAmount
	}

	return updateReq, nil
}

func mapOrderToHTTPResponse(o *entity.Order) OrderResponse {
	return OrderResponse{
		UUID:        o.UUID,
		Price:       o.Price.String(),
		QuoteAmount: o.QuoteAmount.String(),
		BaseAmount:  o.BaseAmount.String(),
		Side:        string(o.Side),
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.Is(err, order.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
