package transport

import (
	"net/http"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/order"

	"github.com/google/uuid"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice *float64  `json:"unit_price,omitempty"`
}

type createOrderRequest struct {
	Items                []createOrderItemRequest `json:"items"`
	DeliveryMethod       order.DeliveryMethod     `json:"delivery_method"`
	PaymentMethod        order.PaymentMethod      `json:"payment_method"`
	ReceiptType          order.ReceiptType        `json:"receipt_type"`
	DocType              string                   `json:"doc_type"`
	DocNumber            string                   `json:"doc_number"`
	TaxID                *string                  `json:"tax_id,omitempty"`
	BusinessName         *string                  `json:"business_name,omitempty"`
	ExpectedDeliveryDate *time.Time               `json:"expected_delivery_date,omitempty"`
	Discount             float64                  `json:"discount"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := auth.BuyerIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	var req createOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Non-admin callers cannot override the catalog price.
	if !auth.IsAdmin(r.Context()) {
		for i := range req.Items {
			req.Items[i].UnitPrice = nil
		}
	}

	in := order.CreateOrderInput{
		DeliveryMethod:       req.DeliveryMethod,
		PaymentMethod:        req.PaymentMethod,
		ReceiptType:          req.ReceiptType,
		DocType:              req.DocType,
		DocNumber:            req.DocNumber,
		TaxID:                req.TaxID,
		BusinessName:         req.BusinessName,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Discount:             req.Discount,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, order.CreateOrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	handle, err := h.orders.CreateOrder(r.Context(), buyerID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, handle)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid order id"})
		return
	}

	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	buyerID, _ := auth.BuyerIDFromContext(r.Context())
	if o.BuyerID != buyerID && !auth.IsAdmin(r.Context()) {
		respondError(w, r, order.ErrUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := auth.BuyerIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	var (
		orders []*order.Order
		err    error
	)
	if auth.IsAdmin(r.Context()) && r.URL.Query().Get("all") == "true" {
		orders, err = h.orders.GetAllOrders(r.Context())
	} else {
		orders, err = h.orders.GetOrdersForBuyer(r.Context(), buyerID)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid order id"})
		return
	}

	buyerID, _ := auth.BuyerIDFromContext(r.Context())
	if err := h.orders.CancelOrder(r.Context(), id, buyerID, auth.IsAdmin(r.Context())); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": string(order.StatusCancelled)})
}

type transitionRequest struct {
	Status        order.OrderStatus `json:"status"`
	TransactionID string            `json:"transaction_id,omitempty"`
}

// Transition is the admin fulfilment endpoint: PAID orders move through
// IN_PROGRESS, SHIPPED, DELIVERED here.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(r.Context()) {
		respondJSON(w, http.StatusForbidden, errorBody{Error: "admin only"})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid order id"})
		return
	}

	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.orders.TransitionStatus(r.Context(), id, req.Status, req.TransactionID); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

type confirmPaymentRequest struct {
	OrderID         uuid.UUID `json:"order_id"`
	ExternalOrderID string    `json:"external_order_id"`
}

func (h *OrderHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := auth.BuyerIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	var req confirmPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ExternalOrderID == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "external_order_id is required"})
		return
	}

	o, err := h.orders.GetOrder(r.Context(), req.OrderID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if o.BuyerID != buyerID && !auth.IsAdmin(r.Context()) {
		respondError(w, r, order.ErrUnauthorized)
		return
	}

	res, err := h.orders.ConfirmPayment(r.Context(), req.OrderID, req.ExternalOrderID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}
