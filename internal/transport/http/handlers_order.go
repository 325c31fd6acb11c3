package httptransport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"honeyshop/internal/activity"
	"honeyshop/internal/order"
	"honeyshop/pkg/httputil"
	"honeyshop/pkg/requestcontext"
)

type shippingAddressPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type paymentResultPayload struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
}

type orderResponse struct {
	ID              int64                  `json:"id"`
	UserID          int64                  `json:"userId"`
	Items           []order.Item           `json:"items"`
	ShippingAddress shippingAddressPayload `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentResult   paymentResultPayload   `json:"paymentResult"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
	IsPaid          bool                   `json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt"`
	IsDelivered     bool                   `json:"isDelivered"`
	DeliveredAt     *time.Time             `json:"deliveredAt"`
	CreatedAt       time.Time              `json:"createdAt"`
}

type createOrderRequest struct {
	OrderItems      []order.Item           `json:"orderItems"`
	ShippingAddress shippingAddressPayload `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())
	userID := requestcontext.UserID(r.Context())

	in, err := httputil.Decode[createOrderRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	o, err := h.orders.Create(r.Context(), userID, order.CreateInput{
		Items: in.OrderItems,
		ShippingAddress: order.ShippingAddress{
			Street:     in.ShippingAddress.Street,
			City:       in.ShippingAddress.City,
			State:      in.ShippingAddress.State,
			PostalCode: in.ShippingAddress.PostalCode,
			Country:    in.ShippingAddress.Country,
		},
		PaymentMethod: in.PaymentMethod,
		ItemsPrice:    in.ItemsPrice,
		TaxPrice:      in.TaxPrice,
		ShippingPrice: in.ShippingPrice,
		TotalPrice:    in.TotalPrice,
	})
	if err != nil {
		if errors.Is(err, order.ErrEmptyOrder) {
			h.activity.Suspicious("CREATE_ORDER_EMPTY", activity.Details{
				"userId": userID,
			}, sid, req)
		} else {
			h.activity.Suspicious("CREATE_ORDER_ERROR", activity.Details{
				"error":  err.Error(),
				"userId": userID,
			}, sid, req)
		}
		httputil.WriteError(w, err)
		return
	}

	h.activity.OrderCreated(o.ID, userID, o.TotalPrice, sid, req)
	httputil.WriteJSON(w, http.StatusCreated, orderView(o))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())
	userID := requestcontext.UserID(r.Context())

	id, ok := h.orderID(w, r, "GET_ORDER_NOT_FOUND")
	if !ok {
		return
	}

	u := authedUser(r.Context())
	o, err := h.orders.Get(r.Context(), id, userID, u != nil && u.IsAdmin())
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotAuthorized):
			h.activity.Suspicious("GET_ORDER_UNAUTHORIZED", activity.Details{
				"orderId": id,
				"userId":  userID,
			}, sid, req)
		case errors.Is(err, order.ErrNotFound):
			h.activity.Suspicious("GET_ORDER_NOT_FOUND", activity.Details{
				"orderId": id,
			}, sid, req)
		default:
			h.activity.Suspicious("GET_ORDER_ERROR", activity.Details{
				"error":   err.Error(),
				"orderId": id,
			}, sid, req)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orderView(o))
}

func (h *Handler) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())
	userID := requestcontext.UserID(r.Context())

	id, ok := h.orderID(w, r, "UPDATE_ORDER_PAID_NOT_FOUND")
	if !ok {
		return
	}

	in, err := httputil.Decode[paymentResultPayload](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	u := authedUser(r.Context())
	o, err := h.orders.Pay(r.Context(), id, userID, u != nil && u.IsAdmin(), order.PaymentResult{
		ID:         in.ID,
		Status:     in.Status,
		UpdateTime: in.UpdateTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotAuthorized):
			h.activity.Suspicious("UPDATE_ORDER_PAID_UNAUTHORIZED", activity.Details{
				"orderId": id,
				"userId":  userID,
			}, sid, req)
		case errors.Is(err, order.ErrNotFound):
			h.activity.Suspicious("UPDATE_ORDER_PAID_NOT_FOUND", activity.Details{
				"orderId": id,
			}, sid, req)
		default:
			h.activity.Suspicious("UPDATE_ORDER_PAID_ERROR", activity.Details{
				"error":   err.Error(),
				"orderId": id,
			}, sid, req)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orderView(o))
}

func (h *Handler) handleDeliverOrder(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())

	id, ok := h.orderID(w, r, "UPDATE_ORDER_DELIVERED_NOT_FOUND")
	if !ok {
		return
	}

	o, err := h.orders.Deliver(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			h.activity.Suspicious("UPDATE_ORDER_DELIVERED_NOT_FOUND", activity.Details{
				"orderId": id,
			}, sid, req)
		} else {
			h.activity.Suspicious("UPDATE_ORDER_DELIVERED_ERROR", activity.Details{
				"error":   err.Error(),
				"orderId": id,
			}, sid, req)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orderView(o))
}

func (h *Handler) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())
	userID := requestcontext.UserID(r.Context())

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		h.activity.Suspicious("GET_MY_ORDERS_ERROR", activity.Details{
			"error":  err.Error(),
			"userId": userID,
		}, sid, req)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orderViews(orders))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())

	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		h.activity.Suspicious("GET_ORDERS_ERROR", activity.Details{
			"error": err.Error(),
		}, sid, req)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orderViews(orders))
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request, tag string) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.activity.Suspicious(tag, activity.Details{
			"orderId": raw,
		}, requestcontext.SessionID(r.Context()), activity.FromRequest(r))
		httputil.WriteMessage(w, http.StatusNotFound, "Order not found")
		return 0, false
	}
	return id, true
}

func orderView(o *order.Order) orderResponse {
	items := o.Items
	if items == nil {
		items = []order.Item{}
	}
	return orderResponse{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  items,
		ShippingAddress: shippingAddressPayload{
			Street:     o.ShippingAddress.Street,
			City:       o.ShippingAddress.City,
			State:      o.ShippingAddress.State,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		PaymentMethod: o.PaymentMethod,
		PaymentResult: paymentResultPayload{
			ID:         o.PaymentResult.ID,
			Status:     o.PaymentResult.Status,
			UpdateTime: o.PaymentResult.UpdateTime,
		},
		ItemsPrice:    o.ItemsPrice,
		TaxPrice:      o.TaxPrice,
		ShippingPrice: o.ShippingPrice,
		TotalPrice:    o.TotalPrice,
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		IsDelivered:   o.IsDelivered,
		DeliveredAt:   o.DeliveredAt,
		CreatedAt:     o.CreatedAt,
	}
}

func orderViews(orders []order.Order) []orderResponse {
	views := make([]orderResponse, 0, len(orders))
	for i := range orders {
		views = append(views, orderView(&orders[i]))
	}
	return views
}
