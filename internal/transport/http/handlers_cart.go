package httptransport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"honeyshop/internal/activity"
	"honeyshop/internal/cart"
	"honeyshop/internal/platform/middleware"
	"honeyshop/pkg/httputil"
	"honeyshop/pkg/requestcontext"
)

type cartResponse struct {
	Message   string      `json:"message,omitempty"`
	CartItems []cart.Item `json:"cartItems"`
	SessionID string      `json:"sessionId,omitempty"`
}

func cartOwner(r *http.Request) cart.Owner {
	return cart.Owner{
		UserID:    requestcontext.UserID(r.Context()),
		SessionID: requestcontext.SessionID(r.Context()),
	}
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	owner := cartOwner(r)

	// An anonymous request with no session has no cart to look up.
	if owner.Anonymous() && owner.SessionID == "" {
		httputil.WriteJSON(w, http.StatusOK, cartResponse{CartItems: []cart.Item{}})
		return
	}

	h.activity.CartOperation(activity.CartView, 0, 0, owner.UserID, owner.SessionID, req)

	c, err := h.carts.View(r.Context(), owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cartResponse{CartItems: itemsOrEmpty(c.Items)})
}

type addToCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	owner := cartOwner(r)

	in, err := httputil.Decode[addToCartRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.carts.Add(r.Context(), owner, in.ProductID, in.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrProductNotFound):
			h.activity.Suspicious("ADD_TO_CART_INVALID_PRODUCT", activity.Details{
				"productId": in.ProductID,
			}, owner.SessionID, req)
		case errors.Is(err, cart.ErrInsufficientStock):
			h.activity.Suspicious("ADD_TO_CART_INSUFFICIENT_STOCK", activity.Details{
				"productId": in.ProductID,
				"quantity":  in.Quantity,
			}, owner.SessionID, req)
		default:
			h.activity.Suspicious("ADD_TO_CART_ERROR", activity.Details{
				"error": err.Error(),
			}, owner.SessionID, req)
		}
		httputil.WriteError(w, err)
		return
	}

	// A guest's first add mints the session; echo it so the client can
	// keep the cart.
	if c.SessionID != "" {
		w.Header().Set(middleware.SessionHeader, c.SessionID)
	}

	h.activity.CartOperation(activity.CartAdd, in.ProductID, in.Quantity, owner.UserID, c.SessionID, req)
	httputil.WriteJSON(w, http.StatusCreated, cartResponse{
		Message:   "Item added to cart",
		CartItems: itemsOrEmpty(c.Items),
		SessionID: c.SessionID,
	})
}

func (h *Handler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	owner := cartOwner(r)

	productID, ok := h.cartProductID(w, r, "REMOVE_FROM_CART_INVALID_PRODUCT")
	if !ok {
		return
	}

	h.activity.CartOperation(activity.CartRemove, productID, 0, owner.UserID, owner.SessionID, req)

	c, err := h.carts.Remove(r.Context(), owner, productID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			h.activity.Suspicious("REMOVE_FROM_CART_NOT_FOUND", activity.Details{
				"productId": productID,
			}, owner.SessionID, req)
		} else {
			h.activity.Suspicious("REMOVE_FROM_CART_ERROR", activity.Details{
				"error":     err.Error(),
				"productId": productID,
			}, owner.SessionID, req)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cartResponse{
		Message:   "Item removed from cart",
		CartItems: itemsOrEmpty(c.Items),
	})
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	owner := cartOwner(r)

	productID, ok := h.cartProductID(w, r, "UPDATE_CART_INVALID_PRODUCT")
	if !ok {
		return
	}

	in, err := httputil.Decode[updateCartRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.activity.CartOperation(activity.CartUpdate, productID, in.Quantity, owner.UserID, owner.SessionID, req)

	c, err := h.carts.UpdateQuantity(r.Context(), owner, productID, in.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			h.activity.Suspicious("UPDATE_CART_INVALID_QUANTITY", activity.Details{
				"productId": productID,
				"quantity":  in.Quantity,
			}, owner.SessionID, req)
		case errors.Is(err, cart.ErrNotFound):
			h.activity.Suspicious("UPDATE_CART_NOT_FOUND", activity.Details{
				"productId": productID,
				"quantity":  in.Quantity,
			}, owner.SessionID, req)
		case errors.Is(err, cart.ErrProductNotFound):
			h.activity.Suspicious("UPDATE_CART_INVALID_PRODUCT", activity.Details{
				"productId": productID,
				"quantity":  in.Quantity,
			}, owner.SessionID, req)
		case errors.Is(err, cart.ErrInsufficientStock):
			h.activity.Suspicious("UPDATE_CART_INSUFFICIENT_STOCK", activity.Details{
				"productId": productID,
				"quantity":  in.Quantity,
			}, owner.SessionID, req)
		case errors.Is(err, cart.ErrItemNotFound):
			h.activity.Suspicious("UPDATE_CART_ITEM_NOT_FOUND", activity.Details{
				"productId": productID,
				"quantity":  in.Quantity,
			}, owner.SessionID, req)
		default:
			h.activity.Suspicious("UPDATE_CART_ERROR", activity.Details{
				"error":     err.Error(),
				"productId": productID,
			}, owner.SessionID, req)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cartResponse{
		Message:   "Cart updated",
		CartItems: itemsOrEmpty(c.Items),
	})
}

func (h *Handler) cartProductID(w http.ResponseWriter, r *http.Request, tag string) (int64, bool) {
	raw := chi.URLParam(r, "productId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.activity.Suspicious(tag, activity.Details{
			"productId": raw,
		}, requestcontext.SessionID(r.Context()), activity.FromRequest(r))
		httputil.WriteMessage(w, http.StatusNotFound, "Product not found")
		return 0, false
	}
	return id, true
}

func itemsOrEmpty(items []cart.Item) []cart.Item {
	if items == nil {
		return []cart.Item{}
	}
	return items
}
