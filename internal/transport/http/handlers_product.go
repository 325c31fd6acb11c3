package httptransport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"honeyshop/internal/activity"
	"honeyshop/internal/product"
	"honeyshop/pkg/httputil"
	"honeyshop/pkg/requestcontext"
)

type productResponse struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	Category       string            `json:"category"`
	Brand          string            `json:"brand"`
	Stock          int               `json:"stock"`
	Images         []string          `json:"images"`
	Specifications map[string]string `json:"specifications"`
	RatingAverage  float64           `json:"ratingAverage"`
	RatingCount    int               `json:"ratingCount"`
	IsFeatured     bool              `json:"isFeatured"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type productPageResponse struct {
	Products []productResponse `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	Total    int               `json:"total"`
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())

	keyword := r.URL.Query().Get("keyword")
	page, _ := strconv.Atoi(r.URL.Query().Get("pageNumber"))

	result, err := h.products.List(r.Context(), keyword, page)
	if err != nil {
		h.activity.Suspicious("GET_PRODUCTS_ERROR", activity.Details{
			"error": err.Error(),
		}, sid, req)
		httputil.WriteError(w, err)
		return
	}

	h.activity.APIAccess("/api/products", http.MethodGet, requestcontext.UserID(r.Context()), sid, req)

	views := make([]productResponse, 0, len(result.Products))
	for i := range result.Products {
		views = append(views, productView(&result.Products[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, productPageResponse{
		Products: views,
		Page:     result.Page,
		Pages:    result.Pages,
		Total:    result.Total,
	})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())

	id, ok := h.productID(w, r, "GET_PRODUCT_NOT_FOUND")
	if !ok {
		return
	}

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			h.activity.Suspicious("GET_PRODUCT_NOT_FOUND", activity.Details{
				"productId": id,
			}, sid, req)
		} else {
			h.activity.Suspicious("GET_PRODUCT_ERROR", activity.Details{
				"error":     err.Error(),
				"productId": id,
			}, sid, req)
		}
		httputil.WriteError(w, err)
		return
	}

	h.activity.ProductView(p.ID, requestcontext.UserID(r.Context()), sid, req)
	httputil.WriteJSON(w, http.StatusOK, productView(p))
}

type productPayload struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	Category       string            `json:"category"`
	Brand          string            `json:"brand"`
	Stock          *int              `json:"stock"`
	Images         []string          `json:"images"`
	Specifications map[string]string `json:"specifications"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())

	in, err := httputil.Decode[productPayload](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p := &product.Product{
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		Category:       in.Category,
		Brand:          in.Brand,
		Images:         in.Images,
		Specifications: in.Specifications,
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}

	created, err := h.products.Create(r.Context(), p)
	if err != nil {
		h.activity.Suspicious("CREATE_PRODUCT_ERROR", activity.Details{
			"error": err.Error(),
		}, sid, req)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, productView(created))
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())

	id, ok := h.productID(w, r, "UPDATE_PRODUCT_NOT_FOUND")
	if !ok {
		return
	}

	in, err := httputil.Decode[productPayload](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.products.Update(r.Context(), id, product.UpdateInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Brand:       in.Brand,
		Stock:       in.Stock,
		Images:      in.Images,
	})
	if err != nil {
		if !errors.Is(err, product.ErrNotFound) {
			h.activity.Suspicious("UPDATE_PRODUCT_ERROR", activity.Details{
				"error":     err.Error(),
				"productId": id,
			}, sid, req)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productView(p))
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())

	id, ok := h.productID(w, r, "DELETE_PRODUCT_NOT_FOUND")
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		if !errors.Is(err, product.ErrNotFound) {
			h.activity.Suspicious("DELETE_PRODUCT_ERROR", activity.Details{
				"error":     err.Error(),
				"productId": id,
			}, sid, req)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Product removed")
}

// productID parses the {id} path parameter. A non-numeric ID is a probe,
// not a typo; it is flagged and answered with the same 404 a missing
// product gets.
func (h *Handler) productID(w http.ResponseWriter, r *http.Request, tag string) (int64, bool) {
	raw := chi.URLParam(r, "id")
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

func productView(p *product.Product) productResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	specs := p.Specifications
	if specs == nil {
		specs = map[string]string{}
	}
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Category:       p.Category,
		Brand:          p.Brand,
		Stock:          p.Stock,
		Images:         images,
		Specifications: specs,
		RatingAverage:  p.RatingAverage,
		RatingCount:    p.RatingCount,
		IsFeatured:     p.IsFeatured,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
