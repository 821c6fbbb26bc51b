package transport

import (
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/brand"
	"storefront-be/internal/product"

	"github.com/google/uuid"
)

type ProductHandler struct {
	products product.Service
	brands   brand.Service
}

func NewProductHandler(products product.Service, brands brand.Service) *ProductHandler {
	return &ProductHandler{products: products, brands: brands}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := product.ListOptions{
		OnlyActive: !auth.IsAdmin(r.Context()),
		Search:     r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("brand_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid brand id"})
			return
		}
		opts.BrandID = &id
	}

	views, err := h.products.ListProducts(r.Context(), opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid product id"})
		return
	}

	v, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(r.Context()) {
		respondJSON(w, http.StatusForbidden, errorBody{Error: "admin only"})
		return
	}

	var p product.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := h.products.CreateProduct(r.Context(), &p); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(r.Context()) {
		respondJSON(w, http.StatusForbidden, errorBody{Error: "admin only"})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid product id"})
		return
	}

	var p product.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = id
	if err := h.products.UpdateProduct(r.Context(), &p); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.ListBrands(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, brands)
}

func (h *ProductHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid brand id"})
		return
	}

	b, err := h.brands.GetBrand(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}
