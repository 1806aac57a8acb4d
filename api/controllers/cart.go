package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gabrielasoto/aurelia-backend/api/middleware"
	"github.com/gabrielasoto/aurelia-backend/api/responses"
	"github.com/gabrielasoto/aurelia-backend/api/validators"
	"github.com/gabrielasoto/aurelia-backend/internal/cart"
	"github.com/gabrielasoto/aurelia-backend/internal/catalog"
	"github.com/gabrielasoto/aurelia-backend/internal/coupon"
	"github.com/gabrielasoto/aurelia-backend/internal/pricing"
	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
	"github.com/gabrielasoto/aurelia-backend/pkg/logger"
)

// ProductFetcher resolves a product ID against the catalog service.
type ProductFetcher interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
}

// DiscountViewer exposes the session's applied discount for display.
type DiscountViewer interface {
	Discount(sessionID string) (coupon.AppliedDiscount, bool)
}

type cartLineView struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type couponView struct {
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
}

type cartView struct {
	Items      []cartLineView  `json:"items"`
	TotalUnits int             `json:"totalUnits"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Coupon     *couponView     `json:"coupon,omitempty"`
	Total      decimal.Decimal `json:"total"`
}

func newCartView(store *cart.Store, discounts DiscountViewer, sessionID string) cartView {
	lines := store.Lines()
	view := cartView{
		Items:      make([]cartLineView, 0, len(lines)),
		TotalUnits: store.TotalUnits(),
		Subtotal:   store.TotalAmount(),
	}
	for _, line := range lines {
		view.Items = append(view.Items, cartLineView{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal(),
		})
	}

	view.Total = view.Subtotal
	if discounts != nil {
		if applied, ok := discounts.Discount(sessionID); ok {
			view.Coupon = &couponView{Code: applied.Code, Percentage: applied.Percentage}
			view.Total = pricing.DiscountedPrice(view.Subtotal, applied.Percentage)
		}
	}
	return view
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1,max=99"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=99"`
}

func CartFetch(carts *cart.Registry, discounts DiscountViewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.ForSession(sessionID)
		responses.WriteSuccess(w, newCartView(store, discounts, sessionID))
	}
}

// CartAddItem resolves the product against the catalog before opening
// or incrementing its cart line. Quantity defaults to one unit.
func CartAddItem(carts *cart.Registry, products ProductFetcher, discounts DiscountViewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog client unavailable"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity := payload.Quantity
		if quantity == 0 {
			quantity = 1
		}

		product, err := products.Get(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.ForSession(sessionID)
		for i := 0; i < quantity; i++ {
			store.AddItem(cart.Product{ID: product.ID, Name: product.Name, UnitPrice: product.Price})
		}

		responses.WriteSuccess(w, newCartView(store, discounts, sessionID))
	}
}

func CartUpdateQuantity(carts *cart.Registry, discounts DiscountViewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.ForSession(sessionID)
		store.UpdateQuantity(productID, payload.Quantity)

		responses.WriteSuccess(w, newCartView(store, discounts, sessionID))
	}
}

func CartRemoveItem(carts *cart.Registry, discounts DiscountViewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.ForSession(sessionID)
		store.RemoveItem(productID)

		responses.WriteSuccess(w, newCartView(store, discounts, sessionID))
	}
}

func CartClear(carts *cart.Registry, discounts DiscountViewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.ForSession(sessionID)
		store.Clear()

		responses.WriteSuccess(w, newCartView(store, discounts, sessionID))
	}
}
