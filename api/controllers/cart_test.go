package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gabrielasoto/aurelia-backend/api/middleware"
	"github.com/gabrielasoto/aurelia-backend/internal/cart"
	"github.com/gabrielasoto/aurelia-backend/internal/catalog"
	"github.com/gabrielasoto/aurelia-backend/internal/coupon"
	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
)

type stubCatalog struct {
	products map[string]catalog.Product
}

func (s *stubCatalog) Get(_ context.Context, id string) (*catalog.Product, error) {
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubCatalog) List(_ context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

type stubDiscounts struct {
	applied map[string]coupon.AppliedDiscount
}

func (s *stubDiscounts) Discount(sessionID string) (coupon.AppliedDiscount, bool) {
	d, ok := s.applied[sessionID]
	return d, ok
}

func sessionRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithSession(req.Context(), "sid-1", sessionUser()))
}

func decodeCartView(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return envelope.Data
}

func TestCartAddItemFetchesProduct(t *testing.T) {
	t.Parallel()

	carts := cart.NewRegistry()
	products := &stubCatalog{products: map[string]catalog.Product{
		"p1": {ID: "p1", Name: "Ring", Price: decimal.NewFromInt(100)},
	}}
	handler := CartAddItem(carts, products, &stubDiscounts{}, nil)

	rec := httptest.NewRecorder()
	handler(rec, sessionRequest(http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":2}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	data := decodeCartView(t, rec)
	if data["totalUnits"].(float64) != 2 {
		t.Errorf("totalUnits = %v, want 2", data["totalUnits"])
	}
	if data["subtotal"].(string) != "200" {
		t.Errorf("subtotal = %v, want 200", data["subtotal"])
	}

	store := carts.ForSession("sid-1")
	if store.Len() != 1 {
		t.Errorf("lines = %d, want 1", store.Len())
	}
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	carts := cart.NewRegistry()
	handler := CartAddItem(carts, &stubCatalog{}, &stubDiscounts{}, nil)

	rec := httptest.NewRecorder()
	handler(rec, sessionRequest(http.MethodPost, "/api/v1/cart/items", `{"productId":"ghost"}`))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if carts.ForSession("sid-1").Len() != 0 {
		t.Error("cart must stay empty when the product lookup fails")
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	t.Parallel()

	carts := cart.NewRegistry()
	carts.ForSession("sid-1").AddItem(cart.Product{ID: "p1", Name: "Ring", UnitPrice: decimal.NewFromInt(100)})

	router := chi.NewRouter()
	router.Patch("/api/v1/cart/items/{productId}", CartUpdateQuantity(carts, &stubDiscounts{}, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(http.MethodPatch, "/api/v1/cart/items/p1", `{"quantity":5}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := carts.ForSession("sid-1").TotalUnits(); got != 5 {
		t.Errorf("total units = %d, want 5", got)
	}
}

func TestCartRemoveItemRecalculatesTotal(t *testing.T) {
	t.Parallel()

	carts := cart.NewRegistry()
	store := carts.ForSession("sid-1")
	store.AddItem(cart.Product{ID: "p1", Name: "Ring", UnitPrice: decimal.NewFromInt(100)})
	store.AddItem(cart.Product{ID: "p2", Name: "Pendant", UnitPrice: decimal.NewFromInt(150)})

	router := chi.NewRouter()
	router.Delete("/api/v1/cart/items/{productId}", CartRemoveItem(carts, &stubDiscounts{}, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(http.MethodDelete, "/api/v1/cart/items/p2", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := decodeCartView(t, rec)
	if data["total"].(string) != "100" {
		t.Errorf("total = %v, want 100", data["total"])
	}
}

func TestCartFetchWithDiscount(t *testing.T) {
	t.Parallel()

	carts := cart.NewRegistry()
	carts.ForSession("sid-1").AddItem(cart.Product{ID: "p1", Name: "Ring", UnitPrice: decimal.NewFromInt(200)})
	discounts := &stubDiscounts{applied: map[string]coupon.AppliedDiscount{
		"sid-1": {Code: "SPRING20", Percentage: decimal.NewFromInt(20)},
	}}

	rec := httptest.NewRecorder()
	CartFetch(carts, discounts, nil)(rec, sessionRequest(http.MethodGet, "/api/v1/cart", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := decodeCartView(t, rec)
	if data["subtotal"].(string) != "200" {
		t.Errorf("subtotal = %v", data["subtotal"])
	}
	if data["total"].(string) != "160" {
		t.Errorf("total = %v, want 160", data["total"])
	}
	couponData, ok := data["coupon"].(map[string]any)
	if !ok || couponData["code"] != "SPRING20" {
		t.Errorf("coupon = %v", data["coupon"])
	}
}

func TestCartClear(t *testing.T) {
	t.Parallel()

	carts := cart.NewRegistry()
	carts.ForSession("sid-1").AddItem(cart.Product{ID: "p1", Name: "Ring", UnitPrice: decimal.NewFromInt(100)})

	rec := httptest.NewRecorder()
	CartClear(carts, &stubDiscounts{}, nil)(rec, sessionRequest(http.MethodDelete, "/api/v1/cart", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if carts.ForSession("sid-1").Len() != 0 {
		t.Error("cart should be empty")
	}
	data := decodeCartView(t, rec)
	if data["total"].(string) != "0" {
		t.Errorf("total = %v, want 0", data["total"])
	}
}
