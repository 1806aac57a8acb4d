package controllers

import (
	"context"
	"net/http"

	"github.com/gabrielasoto/aurelia-backend/api/middleware"
	"github.com/gabrielasoto/aurelia-backend/api/responses"
	"github.com/gabrielasoto/aurelia-backend/api/validators"
	"github.com/gabrielasoto/aurelia-backend/internal/cart"
	"github.com/gabrielasoto/aurelia-backend/internal/coupon"
	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
	"github.com/gabrielasoto/aurelia-backend/pkg/logger"
)

// CouponService applies and clears per-session discounts.
type CouponService interface {
	Apply(ctx context.Context, sessionID, code string) (coupon.AppliedDiscount, error)
	Discount(sessionID string) (coupon.AppliedDiscount, bool)
	Clear(sessionID string)
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
}

// CouponApply validates the code upstream and returns the updated cart
// totals with the new discount in place.
func CouponApply(svc CouponService, carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if _, err := svc.Apply(r.Context(), sessionID, payload.Code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := carts.ForSession(sessionID)
		responses.WriteSuccess(w, newCartView(store, svc, sessionID))
	}
}

func CouponRemove(svc CouponService, carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		svc.Clear(sessionID)

		store := carts.ForSession(sessionID)
		responses.WriteSuccess(w, newCartView(store, svc, sessionID))
	}
}
