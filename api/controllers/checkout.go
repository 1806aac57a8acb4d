package controllers

import (
	"context"
	"net/http"

	"github.com/gabrielasoto/aurelia-backend/api/middleware"
	"github.com/gabrielasoto/aurelia-backend/api/responses"
	"github.com/gabrielasoto/aurelia-backend/api/validators"
	"github.com/gabrielasoto/aurelia-backend/internal/checkout"
	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
	"github.com/gabrielasoto/aurelia-backend/pkg/logger"
)

// CheckoutService submits the session's cart as an order.
type CheckoutService interface {
	Submit(ctx context.Context, sessionID string, input checkout.SubmitInput) (*checkout.Result, error)
}

type checkoutRequest struct {
	UserName        string `json:"userName" validate:"required,min=2"`
	DeliveryAddress string `json:"deliveryAddress" validate:"required,min=5"`
	Phone           string `json:"phone" validate:"omitempty,min=7,max=20"`
}

type checkoutResponse struct {
	Status  string             `json:"status"`
	OrderID string             `json:"orderId,omitempty"`
	Order   *checkout.OrderRef `json:"order,omitempty"`
}

// CheckoutSubmit runs the full checkout pipeline for the session cart.
func CheckoutSubmit(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		result, err := svc.Submit(r.Context(), sessionID, checkout.SubmitInput{
			UserName:        payload.UserName,
			DeliveryAddress: payload.DeliveryAddress,
			Phone:           payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := checkoutResponse{Status: result.Status.String(), Order: result.Order}
		if result.Order != nil {
			resp.OrderID = result.Order.ID
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}
