package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/gabrielasoto/aurelia-backend/api/responses"
	"github.com/gabrielasoto/aurelia-backend/api/validators"
	"github.com/gabrielasoto/aurelia-backend/internal/pricing"
	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
	"github.com/gabrielasoto/aurelia-backend/pkg/logger"
)

type customizationQuoteRequest struct {
	BasePrice decimal.Decimal `json:"basePrice" validate:"required"`
	Material  string          `json:"material" validate:"omitempty,max=32"`
	Gem       string          `json:"gem" validate:"omitempty,max=32"`
}

type customizationQuoteResponse struct {
	BasePrice decimal.Decimal `json:"basePrice"`
	Material  string          `json:"material"`
	Gem       string          `json:"gem"`
	Price     decimal.Decimal `json:"price"`
}

// CustomizationQuote prices a material and gem combination for a piece.
// Unknown selections price neutrally rather than erroring.
func CustomizationQuote(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload customizationQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.BasePrice.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative"))
			return
		}

		responses.WriteSuccess(w, customizationQuoteResponse{
			BasePrice: payload.BasePrice,
			Material:  payload.Material,
			Gem:       payload.Gem,
			Price:     pricing.CustomizationPrice(payload.BasePrice, payload.Material, payload.Gem),
		})
	}
}
