package coupon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
	"github.com/gabrielasoto/aurelia-backend/pkg/httpx"
)

const validatePath = "/coupons/validate"

// Client calls the external coupon validation service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds the coupon client for the given base URL.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("coupon base url is required")
	}
	if httpClient == nil {
		httpClient = httpx.NewClient(0)
	}
	return &Client{httpClient: httpClient, baseURL: trimmed}, nil
}

type validateRequest struct {
	Code string `json:"code"`
}

type validateResponse struct {
	Valid  bool `json:"valid"`
	Coupon *struct {
		Percentage decimal.Decimal `json:"percentage"`
	} `json:"coupon"`
}

// Validate submits the code and returns the discount percentage granted
// by the coupon service. Every failure carries a user-presentable message.
func (c *Client) Validate(ctx context.Context, code string) (decimal.Decimal, error) {
	resp, err := httpx.PostJSON(ctx, c.httpClient, httpx.JoinURL(c.baseURL, validatePath), validateRequest{Code: code}, nil)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "coupon service unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		var body validateResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode coupon response")
		}
		if !body.Valid || body.Coupon == nil {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is not valid")
		}
		pct := body.Coupon.Percentage
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeDependency, "coupon service returned an out-of-range percentage")
		}
		return pct, nil
	case resp.StatusCode == http.StatusNotFound:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	case resp.StatusCode >= 400 && resp.StatusCode <= 499:
		msg := httpx.ErrorMessage(resp)
		if msg == "" {
			msg = "coupon code is not valid"
		}
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, msg)
	default:
		msg := httpx.ErrorMessage(resp)
		if msg == "" {
			msg = fmt.Sprintf("coupon service error (status %d)", resp.StatusCode)
		}
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeDependency, msg)
	}
}
