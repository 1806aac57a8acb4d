package checkout

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

// OrderSubmission is the payload posted to the order service.
type OrderSubmission struct {
	UserName        string          `json:"userName"`
	Product         string          `json:"product"`
	Quantity        int             `json:"quantity"`
	DeliveryAddress string          `json:"deliveryAddress"`
	Phone           string          `json:"phone,omitempty"`
	Date            string          `json:"date"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	CouponCode      string          `json:"couponCode,omitempty"`
}

// OrderRef identifies the created order.
type OrderRef struct {
	ID string `json:"id"`
}

// OrderClient posts composed orders to the external order service.
type OrderClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewOrderClient builds the order client for the given base URL.
func NewOrderClient(baseURL string, httpClient *http.Client) (*OrderClient, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("order base url is required")
	}
	if httpClient == nil {
		httpClient = httpx.NewClient(0)
	}
	return &OrderClient{httpClient: httpClient, baseURL: trimmed}, nil
}

// Submit creates the order upstream. Non-2xx responses surface the
// server's message when one is present, a generic one otherwise.
func (c *OrderClient) Submit(ctx context.Context, order OrderSubmission) (*OrderRef, error) {
	resp, err := httpx.PostJSON(ctx, c.httpClient, httpx.JoinURL(c.baseURL, "/orders"), order, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := httpx.ErrorMessage(resp)
		if msg == "" {
			msg = "order could not be placed, please try again"
		}
		if resp.StatusCode >= 400 && resp.StatusCode <= 499 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msg)
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, msg)
	}

	var ref OrderRef
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		// the order was created; a malformed body should not fail the flow
		return &OrderRef{}, nil
	}
	return &ref, nil
}
